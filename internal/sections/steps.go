package sections

import (
	"fmt"
	"strings"

	"resume-builder/internal/docstore"
	"resume-builder/internal/shared/validation"
)

// Kind selects how a step's data is shaped.
type Kind int

const (
	// KindFields is a flat mapping of field name to string.
	KindFields Kind = iota
	// KindEntries is {"items": [...]}, each item checked against the step schema.
	KindEntries
)

// ItemsField holds the repeated entries of a KindEntries step.
const ItemsField = "items"

// Step is one wizard step bound to one section key.
type Step struct {
	Key      string
	Slug     string
	Title    string
	Kind     Kind
	Schema   *validation.Schema
	MinItems int
	// MinItemsMessage is reported under "items" when too few entries are submitted.
	MinItemsMessage string
}

const (
	urlPattern   = `[-a-zA-Z0-9@:%_\+.~#?&//=]{2,256}\.[a-z]{2,4}\b(\/[-a-zA-Z0-9@:%_\+.~#?&//=]*)?`
	emailPattern = `^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`
	yearPattern  = `^\d{4}$`
	monthPattern = `^\d{4}-(0[1-9]|1[0-2])$`
)

func required(name, label, msg string) validation.Field {
	return validation.Field{Name: name, Label: label, Rule: validation.Rule{Required: true, RequiredMessage: msg}}
}

func optional(name, label string) validation.Field {
	return validation.Field{Name: name, Label: label}
}

func linkField(name, label string, isRequired bool, requiredMsg string) validation.Field {
	return validation.Field{Name: name, Label: label, Rule: validation.Rule{
		Required:        isRequired,
		RequiredMessage: requiredMsg,
		Pattern:         urlPattern,
		PatternMessage:  "Please enter a valid URL",
	}}
}

var basicDetails = Step{
	Key:   "basicDetails",
	Slug:  "basicdetails",
	Title: "Basic details",
	Kind:  KindFields,
	Schema: validation.MustCompile(
		required("firstName", "First name", "First name is required"),
		required("lastName", "Last name", "Last name is required"),
		required("course", "Course", "Course is required"),
		required("branch", "Branch", "Branch is required"),
		optional("specialisation", "Specialisation"),
		validation.Field{Name: "email", Label: "Email", Rule: validation.Rule{
			Required:        true,
			RequiredMessage: "Email is required",
			Pattern:         emailPattern,
			PatternMessage:  "Please enter a valid email",
		}},
		linkField("linkedin", "Linkedin", true, "linkedin profile is required"),
		linkField("github", "Github", false, ""),
		linkField("website", "Website", false, ""),
		validation.Field{Name: "phone", Label: "Phone", Rule: validation.Rule{
			Required:        true,
			RequiredMessage: "Phone number is required",
			Validate:        "len(value) == 10",
			ValidateMessage: "Enter a valid phone number",
		}},
	),
}

var education = Step{
	Key:   "education",
	Slug:  "education",
	Title: "Education",
	Kind:  KindEntries,
	Schema: validation.MustCompile(
		required("institution", "Institution", "Institution is required"),
		required("degree", "Degree", "Degree is required"),
		optional("score", "Score"),
		validation.Field{Name: "startYear", Label: "Start year", Rule: validation.Rule{
			Required:        true,
			RequiredMessage: "Start year is required",
			Pattern:         yearPattern,
			PatternMessage:  "Enter a valid year",
		}},
		validation.Field{Name: "endYear", Label: "End year", Rule: validation.Rule{
			Pattern:         yearPattern,
			PatternMessage:  "Enter a valid year",
			Validate:        `values.startYear == "" || value >= values.startYear`,
			ValidateMessage: "End year must not precede start year",
		}},
	),
}

var experience = Step{
	Key:   "experience",
	Slug:  "experience",
	Title: "Experience",
	Kind:  KindEntries,
	Schema: validation.MustCompile(
		required("company", "Company", "Company is required"),
		required("role", "Role", "Role is required"),
		optional("location", "Location"),
		validation.Field{Name: "startDate", Label: "Start date", Rule: validation.Rule{
			Required:        true,
			RequiredMessage: "Start date is required",
			Pattern:         monthPattern,
			PatternMessage:  "Use the YYYY-MM format",
		}},
		validation.Field{Name: "endDate", Label: "End date", Rule: validation.Rule{
			Pattern:         monthPattern,
			PatternMessage:  "Use the YYYY-MM format",
			Validate:        `values.startDate == "" || value >= values.startDate`,
			ValidateMessage: "End date must not precede start date",
		}},
		optional("description", "Description"),
	),
}

var projects = Step{
	Key:   "projects",
	Slug:  "projects",
	Title: "Projects",
	Kind:  KindEntries,
	Schema: validation.MustCompile(
		required("title", "Title", "Project title is required"),
		linkField("link", "Link", false, ""),
		optional("techStack", "Tech stack"),
		validation.Field{Name: "description", Label: "Description", Rule: validation.Rule{
			Validate:        "len(value) <= 500",
			ValidateMessage: "Keep the description under 500 characters",
		}},
	),
}

var skills = Step{
	Key:   "skills",
	Slug:  "skills",
	Title: "Skills",
	Kind:  KindEntries,
	Schema: validation.MustCompile(
		required("name", "Skill", "Skill name is required"),
		validation.Field{Name: "level", Label: "Level", Rule: validation.Rule{
			Validate:        `value in ["beginner", "intermediate", "advanced", "expert"]`,
			ValidateMessage: "Choose beginner, intermediate, advanced or expert",
		}},
	),
	MinItems:        1,
	MinItemsMessage: "Add at least one skill",
}

var steps = []Step{basicDetails, education, experience, projects, skills}

// Steps returns the wizard steps in order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// Lookup resolves a route slug or section key, case-insensitively.
func Lookup(detail string) (Step, bool) {
	for _, s := range steps {
		if strings.EqualFold(detail, s.Slug) || strings.EqualFold(detail, s.Key) {
			return s, true
		}
	}
	return Step{}, false
}

// Next returns the step after s; ok is false for the last step.
func (s Step) Next() (Step, bool) {
	for i, cur := range steps {
		if cur.Key == s.Key && i+1 < len(steps) {
			return steps[i+1], true
		}
	}
	return Step{}, false
}

// Defaults is the empty form for the step.
func (s Step) Defaults() docstore.SectionData {
	if s.Kind == KindEntries {
		return docstore.SectionData{ItemsField: []any{}}
	}
	return docstore.SectionData(s.Schema.Defaults())
}

// Normalize keeps only known fields and renders values as strings.
func (s Step) Normalize(data map[string]any) docstore.SectionData {
	if s.Kind == KindFields {
		return normalizeFields(s.Schema, data)
	}
	raw := itemsOf(data[ItemsField])
	items := make([]any, 0, len(raw))
	for _, item := range raw {
		items = append(items, map[string]any(normalizeFields(s.Schema, item)))
	}
	return docstore.SectionData{ItemsField: items}
}

// Validate checks normalized data. Entry errors are keyed items[i].field.
func (s Step) Validate(data docstore.SectionData) validation.Errors {
	if s.Kind == KindFields {
		return s.Schema.Validate(data)
	}
	errs := validation.Errors{}
	items := itemsOf(data[ItemsField])
	if len(items) < s.MinItems {
		errs[ItemsField] = s.MinItemsMessage
	}
	for i, item := range items {
		if itemErrs := s.Schema.Validate(item); itemErrs != nil {
			errs.Merge(fmt.Sprintf("%s[%d].", ItemsField, i), itemErrs)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func normalizeFields(schema *validation.Schema, data map[string]any) docstore.SectionData {
	out := docstore.SectionData{}
	for _, name := range schema.Names() {
		out[name] = validation.StringValue(data[name])
	}
	return out
}

func itemsOf(v any) []map[string]any {
	switch t := v.(type) {
	case []map[string]any:
		return t
	case []docstore.SectionData:
		out := make([]map[string]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			switch m := item.(type) {
			case map[string]any:
				out = append(out, m)
			case docstore.SectionData:
				out = append(out, m)
			default:
				out = append(out, map[string]any{})
			}
		}
		return out
	}
	return nil
}
