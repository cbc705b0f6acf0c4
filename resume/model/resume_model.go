package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"resume-builder/internal/docstore"
)

// ResumeModel is the render-ready shape of one stored resume.
type ResumeModel struct {
	ResumeID   string             `json:"resumeId"`
	TemplateID string             `json:"templateId"`
	Title      string             `json:"title"`
	Header     ResumeHeader       `json:"header"`
	Education  []ResumeEducation  `json:"education"`
	Experience []ResumeExperience `json:"experience"`
	Projects   []ResumeProject    `json:"projects"`
	Skills     []ResumeSkill      `json:"skills"`
}

// ResumeHeader captures top-of-resume contact and identity details.
type ResumeHeader struct {
	Name           string   `json:"name"`
	Course         string   `json:"course"`
	Branch         string   `json:"branch"`
	Specialisation string   `json:"specialisation"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Links          []string `json:"links"`
}

// ResumeEducation represents an education entry.
type ResumeEducation struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Score       string `json:"score"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// ResumeExperience represents a work history entry.
type ResumeExperience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Location    string `json:"location"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
}

// ResumeProject represents a notable project.
type ResumeProject struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	TechStack   []string `json:"techStack"`
	Description string   `json:"description"`
}

// ResumeSkill is one named skill with an optional level.
type ResumeSkill struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// FromDocument maps stored sections onto the render model. Missing sections
// render as empty blocks.
func FromDocument(doc docstore.Document) ResumeModel {
	basic := doc.Section("basicDetails")
	m := ResumeModel{
		ResumeID:   doc.ResumeID,
		TemplateID: doc.TemplateID,
		Title:      doc.Name,
		Header: ResumeHeader{
			Name:           strings.TrimSpace(str(basic, "firstName") + " " + str(basic, "lastName")),
			Course:         str(basic, "course"),
			Branch:         str(basic, "branch"),
			Specialisation: str(basic, "specialisation"),
			Email:          str(basic, "email"),
			Phone:          str(basic, "phone"),
		},
	}
	for _, key := range []string{"linkedin", "github", "website"} {
		if link := str(basic, key); link != "" {
			m.Header.Links = append(m.Header.Links, normalizeLink(link))
		}
	}
	for _, item := range items(doc.Section("education")) {
		m.Education = append(m.Education, ResumeEducation{
			Institution: str(item, "institution"),
			Degree:      str(item, "degree"),
			Score:       str(item, "score"),
			Start:       str(item, "startYear"),
			End:         str(item, "endYear"),
		})
	}
	for _, item := range items(doc.Section("experience")) {
		m.Experience = append(m.Experience, ResumeExperience{
			Company:     str(item, "company"),
			Role:        str(item, "role"),
			Location:    str(item, "location"),
			Start:       str(item, "startDate"),
			End:         str(item, "endDate"),
			Description: str(item, "description"),
		})
	}
	for _, item := range items(doc.Section("projects")) {
		m.Projects = append(m.Projects, ResumeProject{
			Title:       str(item, "title"),
			Link:        normalizeLink(str(item, "link")),
			TechStack:   splitList(str(item, "techStack")),
			Description: str(item, "description"),
		})
	}
	for _, item := range items(doc.Section("skills")) {
		m.Skills = append(m.Skills, ResumeSkill{Name: str(item, "name"), Level: str(item, "level")})
	}
	return m
}

// Validate checks the minimum needed to render a resume.
func (m ResumeModel) Validate() error {
	if strings.TrimSpace(m.Header.Name) == "" {
		return errors.New("full name is required")
	}
	if strings.TrimSpace(m.Header.Email) == "" && strings.TrimSpace(m.Header.Phone) == "" {
		return errors.New("email or phone is required")
	}
	for i, exp := range m.Experience {
		if err := validateDateField(exp.Start, fmt.Sprintf("experience[%d].start", i)); err != nil {
			return err
		}
		if err := validateDateField(exp.End, fmt.Sprintf("experience[%d].end", i)); err != nil {
			return err
		}
	}
	return nil
}

var resumeDatePattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func validateDateField(value, field string) error {
	if value == "" || strings.EqualFold(value, "present") {
		return nil
	}
	if !resumeDatePattern.MatchString(value) {
		return fmt.Errorf("%s must be YYYY-MM or Present", field)
	}
	return nil
}

// normalizeLink adds a scheme to links entered without one.
func normalizeLink(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return value
	}
	return "https://" + value
}

func str(data docstore.SectionData, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return strings.TrimSpace(s)
}

func items(data docstore.SectionData) []docstore.SectionData {
	raw, _ := data["items"].([]any)
	out := make([]docstore.SectionData, 0, len(raw))
	for _, item := range raw {
		switch m := item.(type) {
		case map[string]any:
			out = append(out, docstore.SectionData(m))
		case docstore.SectionData:
			out = append(out, m)
		}
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
