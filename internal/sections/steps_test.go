package sections

import (
	"testing"

	"resume-builder/internal/docstore"
)

func validBasicDetails() map[string]any {
	return map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"course":    "BSc",
		"branch":    "Mathematics",
		"email":     "a@b.co",
		"linkedin":  "linkedin.com/in/ada",
		"phone":     "5551234567",
	}
}

func TestBasicDetailsRequiredFields(t *testing.T) {
	for _, field := range []string{"firstName", "lastName", "course", "branch", "email", "linkedin", "phone"} {
		t.Run(field, func(t *testing.T) {
			input := validBasicDetails()
			input[field] = ""
			errs := basicDetails.Validate(basicDetails.Normalize(input))
			if _, ok := errs[field]; !ok || len(errs) != 1 {
				t.Fatalf("expected only %s to fail, got %v", field, errs)
			}
		})
	}
}

func TestBasicDetailsPhoneLength(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"123456789", false},
		{"1234567890", true},
		{"12345678901", false},
	}
	for _, tt := range tests {
		input := validBasicDetails()
		input["phone"] = tt.phone
		errs := basicDetails.Validate(basicDetails.Normalize(input))
		if tt.ok && errs != nil {
			t.Fatalf("phone %q: unexpected errors %v", tt.phone, errs)
		}
		if !tt.ok && errs["phone"] != "Enter a valid phone number" {
			t.Fatalf("phone %q: expected phone message, got %v", tt.phone, errs)
		}
	}
}

func TestBasicDetailsEmailAndURLs(t *testing.T) {
	input := validBasicDetails()
	input["email"] = "not-an-email"
	input["github"] = "nope"
	errs := basicDetails.Validate(basicDetails.Normalize(input))
	if errs["email"] != "Please enter a valid email" {
		t.Fatalf("expected email error, got %v", errs)
	}
	if errs["github"] != "Please enter a valid URL" {
		t.Fatalf("expected github error, got %v", errs)
	}

	input = validBasicDetails()
	input["github"] = "https://github.com/ada"
	if errs := basicDetails.Validate(basicDetails.Normalize(input)); errs != nil {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestNormalizeDropsUnknownFields(t *testing.T) {
	input := validBasicDetails()
	input["admin"] = true
	data := basicDetails.Normalize(input)
	if _, ok := data["admin"]; ok {
		t.Fatalf("unknown field kept: %v", data)
	}
	if data["specialisation"] != "" {
		t.Fatalf("missing optional field should default to empty string, got %v", data["specialisation"])
	}
}

func TestEntryErrorsAreIndexed(t *testing.T) {
	data := education.Normalize(map[string]any{
		"items": []any{
			map[string]any{"institution": "MIT", "degree": "BSc", "startYear": "2019", "endYear": "2023"},
			map[string]any{"institution": "", "degree": "MSc", "startYear": "2024", "endYear": "2020"},
		},
	})
	errs := education.Validate(data)
	if errs["items[1].institution"] != "Institution is required" {
		t.Fatalf("expected indexed institution error, got %v", errs)
	}
	if errs["items[1].endYear"] != "End year must not precede start year" {
		t.Fatalf("expected ordering error, got %v", errs)
	}
	if _, ok := errs["items[0].institution"]; ok {
		t.Fatalf("first entry should be valid, got %v", errs)
	}
}

func TestSkillsRequireOneEntryAndKnownLevel(t *testing.T) {
	errs := skills.Validate(skills.Normalize(map[string]any{"items": []any{}}))
	if errs[ItemsField] != "Add at least one skill" {
		t.Fatalf("expected min items error, got %v", errs)
	}

	errs = skills.Validate(skills.Normalize(map[string]any{
		"items": []map[string]any{{"name": "Go", "level": "guru"}},
	}))
	if errs["items[0].level"] == "" {
		t.Fatalf("expected level error, got %v", errs)
	}

	errs = skills.Validate(skills.Normalize(map[string]any{
		"items": []docstore.SectionData{{"name": "Go", "level": "expert"}},
	}))
	if errs != nil {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestLookupAndOrder(t *testing.T) {
	step, ok := Lookup("basicdetails")
	if !ok || step.Key != "basicDetails" {
		t.Fatalf("expected slug lookup, got %+v", step)
	}
	if step, ok := Lookup("basicDetails"); !ok || step.Slug != "basicdetails" {
		t.Fatalf("expected key lookup, got %+v", step)
	}
	if _, ok := Lookup("hobbies"); ok {
		t.Fatalf("unexpected step")
	}

	var keys []string
	for s, ok := Steps()[0], true; ok; s, ok = s.Next() {
		keys = append(keys, s.Key)
	}
	want := []string{"basicDetails", "education", "experience", "projects", "skills"}
	if len(keys) != len(want) {
		t.Fatalf("unexpected order %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("unexpected order %v", keys)
		}
	}
}

func TestDefaultsByKind(t *testing.T) {
	if d := basicDetails.Defaults(); d["firstName"] != "" {
		t.Fatalf("unexpected defaults %v", d)
	}
	items, ok := education.Defaults()[ItemsField].([]any)
	if !ok || len(items) != 0 {
		t.Fatalf("expected empty items list")
	}
}
