package model

import (
	"testing"

	"resume-builder/internal/docstore"
)

func TestFromDocumentMapsSections(t *testing.T) {
	doc := docstore.Document{
		ResumeID:   "r1",
		TemplateID: "modern-1",
		Name:       "My First Resume",
		Sections: map[string]docstore.SectionData{
			"basicDetails": {
				"firstName": "Ada",
				"lastName":  "Lovelace",
				"email":     "a@b.co",
				"linkedin":  "linkedin.com/in/ada",
				"github":    "https://github.com/ada",
			},
			"projects": {"items": []any{
				map[string]any{"title": "Engine", "techStack": "Go, Postgres ,", "link": "ada.dev"},
			}},
			"skills": {"items": []any{map[string]any{"name": "Go", "level": "expert"}}},
		},
	}

	m := FromDocument(doc)
	if m.Header.Name != "Ada Lovelace" {
		t.Fatalf("unexpected name %q", m.Header.Name)
	}
	if len(m.Header.Links) != 2 || m.Header.Links[0] != "https://linkedin.com/in/ada" || m.Header.Links[1] != "https://github.com/ada" {
		t.Fatalf("unexpected links %v", m.Header.Links)
	}
	if len(m.Projects) != 1 || len(m.Projects[0].TechStack) != 2 || m.Projects[0].Link != "https://ada.dev" {
		t.Fatalf("unexpected projects %+v", m.Projects)
	}
	if len(m.Skills) != 1 || m.Skills[0].Level != "expert" {
		t.Fatalf("unexpected skills %+v", m.Skills)
	}
	if len(m.Education) != 0 {
		t.Fatalf("missing sections should map to nothing, got %+v", m.Education)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRequiresIdentity(t *testing.T) {
	if err := (ResumeModel{}).Validate(); err == nil {
		t.Fatalf("expected error for empty model")
	}
	m := ResumeModel{Header: ResumeHeader{Name: "Ada"}}
	if err := m.Validate(); err == nil {
		t.Fatalf("expected error without email or phone")
	}
	m.Header.Phone = "5551234567"
	m.Experience = []ResumeExperience{{Start: "2020-13"}}
	if err := m.Validate(); err == nil {
		t.Fatalf("expected date error")
	}
	m.Experience = []ResumeExperience{{Start: "2020-01", End: "Present"}}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
