package docstore

import (
	"encoding/json"
	"time"
)

// SectionData is the validated key/value payload of one wizard step.
type SectionData map[string]any

// Document is the persisted form of a resume: one record per (owner, resume).
type Document struct {
	OwnerID    string                 `json:"ownerId"`
	ResumeID   string                 `json:"resumeId"`
	TemplateID string                 `json:"templateId"`
	Name       string                 `json:"name"`
	Sections   map[string]SectionData `json:"sections"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// Seed carries the immutable fields written when a merge creates a document.
type Seed struct {
	TemplateID string
	Name       string
}

// Section returns a copy of the stored section, or nil when it was never written.
func (d Document) Section(key string) SectionData {
	data, ok := d.Sections[key]
	if !ok {
		return nil
	}
	return data.Clone()
}

// Clone deep-copies section data through its JSON form, the same shape every backend persists.
func (s SectionData) Clone() SectionData {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	var out SectionData
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func cloneDocument(d Document) Document {
	out := d
	out.Sections = make(map[string]SectionData, len(d.Sections))
	for k, v := range d.Sections {
		out.Sections[k] = v.Clone()
	}
	return out
}
