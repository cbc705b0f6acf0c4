package resumes

import (
	"strings"
	"time"

	"resume-builder/internal/docstore"
)

// Resume is the read model of one stored document.
type Resume struct {
	ID         string                          `json:"id"`
	TemplateID string                          `json:"templateId"`
	Name       string                          `json:"name"`
	Sections   map[string]docstore.SectionData `json:"sections"`
	CreatedAt  time.Time                       `json:"createdAt"`
	UpdatedAt  time.Time                       `json:"updatedAt"`
}

// ListState is the tri-state of the resume list.
type ListState string

const (
	StateLoading        ListState = "loading"
	StateLoadedEmpty    ListState = "loaded-empty"
	StateLoadedNonEmpty ListState = "loaded-nonempty"
)

// ListView is a non-blocking view of a user's resumes.
type ListView struct {
	State   ListState `json:"state"`
	Resumes []Resume  `json:"resumes"`
}

func fromDocument(doc docstore.Document) Resume {
	sections := doc.Sections
	if sections == nil {
		sections = map[string]docstore.SectionData{}
	}
	return Resume{
		ID:         doc.ResumeID,
		TemplateID: doc.TemplateID,
		Name:       doc.Name,
		Sections:   sections,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

// Title is the display title, "Untitled" when the resume has no name.
func (r Resume) Title() string {
	if strings.TrimSpace(r.Name) == "" {
		return "Untitled"
	}
	return r.Name
}

// Owner is the display name taken from basic details, "Anonymous" when unset.
func (r Resume) Owner() string {
	basic := r.Sections["basicDetails"]
	first, _ := basic["firstName"].(string)
	last, _ := basic["lastName"].(string)
	if strings.TrimSpace(first) == "" {
		first = "Anonymous"
	}
	return strings.TrimSpace(first + " " + last)
}

// Document rebuilds the stored document shape for ownerID.
func (r Resume) Document(ownerID string) docstore.Document {
	return docstore.Document{
		OwnerID:    ownerID,
		ResumeID:   r.ID,
		TemplateID: r.TemplateID,
		Name:       r.Name,
		Sections:   r.Sections,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
