package exports

import "time"

// Export is one rendered copy of a resume kept in the object store.
type Export struct {
	ID         string    `json:"exportId"`
	OwnerID    string    `json:"-"`
	ResumeID   string    `json:"resumeId"`
	TemplateID string    `json:"templateId"`
	StorageKey string    `json:"-"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	CreatedAt  time.Time `json:"createdAt"`
}
