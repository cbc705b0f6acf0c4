package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Store reads and writes resume documents in a remote document database.
type Store interface {
	Get(ctx context.Context, ownerID, resumeID string) (Document, error)
	List(ctx context.Context, ownerID string) ([]Document, error)
	Create(ctx context.Context, doc Document) error
	// MergeSection sets sections[sectionKey] = data and leaves every other section intact.
	// A missing document is created from seed holding only this section.
	MergeSection(ctx context.Context, ownerID, resumeID string, seed Seed, sectionKey string, data SectionData) error
}

var reservedFields = map[string]struct{}{
	"templateId": {},
	"name":       {},
	"createdAt":  {},
	"updatedAt":  {},
}

// sortNewestFirst orders documents by creation time, newest first. Documents
// without a creation time sort last; ties break on resume id.
func sortNewestFirst(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].ResumeID < docs[j].ResumeID
		}
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
}

func checkIdentity(ownerID, resumeID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(resumeID) == "" {
		return fmt.Errorf("%w: resume id is required", ErrInvalidInput)
	}
	return nil
}

// checkSectionKey accepts identifiers usable as a jsonb key and a Firestore field path.
func checkSectionKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: section key is required", ErrInvalidInput)
	}
	if _, ok := reservedFields[key]; ok {
		return fmt.Errorf("%w: section key %q is reserved", ErrInvalidInput, key)
	}
	for i, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_'):
		default:
			return fmt.Errorf("%w: invalid section key %q", ErrInvalidInput, key)
		}
	}
	return nil
}

func checkMerge(ownerID, resumeID string, seed Seed, sectionKey string) error {
	if err := checkIdentity(ownerID, resumeID); err != nil {
		return err
	}
	if err := checkSectionKey(sectionKey); err != nil {
		return err
	}
	if strings.TrimSpace(seed.TemplateID) == "" {
		return fmt.Errorf("%w: template id is required", ErrInvalidInput)
	}
	return nil
}
