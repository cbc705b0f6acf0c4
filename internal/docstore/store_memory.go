package docstore

import (
	"context"
	"sync"
	"time"
)

type docKey struct {
	owner  string
	resume string
}

// MemoryStore keeps documents in process memory and is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[docKey]Document
	now  func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[docKey]Document),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a copy of the stored document.
func (s *MemoryStore) Get(ctx context.Context, ownerID, resumeID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if err := checkIdentity(ownerID, resumeID); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docKey{ownerID, resumeID}]
	if !ok {
		return Document{}, ErrNotFound
	}
	return cloneDocument(doc), nil
}

// List returns the owner's documents, newest first.
func (s *MemoryStore) List(ctx context.Context, ownerID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	s.mu.RLock()
	out := make([]Document, 0)
	for k, doc := range s.docs {
		if k.owner == ownerID {
			out = append(out, cloneDocument(doc))
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

// Create stores a new document; it fails with ErrAlreadyExists if the key is taken.
func (s *MemoryStore) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkIdentity(doc.OwnerID, doc.ResumeID); err != nil {
		return err
	}
	for key := range doc.Sections {
		if err := checkSectionKey(key); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := docKey{doc.OwnerID, doc.ResumeID}
	if _, ok := s.docs[k]; ok {
		return ErrAlreadyExists
	}
	now := s.now()
	stored := cloneDocument(doc)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.docs[k] = stored
	return nil
}

// MergeSection writes one section under the store lock.
func (s *MemoryStore) MergeSection(ctx context.Context, ownerID, resumeID string, seed Seed, sectionKey string, data SectionData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkMerge(ownerID, resumeID, seed, sectionKey); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := docKey{ownerID, resumeID}
	now := s.now()
	doc, ok := s.docs[k]
	if !ok {
		doc = Document{
			OwnerID:    ownerID,
			ResumeID:   resumeID,
			TemplateID: seed.TemplateID,
			Name:       seed.Name,
			Sections:   make(map[string]SectionData),
			CreatedAt:  now,
		}
	}
	if data == nil {
		data = SectionData{}
	}
	doc.Sections[sectionKey] = data.Clone()
	doc.UpdatedAt = now
	s.docs[k] = doc
	return nil
}

var _ Store = (*MemoryStore)(nil)
