package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGStore implements Store on Postgres, keeping sections in one jsonb column.
type PGStore struct {
	DB  *sql.DB
	now func() time.Time
}

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

// Get returns one document.
func (s *PGStore) Get(ctx context.Context, ownerID, resumeID string) (Document, error) {
	if err := checkIdentity(ownerID, resumeID); err != nil {
		return Document{}, err
	}
	const query = `
SELECT template_id, name, sections, created_at, updated_at
FROM resume_documents
WHERE owner_id = $1 AND resume_id = $2
LIMIT 1`
	doc := Document{OwnerID: ownerID, ResumeID: resumeID}
	var raw []byte
	err := s.DB.QueryRowContext(ctx, query, ownerID, resumeID).Scan(
		&doc.TemplateID,
		&doc.Name,
		&raw,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("%w: get document: %w", ErrPersistence, err)
	}
	if doc.Sections, err = decodeSections(raw); err != nil {
		return Document{}, fmt.Errorf("%w: decode sections: %w", ErrPersistence, err)
	}
	return doc, nil
}

// List returns the owner's documents, newest first.
func (s *PGStore) List(ctx context.Context, ownerID string) ([]Document, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	const query = `
SELECT resume_id, template_id, name, sections, created_at, updated_at
FROM resume_documents
WHERE owner_id = $1
ORDER BY created_at DESC, resume_id ASC`

	rows, err := s.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", ErrPersistence, err)
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc := Document{OwnerID: ownerID}
		var raw []byte
		if err := rows.Scan(
			&doc.ResumeID,
			&doc.TemplateID,
			&doc.Name,
			&raw,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan document: %w", ErrPersistence, err)
		}
		if doc.Sections, err = decodeSections(raw); err != nil {
			return nil, fmt.Errorf("%w: decode sections: %w", ErrPersistence, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", ErrPersistence, err)
	}
	return out, nil
}

// Create inserts a new document.
func (s *PGStore) Create(ctx context.Context, doc Document) error {
	if err := checkIdentity(doc.OwnerID, doc.ResumeID); err != nil {
		return err
	}
	for key := range doc.Sections {
		if err := checkSectionKey(key); err != nil {
			return err
		}
	}
	sections := doc.Sections
	if sections == nil {
		sections = map[string]SectionData{}
	}
	raw, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("%w: encode sections: %w", ErrInvalidInput, err)
	}
	now := s.now()
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	const query = `
INSERT INTO resume_documents (owner_id, resume_id, template_id, name, sections, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)
ON CONFLICT (owner_id, resume_id) DO NOTHING`
	res, err := s.DB.ExecContext(ctx, query,
		doc.OwnerID,
		doc.ResumeID,
		doc.TemplateID,
		doc.Name,
		string(raw),
		createdAt,
		now,
	)
	if err != nil {
		return fmt.Errorf("%w: create document: %w", ErrPersistence, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// MergeSection upserts a single key of the sections object in one statement.
// The jsonb || operator replaces only the named key; template_id and name are
// written on insert and never touched by the update branch.
func (s *PGStore) MergeSection(ctx context.Context, ownerID, resumeID string, seed Seed, sectionKey string, data SectionData) error {
	if err := checkMerge(ownerID, resumeID, seed, sectionKey); err != nil {
		return err
	}
	if data == nil {
		data = SectionData{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: encode section: %w", ErrInvalidInput, err)
	}
	const query = `
INSERT INTO resume_documents (owner_id, resume_id, template_id, name, sections, created_at, updated_at)
VALUES ($1, $2, $3, $4, jsonb_build_object($5::text, $6::jsonb), $7, $7)
ON CONFLICT (owner_id, resume_id) DO UPDATE
SET sections = resume_documents.sections || jsonb_build_object($5::text, $6::jsonb),
    updated_at = EXCLUDED.updated_at`
	_, err = s.DB.ExecContext(ctx, query,
		ownerID,
		resumeID,
		seed.TemplateID,
		seed.Name,
		sectionKey,
		string(raw),
		s.now(),
	)
	if err != nil {
		return fmt.Errorf("%w: merge section %s: %w", ErrPersistence, sectionKey, err)
	}
	return nil
}

func decodeSections(raw []byte) (map[string]SectionData, error) {
	out := map[string]SectionData{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Store = (*PGStore)(nil)
