package exports

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const exportColumns = `id, owner_id, resume_id, template_id, storage_key, mime_type, size_bytes, created_at`

// Create inserts an export row.
func (r *PGRepo) Create(ctx context.Context, export Export) error {
	const query = `
INSERT INTO resume_exports (` + exportColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		export.ID,
		export.OwnerID,
		export.ResumeID,
		export.TemplateID,
		export.StorageKey,
		export.MimeType,
		export.SizeBytes,
		export.CreatedAt,
	)
	return err
}

// GetByID returns an export by ID for an owner.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, exportID string) (Export, error) {
	const query = `
SELECT ` + exportColumns + `
FROM resume_exports
WHERE id = $1
LIMIT 1`
	export, err := scanExport(r.DB.QueryRowContext(ctx, query, exportID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Export{}, ErrNotFound
		}
		return Export{}, err
	}
	if export.OwnerID != ownerID {
		return Export{}, ErrForbidden
	}
	return export, nil
}

// ListByResume lists a resume's exports ordered newest-first.
func (r *PGRepo) ListByResume(ctx context.Context, ownerID, resumeID string, limit, offset int) ([]Export, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + exportColumns + `
FROM resume_exports
WHERE owner_id = $1 AND resume_id = $2
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, resumeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Export{}
	for rows.Next() {
		export, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, export)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExport(row rowScanner) (Export, error) {
	var export Export
	err := row.Scan(
		&export.ID,
		&export.OwnerID,
		&export.ResumeID,
		&export.TemplateID,
		&export.StorageKey,
		&export.MimeType,
		&export.SizeBytes,
		&export.CreatedAt,
	)
	return export, err
}

var _ Repo = (*PGRepo)(nil)
