package exports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/docstore"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/templates"
	"resume-builder/resume/model"
	"resume-builder/resume/render"
)

// ResumeReader loads the resume to render.
type ResumeReader interface {
	FindByID(ctx context.Context, ownerID, resumeID string) (resumes.Resume, error)
}

// Service renders resumes and keeps exported copies in the object store.
type Service struct {
	Repo      Repo
	Resumes   ResumeReader
	Templates *templates.Registry
	Store     object.ObjectStore
	now       func() time.Time
}

// NewService wires a Service.
func NewService(repo Repo, reader ResumeReader, registry *templates.Registry, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Resumes: reader, Templates: registry, Store: store, now: time.Now}
}

// Preview renders the resume with its template's layout.
func (s *Service) Preview(ctx context.Context, ownerID, resumeID string) ([]byte, error) {
	_, body, err := s.render(ctx, ownerID, resumeID)
	return body, err
}

// Create renders the resume and stores the result as a new export.
func (s *Service) Create(ctx context.Context, ownerID, resumeID string) (Export, error) {
	resume, body, err := s.render(ctx, ownerID, resumeID)
	if err != nil {
		return Export{}, err
	}

	id := uuid.NewString()
	key, err := object.ExportKey(ownerID, resumeID, id, fileName(resume))
	if err != nil {
		return Export{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	size, err := s.Store.SaveWithKey(ctx, key, render.ContentType, bytes.NewReader(body))
	if err != nil {
		return Export{}, err
	}

	export := Export{
		ID:         id,
		OwnerID:    ownerID,
		ResumeID:   resumeID,
		TemplateID: resume.TemplateID,
		StorageKey: key,
		MimeType:   render.ContentType,
		SizeBytes:  size,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, export); err != nil {
		return Export{}, err
	}
	telemetry.Info("export.created", map[string]any{"user_id": ownerID, "resume_id": resumeID, "export_id": id, "size_bytes": size})
	return export, nil
}

// Get returns an export by ID for an owner.
func (s *Service) Get(ctx context.Context, ownerID, exportID string) (Export, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Export{}, docstore.ErrUnauthenticated
	}
	if exportID == "" {
		return Export{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, ownerID, exportID)
}

// Open returns the export and a reader over its stored body.
func (s *Service) Open(ctx context.Context, ownerID, exportID string) (Export, io.ReadCloser, error) {
	export, err := s.Get(ctx, ownerID, exportID)
	if err != nil {
		return Export{}, nil, err
	}
	rc, err := s.Store.Open(ctx, export.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Export{}, nil, ErrNotFound
		}
		return Export{}, nil, err
	}
	return export, rc, nil
}

// List returns a resume's exports ordered newest-first.
func (s *Service) List(ctx context.Context, ownerID, resumeID string, limit, offset int) ([]Export, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, docstore.ErrUnauthenticated
	}
	return s.Repo.ListByResume(ctx, ownerID, resumeID, limit, offset)
}

func (s *Service) render(ctx context.Context, ownerID, resumeID string) (resumes.Resume, []byte, error) {
	if strings.TrimSpace(ownerID) == "" {
		return resumes.Resume{}, nil, docstore.ErrUnauthenticated
	}
	resume, err := s.Resumes.FindByID(ctx, ownerID, resumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return resumes.Resume{}, nil, ErrNotFound
		}
		return resumes.Resume{}, nil, err
	}
	tmpl, err := s.Templates.Get(resume.TemplateID)
	if err != nil {
		return resumes.Resume{}, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	body, err := render.RenderHTML(model.FromDocument(resume.Document(ownerID)), tmpl.Layout)
	if err != nil {
		if errors.Is(err, render.ErrUnknownLayout) {
			return resumes.Resume{}, nil, err
		}
		return resumes.Resume{}, nil, fmt.Errorf("%w: %v", ErrNotRenderable, err)
	}
	return resume, body, nil
}

func fileName(resume resumes.Resume) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, resume.Title())
	if name == "" {
		name = "resume"
	}
	return name + ".html"
}
