package templates

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"resume-builder/internal/docstore"
	"resume-builder/internal/sections"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/validation"
)

// Created is a freshly allocated resume and the route into its first step.
type Created struct {
	ResumeID   string `json:"resumeId"`
	TemplateID string `json:"templateId"`
	Name       string `json:"name"`
	Route      string `json:"route"`
}

// Service is the template selector.
type Service struct {
	Registry    *Registry
	Assets      object.ObjectStore
	AssetPrefix string
	newID       func() string
}

// NewService wires the selector to the catalog and the preview asset store.
func NewService(registry *Registry, assets object.ObjectStore, assetPrefix string) *Service {
	return &Service{Registry: registry, Assets: assets, AssetPrefix: assetPrefix, newID: uuid.NewString}
}

// ListTemplates returns every selectable template.
func (s *Service) ListTemplates() []Template {
	return s.Registry.ListTemplates()
}

// CreateResume allocates a resume id for ownerID. Nothing is written: the
// document appears on the first section submit.
func (s *Service) CreateResume(ctx context.Context, ownerID, templateID, name string) (Created, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Created{}, docstore.ErrUnauthenticated
	}
	if _, err := s.Registry.Get(templateID); err != nil {
		return Created{}, err
	}
	if errs := checkName(name); errs != nil {
		return Created{}, errs
	}

	id := s.newID()
	metrics.IncResumeCreated()
	telemetry.Info("resume.created", map[string]any{"user_id": ownerID, "resume_id": id, "template_id": templateID})
	return Created{
		ResumeID:   id,
		TemplateID: templateID,
		Name:       name,
		Route:      sections.FirstStepPath(templateID, id, name),
	}, nil
}

// OpenPreview streams the preview image of a template.
func (s *Service) OpenPreview(ctx context.Context, templateID string) (io.ReadCloser, string, error) {
	t, err := s.Registry.Get(templateID)
	if err != nil {
		return nil, "", err
	}
	key := object.AssetKey(s.AssetPrefix, t.PreviewAsset)
	rc, err := s.Assets.Open(ctx, key)
	if err != nil {
		return nil, "", err
	}
	return rc, object.ContentTypeFor(key), nil
}

func checkName(name string) validation.Errors {
	switch {
	case strings.TrimSpace(name) == "":
		return validation.Errors{"name": "Resume title is required"}
	case strings.Contains(name, "/"):
		return validation.Errors{"name": "Resume title cannot contain \"/\""}
	}
	return nil
}
