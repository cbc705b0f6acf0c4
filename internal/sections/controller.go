package sections

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"resume-builder/internal/docstore"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// SavedNotice is the transient message shown after a successful submit.
const SavedNotice = "Saved successfully"

var (
	// ErrSubmitInProgress rejects a second submit of the same form while the first is pending.
	ErrSubmitInProgress = errors.New("submit already in progress")
	ErrUnknownStep      = errors.New("unknown wizard step")
	// ErrUnknownTemplate rejects a route whose template id is not in the catalog.
	ErrUnknownTemplate = errors.New("unknown template")
)

// TemplateCatalog reports whether a template id can be rendered.
type TemplateCatalog interface {
	Has(templateID string) bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithTemplates checks every target's template id against catalog. The first
// submit creates the document with that id, so an unknown one is refused
// before anything is read or written.
func WithTemplates(catalog TemplateCatalog) Option {
	return func(c *Controller) {
		c.templates = catalog
	}
}

// Resumes is the read side the controller preloads from and invalidates after writes.
type Resumes interface {
	Section(ctx context.Context, ownerID, resumeID, sectionKey string) (docstore.SectionData, bool, error)
	Invalidate(ctx context.Context, ownerID string)
}

// Target addresses one step of one resume.
type Target struct {
	OwnerID    string
	TemplateID string
	ResumeID   string
	Name       string
	Step       Step
}

// NewTarget resolves detail to a step.
func NewTarget(ownerID, templateID, resumeID, name, detail string) (Target, error) {
	step, ok := Lookup(detail)
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownStep, detail)
	}
	return Target{OwnerID: ownerID, TemplateID: templateID, ResumeID: resumeID, Name: name, Step: step}, nil
}

// Form is a preloaded step.
type Form struct {
	Section string               `json:"section"`
	Title   string               `json:"title"`
	Data    docstore.SectionData `json:"data"`
	// Stored reports whether the data came from the document rather than defaults.
	Stored bool `json:"stored"`
}

// Result is the outcome of a successful submit.
type Result struct {
	Section  string               `json:"section"`
	Notice   string               `json:"notice"`
	NextPath string               `json:"nextPath"`
	NextStep string               `json:"nextStep,omitempty"`
	Data     docstore.SectionData `json:"data"`
}

// Controller runs preload/validate/submit for every wizard step.
type Controller struct {
	store     docstore.Store
	resumes   Resumes
	templates TemplateCatalog

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewController wires a controller to the document store and resume repository.
func NewController(store docstore.Store, resumes Resumes, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		resumes:  resumes,
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) checkTemplate(t Target) error {
	if c.templates != nil && !c.templates.Has(t.TemplateID) {
		return fmt.Errorf("%w: %q", ErrUnknownTemplate, t.TemplateID)
	}
	return nil
}

// Preload returns the stored section, or the step defaults for a new resume.
func (c *Controller) Preload(ctx context.Context, t Target) (Form, error) {
	if strings.TrimSpace(t.OwnerID) == "" {
		return Form{}, docstore.ErrUnauthenticated
	}
	if err := c.checkTemplate(t); err != nil {
		return Form{}, err
	}
	form := Form{Section: t.Step.Key, Title: t.Step.Title}
	data, ok, err := c.resumes.Section(ctx, t.OwnerID, t.ResumeID, t.Step.Key)
	if err != nil {
		return Form{}, err
	}
	if !ok {
		form.Data = t.Step.Defaults()
		return form, nil
	}
	form.Data = t.Step.Normalize(data)
	form.Stored = true
	return form, nil
}

// Validate normalizes input and applies the step's rule table.
func (c *Controller) Validate(step Step, input map[string]any) (docstore.SectionData, error) {
	data := step.Normalize(input)
	if errs := step.Validate(data); errs != nil {
		return data, errs
	}
	return data, nil
}

// Submit validates and merges the step into the document, then returns the next route.
// Validation failures return validation.Errors and nothing is written.
func (c *Controller) Submit(ctx context.Context, t Target, input map[string]any) (Result, error) {
	if strings.TrimSpace(t.OwnerID) == "" {
		return Result{}, docstore.ErrUnauthenticated
	}
	if err := c.checkTemplate(t); err != nil {
		metrics.IncSectionSubmit(t.Step.Key, "invalid")
		return Result{}, err
	}
	release, ok := c.acquire(t)
	if !ok {
		metrics.IncSectionSubmit(t.Step.Key, "busy")
		return Result{}, ErrSubmitInProgress
	}
	defer release()

	data, err := c.Validate(t.Step, input)
	if err != nil {
		metrics.IncSectionSubmit(t.Step.Key, "invalid")
		return Result{}, err
	}

	seed := docstore.Seed{TemplateID: t.TemplateID, Name: t.Name}
	if err := c.store.MergeSection(ctx, t.OwnerID, t.ResumeID, seed, t.Step.Key, data); err != nil {
		metrics.IncSectionSubmit(t.Step.Key, "persistence_error")
		telemetry.Error("section.save_failed", map[string]any{
			"resume_id": t.ResumeID,
			"section":   t.Step.Key,
			"error":     err,
		})
		return Result{}, err
	}
	c.resumes.Invalidate(ctx, t.OwnerID)
	metrics.IncSectionSubmit(t.Step.Key, "ok")

	res := Result{
		Section:  t.Step.Key,
		Notice:   SavedNotice,
		NextPath: NextStepPath(t),
		Data:     data,
	}
	if next, ok := t.Step.Next(); ok {
		res.NextStep = next.Key
	}
	return res, nil
}

// NextStepPath is the route after t's step; the last step leads to the preview.
func NextStepPath(t Target) string {
	next, ok := t.Step.Next()
	if !ok {
		return PreviewPath(t.TemplateID, t.ResumeID)
	}
	return BuildPath(t.TemplateID, t.ResumeID, t.Name, next.Slug)
}

func (c *Controller) acquire(t Target) (func(), bool) {
	key := t.OwnerID + "/" + t.ResumeID + "/" + t.Step.Key
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[key]; busy {
		return nil, false
	}
	c.inflight[key] = struct{}{}
	return func() {
		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
	}, true
}
