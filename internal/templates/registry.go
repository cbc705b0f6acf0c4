package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownTemplate rejects ids missing from the catalog.
var ErrUnknownTemplate = errors.New("unknown template")

// Template is one selectable visual template.
type Template struct {
	ID           string `yaml:"id" json:"id"`
	DisplayName  string `yaml:"displayName" json:"displayName"`
	PreviewAsset string `yaml:"previewAsset" json:"previewAsset"`
	Layout       string `yaml:"layout" json:"-"`
}

//go:embed catalog.yaml
var defaultCatalog []byte

// Registry is the read-only template catalog.
type Registry struct {
	templates []Template
	byID      map[string]Template
}

// Default returns the embedded catalog.
func Default() *Registry {
	r, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("templates: embedded catalog: %v", err))
	}
	return r
}

// Parse loads a YAML catalog. Ids must be unique and name a layout.
func Parse(raw []byte) (*Registry, error) {
	var doc struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	r := &Registry{byID: make(map[string]Template, len(doc.Templates))}
	for i, t := range doc.Templates {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" || strings.TrimSpace(t.Layout) == "" {
			return nil, fmt.Errorf("catalog entry %d: id and layout are required", i)
		}
		if _, dup := r.byID[t.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, t.ID)
		}
		r.byID[t.ID] = t
		r.templates = append(r.templates, t)
	}
	return r, nil
}

// ListTemplates returns the catalog in display order.
func (r *Registry) ListTemplates() []Template {
	out := make([]Template, len(r.templates))
	copy(out, r.templates)
	return out
}

// Get resolves a template id.
func (r *Registry) Get(id string) (Template, error) {
	t, ok := r.byID[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}
	return t, nil
}

// Has reports whether id is in the catalog.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}
