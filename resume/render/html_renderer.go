package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"resume-builder/resume/model"
)

// ContentType is the MIME type of rendered resumes.
const ContentType = "text/html; charset=utf-8"

// ErrUnknownLayout is returned for a layout with no template.
var ErrUnknownLayout = errors.New("unknown layout")

//go:embed layouts/*.html.tmpl
var layoutFS embed.FS

var layouts = mustParseLayouts("modern", "classic", "minimal")

type page struct {
	Theme  Theme
	Resume model.ResumeModel
}

// Style is the layout stylesheet. Theme values are package constants.
func (p page) Style() template.CSS {
	t := p.Theme
	return template.CSS(fmt.Sprintf(`body { font-family: %s; color: #%s; margin: 2.5rem auto; max-width: 52rem; line-height: 1.45; }
h1 { font-size: %dpx; color: #%s; margin: 0; }
h2 { font-size: %dpx; text-transform: uppercase; letter-spacing: .08em; color: #%s; border-bottom: 1px solid #%s; padding-bottom: .2rem; }
.meta { font-style: italic; color: #6B7280; }
.role { font-weight: 600; }
ul.links, ul.skills { list-style: none; padding: 0; display: flex; flex-wrap: wrap; gap: .75rem; }`,
		t.Font, t.HeadingColor, t.NameSize, t.NameColor, t.HeadingSize, t.Accent, t.Accent))
}

// RenderHTML renders a ResumeModel with the named layout.
func RenderHTML(resume model.ResumeModel, layout string) ([]byte, error) {
	if err := resume.Validate(); err != nil {
		return nil, err
	}
	tmpl, ok := layouts[layout]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayout, layout)
	}
	var out bytes.Buffer
	if err := tmpl.ExecuteTemplate(&out, "base", page{Theme: Themes[layout], Resume: resume}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Layouts lists the layouts the renderer knows.
func Layouts() []string {
	out := make([]string, 0, len(layouts))
	for name := range layouts {
		out = append(out, name)
	}
	return out
}

func mustParseLayouts(names ...string) map[string]*template.Template {
	funcs := template.FuncMap{
		"join":  strings.Join,
		"title": titleCase,
		"span":  dateSpan,
	}
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl := template.Must(template.New("resume").Funcs(funcs).ParseFS(layoutFS,
			"layouts/base.html.tmpl",
			"layouts/"+name+".html.tmpl",
		))
		out[name] = tmpl
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func dateSpan(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start + " – Present"
	case start == "":
		return end
	default:
		return start + " – " + end
	}
}
