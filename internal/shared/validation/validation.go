// Package validation applies declarative per-field rule tables to form values.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// Rule describes the checks for one field. Rules run in order
// required, pattern, validate; the first failure is the field's error.
// Pattern and Validate are skipped for empty values.
type Rule struct {
	Required        bool
	RequiredMessage string

	Pattern        string
	PatternMessage string

	// Validate is an expr-lang boolean expression. `value` is the field's
	// string value and `values` holds every field of the form.
	Validate        string
	ValidateMessage string
}

// Field binds a rule to a form field.
type Field struct {
	Name  string
	Label string
	Rule
}

// Errors maps field names to the first failing rule's message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Merge copies other into e with every key prefixed.
func (e Errors) Merge(prefix string, other Errors) {
	for k, v := range other {
		e[prefix+k] = v
	}
}

type compiledField struct {
	Field
	pattern *regexp.Regexp
	program *exprvm.Program
}

// Schema is a compiled rule table.
type Schema struct {
	fields []compiledField
}

// Compile builds a Schema, rejecting bad patterns and expressions up front.
func Compile(fields ...Field) (*Schema, error) {
	s := &Schema{fields: make([]compiledField, 0, len(fields))}
	seen := map[string]bool{}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field name is required")
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		cf := compiledField{Field: f}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return nil, fmt.Errorf("field %s pattern: %w", f.Name, err)
			}
			cf.pattern = re
		}
		if f.Validate != "" {
			program, err := exprlang.Compile(f.Validate,
				exprlang.Env(map[string]any{"value": "", "values": map[string]any{}}),
				exprlang.AsBool(),
			)
			if err != nil {
				return nil, fmt.Errorf("field %s validate: %w", f.Name, err)
			}
			cf.program = program
		}
		s.fields = append(s.fields, cf)
	}
	return s, nil
}

// MustCompile is Compile for package-level rule tables.
func MustCompile(fields ...Field) *Schema {
	s, err := Compile(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Names lists the schema's fields in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Defaults returns an empty string for every field.
func (s *Schema) Defaults() map[string]any {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		out[f.Name] = ""
	}
	return out
}

// Validate checks values and returns nil when every field passes.
func (s *Schema) Validate(values map[string]any) Errors {
	errs := Errors{}
	for _, f := range s.fields {
		if msg, failed := f.check(values); failed {
			errs[f.Name] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f compiledField) check(values map[string]any) (string, bool) {
	value := StringValue(values[f.Name])
	if strings.TrimSpace(value) == "" {
		if f.Required {
			return f.requiredMessage(), true
		}
		return "", false
	}
	if f.pattern != nil && !f.pattern.MatchString(value) {
		return orDefault(f.PatternMessage, f.label()+" is invalid"), true
	}
	if f.program != nil {
		out, err := exprlang.Run(f.program, map[string]any{"value": value, "values": values})
		if ok, _ := out.(bool); err != nil || !ok {
			return orDefault(f.ValidateMessage, f.label()+" is invalid"), true
		}
	}
	return "", false
}

func (f compiledField) requiredMessage() string {
	return orDefault(f.RequiredMessage, f.label()+" is required")
}

func (f compiledField) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// StringValue renders a form value as the string the rules see.
func StringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
