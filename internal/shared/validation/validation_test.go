package validation

import (
	"errors"
	"strings"
	"testing"
)

var phoneSchema = MustCompile(
	Field{Name: "phone", Label: "Phone", Rule: Rule{
		Required:        true,
		RequiredMessage: "Phone number is required",
		Validate:        "len(value) == 10",
		ValidateMessage: "Enter a valid phone number",
	}},
	Field{Name: "email", Label: "Email", Rule: Rule{
		Required:       true,
		Pattern:        `^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`,
		PatternMessage: "Please enter a valid email",
	}},
	Field{Name: "website", Rule: Rule{
		Pattern:        `^https?://`,
		PatternMessage: "Please enter a valid URL",
	}},
)

func TestValidateFirstFailingRuleWins(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   map[string]string
	}{
		{
			name:   "all valid",
			values: map[string]any{"phone": "5551234567", "email": "ada@example.com"},
			want:   nil,
		},
		{
			name:   "phone too short",
			values: map[string]any{"phone": "12345", "email": "ada@example.com"},
			want:   map[string]string{"phone": "Enter a valid phone number"},
		},
		{
			name:   "missing required uses required message",
			values: map[string]any{"phone": "   ", "email": ""},
			want:   map[string]string{"phone": "Phone number is required", "email": "Email is required"},
		},
		{
			name:   "pattern mismatch",
			values: map[string]any{"phone": "5551234567", "email": "not-an-email"},
			want:   map[string]string{"email": "Please enter a valid email"},
		},
		{
			name:   "optional field checked only when present",
			values: map[string]any{"phone": "5551234567", "email": "ada@example.com", "website": "ftp://x"},
			want:   map[string]string{"website": "Please enter a valid URL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := phoneSchema.Validate(tt.values)
			if len(got) != len(tt.want) {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Fatalf("field %s: got %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestCompileRejectsBadRules(t *testing.T) {
	if _, err := Compile(Field{Name: "a", Rule: Rule{Pattern: "("}}); err == nil {
		t.Fatalf("expected bad pattern to fail")
	}
	if _, err := Compile(Field{Name: "a", Rule: Rule{Validate: "value +"}}); err == nil {
		t.Fatalf("expected bad expression to fail")
	}
	if _, err := Compile(Field{Name: "a", Rule: Rule{Validate: "len(value)"}}); err == nil {
		t.Fatalf("expected non-boolean expression to fail")
	}
	if _, err := Compile(Field{Name: "a"}, Field{Name: "a"}); err == nil {
		t.Fatalf("expected duplicate field to fail")
	}
}

func TestValidateExpressionSeesSiblingValues(t *testing.T) {
	s := MustCompile(
		Field{Name: "start"},
		Field{Name: "end", Rule: Rule{
			Validate:        `values.start == "" || value >= values.start`,
			ValidateMessage: "End must not precede start",
		}},
	)
	if errs := s.Validate(map[string]any{"start": "2020-01", "end": "2019-05"}); errs["end"] != "End must not precede start" {
		t.Fatalf("expected ordering error, got %v", errs)
	}
	if errs := s.Validate(map[string]any{"start": "2020-01", "end": "2021-05"}); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestErrorsImplementsError(t *testing.T) {
	var err error = Errors{"b": "second", "a": "first"}
	var verr Errors
	if !errors.As(err, &verr) {
		t.Fatalf("expected errors.As to find Errors")
	}
	if msg := err.Error(); !strings.Contains(msg, "a: first; b: second") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestDefaultsAndNames(t *testing.T) {
	if got := phoneSchema.Names(); len(got) != 3 || got[0] != "phone" {
		t.Fatalf("unexpected names %v", got)
	}
	if d := phoneSchema.Defaults(); d["email"] != "" || len(d) != 3 {
		t.Fatalf("unexpected defaults %v", d)
	}
}
