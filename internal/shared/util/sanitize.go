package util

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidSegment is returned for names that cannot be a single key segment.
var ErrInvalidSegment = errors.New("invalid key segment")

// KeySegment turns a resume id or export file name into one object key
// segment. Separators, whitespace and control characters become '_';
// empty names and traversal patterns are refused.
func KeySegment(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", ErrInvalidSegment
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', unicode.IsSpace(r), unicode.IsControl(r):
			return '_'
		}
		return r
	}, s)
	if s == "." {
		return "", ErrInvalidSegment
	}
	return s, nil
}
