package docstore

import "errors"

var (
	ErrNotFound        = errors.New("document not found")
	ErrAlreadyExists   = errors.New("document already exists")
	ErrInvalidInput    = errors.New("invalid document input")
	ErrUnauthenticated = errors.New("owner id is required")
	// ErrPersistence wraps any failure of the underlying database; callers may retry.
	ErrPersistence = errors.New("document store unavailable")
)
