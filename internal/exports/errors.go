package exports

import "errors"

var (
	// ErrNotFound indicates the export or its resume does not exist for the owner.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates the export belongs to another owner.
	ErrForbidden = errors.New("forbidden")

	// ErrNotRenderable means the resume lacks the fields a render needs.
	ErrNotRenderable = errors.New("resume is not ready to render")
)
