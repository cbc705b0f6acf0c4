package gcs

import (
	"errors"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"

	"resume-builder/internal/shared/storage/object"
)

func TestObjectName(t *testing.T) {
	if got := objectName("", "/exports/a.html"); got != "exports/a.html" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := objectName("builder", "exports/a.html"); got != "builder/exports/a.html" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestMapWriteErrPreconditionIsExists(t *testing.T) {
	err := mapWriteErr("exports/a.html", &googleapi.Error{Code: http.StatusPreconditionFailed})
	if !errors.Is(err, object.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	err = mapWriteErr("exports/a.html", &googleapi.Error{Code: http.StatusForbidden})
	if errors.Is(err, object.ErrExists) {
		t.Fatalf("403 must not map to ErrExists")
	}
}
