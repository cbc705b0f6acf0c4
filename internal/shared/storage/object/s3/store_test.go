package s3

import (
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func TestApplyPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"", "assets/templates/modern-1.png", "assets/templates/modern-1.png"},
		{"builder", "exports/abc/r1/e1_cv.html", "builder/exports/abc/r1/e1_cv.html"},
		{"builder", "/exports/abc/r1/e1_cv.html", "builder/exports/abc/r1/e1_cv.html"},
		{"builder/prod", "", "builder/prod"},
	}
	for _, tt := range tests {
		if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
			t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}

func TestPutInputForExports(t *testing.T) {
	store := &Store{bucket: "b", prefix: "builder"}
	in := store.putInput("exports/abc/r1/e1_cv.html", "", nil)

	if aws.ToString(in.Key) != "builder/exports/abc/r1/e1_cv.html" {
		t.Fatalf("expected prefixed object key, got %q", aws.ToString(in.Key))
	}

	if aws.ToString(in.IfNoneMatch) != "*" {
		t.Fatalf("expected create-only export write")
	}
	if aws.ToString(in.CacheControl) != "private, no-store" {
		t.Fatalf("unexpected cache control %q", aws.ToString(in.CacheControl))
	}
	if got := aws.ToString(in.ContentType); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("expected content type from extension, got %q", got)
	}
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 default, got %q", in.ServerSideEncryption)
	}
}

func TestPutInputForAssets(t *testing.T) {
	store := &Store{bucket: "b", kmsKeyID: "key-1"}
	in := store.putInput("assets/templates/modern-1.png", "image/png", nil)

	if in.IfNoneMatch != nil {
		t.Fatalf("assets may be replaced")
	}
	if aws.ToString(in.Key) != "assets/templates/modern-1.png" {
		t.Fatalf("unexpected object key %q", aws.ToString(in.Key))
	}
	if aws.ToString(in.CacheControl) != "public, max-age=3600" {
		t.Fatalf("unexpected cache control %q", aws.ToString(in.CacheControl))
	}
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(in.SSEKMSKeyId) != "key-1" {
		t.Fatalf("expected kms encryption, got %q", in.ServerSideEncryption)
	}
}

func TestIsPreconditionFailed(t *testing.T) {
	if !isPreconditionFailed(&smithy.GenericAPIError{Code: "PreconditionFailed"}) {
		t.Fatalf("expected PreconditionFailed to be detected")
	}
	if isPreconditionFailed(errors.New("timeout")) || isPreconditionFailed(nil) {
		t.Fatalf("unexpected match")
	}
}
