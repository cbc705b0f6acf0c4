package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"resume-builder/internal/shared/storage/object"
)

// Store implements ObjectStore on a Google Cloud Storage bucket.
// Writes are create-only: an existing key is never overwritten.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// New creates a GCS-backed object store using application default credentials.
func New(ctx context.Context, bucket, prefix string) (*Store, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &Store{
		client: client,
		bucket: client.Bucket(bucket),
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
	}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Open streams an object from the bucket.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	name := objectName(s.prefix, storageKey)
	rc, err := s.bucket.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", object.ErrNotFound, storageKey)
	}
	if err != nil {
		return nil, fmt.Errorf("gcs read object=%s: %w", name, err)
	}
	return rc, nil
}

// SaveWithKey uploads r under storageKey. Exports are create-only.
func (s *Store) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	name := objectName(s.prefix, storageKey)
	handle := s.bucket.Object(name)
	if object.IsExportKey(storageKey) {
		handle = handle.If(storage.Conditions{DoesNotExist: true})
	}
	writer := handle.NewWriter(ctx)
	writer.CacheControl = object.CacheControlFor(storageKey)
	if contentType == "" {
		contentType = object.ContentTypeFor(name)
	}
	writer.ContentType = contentType

	written, err := io.Copy(writer, r)
	if err != nil {
		_ = writer.Close()
		return 0, mapWriteErr(name, err)
	}
	if err := writer.Close(); err != nil {
		return 0, mapWriteErr(name, err)
	}
	return written, nil
}

func mapWriteErr(name string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
		return fmt.Errorf("%w: %s", object.ErrExists, name)
	}
	return fmt.Errorf("gcs write object=%s: %w", name, err)
}

func objectName(prefix, key string) string {
	cleanKey := strings.TrimLeft(key, "/")
	if prefix == "" {
		return cleanKey
	}
	return prefix + "/" + cleanKey
}

var _ object.ObjectStore = (*Store)(nil)
