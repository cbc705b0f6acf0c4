package object

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"

	"resume-builder/internal/shared/util"
)

var (
	// ErrNotFound is returned by Open when no object exists under the key.
	ErrNotFound = errors.New("object not found")
	// ErrExists is returned by create-only backends when the key is taken.
	ErrExists = errors.New("object already exists")
)

const exportsRoot = "exports"

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// ExportKey builds the storage key of a rendered resume export.
// The owner id is hashed so raw provider ids never appear in object paths.
func ExportKey(ownerID, resumeID, exportID, fileName string) (string, error) {
	name, err := util.KeySegment(fileName)
	if err != nil {
		return "", err
	}
	rid, err := util.KeySegment(resumeID)
	if err != nil {
		return "", err
	}
	return path.Join(exportsRoot, util.OwnerSegment(ownerID), rid, exportID+"_"+name), nil
}

// IsExportKey reports whether key lives under the per-owner exports tree.
func IsExportKey(key string) bool {
	return strings.HasPrefix(strings.TrimLeft(key, "/"), exportsRoot+"/")
}

// CacheControlFor returns the caching policy stored with an object. Exports
// hold personal data; catalog assets are shared and rarely change.
func CacheControlFor(key string) string {
	if IsExportKey(key) {
		return "private, no-store"
	}
	return "public, max-age=3600"
}

// AssetKey joins an asset prefix and a catalog-relative asset path.
func AssetKey(prefix, asset string) string {
	cleanPrefix := strings.Trim(strings.TrimSpace(prefix), "/")
	cleanAsset := strings.TrimLeft(path.Clean("/"+asset), "/")
	if cleanPrefix == "" {
		return cleanAsset
	}
	return cleanPrefix + "/" + cleanAsset
}

// ContentTypeFor guesses a content type from the key extension.
func ContentTypeFor(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
