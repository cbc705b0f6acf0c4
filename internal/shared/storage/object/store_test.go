package object

import (
	"strings"
	"testing"
)

func TestExportKeyHashesOwner(t *testing.T) {
	key, err := ExportKey("google:42", "r-1", "x-9", "resume.html")
	if err != nil {
		t.Fatalf("ExportKey: %v", err)
	}
	if strings.Contains(key, "google:42") {
		t.Fatalf("raw owner id leaked into key %q", key)
	}
	if !strings.HasPrefix(key, "exports/") || !strings.HasSuffix(key, "/r-1/x-9_resume.html") {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestExportKeyRejectsTraversal(t *testing.T) {
	if _, err := ExportKey("u", "../etc", "x", "resume.html"); err == nil {
		t.Fatalf("expected error for traversal resume id")
	}
}

func TestAssetKey(t *testing.T) {
	tests := []struct {
		prefix, asset, want string
	}{
		{"assets/", "templates/modern-1.png", "assets/templates/modern-1.png"},
		{"", "/templates/a.png", "templates/a.png"},
		{"assets", "../../secret", "assets/secret"},
	}
	for _, tt := range tests {
		if got := AssetKey(tt.prefix, tt.asset); got != tt.want {
			t.Fatalf("AssetKey(%q, %q) = %q, want %q", tt.prefix, tt.asset, got, tt.want)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := ContentTypeFor("a/b.png"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
	if got := ContentTypeFor("a/b"); got != "application/octet-stream" {
		t.Fatalf("expected octet-stream fallback, got %q", got)
	}
}

func TestCacheControlSeparatesExportsFromAssets(t *testing.T) {
	key, err := ExportKey("google:42", "r-1", "x-9", "resume.html")
	if err != nil {
		t.Fatalf("ExportKey: %v", err)
	}
	if !IsExportKey(key) || CacheControlFor(key) != "private, no-store" {
		t.Fatalf("export %q should be private", key)
	}
	asset := AssetKey("assets", "templates/modern-1.png")
	if IsExportKey(asset) || CacheControlFor(asset) != "public, max-age=3600" {
		t.Fatalf("asset %q should be publicly cacheable", asset)
	}
	if IsExportKey("exportsfoo/x") {
		t.Fatalf("prefix match must stop at the path separator")
	}
}
