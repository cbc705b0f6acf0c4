package exports

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"resume-builder/internal/docstore"
	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/storage/object/local"
	"resume-builder/internal/templates"
)

type fixture struct {
	store *docstore.MemoryStore
	svc   *Service
	repo  *MemoryRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	repo := NewMemoryRepo()
	reader := resumes.NewRepository(store, resumes.Options{ListStaleAfter: time.Minute, PreloadStaleAfter: time.Minute})
	svc := NewService(repo, reader, templates.Default(), local.New(t.TempDir()))
	return fixture{store: store, svc: svc, repo: repo}
}

func seedResume(t *testing.T, store *docstore.MemoryStore, ownerID, resumeID string) {
	t.Helper()
	err := store.MergeSection(context.Background(), ownerID, resumeID,
		docstore.Seed{TemplateID: "classic-1", Name: "My First Resume"},
		"basicDetails", docstore.SectionData{"firstName": "Ada", "lastName": "Lovelace", "email": "a@b.co"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestPreviewRendersStoredSections(t *testing.T) {
	f := newFixture(t)
	seedResume(t, f.store, "u1", "r1")

	body, err := f.svc.Preview(context.Background(), "u1", "r1")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(string(body), "Ada Lovelace") {
		t.Fatalf("preview missing name: %s", body)
	}
}

func TestPreviewErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.MergeSection(ctx, "u1", "r2", docstore.Seed{TemplateID: "modern-1", Name: "CV"}, "skills", docstore.SectionData{"items": []any{}})

	if _, err := f.svc.Preview(ctx, "", "r1"); !errors.Is(err, docstore.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := f.svc.Preview(ctx, "u1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.Preview(ctx, "u1", "r2"); !errors.Is(err, ErrNotRenderable) {
		t.Fatalf("expected ErrNotRenderable, got %v", err)
	}
}

func TestCreateStoresAndOpensExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedResume(t, f.store, "u1", "r1")

	export, err := f.svc.Create(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if export.TemplateID != "classic-1" || export.SizeBytes == 0 {
		t.Fatalf("unexpected export %+v", export)
	}
	if !strings.HasSuffix(export.StorageKey, export.ID+"_My_First_Resume.html") {
		t.Fatalf("unexpected storage key %q", export.StorageKey)
	}

	got, rc, err := f.svc.Open(ctx, "u1", export.ID)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	raw, _ := io.ReadAll(rc)
	if got.ID != export.ID || int64(len(raw)) != export.SizeBytes {
		t.Fatalf("stored body mismatch: %d vs %d", len(raw), export.SizeBytes)
	}

	if _, _, err := f.svc.Open(ctx, "u2", export.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another owner, got %v", err)
	}

	list, err := f.svc.List(ctx, "u1", "r1", 10, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one export, got %v %v", list, err)
	}
}

func TestMemoryRepoListOrdersNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)
	for i, id := range []string{"a", "b", "c"} {
		_ = repo.Create(ctx, Export{ID: id, OwnerID: "u1", ResumeID: "r1", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	_ = repo.Create(ctx, Export{ID: "other", OwnerID: "u1", ResumeID: "r2", CreatedAt: base})

	got, _ := repo.ListByResume(ctx, "u1", "r1", 2, 0)
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("unexpected page %+v", got)
	}
	got, _ = repo.ListByResume(ctx, "u1", "r1", 2, 5)
	if len(got) != 0 {
		t.Fatalf("expected empty page past the end, got %+v", got)
	}
}
