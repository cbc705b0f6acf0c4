package docstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEncodeDecodeFieldsRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	doc := Document{
		TemplateID: "modern-1",
		Name:       "Ada",
		Sections: map[string]SectionData{
			"basicDetails": {"firstName": "Ada"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	fields := encodeFields(doc)
	if _, ok := fields["basicDetails"].(map[string]any); !ok {
		t.Fatalf("section should be a top-level map field, got %T", fields["basicDetails"])
	}

	got := decodeFields("u1", "r1", fields)
	if got.OwnerID != "u1" || got.ResumeID != "r1" || got.TemplateID != "modern-1" || got.Name != "Ada" {
		t.Fatalf("identity not decoded: %+v", got)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("createdAt not decoded: %v", got.CreatedAt)
	}
	if got.Section("basicDetails")["firstName"] != "Ada" {
		t.Fatalf("section not decoded: %v", got.Sections)
	}
}

func TestDecodeFieldsIgnoresScalars(t *testing.T) {
	got := decodeFields("u1", "r1", map[string]any{"stray": "value"})
	if len(got.Sections) != 0 {
		t.Fatalf("expected scalar field to be ignored, got %v", got.Sections)
	}
}

func TestFirestoreStoreAgainstEmulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := NewFirestoreClient(ctx, "resume-builder-test")
	if err != nil {
		t.Fatalf("NewFirestoreClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	store := NewFirestoreStore(client)

	owner := "u-" + uuid.NewString()
	resume := uuid.NewString()
	seed := Seed{TemplateID: "modern-1", Name: "Ada"}

	if _, err := store.Get(ctx, owner, resume); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first merge, got %v", err)
	}
	if err := store.MergeSection(ctx, owner, resume, seed, "basicDetails", SectionData{"firstName": "Ada"}); err != nil {
		t.Fatalf("MergeSection basicDetails: %v", err)
	}
	if err := store.MergeSection(ctx, owner, resume, Seed{TemplateID: "classic-1", Name: "X"}, "education", SectionData{"items": []any{}}); err != nil {
		t.Fatalf("MergeSection education: %v", err)
	}

	doc, err := store.Get(ctx, owner, resume)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.TemplateID != "modern-1" || doc.Name != "Ada" {
		t.Fatalf("identity overwritten: %+v", doc)
	}
	if doc.Section("basicDetails")["firstName"] != "Ada" {
		t.Fatalf("basicDetails lost: %v", doc.Sections)
	}

	docs, err := store.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	legacy := uuid.NewString()
	if _, err := store.ref(owner, legacy).Set(ctx, map[string]any{"templateId": "classic-1", "name": "Old"}); err != nil {
		t.Fatalf("Set legacy document: %v", err)
	}
	docs, err = store.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 || docs[0].ResumeID != resume || docs[1].ResumeID != legacy {
		t.Fatalf("expected the document without createdAt listed last, got %+v", docs)
	}
}

func TestSortNewestFirstKeepsUndatedDocuments(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)
	docs := []Document{
		{ResumeID: "undated"},
		{ResumeID: "b", CreatedAt: older},
		{ResumeID: "c", CreatedAt: newer},
		{ResumeID: "a", CreatedAt: older},
	}

	sortNewestFirst(docs)

	want := []string{"c", "a", "b", "undated"}
	for i, id := range want {
		if docs[i].ResumeID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, docs[i].ResumeID)
		}
	}
}
