package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection  = "users"
	resumeCollection = "resumeCollection"
)

// FirestoreStore implements Store on Cloud Firestore. Each resume is the document
// users/{ownerId}/resumeCollection/{resumeId}; every section is a top-level field.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreClient opens a client for projectID. FIRESTORE_EMULATOR_HOST is honored by the SDK.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project id is required")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

// NewFirestoreStore wraps an open client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client, now: func() time.Time { return time.Now().UTC() }}
}

func (s *FirestoreStore) ref(ownerID, resumeID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(ownerID).Collection(resumeCollection).Doc(resumeID)
}

// Get reads one resume document.
func (s *FirestoreStore) Get(ctx context.Context, ownerID, resumeID string) (Document, error) {
	if err := checkIdentity(ownerID, resumeID); err != nil {
		return Document{}, err
	}
	snap, err := s.ref(ownerID, resumeID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: get document: %w", ErrPersistence, err)
	}
	return decodeFields(ownerID, resumeID, snap.Data()), nil
}

// List reads the owner's resume collection, newest first. Ordering happens in
// memory so documents written without createdAt are still listed.
func (s *FirestoreStore) List(ctx context.Context, ownerID string) ([]Document, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	iter := s.client.Collection(usersCollection).Doc(ownerID).Collection(resumeCollection).Documents(ctx)
	defer iter.Stop()

	out := make([]Document, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list documents: %w", ErrPersistence, err)
		}
		out = append(out, decodeFields(ownerID, snap.Ref.ID, snap.Data()))
	}
	sortNewestFirst(out)
	return out, nil
}

// Create writes a new document; an existing document yields ErrAlreadyExists.
func (s *FirestoreStore) Create(ctx context.Context, doc Document) error {
	if err := checkIdentity(doc.OwnerID, doc.ResumeID); err != nil {
		return err
	}
	for key := range doc.Sections {
		if err := checkSectionKey(key); err != nil {
			return err
		}
	}
	now := s.now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	_, err := s.ref(doc.OwnerID, doc.ResumeID).Create(ctx, encodeFields(doc))
	if status.Code(err) == codes.AlreadyExists {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("%w: create document: %w", ErrPersistence, err)
	}
	return nil
}

// MergeSection updates only the section's field path inside a transaction,
// creating the document from seed when it does not exist yet.
func (s *FirestoreStore) MergeSection(ctx context.Context, ownerID, resumeID string, seed Seed, sectionKey string, data SectionData) error {
	if err := checkMerge(ownerID, resumeID, seed, sectionKey); err != nil {
		return err
	}
	if data == nil {
		data = SectionData{}
	}
	ref := s.ref(ownerID, resumeID)
	now := s.now()
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return tx.Create(ref, encodeFields(Document{
				TemplateID: seed.TemplateID,
				Name:       seed.Name,
				Sections:   map[string]SectionData{sectionKey: data},
				CreatedAt:  now,
				UpdatedAt:  now,
			}))
		}
		if err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{FieldPath: firestore.FieldPath{sectionKey}, Value: map[string]any(data)},
			{Path: "updatedAt", Value: now},
		})
	})
	if err != nil {
		return fmt.Errorf("%w: merge section %s: %w", ErrPersistence, sectionKey, err)
	}
	return nil
}

// encodeFields flattens a document into Firestore fields.
func encodeFields(doc Document) map[string]any {
	fields := map[string]any{
		"templateId": doc.TemplateID,
		"name":       doc.Name,
		"createdAt":  doc.CreatedAt,
		"updatedAt":  doc.UpdatedAt,
	}
	for key, data := range doc.Sections {
		if data == nil {
			data = SectionData{}
		}
		fields[key] = map[string]any(data)
	}
	return fields
}

// decodeFields is the inverse of encodeFields; unknown non-map fields are ignored.
func decodeFields(ownerID, resumeID string, fields map[string]any) Document {
	doc := Document{
		OwnerID:  ownerID,
		ResumeID: resumeID,
		Sections: map[string]SectionData{},
	}
	for key, value := range fields {
		switch key {
		case "templateId":
			doc.TemplateID, _ = value.(string)
		case "name":
			doc.Name, _ = value.(string)
		case "createdAt":
			doc.CreatedAt, _ = value.(time.Time)
		case "updatedAt":
			doc.UpdatedAt, _ = value.(time.Time)
		default:
			if m, ok := value.(map[string]any); ok {
				doc.Sections[key] = SectionData(m)
			}
		}
	}
	return doc
}

var _ Store = (*FirestoreStore)(nil)
