package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func TestMemoryUpsertKeepsCreatedAt(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Unix(1_700_000_000, 0)
	repo.now = func() time.Time { return now }
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.UpsertFromAuth(ctx, User{ID: "google:1", Email: "a@b.co"}); err != nil {
		t.Fatalf("UpsertFromAuth: %v", err)
	}
	now = now.Add(time.Hour)
	if err := svc.UpsertFromAuth(ctx, User{ID: "google:1", Email: "a@b.co", FullName: "Ada"}); err != nil {
		t.Fatalf("UpsertFromAuth: %v", err)
	}
	got, err := svc.GetByID(ctx, "google:1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.UpdatedAt.After(got.CreatedAt) || got.FullName != "Ada" {
		t.Fatalf("unexpected user %+v", got)
	}
	if err := svc.UpsertFromAuth(ctx, User{ID: "google:2"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("google:404").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "given_name", "family_name", "picture_url", "created_at", "updated_at"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "google:404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoUpsertSendsNulls(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("google:1", "a@b.co", "Ada", nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Upsert(context.Background(), User{ID: "google:1", Email: "a@b.co", FullName: "Ada"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMeFallsBackToClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "google:9")
		c.Set("userEmail", "g@h.io")
		c.Next()
	})
	NewHandler(NewService(NewMemoryRepo())).RegisterRoutes(r.Group(""))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/me", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["id"] != "google:9" || body["displayName"] != "g@h.io" {
		t.Fatalf("unexpected body %v", body)
	}
}
