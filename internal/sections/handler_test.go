package sections

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/docstore"
)

func newStepRouter(store docstore.Store, ownerID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewController(store, &storeResumes{store: store}))
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if ownerID != "" {
			c.Set("userId", ownerID)
		}
		c.Next()
	})
	h.RegisterRoutes(api)
	return r
}

func stepURL(detail string) string {
	return "/api/v1/wizard/modern-1/r1/" + url.PathEscape("My First Resume") + "/build/" + detail
}

func serve(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func TestHandlerPreloadNewResume(t *testing.T) {
	r := newStepRouter(docstore.NewMemoryStore(), "u1")

	resp := serve(r, http.MethodGet, stepURL("basicdetails"), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got formResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Stored || got.Data["firstName"] != "" {
		t.Fatalf("expected empty defaults, got %+v", got)
	}
	if got.Path != "/templates/modern-1/r1/My First Resume/build/basicdetails" {
		t.Fatalf("unexpected path %q", got.Path)
	}
}

func TestHandlerSubmitValidationAndSuccess(t *testing.T) {
	store := docstore.NewMemoryStore()
	r := newStepRouter(store, "u1")

	bad := validBasicDetails()
	bad["phone"] = "12345"
	resp := serve(r, http.MethodPost, stepURL("basicdetails"), bad)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	var env errorEnvelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	if env.Error.Details["phone"] != "Enter a valid phone number" {
		t.Fatalf("unexpected details %v", env.Error.Details)
	}

	resp = serve(r, http.MethodPost, stepURL("basicdetails"), validBasicDetails())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var res Result
	_ = json.NewDecoder(resp.Body).Decode(&res)
	if res.Notice != SavedNotice || res.NextPath != "/templates/modern-1/r1/My First Resume/build/education" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		store  docstore.Store
		owner  string
		detail string
		status int
		code   string
	}{
		{"unknown step", docstore.NewMemoryStore(), "u1", "hobbies", http.StatusNotFound, "unknown_step"},
		{"signed out", docstore.NewMemoryStore(), "", "basicdetails", http.StatusUnauthorized, "unauthorized"},
		{"store down", failingStore{Store: docstore.NewMemoryStore(), err: fmt.Errorf("%w: timeout", docstore.ErrPersistence)}, "u1", "basicdetails", http.StatusBadGateway, "persistence_error"},
		{"unexpected", failingStore{Store: docstore.NewMemoryStore(), err: errors.New("boom")}, "u1", "basicdetails", http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newStepRouter(tc.store, tc.owner)
			resp := serve(r, http.MethodPost, stepURL(tc.detail), validBasicDetails())
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
			var env errorEnvelope
			_ = json.NewDecoder(resp.Body).Decode(&env)
			if env.Error.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, env.Error.Code)
			}
		})
	}
}

func TestHandlerRejectsUnknownTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := docstore.NewMemoryStore()
	h := NewHandler(NewController(store, &storeResumes{store: store}, WithTemplates(catalog{"modern-1": true})))
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set("userId", "u1")
		c.Next()
	})
	h.RegisterRoutes(api)

	path := "/api/v1/wizard/no-such-template/r1/CV/build/basicdetails"
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		resp := serve(r, method, path, validBasicDetails())
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", method, resp.Code)
		}
		var env errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		if env.Error.Code != "unknown_template" {
			t.Fatalf("%s: expected unknown_template, got %q", method, env.Error.Code)
		}
	}
}
