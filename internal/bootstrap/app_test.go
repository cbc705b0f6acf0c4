package bootstrap

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	sharedauth "resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")

	app, err := Build(config.Config{
		Env:                  "dev",
		DocStoreType:         "memory",
		ObjectStoreType:      "local",
		LocalStoreDir:        t.TempDir(),
		AssetPrefix:          "assets",
		ResumeListStaleAfter: time.Minute,
		PreloadStaleAfter:    time.Minute,
		SessionIdleTTL:       time.Hour,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token, err := sharedauth.SignJWT(sharedauth.Claims{
		Email:            "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	return "Bearer " + token
}

func call(app *App, token, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func TestBuildDefaultsToInMemoryStack(t *testing.T) {
	app := newTestApp(t)
	if app.DB != nil {
		t.Fatalf("expected no database without DATABASE_URL")
	}
	if app.CacheBackend != nil {
		t.Fatalf("expected no shared cache without REDIS_URL")
	}

	resp := call(app, "", http.MethodGet, "/api/v1/health", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	resp = call(app, "", http.MethodGet, "/api/v1/resumes", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}
}

func TestBuildRejectsPostgresWithoutURL(t *testing.T) {
	if _, err := Build(config.Config{DocStoreType: "postgres"}); err == nil {
		t.Fatalf("expected error for postgres without DATABASE_URL")
	}
}

func TestResumeLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	token := bearer(t, "google:42")

	resp := call(app, token, http.MethodPost, "/api/v1/resumes", map[string]string{
		"templateId": "modern-1",
		"name":       "My First Resume",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ResumeID string `json:"resumeId"`
		Route    string `json:"route"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if created.ResumeID == "" || !strings.HasSuffix(created.Route, "/build/basicdetails") {
		t.Fatalf("unexpected create response %+v", created)
	}

	step := "/api/v1/wizard/modern-1/" + created.ResumeID + "/" + url.PathEscape("My First Resume") + "/build/basicdetails"
	resp = call(app, token, http.MethodPost, step, map[string]any{
		"firstName": "Ada",
		"lastName":  "Lovelace",
		"course":    "BSc",
		"branch":    "Mathematics",
		"email":     "ada@example.com",
		"linkedin":  "linkedin.com/in/ada",
		"phone":     "5551234567",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = call(app, token, http.MethodGet, "/api/v1/resumes", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.Code)
	}
	var list struct {
		State   string `json:"state"`
		Resumes []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"resumes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Resumes) != 1 || list.Resumes[0].ID != created.ResumeID || list.Resumes[0].Title != "My First Resume" {
		t.Fatalf("unexpected list %+v", list)
	}

	resp = call(app, bearer(t, "google:99"), http.MethodGet, "/api/v1/resumes/"+created.ResumeID, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected other owners to get 404, got %d", resp.Code)
	}

	resp = call(app, token, http.MethodGet, "/api/v1/resumes/"+created.ResumeID+"/preview", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Ada Lovelace") {
		t.Fatalf("preview: got %d: %s", resp.Code, resp.Body.String())
	}

	resp = call(app, token, http.MethodPost, "/api/v1/resumes/"+created.ResumeID+"/exports", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("export: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var export struct {
		ID string `json:"exportId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&export); err != nil || export.ID == "" {
		t.Fatalf("decode export: %v %+v", err, export)
	}

	resp = call(app, token, http.MethodGet, "/api/v1/exports/"+export.ID, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("expected attachment disposition, got %q", resp.Header().Get("Content-Disposition"))
	}
	if !strings.Contains(resp.Body.String(), "ada@example.com") {
		t.Fatalf("download body missing email")
	}
}
