package wizard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newSessionRouter(f *fixture, ownerID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		if ownerID != "" {
			c.Set("userId", ownerID)
		}
		c.Next()
	})
	NewHandler(f.manager).RegisterRoutes(api)
	return r
}

func call(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
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

func TestSessionRoutesGuardFlow(t *testing.T) {
	f := newFixture(t)
	r := newSessionRouter(f, "u1")

	resp := call(r, http.MethodPost, "/api/v1/sessions", map[string]string{
		"templateId": "modern-1", "resumeId": "r1", "name": "CV",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var view View
	_ = json.NewDecoder(resp.Body).Decode(&view)
	base := "/api/v1/sessions/" + view.ID

	resp = call(r, http.MethodPut, base+"/steps/basicdetails", map[string]any{"firstName": "Ada"})
	if resp.Code != http.StatusOK {
		t.Fatalf("edit: expected 200, got %d", resp.Code)
	}

	resp = call(r, http.MethodPost, base+"/navigate", map[string]string{"to": "/resumes"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("navigate: expected 409, got %d", resp.Code)
	}
	var blocked struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Choices []string `json:"choices"`
			} `json:"details"`
		} `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&blocked)
	if blocked.Error.Code != "unsaved_changes" || len(blocked.Error.Details.Choices) != 2 {
		t.Fatalf("unexpected blocked payload %+v", blocked)
	}

	resp = call(r, http.MethodPut, base+"/steps/basicdetails", map[string]any{"firstName": "Grace"})
	if resp.Code != http.StatusConflict {
		t.Fatalf("edit while confirming: expected 409, got %d", resp.Code)
	}

	resp = call(r, http.MethodPost, base+"/confirm", map[string]string{"choice": ChoiceSaveAndLeave})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("save_and_leave with invalid data: expected 422, got %d", resp.Code)
	}

	resp = call(r, http.MethodGet, base, nil)
	var after View
	_ = json.NewDecoder(resp.Body).Decode(&after)
	if after.Step.State != StateDirty || after.Step.Data["firstName"] != "Ada" {
		t.Fatalf("expected dirty draft to survive, got %+v", after.Step)
	}

	if resp := call(r, http.MethodDelete, base, nil); resp.Code != http.StatusNoContent {
		t.Fatalf("close: expected 204, got %d", resp.Code)
	}
	if resp := call(r, http.MethodGet, base, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", resp.Code)
	}
}

func TestSessionRoutesRejectOtherOwners(t *testing.T) {
	f := newFixture(t)
	view := open(t, f)

	r := newSessionRouter(f, "u2")
	if resp := call(r, http.MethodGet, "/api/v1/sessions/"+view.ID, nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another owner, got %d", resp.Code)
	}
	if resp := call(r, http.MethodPost, "/api/v1/sessions", map[string]string{"resumeId": "r1"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without templateId, got %d", resp.Code)
	}
}
