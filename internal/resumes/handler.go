package resumes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/docstore"
	"resume-builder/internal/shared/querycache"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the repository.
type Handler struct {
	Repo *Repository
}

// NewHandler constructs a Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches resume read routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:resumeId", h.get)
	rg.POST("/resumes/revalidate", h.revalidate)
}

type resumeResponse struct {
	Resume
	Title string `json:"title"`
	Owner string `json:"owner"`
}

func toResponse(r Resume) resumeResponse {
	return resumeResponse{Resume: r, Title: r.Title(), Owner: r.Owner()}
}

func toResponses(list []Resume) []resumeResponse {
	out := make([]resumeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toResponse(r))
	}
	return out
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	ctx := c.Request.Context()

	if c.Query("view") == "1" {
		view, err := h.Repo.View(ctx, userID)
		if err != nil {
			fail(c, err)
			return
		}
		respond.OK(c, gin.H{"state": view.State, "resumes": toResponses(view.Resumes)})
		return
	}

	list, err := h.Repo.ListForUser(ctx, userID)
	if err != nil {
		fail(c, err)
		return
	}
	state := StateLoadedEmpty
	if len(list) > 0 {
		state = StateLoadedNonEmpty
	}
	respond.OK(c, gin.H{"state": state, "resumes": toResponses(list)})
}

func (h *Handler) get(c *gin.Context) {
	resumeID := c.Param("resumeId")
	c.Set(middleware.ResumeIDKey, resumeID)
	res, err := h.Repo.FindByID(c.Request.Context(), middleware.UserIDFromContext(c), resumeID)
	if err != nil {
		fail(c, err)
		return
	}
	respond.OK(c, toResponse(res))
}

func (h *Handler) revalidate(c *gin.Context) {
	trigger := querycache.ParseTrigger(c.Query("trigger"))
	query := c.DefaultQuery("query", ListQuery)
	started := time.Now()
	refetched, err := h.Repo.Revalidate(c.Request.Context(), middleware.UserIDFromContext(c), query, trigger)
	if err != nil {
		fail(c, err)
		return
	}
	respond.OK(c, gin.H{
		"query":     query,
		"trigger":   trigger,
		"refetched": refetched,
		"tookMs":    time.Since(started).Milliseconds(),
	})
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, docstore.ErrUnauthenticated):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "sign in required", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrUnknownQuery):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, docstore.ErrPersistence):
		respond.Error(c, http.StatusBadGateway, "persistence_error", "failed to load resumes", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load resumes", nil)
	}
}
