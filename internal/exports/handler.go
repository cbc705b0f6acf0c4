package exports

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/docstore"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/render"
)

// Handler wires preview and export routes to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches preview and export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes/:resumeId/preview", h.preview)
	rg.POST("/resumes/:resumeId/exports", h.create)
	rg.GET("/resumes/:resumeId/exports", h.list)
	rg.GET("/exports/:exportId", h.download)
}

func (h *Handler) preview(c *gin.Context) {
	resumeID := c.Param("resumeId")
	c.Set(middleware.ResumeIDKey, resumeID)
	body, err := h.Svc.Preview(c.Request.Context(), middleware.UserIDFromContext(c), resumeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.HTML(c, http.StatusOK, body)
}

func (h *Handler) create(c *gin.Context) {
	resumeID := c.Param("resumeId")
	c.Set(middleware.ResumeIDKey, resumeID)
	export, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), resumeID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.Created(c, export)
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := 20, 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	resumeID := c.Param("resumeId")
	c.Set(middleware.ResumeIDKey, resumeID)
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), resumeID, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"exports": items})
}

func (h *Handler) download(c *gin.Context) {
	export, rc, err := h.Svc.Open(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("exportId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	defer rc.Close()

	c.Set(middleware.ResumeIDKey, export.ResumeID)
	c.DataFromReader(http.StatusOK, export.SizeBytes, export.MimeType, rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + export.ID + `.html"`,
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, docstore.ErrUnauthenticated):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "sign in required", nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusNotFound, "not_found", "resume or export not found", nil)
	case errors.Is(err, ErrNotRenderable):
		respond.Error(c, http.StatusUnprocessableEntity, "not_renderable", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, render.ErrUnknownLayout):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, docstore.ErrPersistence):
		respond.Error(c, http.StatusBadGateway, "persistence_error", "failed to load resume", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render resume", nil)
	}
}
