package templates

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/docstore"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/validation"
)

// Handler wires HTTP handlers to the template selector.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes attaches the catalog routes, which need no sign-in.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/templates", h.list)
	rg.GET("/templates/:templateId/image", h.image)
}

// RegisterRoutes attaches the resume creation route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.create)
}

func (h *Handler) list(c *gin.Context) {
	respond.OK(c, gin.H{"templates": h.Svc.ListTemplates()})
}

func (h *Handler) image(c *gin.Context) {
	rc, contentType, err := h.Svc.OpenPreview(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownTemplate), errors.Is(err, object.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "template image not found", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "asset_error", "failed to load template image", nil)
		}
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Cache-Control": "public, max-age=3600",
	})
}

type createRequest struct {
	TemplateID string `json:"templateId"`
	Name       string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	created, err := h.Svc.CreateResume(c.Request.Context(), middleware.UserIDFromContext(c), req.TemplateID, req.Name)
	if err != nil {
		var verr validation.Errors
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "Resume title is invalid", verr)
		case errors.Is(err, ErrUnknownTemplate):
			respond.Error(c, http.StatusBadRequest, "unknown_template", "template not found", nil)
		case errors.Is(err, docstore.ErrUnauthenticated):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "sign in required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create resume", nil)
		}
		return
	}
	c.Set(middleware.ResumeIDKey, created.ResumeID)
	respond.Created(c, created)
}
