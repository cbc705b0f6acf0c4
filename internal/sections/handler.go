package sections

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/docstore"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/validation"
)

// Handler exposes one wizard step per route.
type Handler struct {
	Ctrl *Controller
}

// NewHandler constructs a Handler.
func NewHandler(ctrl *Controller) *Handler {
	return &Handler{Ctrl: ctrl}
}

// RegisterRoutes attaches the step routes. The path mirrors the client build route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/wizard/:templateId/:resumeId/:name/build/:detail", h.preload)
	rg.POST("/wizard/:templateId/:resumeId/:name/build/:detail", h.submit)
}

type formResponse struct {
	Form
	Path     string `json:"path"`
	NextPath string `json:"nextPath"`
}

func (h *Handler) target(c *gin.Context) (Target, bool) {
	c.Set(middleware.ResumeIDKey, c.Param("resumeId"))
	t, err := NewTarget(
		middleware.UserIDFromContext(c),
		c.Param("templateId"),
		c.Param("resumeId"),
		c.Param("name"),
		c.Param("detail"),
	)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "unknown_step", err.Error(), nil)
		return Target{}, false
	}
	c.Set(middleware.SectionKey, t.Step.Key)
	return t, true
}

func (h *Handler) preload(c *gin.Context) {
	t, ok := h.target(c)
	if !ok {
		return
	}
	form, err := h.Ctrl.Preload(c.Request.Context(), t)
	if err != nil {
		fail(c, err)
		return
	}
	respond.OK(c, formResponse{
		Form:     form,
		Path:     BuildPath(t.TemplateID, t.ResumeID, t.Name, t.Step.Slug),
		NextPath: NextStepPath(t),
	})
}

func (h *Handler) submit(c *gin.Context) {
	t, ok := h.target(c)
	if !ok {
		return
	}
	var input map[string]any
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	res, err := h.Ctrl.Submit(c.Request.Context(), t, input)
	if err != nil {
		fail(c, err)
		return
	}
	respond.OK(c, res)
}

// fail maps controller errors onto the error envelope. Validation failures
// carry the field map as details.
func fail(c *gin.Context, err error) {
	var verr validation.Errors
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusUnprocessableEntity, "validation_error", "please fix the highlighted fields", verr)
	case errors.Is(err, docstore.ErrUnauthenticated):
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "sign in required", nil)
	case errors.Is(err, ErrSubmitInProgress):
		respond.Error(c, http.StatusConflict, "submit_in_progress", err.Error(), nil)
	case errors.Is(err, ErrUnknownTemplate):
		respond.Error(c, http.StatusBadRequest, "unknown_template", err.Error(), nil)
	case errors.Is(err, ErrUnknownStep):
		respond.Error(c, http.StatusNotFound, "unknown_step", err.Error(), nil)
	case errors.Is(err, docstore.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, docstore.ErrPersistence):
		respond.Error(c, http.StatusBadGateway, "persistence_error", "failed to save, please try again", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process step", nil)
	}
}

// WriteError exposes the step error mapping to the session routes.
func WriteError(c *gin.Context, err error) {
	fail(c, err)
}
