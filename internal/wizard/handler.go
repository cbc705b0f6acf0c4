package wizard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/sections"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

// Handler exposes wizard sessions.
type Handler struct {
	Sessions *Manager
}

// NewHandler constructs a Handler.
func NewHandler(m *Manager) *Handler {
	return &Handler{Sessions: m}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.open)

	s := rg.Group("/sessions/:sessionId", tagSession)
	s.GET("", h.get)
	s.PUT("/steps/:detail", h.edit)
	s.POST("/steps/:detail/submit", h.submit)
	s.POST("/navigate", h.navigate)
	s.POST("/confirm", h.confirm)
	s.DELETE("", h.close)
}

func tagSession(c *gin.Context) {
	c.Set(middleware.SessionIDKey, c.Param("sessionId"))
	c.Next()
}

type openRequest struct {
	TemplateID string `json:"templateId"`
	ResumeID   string `json:"resumeId"`
	Name       string `json:"name"`
	Detail     string `json:"detail"`
}

func (h *Handler) open(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TemplateID == "" || req.ResumeID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "templateId and resumeId are required", nil)
		return
	}
	c.Set(middleware.ResumeIDKey, req.ResumeID)
	view, err := h.Sessions.Open(c.Request.Context(), middleware.UserIDFromContext(c), req.TemplateID, req.ResumeID, req.Name, req.Detail)
	if err != nil {
		fail(c, err)
		return
	}
	respond.Created(c, view)
}

func (h *Handler) get(c *gin.Context) {
	view, err := h.Sessions.Get(middleware.UserIDFromContext(c), c.Param("sessionId"))
	if err != nil {
		fail(c, err)
		return
	}
	respond.OK(c, view)
}

func (h *Handler) edit(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	step, err := h.Sessions.Edit(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("sessionId"), c.Param("detail"), values)
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(middleware.GuardTransitionKey, string(step.State))
	respond.OK(c, step)
}

func (h *Handler) submit(c *gin.Context) {
	out, err := h.Sessions.Submit(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("sessionId"), c.Param("detail"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(middleware.GuardTransitionKey, string(out.State))
	respond.OK(c, out)
}

type navigateRequest struct {
	To string `json:"to"`
}

func (h *Handler) navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.To == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "to is required", nil)
		return
	}
	out, err := h.Sessions.Navigate(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("sessionId"), req.To)
	if errors.Is(err, ErrExitBlocked) {
		c.Set(middleware.GuardTransitionKey, string(out.Step.State))
		respond.Error(c, http.StatusConflict, "unsaved_changes", "You have unsaved changes", gin.H{
			"choices": out.Choices,
			"to":      out.To,
			"step":    out.Step,
		})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	respond.OK(c, out)
}

type confirmRequest struct {
	Choice string `json:"choice"`
}

func (h *Handler) confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	out, err := h.Sessions.Confirm(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("sessionId"), req.Choice)
	if err != nil {
		fail(c, err)
		return
	}
	c.Set(middleware.GuardTransitionKey, string(out.Step.State))
	respond.OK(c, out)
}

func (h *Handler) close(c *gin.Context) {
	if err := h.Sessions.Close(middleware.UserIDFromContext(c), c.Param("sessionId")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		respond.Error(c, http.StatusNotFound, "session_not_found", "wizard session not found or expired", nil)
	case errors.Is(err, ErrConfirmationPending):
		respond.Error(c, http.StatusConflict, "confirmation_pending", err.Error(), gin.H{
			"choices": []string{ChoiceSaveAndLeave, ChoiceStay},
		})
	case errors.Is(err, ErrNoPendingExit), errors.Is(err, ErrInvalidChoice):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		sections.WriteError(c, err)
	}
}
