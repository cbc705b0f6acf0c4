package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/exports"
	"resume-builder/internal/resumes"
	"resume-builder/internal/sections"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/templates"
	"resume-builder/internal/users"
	"resume-builder/internal/wizard"
)

// RouterDeps holds the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	GoogleAuth      *googleauth.GoogleService
	UserHandler     *users.Handler
	TemplateHandler *templates.Handler
	ResumeHandler   *resumes.Handler
	SectionHandler  *sections.Handler
	SessionHandler  *wizard.Handler
	ExportHandler   *exports.Handler
	RateLimiter     *middleware.RateLimiter
}

var defaultRateLimits = map[string]middleware.RateLimitRule{
	"DEFAULT":                       {Rate: 20, Burst: 40},
	middleware.SubmitRateLimitGroup: {Rate: 2, Burst: 5},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.TemplateHandler != nil {
		deps.TemplateHandler.RegisterPublicRoutes(api)
	}

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	protected := api.Group("")
	protected.Use(
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    defaultRateLimits,
			GroupFor: middleware.SubmitGroup,
			Limiter:  limiter,
		}),
	)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(protected)
	}
	if deps.TemplateHandler != nil {
		deps.TemplateHandler.RegisterRoutes(protected)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(protected)
	}
	if deps.SectionHandler != nil {
		deps.SectionHandler.RegisterRoutes(protected)
	}
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(protected)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(protected)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
