package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// Context keys handlers set so the request log can name what was touched.
const (
	ResumeIDKey        = "resumeId"
	SectionKey         = "section"
	SessionIDKey       = "sessionId"
	GuardTransitionKey = "guardTransition"
)

// Logging emits a structured log line and a latency observation per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		metrics.ObserveRequest(c.Request.Method, c.FullPath(), status, latency)

		telemetry.Info("request.complete", map[string]any{
			"request_id":       RequestIDFromContext(c),
			"method":           c.Request.Method,
			"path":             c.Request.URL.Path,
			"route":            c.FullPath(),
			"status":           status,
			"duration_ms":      float64(latency.Microseconds()) / 1000.0,
			"user_id":          UserIDFromContext(c),
			"resume_id":        c.GetString(ResumeIDKey),
			"section":          c.GetString(SectionKey),
			"session_id":       c.GetString(SessionIDKey),
			"guard_transition": c.GetString(GuardTransitionKey),
			"client_ip":        c.ClientIP(),
			"user_agent":       c.Request.UserAgent(),
		})
	}
}
