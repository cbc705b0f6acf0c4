package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sectionSubmits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_section_submits_total",
		Help: "Section submits by section key and outcome",
	}, []string{"section", "outcome"})

	guardTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_guard_transitions_total",
		Help: "Navigation guard state transitions",
	}, []string{"from", "to"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_cache_lookups_total",
		Help: "Query cache lookups by query and result",
	}, []string{"query", "result"})

	resumesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resume_created_total",
		Help: "Resume ids handed out by the template selector",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resume_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"method", "route", "status"})
)

// IncSectionSubmit counts a section submit; outcome is ok, invalid, persistence_error or busy.
func IncSectionSubmit(section, outcome string) {
	sectionSubmits.WithLabelValues(section, outcome).Inc()
}

// IncGuardTransition counts a navigation guard transition.
func IncGuardTransition(from, to string) {
	if from == to {
		return
	}
	guardTransitions.WithLabelValues(from, to).Inc()
}

// IncCacheLookup counts a query cache lookup; result is hit, miss or stale.
func IncCacheLookup(query, result string) {
	cacheLookups.WithLabelValues(query, result).Inc()
}

// IncResumeCreated counts a new resume id.
func IncResumeCreated() {
	resumesCreated.Inc()
}

// ObserveRequest records a finished request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	ms := float64(elapsed.Microseconds()) / 1000.0
	requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(ms)
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
