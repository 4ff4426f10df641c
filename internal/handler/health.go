package handler

import (
	"context"
	"net/http"
	"time"
)

// readyTimeout bounds all dependency checks of one readiness probe.
const readyTimeout = 5 * time.Second

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type namedCheck struct {
	name     string
	checker  HealthChecker
	optional bool
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	checks []namedCheck
}

// NewHealthHandler creates a new HealthHandler.
// Postgres is required; pass nil for cache when Redis is not configured.
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{checks: []namedCheck{
		{name: "postgres", checker: db},
		{name: "redis", checker: cache, optional: true},
	}}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint. It never touches dependencies.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint. It returns 503 when a configured
// dependency fails its ping or a required one is missing.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.checks))
	healthy := true

	for _, c := range h.checks {
		switch {
		case c.checker == nil && c.optional:
			checks[c.name] = "not configured"
		case c.checker == nil:
			checks[c.name] = "not configured"
			healthy = false
		default:
			if err := c.checker.Ping(ctx); err != nil {
				checks[c.name] = "error: " + err.Error()
				healthy = false
			} else {
				checks[c.name] = "ok"
			}
		}
	}

	response := HealthResponse{Status: "ok", Checks: checks}
	statusCode := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, response)
}
