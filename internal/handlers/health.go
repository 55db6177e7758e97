package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is anything whose connectivity the health check can verify.
type Pinger interface {
	Ping(ctx context.Context) error
}

// dbPinger adapts *database.DB's PingContext to the Pinger interface.
type dbPinger struct {
	ping func(ctx context.Context) error
}

func (p dbPinger) Ping(ctx context.Context) error { return p.ping(ctx) }

// NewDBPinger wraps a PingContext-style function as a Pinger.
func NewDBPinger(ping func(ctx context.Context) error) Pinger {
	return dbPinger{ping: ping}
}

// HealthChecker handles health check requests.
type HealthChecker struct {
	checks map[string]Pinger
}

// NewHealthChecker creates a health checker over named dependencies. A nil
// Pinger is skipped, so optional dependencies can be passed unconditionally.
func NewHealthChecker(checks map[string]Pinger) *HealthChecker {
	return &HealthChecker{checks: checks}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint. mode=extended pings each
// dependency; the basic mode only confirms the process is serving.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	statusCode := http.StatusOK
	if r.URL.Query().Get("mode") == "extended" {
		response.Checks = make(map[string]string)
		for name, pinger := range h.checks {
			if pinger == nil {
				continue
			}
			if err := h.check(r.Context(), pinger); err != nil {
				response.Status = "unhealthy"
				response.Checks[name] = "unhealthy: " + err.Error()
			} else {
				response.Checks[name] = "healthy"
			}
		}
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func (h *HealthChecker) check(ctx context.Context, pinger Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pinger.Ping(ctx)
}

// VersionHandler reports the build version.
type VersionHandler struct {
	Version string
	Commit  string
}

// Version handles the /version endpoint.
func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version": h.Version,
		"commit":  h.Commit,
	})
}
