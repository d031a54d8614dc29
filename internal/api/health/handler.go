package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"stockscore/pkg/logger"
)

// Check is one named dependency probe
type Check struct {
	Name string
	// Required checks gate readiness; optional ones only degrade /health
	Required bool
	Probe    func(ctx context.Context) error
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	checks      []Check
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a health handler over checks
func New(log *logger.Logger, serviceName, version string, checks ...Check) *Handler {
	return &Handler{
		log:         log,
		checks:      checks,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // healthy|degraded|unhealthy
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 while the process is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness returns 503 when any required check fails
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, _, requiredOK := h.run(ctx)
	status := h.status(checks)

	code := http.StatusOK
	if !requiredOK {
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", checks)
	}
	writeJSON(w, code, status)
}

// HandleHealth returns every check. Optional failures give "degraded" with 200.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks, healthy, requiredOK := h.run(ctx)
	status := h.status(checks)

	code := http.StatusOK
	switch {
	case !requiredOK:
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	case healthy < len(h.checks):
		status.Status = "degraded"
	}
	writeJSON(w, code, status)
}

func (h *Handler) run(ctx context.Context) (map[string]ComponentHealth, int, bool) {
	results := make(map[string]ComponentHealth, len(h.checks))
	healthy := 0
	requiredOK := true

	for _, c := range h.checks {
		start := time.Now()
		err := c.Probe(ctx)
		elapsed := time.Since(start)

		if err != nil {
			h.log.Warnw("Health check failed", "component", c.Name, "error", err, "elapsed", elapsed)
			results[c.Name] = ComponentHealth{
				Status:       "unhealthy",
				ResponseTime: elapsed.String(),
				Error:        err.Error(),
			}
			if c.Required {
				requiredOK = false
			}
			continue
		}

		healthy++
		results[c.Name] = ComponentHealth{
			Status:       "healthy",
			ResponseTime: elapsed.String(),
		}
	}
	return results, healthy, requiredOK
}

func (h *Handler) status(checks map[string]ComponentHealth) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
