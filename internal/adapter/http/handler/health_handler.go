package handler

import (
	"context"
	"net/http"
	"time"
)

const readinessTimeout = 5 * time.Second

// Pinger is a dependency the service needs before it can take traffic.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a Pinger in the readiness report.
type Dependency struct {
	Name   string
	Pinger Pinger
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps []Dependency
}

// NewHealthHandler creates a new HealthHandler. Dependencies are checked in
// order; nil pingers are skipped.
func NewHealthHandler(deps ...Dependency) *HealthHandler {
	h := &HealthHandler{}
	for _, d := range deps {
		if d.Pinger != nil {
			h.deps = append(h.deps, d)
		}
	}
	return h
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	report := map[string]string{"status": "ready"}
	for _, d := range h.deps {
		if err := d.Pinger.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, d.Name+" unhealthy", err.Error())
			return
		}
		report[d.Name] = "ok"
	}

	writeJSON(w, http.StatusOK, report)
}
