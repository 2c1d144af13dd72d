// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/agrocast/pkg/metrics"
)

// ReadinessProvider reports whether the service can serve predictions.
type ReadinessProvider interface {
	Ready() bool
}

// HealthHandler handles liveness, readiness and metrics requests.
type HealthHandler struct {
	readiness ReadinessProvider
	metrics   http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(readiness ReadinessProvider) *HealthHandler {
	return &HealthHandler{
		readiness: readiness,
		metrics:   promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

type statusResponse struct {
	Status string `json:"status"`
}

// HandleHealth handles GET /healthz requests. The process is alive whenever it
// can answer.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeMethodNotAllowed(w, r, "api.healthz", http.MethodGet, http.MethodHead)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// HandleReady handles GET /readyz requests: 200 once both models are loaded,
// 503 otherwise.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeMethodNotAllowed(w, r, "api.readyz", http.MethodGet, http.MethodHead)
		return
	}
	if h.readiness == nil || !h.readiness.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}

// HandleMetrics serves the Prometheus exposition from our custom registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
