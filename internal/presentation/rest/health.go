package rest

import (
	"context"
	"log/slog"
	"net/http"
)

// HealthHandler handles HTTP health check endpoints.
type HealthHandler struct {
	service string
	ready   func(ctx context.Context) error
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler. ready is the dependency
// probe backing /readyz; nil means always ready.
func NewHealthHandler(service string, ready func(ctx context.Context) error, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{service: service, ready: ready, logger: logger}
}

// RegisterRoutes registers health check routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("GET /readyz", h.readyz)
}

func (h *HealthHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": h.service,
	})
}

func (h *HealthHandler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			h.logger.Warn("readiness probe failed", "error", err)
			writeJSON(w, h.logger, http.StatusServiceUnavailable, map[string]string{
				"status":  "not ready",
				"service": h.service,
				"error":   err.Error(),
			})
			return
		}
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"status":  "ready",
		"service": h.service,
	})
}
