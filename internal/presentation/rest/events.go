package rest

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/ingest"
)

const maxEventBytes = 1 << 20 // 1 MB

// EventHandler accepts events over HTTP, bypassing the bus. Useful for
// local development and backfills; the pipeline semantics are identical.
type EventHandler struct {
	pipeline *ingest.Pipeline
	logger   *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(pipeline *ingest.Pipeline, logger *slog.Logger) *EventHandler {
	return &EventHandler{pipeline: pipeline, logger: logger}
}

// RegisterRoutes registers the direct-ingest route on the given mux.
func (h *EventHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/events", h.ingest)
}

func (h *EventHandler) ingest(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes+1))
	if err != nil {
		writeJSON(w, h.logger, http.StatusBadRequest, errorBody{Error: "reading request body: " + err.Error()})
		return
	}
	if len(raw) == 0 {
		writeJSON(w, h.logger, http.StatusBadRequest, errorBody{Error: "empty request body"})
		return
	}
	if len(raw) > maxEventBytes {
		writeJSON(w, h.logger, http.StatusRequestEntityTooLarge, errorBody{Error: "event exceeds 1 MB"})
		return
	}

	res, err := h.pipeline.Ingest(r.Context(), raw)
	if err != nil {
		// The event could not even be dead-lettered.
		writeFault(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if res.Disposition == ingest.DispositionDeadLettered {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, h.logger, status, res)
}
