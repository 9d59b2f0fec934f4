package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/replay"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
)

// DLQHandler serves the dead-letter queue: inspection and replay.
type DLQHandler struct {
	svc    *replay.Service
	logger *slog.Logger
}

// NewDLQHandler creates a DLQHandler.
func NewDLQHandler(svc *replay.Service, logger *slog.Logger) *DLQHandler {
	return &DLQHandler{svc: svc, logger: logger}
}

// RegisterRoutes registers DLQ routes on the given mux.
func (h *DLQHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/dlq", h.list)
	mux.HandleFunc("POST /api/v1/dlq/{dlq_id}/replay", h.replay)
}

func (h *DLQHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.DLQFilter{
		ErrorKind: fault.Kind(q.Get("error_kind")),
		OrderID:   q.Get("order_id"),
		EventType: q.Get("event_type"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, h.logger, http.StatusBadRequest, errorBody{Error: "limit must be a non-negative integer"})
			return
		}
		filter.Limit = limit
	}

	entries, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeFault(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

func (h *DLQHandler) replay(w http.ResponseWriter, r *http.Request) {
	dlqID := r.PathValue("dlq_id")
	entry, err := h.svc.Replay(r.Context(), dlqID)
	if err != nil {
		// A missing id is the only validation fault Replay produces.
		if fault.KindOf(err) == fault.KindValidation {
			writeNotFound(w, h.logger, err.Error())
			return
		}
		writeFault(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusAccepted, entry)
}
