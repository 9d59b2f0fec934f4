package rest

import (
	"log/slog"
	"net/http"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/projection"
)

// OrderHandler serves the per-order read projections.
type OrderHandler struct {
	projector *projection.Projector
	logger    *slog.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(projector *projection.Projector, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{projector: projector, logger: logger}
}

// RegisterRoutes registers the order read routes on the given mux.
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/orders", h.list)
	mux.HandleFunc("GET /api/v1/orders/{order_id}", h.get)
	mux.HandleFunc("GET /api/v1/orders/{order_id}/payables", h.payables)
	mux.HandleFunc("GET /api/v1/orders/{order_id}/payables/timeline", h.payablesTimeline)
	mux.HandleFunc("GET /api/v1/orders/{order_id}/pricing/history", h.pricingHistory)
	mux.HandleFunc("GET /api/v1/orders/{order_id}/timeline/{family}", h.timeline)
	mux.HandleFunc("GET /api/v1/components/{semantic_id}/lineage", h.lineage)
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.projector.Orders(r.Context())
	if err != nil {
		writeFault(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("order_id")
	view, err := h.projector.Order(r.Context(), orderID)
	if err != nil {
		writeFault(w, h.logger, err)
		return
	}
	if len(view.PricingLatest) == 0 && view.PaymentLatest == nil &&
		len(view.SupplierLatest) == 0 && len(view.RefundLatest) == 0 {
		writeNotFound(w, h.logger, "order "+orderID+" has no facts")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *OrderHandler) payables(w http.ResponseWriter, r *http.Request) {
	view, err := h.projector.EffectivePayables(r.Context(), r.PathValue("order_id"))
	if err != nil {
		writeFault(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *OrderHandler) payablesTimeline(w http.ResponseWriter, r *http.Request) {
	view, err := h.projector.PayablesTimeline(r.Context(), r.PathValue("order_id"))
	if err != nil {
		writeFault(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *OrderHandler) pricingHistory(w http.ResponseWriter, r *http.Request) {
	view, err := h.projector.PricingHistory(r.Context(), r.PathValue("order_id"))
	if err != nil {
		writeFault(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *OrderHandler) timeline(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("order_id")
	ctx := r.Context()

	switch family := r.PathValue("family"); family {
	case "payment":
		rows, err := h.projector.PaymentTimeline(ctx, orderID)
		if err != nil {
			writeFault(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, map[string]any{"order_id": orderID, "family": family, "events": rows})
	case "supplier":
		rows, err := h.projector.SupplierTimeline(ctx, orderID)
		if err != nil {
			writeFault(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, map[string]any{"order_id": orderID, "family": family, "events": rows})
	case "refund":
		rows, err := h.projector.RefundTimeline(ctx, orderID)
		if err != nil {
			writeFault(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, map[string]any{"order_id": orderID, "family": family, "events": rows})
	default:
		writeJSON(w, h.logger, http.StatusBadRequest, errorBody{
			Error: "unknown timeline family " + family + "; expected payment, supplier, or refund",
		})
	}
}

func (h *OrderHandler) lineage(w http.ResponseWriter, r *http.Request) {
	semanticID := r.PathValue("semantic_id")
	view, err := h.projector.Lineage(r.Context(), semanticID)
	if err != nil {
		writeFault(w, h.logger, err)
		return
	}
	if len(view.Occurrences) == 0 && len(view.Refunds) == 0 {
		writeNotFound(w, h.logger, "component "+semanticID+" not found")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}
