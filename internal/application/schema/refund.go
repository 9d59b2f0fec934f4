package schema

import (
	"encoding/json"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
)

// RefundLifecycleEvent is a status-only refund event, versioned per
// (order_id, refund_id).
type RefundLifecycleEvent struct {
	RefundID     string `json:"refund_id" validate:"required"`
	Status       string `json:"status" validate:"required"`
	RefundAmount Minor  `json:"refund_amount"`
	Currency     string `json:"currency" validate:"required"`
	RefundReason string `json:"refund_reason"`
}

// DecodeRefundLifecycle parses and shape-validates a refund lifecycle
// payload.
func DecodeRefundLifecycle(raw []byte) (RefundLifecycleEvent, error) {
	var e RefundLifecycleEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fault.Wrap(fault.KindValidation, err, "malformed refund payload")
	}
	if err := validate.Struct(e); err != nil {
		return e, shapeErr(err)
	}
	if !model.RefundStatus(e.Status).Valid() {
		return e, fault.New(fault.KindValidation, "unknown refund status %q", e.Status)
	}
	return e, nil
}
