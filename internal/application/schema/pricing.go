package schema

import (
	"encoding/json"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
)

// PricingUpdated is the payload of pricing.commerce.v1 and
// refund.components.v1 events; the refund variant additionally carries
// refund_id and refund lineage on each component.
type PricingUpdated struct {
	RefundID   string             `json:"refund_id"`
	Vertical   string             `json:"vertical"`
	Components []PricingComponent `json:"components"`
	Totals     *Totals            `json:"totals"`
	// Version is honored verbatim when a producer (or a replay) carries
	// an explicit pricing version; otherwise the registry assigns one.
	Version *int `json:"version"`
	// Legacy events carried a single detail_context; current events
	// carry detail_contexts. Use Contexts() for the lifted form.
	DetailContext     *DetailContext  `json:"detail_context"`
	DetailContextList []DetailContext `json:"detail_contexts"`
}

// PricingComponent is one priced line of a snapshot.
type PricingComponent struct {
	ComponentType string          `json:"component_type"`
	Amount        Minor           `json:"amount"`
	Currency      string          `json:"currency"`
	Dimensions    map[string]any  `json:"dimensions"`
	Description   string          `json:"description"`
	IsRefund      bool            `json:"is_refund"`
	RefundOf      string          `json:"refund_of_component_semantic_id"`
	Metadata      json.RawMessage `json:"metadata"`
}

// Totals is the producer-declared order total used for the sum check.
type Totals struct {
	CustomerTotal Minor  `json:"customer_total"`
	Currency      string `json:"currency"`
}

// DetailContext attaches entity and FX context to an order detail.
type DetailContext struct {
	OrderDetailID string          `json:"order_detail_id"`
	EntityContext json.RawMessage `json:"entity_context"`
	FXContext     json.RawMessage `json:"fx_context"`
}

// DecodePricingUpdated parses and shape-validates a pricing payload.
// isRefundEvent switches on the refund.components.v1 rules: every
// component must carry lineage and a non-positive amount.
func DecodePricingUpdated(raw []byte, isRefundEvent bool) (PricingUpdated, error) {
	var p PricingUpdated
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fault.Wrap(fault.KindValidation, err, "malformed pricing payload")
	}

	if len(p.Components) == 0 {
		return p, fault.New(fault.KindValidation, "components must contain at least one entry")
	}
	for i, c := range p.Components {
		if c.ComponentType == "" {
			return p, fault.New(fault.KindValidation, "components[%d]: component_type is required", i)
		}
		if c.Currency == "" {
			return p, fault.New(fault.KindValidation, "components[%d]: currency is required", i)
		}
		if isRefundEvent {
			if c.RefundOf == "" {
				return p, fault.New(fault.KindValidation,
					"components[%d]: refund_of_component_semantic_id is required on refund.issued", i)
			}
			if c.Amount >= 0 {
				return p, fault.New(fault.KindValidation,
					"components[%d]: refund amount must be negative, got %d", i, c.Amount)
			}
		}
	}
	if isRefundEvent && p.RefundID == "" {
		return p, fault.New(fault.KindValidation, "refund_id is required on refund.issued")
	}
	return p, nil
}

// Contexts lifts the legacy single detail_context to the list form.
func (p PricingUpdated) Contexts() []DetailContext {
	if len(p.DetailContextList) > 0 {
		return p.DetailContextList
	}
	if p.DetailContext != nil {
		return []DetailContext{*p.DetailContext}
	}
	return nil
}

// ContextFor resolves the detail context of an order detail id, if any.
func (p PricingUpdated) ContextFor(orderDetailID string) *DetailContext {
	for _, dc := range p.Contexts() {
		if dc.OrderDetailID == orderDetailID {
			c := dc
			return &c
		}
	}
	return nil
}

// ComponentSum returns the sum of all component amounts.
func (p PricingUpdated) ComponentSum() int64 {
	var sum int64
	for _, c := range p.Components {
		sum += c.Amount.Int64()
	}
	return sum
}
