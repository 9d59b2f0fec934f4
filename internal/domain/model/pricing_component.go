// Package model defines the append-only fact rows of the read layer.
// A fact row is written exactly once and never mutated; all "current
// state" is derived by projection over versions.
package model

import (
	"encoding/json"
	"time"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
)

// PricingComponentFact is one pricing component's appearance in one
// pricing snapshot. The semantic id is stable across repricings; the
// instance id is unique per snapshot occurrence.
type PricingComponentFact struct {
	ComponentSemanticID string
	ComponentInstanceID string
	OrderID             string
	PricingSnapshotID   string
	Version             int
	ComponentType       string
	// CanonicalComponentType is the known enum value when ComponentType
	// matches one, otherwise "OTHER". Reads filter on this column so the
	// free-string component_type never leaks into queries.
	CanonicalComponentType string
	Amount                 int64 // minor units, signed
	Currency               string
	Dimensions             json.RawMessage // canonicalized
	Description            string
	IsRefund               bool
	RefundOfSemanticID     string
	EventID                string // envelope event_id, used for idempotent skip
	EmitterService         string
	EmittedAt              time.Time
	IngestedAt             time.Time
	Metadata               json.RawMessage
}

// Validate enforces the refund lineage invariant: refund rows carry a
// strictly negative amount and a reference to the refunded component.
func (f PricingComponentFact) Validate() error {
	if f.ComponentSemanticID == "" || f.ComponentInstanceID == "" {
		return fault.New(fault.KindValidation, "pricing component missing identity")
	}
	if f.IsRefund {
		if f.Amount >= 0 {
			return fault.New(fault.KindValidation,
				"refund component %s has non-negative amount %d", f.ComponentSemanticID, f.Amount)
		}
		if f.RefundOfSemanticID == "" {
			return fault.New(fault.KindValidation,
				"refund component %s missing refund_of_component_semantic_id", f.ComponentSemanticID)
		}
	}
	return nil
}

// Known component types. ComponentType itself accepts arbitrary strings;
// this set only feeds CanonicalComponentType.
const (
	ComponentTypeOther = "OTHER"
)

var knownComponentTypes = map[string]struct{}{
	"BaseFare": {}, "RoomRate": {}, "Tax": {}, "Markup": {}, "Discount": {},
	"ServiceFee": {}, "Insurance": {}, "AddOn": {},
}

// CanonicalizeComponentType maps a free-form component type onto the
// known enum, or OTHER.
func CanonicalizeComponentType(componentType string) string {
	if _, ok := knownComponentTypes[componentType]; ok {
		return componentType
	}
	return ComponentTypeOther
}
