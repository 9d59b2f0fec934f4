package schema

import (
	"encoding/json"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
)

// PartnerAdjustmentEvent writes one standalone obligation line with
// supplier_timeline_version -1. It has no timeline parent and persists
// across supplier status changes.
type PartnerAdjustmentEvent struct {
	OrderDetailID         string          `json:"order_detail_id"`
	SupplierReferenceID   string          `json:"supplier_reference_id"`
	FulfillmentInstanceID *string         `json:"fulfillment_instance_id"`
	Party                 AdjustmentParty `json:"party"`
	Line                  ObligationLine  `json:"line"`
}

// AdjustmentParty identifies the counterparty of a standalone line.
type AdjustmentParty struct {
	PartyType string `json:"party_type"`
	PartyID   string `json:"party_id"`
	PartyName string `json:"party_name"`
}

// DecodePartnerAdjustment parses and shape-validates an adjustment
// payload.
func DecodePartnerAdjustment(raw []byte) (PartnerAdjustmentEvent, error) {
	var e PartnerAdjustmentEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fault.Wrap(fault.KindValidation, err, "malformed partner adjustment payload")
	}
	if e.OrderDetailID == "" {
		return e, fault.New(fault.KindValidation, "order_detail_id is required")
	}
	if e.Party.PartyID == "" {
		return e, fault.New(fault.KindValidation, "party.party_id is required")
	}
	if e.FulfillmentInstanceID != nil && *e.FulfillmentInstanceID == "" {
		return e, fault.New(fault.KindValidation, "fulfillment_instance_id must not be empty; omit it for booking level")
	}
	if err := validateObligationLine(e.Line); err != nil {
		return e, fault.Wrap(fault.KindValidation, err, "line")
	}
	return e, nil
}

// FulfillmentInstance returns the instance id, empty for booking level.
func (e PartnerAdjustmentEvent) FulfillmentInstance() string {
	if e.FulfillmentInstanceID == nil {
		return ""
	}
	return *e.FulfillmentInstanceID
}
