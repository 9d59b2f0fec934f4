package schema

import (
	"encoding/json"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
	"github.com/shopspring/decimal"
)

// SupplierEvent is the payload of supplier.timeline.v1 and v2 events.
// v2 adds multi-party obligations and the fulfillment instance
// dimension. Parties is a pointer so that "field absent" (legacy event,
// implicit empty) and "empty list" (intentional no-op that triggers
// carry-forward projection) stay distinguishable.
type SupplierEvent struct {
	OrderDetailID string       `json:"order_detail_id"`
	Supplier      SupplierBody `json:"supplier"`
	Parties       *[]Party     `json:"parties"`
}

// SupplierBody is the supplier block of a lifecycle event.
type SupplierBody struct {
	Status                valueobject.SupplierStatus `json:"status"`
	SupplierID            string                     `json:"supplier_id"`
	BookingCode           string                     `json:"booking_code"`
	SupplierRef           string                     `json:"supplier_ref"`
	FulfillmentInstanceID *string                    `json:"fulfillment_instance_id"`
	AmountDue             Minor                      `json:"amount_due"`
	AmountBasis           string                     `json:"amount_basis"`
	Currency              string                     `json:"currency"`
	FXContext             json.RawMessage            `json:"fx_context"`
	EntityContext         json.RawMessage            `json:"entity_context"`
	Cancellation          *Cancellation              `json:"cancellation"`

	// Legacy v1 flat cancellation fields.
	CancellationFeeAmount   Minor  `json:"cancellation_fee_amount"`
	CancellationFeeCurrency string `json:"cancellation_fee_currency"`
}

// Cancellation is the v2 cancellation block. On CancelledWithFee the fee
// is materialized as a CANCELLATION_FEE obligation line at ingest.
type Cancellation struct {
	FeeAmount   Minor  `json:"fee_amount"`
	FeeCurrency string `json:"fee_currency"`
	Reason      string `json:"reason"`
}

// Party is one obligation counterparty with its lines.
type Party struct {
	PartyType string           `json:"party_type"`
	PartyID   string           `json:"party_id"`
	PartyName string           `json:"party_name"`
	Lines     []ObligationLine `json:"lines"`
}

// ObligationLine is a single directional obligation.
type ObligationLine struct {
	ObligationType string          `json:"obligation_type"`
	Amount         Minor           `json:"amount"`
	Currency       string          `json:"currency"`
	AmountEffect   string          `json:"amount_effect"`
	Calculation    *Calculation    `json:"calculation"`
	Description    string          `json:"description"`
	Metadata       json.RawMessage `json:"metadata"`
}

// Calculation explains how a line's amount was derived.
type Calculation struct {
	Basis       string          `json:"basis"`
	Rate        decimal.Decimal `json:"rate"`
	Description string          `json:"description"`
}

// DecodeSupplier parses and shape-validates a supplier payload.
func DecodeSupplier(raw []byte, schemaVersion string) (SupplierEvent, error) {
	var e SupplierEvent
	if schemaVersion != SchemaSupplierTimelineV1 && schemaVersion != SchemaSupplierTimelineV2 {
		return e, fault.New(fault.KindValidation, "schema_version %q is not a supplier timeline schema", schemaVersion)
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fault.Wrap(fault.KindValidation, err, "malformed supplier payload")
	}

	if e.OrderDetailID == "" {
		return e, fault.New(fault.KindValidation, "order_detail_id is required")
	}
	if e.Supplier.SupplierID == "" {
		return e, fault.New(fault.KindValidation, "supplier.supplier_id is required")
	}
	if e.Supplier.Status == "" {
		return e, fault.New(fault.KindValidation, "supplier.status is required")
	}
	// A null fulfillment_instance_id means the booking-level instance;
	// an explicit empty string is neither null nor a usable key.
	if e.Supplier.FulfillmentInstanceID != nil && *e.Supplier.FulfillmentInstanceID == "" {
		return e, fault.New(fault.KindValidation, "fulfillment_instance_id must not be empty; omit it for booking level")
	}
	if e.Supplier.AmountDue < 0 {
		return e, fault.New(fault.KindValidation, "supplier.amount_due must not be negative")
	}
	if schemaVersion == SchemaSupplierTimelineV1 && e.Parties != nil {
		return e, fault.New(fault.KindValidation, "parties requires supplier.timeline.v2")
	}
	// The fx block is stored verbatim, but a block that does not decode
	// as an FX snapshot would poison every later consumer of the column.
	if len(e.Supplier.FXContext) > 0 {
		var fx valueobject.FXContext
		if err := json.Unmarshal(e.Supplier.FXContext, &fx); err != nil {
			return e, fault.Wrap(fault.KindValidation, err, "supplier.fx_context")
		}
	}

	if e.Parties != nil {
		for pi, p := range *e.Parties {
			if p.PartyID == "" {
				return e, fault.New(fault.KindValidation, "parties[%d]: party_id is required", pi)
			}
			if len(p.Lines) == 0 {
				return e, fault.New(fault.KindValidation, "parties[%d]: lines must contain at least one entry", pi)
			}
			for li, l := range p.Lines {
				if err := validateObligationLine(l); err != nil {
					return e, fault.Wrap(fault.KindValidation, err, "parties[%d].lines[%d]", pi, li)
				}
			}
		}
	}
	return e, nil
}

func validateObligationLine(l ObligationLine) error {
	if l.ObligationType == "" {
		return fault.New(fault.KindValidation, "obligation_type is required")
	}
	if l.Amount < 0 {
		return fault.New(fault.KindValidation, "amount must be non-negative; direction belongs in amount_effect")
	}
	if _, err := valueobject.ParseAmountEffect(l.AmountEffect); err != nil {
		return fault.Wrap(fault.KindValidation, err, "amount_effect")
	}
	return nil
}

// FulfillmentInstance returns the instance id, empty for booking level.
func (e SupplierEvent) FulfillmentInstance() string {
	if e.Supplier.FulfillmentInstanceID == nil {
		return ""
	}
	return *e.Supplier.FulfillmentInstanceID
}

// PartyTypeOf normalizes the wire party_type, defaulting unknown values
// so projection grouping never sees an empty type.
func PartyTypeOf(s string) model.PartyType {
	switch model.PartyType(s) {
	case model.PartySupplier, model.PartyAffiliate, model.PartyTaxAuthority, model.PartyInternal:
		return model.PartyType(s)
	}
	return model.PartyType("UNKNOWN")
}
