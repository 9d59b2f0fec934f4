package model

import (
	"encoding/json"
	"time"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
	"github.com/shopspring/decimal"
)

// SupplierTimelineFact is one supplier lifecycle event for a payable
// instance. FulfillmentInstanceID partitions payables within one order
// line: empty means the booking-level instance.
type SupplierTimelineFact struct {
	EventID                 string
	OrderID                 string
	OrderDetailID           string
	SupplierTimelineVersion int
	EventType               string
	SupplierID              string
	BookingCode             string
	SupplierReferenceID     string
	FulfillmentInstanceID   string
	Status                  valueobject.SupplierStatus
	Amount                  int64
	AmountBasis             string // "gross", "net", "redemption-triggered"
	Currency                string
	CancellationFeeAmount   int64
	CancellationFeeCurrency string
	FXContext               json.RawMessage
	EntityContext           json.RawMessage
	EmitterService          string
	EmittedAt               time.Time
	IngestedAt              time.Time
	Metadata                json.RawMessage
}

// InstanceKey returns the payable-instance key this row belongs to.
func (f SupplierTimelineFact) InstanceKey() valueobject.InstanceKey {
	return valueobject.InstanceKey{
		OrderID:               f.OrderID,
		OrderDetailID:         f.OrderDetailID,
		SupplierReferenceID:   f.SupplierReferenceID,
		FulfillmentInstanceID: f.FulfillmentInstanceID,
	}
}

// PartyType enumerates obligation counterparties.
type PartyType string

const (
	PartySupplier     PartyType = "SUPPLIER"
	PartyAffiliate    PartyType = "AFFILIATE"
	PartyTaxAuthority PartyType = "TAX_AUTHORITY"
	PartyInternal     PartyType = "INTERNAL"
)

// ObligationCancellationFee is the obligation type synthesized from a
// CancelledWithFee event's cancellation block.
const ObligationCancellationFee = "CANCELLATION_FEE"

// SupplierPayableLine is one multi-party obligation line. Lines written
// with a supplier event share its timeline version; standalone partner
// adjustments carry StandaloneVersion (-1) and no timeline parent.
type SupplierPayableLine struct {
	LineID                  string
	EventID                 string
	OrderID                 string
	OrderDetailID           string
	SupplierReferenceID     string
	FulfillmentInstanceID   string
	SupplierTimelineVersion int
	ObligationType          string
	PartyType               PartyType
	PartyID                 string
	PartyName               string
	Amount                  int64 // unsigned magnitude; direction in AmountEffect
	AmountEffect            valueobject.AmountEffect
	Currency                string
	CalculationBasis        string
	CalculationRate         decimal.Decimal
	CalculationDescription  string
	IngestedAt              time.Time
	Metadata                json.RawMessage
}

// Validate enforces the sign convention: magnitudes are non-negative,
// the direction lives in AmountEffect.
func (l SupplierPayableLine) Validate() error {
	if l.Amount < 0 {
		return fault.New(fault.KindValidation,
			"payable line %s has negative amount %d; use amount_effect instead", l.ObligationType, l.Amount)
	}
	if l.PartyID == "" {
		return fault.New(fault.KindValidation, "payable line %s missing party_id", l.ObligationType)
	}
	if l.ObligationType == "" {
		return fault.New(fault.KindValidation, "payable line for party %s missing obligation_type", l.PartyID)
	}
	return nil
}

// InstanceKey returns the payable-instance key this line is scoped to.
func (l SupplierPayableLine) InstanceKey() valueobject.InstanceKey {
	return valueobject.InstanceKey{
		OrderID:               l.OrderID,
		OrderDetailID:         l.OrderDetailID,
		SupplierReferenceID:   l.SupplierReferenceID,
		FulfillmentInstanceID: l.FulfillmentInstanceID,
	}
}
