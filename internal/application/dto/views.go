// Package dto defines the wire-facing read models of the layer. Fact
// rows stay transport-agnostic; everything a handler serializes lives
// here with explicit JSON field names.
package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
)

// PricingComponentView is one pricing fact row.
type PricingComponentView struct {
	ComponentSemanticID    string          `json:"component_semantic_id"`
	ComponentInstanceID    string          `json:"component_instance_id"`
	OrderID                string          `json:"order_id"`
	PricingSnapshotID      string          `json:"pricing_snapshot_id"`
	Version                int             `json:"version"`
	ComponentType          string          `json:"component_type"`
	CanonicalComponentType string          `json:"canonical_component_type"`
	Amount                 int64           `json:"amount"`
	Currency               string          `json:"currency"`
	Dimensions             json.RawMessage `json:"dimensions,omitempty"`
	Description            string          `json:"description,omitempty"`
	IsRefund               bool            `json:"is_refund"`
	RefundOfSemanticID     string          `json:"refund_of_component_semantic_id,omitempty"`
	EmitterService         string          `json:"emitter_service,omitempty"`
	EmittedAt              time.Time       `json:"emitted_at"`
	IngestedAt             time.Time       `json:"ingested_at"`
	Metadata               json.RawMessage `json:"metadata,omitempty"`
}

// PricingComponentFromModel converts a fact row to its view.
func PricingComponentFromModel(f model.PricingComponentFact) PricingComponentView {
	return PricingComponentView{
		ComponentSemanticID:    f.ComponentSemanticID,
		ComponentInstanceID:    f.ComponentInstanceID,
		OrderID:                f.OrderID,
		PricingSnapshotID:      f.PricingSnapshotID,
		Version:                f.Version,
		ComponentType:          f.ComponentType,
		CanonicalComponentType: f.CanonicalComponentType,
		Amount:                 f.Amount,
		Currency:               f.Currency,
		Dimensions:             f.Dimensions,
		Description:            f.Description,
		IsRefund:               f.IsRefund,
		RefundOfSemanticID:     f.RefundOfSemanticID,
		EmitterService:         f.EmitterService,
		EmittedAt:              f.EmittedAt,
		IngestedAt:             f.IngestedAt,
		Metadata:               f.Metadata,
	}
}

// PaymentView is one payment timeline row.
type PaymentView struct {
	EventID             string              `json:"event_id"`
	OrderID             string              `json:"order_id"`
	TimelineVersion     int                 `json:"timeline_version"`
	Status              string              `json:"status"`
	PaymentMethod       model.PaymentMethod `json:"payment_method"`
	PaymentIntentID     string              `json:"payment_intent_id,omitempty"`
	AuthorizedAmount    int64               `json:"authorized_amount"`
	CapturedAmount      int64               `json:"captured_amount"`
	CapturedAmountTotal int64               `json:"captured_amount_total"`
	Currency            string              `json:"currency"`
	Instrument          json.RawMessage     `json:"instrument,omitempty"`
	PGReferenceID       string              `json:"pg_reference_id,omitempty"`
	EmittedAt           time.Time           `json:"emitted_at"`
	IngestedAt          time.Time           `json:"ingested_at"`
}

// PaymentFromModel converts a fact row to its view.
func PaymentFromModel(f model.PaymentTimelineFact) PaymentView {
	return PaymentView{
		EventID:             f.EventID,
		OrderID:             f.OrderID,
		TimelineVersion:     f.TimelineVersion,
		Status:              string(f.Status),
		PaymentMethod:       f.PaymentMethod,
		PaymentIntentID:     f.PaymentIntentID,
		AuthorizedAmount:    f.AuthorizedAmount,
		CapturedAmount:      f.CapturedAmount,
		CapturedAmountTotal: f.CapturedAmountTotal,
		Currency:            f.Currency,
		Instrument:          f.Instrument,
		PGReferenceID:       f.PGReferenceID,
		EmittedAt:           f.EmittedAt,
		IngestedAt:          f.IngestedAt,
	}
}

// SupplierView is one supplier timeline row.
type SupplierView struct {
	EventID                 string          `json:"event_id"`
	OrderID                 string          `json:"order_id"`
	OrderDetailID           string          `json:"order_detail_id"`
	SupplierTimelineVersion int             `json:"supplier_timeline_version"`
	SupplierID              string          `json:"supplier_id"`
	BookingCode             string          `json:"booking_code,omitempty"`
	SupplierReferenceID     string          `json:"supplier_reference_id,omitempty"`
	FulfillmentInstanceID   string          `json:"fulfillment_instance_id,omitempty"`
	Status                  string          `json:"status"`
	Amount                  int64           `json:"amount"`
	AmountBasis             string          `json:"amount_basis,omitempty"`
	Currency                string          `json:"currency"`
	CancellationFeeAmount   int64           `json:"cancellation_fee_amount,omitempty"`
	CancellationFeeCurrency string          `json:"cancellation_fee_currency,omitempty"`
	FXContext               json.RawMessage `json:"fx_context,omitempty"`
	EntityContext           json.RawMessage `json:"entity_context,omitempty"`
	EmittedAt               time.Time       `json:"emitted_at"`
	IngestedAt              time.Time       `json:"ingested_at"`
}

// SupplierFromModel converts a fact row to its view.
func SupplierFromModel(f model.SupplierTimelineFact) SupplierView {
	return SupplierView{
		EventID:                 f.EventID,
		OrderID:                 f.OrderID,
		OrderDetailID:           f.OrderDetailID,
		SupplierTimelineVersion: f.SupplierTimelineVersion,
		SupplierID:              f.SupplierID,
		BookingCode:             f.BookingCode,
		SupplierReferenceID:     f.SupplierReferenceID,
		FulfillmentInstanceID:   f.FulfillmentInstanceID,
		Status:                  string(f.Status),
		Amount:                  f.Amount,
		AmountBasis:             f.AmountBasis,
		Currency:                f.Currency,
		CancellationFeeAmount:   f.CancellationFeeAmount,
		CancellationFeeCurrency: f.CancellationFeeCurrency,
		FXContext:               f.FXContext,
		EntityContext:           f.EntityContext,
		EmittedAt:               f.EmittedAt,
		IngestedAt:              f.IngestedAt,
	}
}

// RefundView is one refund timeline row.
type RefundView struct {
	EventID               string    `json:"event_id"`
	OrderID               string    `json:"order_id"`
	RefundID              string    `json:"refund_id"`
	RefundTimelineVersion int       `json:"refund_timeline_version"`
	Status                string    `json:"status"`
	RefundAmount          int64     `json:"refund_amount"`
	Currency              string    `json:"currency"`
	RefundReason          string    `json:"refund_reason,omitempty"`
	EmittedAt             time.Time `json:"emitted_at"`
	IngestedAt            time.Time `json:"ingested_at"`
}

// RefundFromModel converts a fact row to its view.
func RefundFromModel(f model.RefundTimelineFact) RefundView {
	return RefundView{
		EventID:               f.EventID,
		OrderID:               f.OrderID,
		RefundID:              f.RefundID,
		RefundTimelineVersion: f.RefundTimelineVersion,
		Status:                string(f.Status),
		RefundAmount:          f.RefundAmount,
		Currency:              f.Currency,
		RefundReason:          f.RefundReason,
		EmittedAt:             f.EmittedAt,
		IngestedAt:            f.IngestedAt,
	}
}

// OrderView is the latest-state read of one order across families.
type OrderView struct {
	OrderID        string                 `json:"order_id"`
	PricingLatest  []PricingComponentView `json:"pricing_latest"`
	PaymentLatest  *PaymentView           `json:"payment_latest,omitempty"`
	SupplierLatest []SupplierView         `json:"supplier_latest"`
	RefundLatest   []RefundView           `json:"refund_latest"`
	Warnings       []string               `json:"warnings,omitempty"`
}

// ObligationView is one effective obligation after last-writer-wins.
type ObligationView struct {
	PartyType       string          `json:"party_type"`
	PartyID         string          `json:"party_id"`
	PartyName       string          `json:"party_name,omitempty"`
	ObligationType  string          `json:"obligation_type"`
	Amount          int64           `json:"amount"`
	AmountEffect    string          `json:"amount_effect"`
	EffectiveAmount int64           `json:"effective_amount"`
	Currency        string          `json:"currency"`
	Version         int             `json:"supplier_timeline_version"`
	Standalone      bool            `json:"standalone"`
	CalculationRate decimal.Decimal `json:"calculation_rate,omitempty"`
}

// PartyTotal is the per-party sub-total of one payable instance. The
// supplier party carries the baseline; every other party starts at zero.
type PartyTotal struct {
	PartyType string `json:"party_type"`
	PartyID   string `json:"party_id"`
	Total     int64  `json:"total"`
}

// PayableInstanceView is one payable instance of an order.
type PayableInstanceView struct {
	OrderDetailID         string           `json:"order_detail_id"`
	SupplierReferenceID   string           `json:"supplier_reference_id,omitempty"`
	FulfillmentInstanceID string           `json:"fulfillment_instance_id,omitempty"`
	FulfillmentKey        string           `json:"fulfillment_key"`
	SupplierID            string           `json:"supplier_id,omitempty"`
	Status                string           `json:"status,omitempty"`
	Currency              string           `json:"currency,omitempty"`
	Baseline              int64            `json:"baseline"`
	Adjustment            int64            `json:"adjustment"`
	Total                 int64            `json:"total"`
	Obligations           []ObligationView `json:"obligations"`
	PartyTotals           []PartyTotal     `json:"party_totals,omitempty"`
}

// EffectivePayables is the full payables projection of an order.
type EffectivePayables struct {
	OrderID    string                `json:"order_id"`
	Instances  []PayableInstanceView `json:"instances"`
	GrandTotal int64                 `json:"grand_total"`
	Warnings   []string              `json:"warnings,omitempty"`
}

// PricingVersionView groups one pricing snapshot's rows.
type PricingVersionView struct {
	Version           int                    `json:"version"`
	PricingSnapshotID string                 `json:"pricing_snapshot_id"`
	ComponentCount    int                    `json:"component_count"`
	Sum               int64                  `json:"sum"`
	Currency          string                 `json:"currency,omitempty"`
	EmittedAt         time.Time              `json:"emitted_at"`
	Components        []PricingComponentView `json:"components"`
}

// PricingHistory is the version-by-version pricing audit of an order.
type PricingHistory struct {
	OrderID  string               `json:"order_id"`
	Versions []PricingVersionView `json:"versions"`
}

// ComponentLineage links a component's occurrences with its refunds.
type ComponentLineage struct {
	ComponentSemanticID string                 `json:"component_semantic_id"`
	Occurrences         []PricingComponentView `json:"occurrences"`
	Refunds             []PricingComponentView `json:"refunds"`
	NetAmount           int64                  `json:"net_amount"`
}

// PayableInstanceTimeline is the audit history of one payable instance.
type PayableInstanceTimeline struct {
	OrderDetailID         string           `json:"order_detail_id"`
	SupplierReferenceID   string           `json:"supplier_reference_id,omitempty"`
	FulfillmentKey        string           `json:"fulfillment_key"`
	Events                []SupplierView   `json:"events"`
	Lines                 []ObligationView `json:"lines"`
}

// PayablesTimeline is the full supplier audit read of an order.
type PayablesTimeline struct {
	OrderID   string                    `json:"order_id"`
	Instances []PayableInstanceTimeline `json:"instances"`
}

// OrderSummary is one row of the all-orders listing.
type OrderSummary struct {
	OrderID  string   `json:"order_id"`
	Families []string `json:"families"`
}

// DLQEntryView is one dead-lettered event.
type DLQEntryView struct {
	DLQID       string          `json:"dlq_id"`
	EventID     string          `json:"event_id,omitempty"`
	EventType   string          `json:"event_type,omitempty"`
	OrderID     string          `json:"order_id,omitempty"`
	RawEvent    json.RawMessage `json:"raw_event"`
	ErrorKind   string          `json:"error_kind"`
	ErrorDetail string          `json:"error_detail"`
	ReceivedAt  time.Time       `json:"received_at"`
	RetryCount  int             `json:"retry_count"`
}

// DLQEntryFromModel converts a DLQ row to its view.
func DLQEntryFromModel(e model.DLQEntry) DLQEntryView {
	return DLQEntryView{
		DLQID:       e.DLQID,
		EventID:     e.EventID,
		EventType:   e.EventType,
		OrderID:     e.OrderID,
		RawEvent:    e.RawEvent,
		ErrorKind:   string(e.ErrorKind),
		ErrorDetail: e.ErrorDetail,
		ReceivedAt:  e.ReceivedAt,
		RetryCount:  e.RetryCount,
	}
}
