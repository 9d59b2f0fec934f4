// Package schema decodes inbound event envelopes and lifts legacy
// payload shapes to their current form before validation. Each
// schema_version maps to exactly one variant; the handlers downstream
// only ever see the canonical shape.
package schema

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
)

// EventKind is the routing target of an envelope.
type EventKind string

const (
	KindPricingUpdated    EventKind = "PricingUpdated"
	KindPaymentLifecycle  EventKind = "PaymentLifecycle"
	KindSupplierLifecycle EventKind = "SupplierLifecycle"
	KindRefundIssued      EventKind = "RefundIssued"
	KindRefundLifecycle   EventKind = "RefundLifecycle"
	KindPartnerAdjustment EventKind = "PartnerAdjustment"
)

// Known schema_version tokens.
const (
	SchemaPricingCommerceV1  = "pricing.commerce.v1"
	SchemaPaymentTimelineV1  = "payment.timeline.v1"
	SchemaSupplierTimelineV1 = "supplier.timeline.v1"
	SchemaSupplierTimelineV2 = "supplier.timeline.v2"
	SchemaRefundComponentsV1 = "refund.components.v1"
	SchemaRefundLifecycleV1  = "refund.lifecycle.v1"
	SchemaPartnerAdjustV1    = "partner.adjustment.v1"
)

// schemaKinds maps every known schema_version token to the one event
// kind whose payload it describes.
var schemaKinds = map[string]EventKind{
	SchemaPricingCommerceV1:  KindPricingUpdated,
	SchemaPaymentTimelineV1:  KindPaymentLifecycle,
	SchemaSupplierTimelineV1: KindSupplierLifecycle,
	SchemaSupplierTimelineV2: KindSupplierLifecycle,
	SchemaRefundComponentsV1: KindRefundIssued,
	SchemaRefundLifecycleV1:  KindRefundLifecycle,
	SchemaPartnerAdjustV1:    KindPartnerAdjustment,
}

// Envelope is the common wrapper of every inbound event. Raw keeps the
// verbatim payload so unknown fields survive ingestion and DLQ replay.
type Envelope struct {
	EventID        string          `json:"event_id"`
	EventType      string          `json:"event_type" validate:"required"`
	SchemaVersion  string          `json:"schema_version" validate:"required"`
	OrderID        string          `json:"order_id" validate:"required"`
	EmittedAt      string          `json:"emitted_at"`
	EmitterService string          `json:"emitter_service"`
	IdempotencyKey string          `json:"idempotency_key"`
	Meta           json.RawMessage `json:"meta"`

	Raw json.RawMessage `json:"-"`
}

// DecodeEnvelope parses and shape-validates the envelope fields.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fault.Wrap(fault.KindValidation, err, "malformed event JSON")
	}
	env.Raw = append(json.RawMessage(nil), raw...)

	if err := validate.Struct(env); err != nil {
		return env, shapeErr(err)
	}
	if _, ok := schemaKinds[env.SchemaVersion]; !ok {
		return env, fault.New(fault.KindValidation, "unknown schema_version %q", env.SchemaVersion)
	}
	if env.EmittedAt != "" {
		if _, err := ParseTime(env.EmittedAt); err != nil {
			return env, fault.Wrap(fault.KindValidation, err, "malformed emitted_at %q", env.EmittedAt)
		}
	}
	return env, nil
}

// Kind routes the envelope by event_type, honoring the documented
// aliases. Producer services historically emitted dotted lifecycle
// types (payment.captured, refund.initiated); those route by prefix.
func (e Envelope) Kind() (EventKind, error) {
	switch e.EventType {
	case "PricingUpdated":
		return KindPricingUpdated, nil
	case "PaymentLifecycle":
		return KindPaymentLifecycle, nil
	case "IssuanceSupplierLifecycle", "SupplierLifecycleEvent":
		return KindSupplierLifecycle, nil
	case "refund.issued", "RefundIssued":
		return KindRefundIssued, nil
	case "RefundLifecycle":
		return KindRefundLifecycle, nil
	case "PartnerAdjustmentEvent", "PartnerAdjustment":
		return KindPartnerAdjustment, nil
	}
	switch {
	case strings.HasPrefix(e.EventType, "payment."):
		return KindPaymentLifecycle, nil
	case strings.HasPrefix(e.EventType, "refund."):
		return KindRefundLifecycle, nil
	}
	return "", fault.New(fault.KindValidation, "unknown event_type %q", e.EventType)
}

// CheckSchemaKind verifies the schema_version token belongs to kind. A
// mislabeled producer dead-letters here instead of slipping its payload
// into another family's decoder.
func (e Envelope) CheckSchemaKind(kind EventKind) error {
	sk, ok := schemaKinds[e.SchemaVersion]
	if !ok {
		return fault.New(fault.KindValidation, "unknown schema_version %q", e.SchemaVersion)
	}
	if sk != kind {
		return fault.New(fault.KindValidation,
			"schema_version %q does not match event_type %q", e.SchemaVersion, e.EventType)
	}
	return nil
}

// EmittedTime returns the parsed emission timestamp, or now when the
// producer omitted it.
func (e Envelope) EmittedTime(now time.Time) time.Time {
	if e.EmittedAt == "" {
		return now
	}
	t, err := ParseTime(e.EmittedAt)
	if err != nil {
		return now
	}
	return t
}

// timeFormats lists accepted emitted_at layouts. Python producers emit
// naive ISO-8601 without a zone designator; those are taken as UTC.
var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// ParseTime parses an ISO-8601 timestamp leniently.
func ParseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
