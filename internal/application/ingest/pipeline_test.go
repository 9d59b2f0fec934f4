package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/infrastructure/memory"
)

func newTestPipeline(t *testing.T) (*Pipeline, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	logger := slog.New(slog.DiscardHandler)
	return NewPipeline(store, logger, nil, Config{}), store
}

// event builds a raw envelope with the payload fields merged at the top
// level, the way producers emit them.
func event(t *testing.T, eventID, eventType, schemaVersion, orderID string, payload map[string]any) []byte {
	t.Helper()
	body := map[string]any{
		"event_id":        eventID,
		"event_type":      eventType,
		"schema_version":  schemaVersion,
		"order_id":        orderID,
		"emitted_at":      "2026-03-01T10:00:00Z",
		"emitter_service": "test-producer",
	}
	for k, v := range payload {
		body[k] = v
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return raw
}

func pricingPayload(amounts ...int64) map[string]any {
	components := make([]map[string]any, 0, len(amounts))
	for i, a := range amounts {
		components = append(components, map[string]any{
			"component_type": "BASE_FARE",
			"amount":         a,
			"currency":       "IDR",
			"dimensions":     map[string]any{"order_detail_id": fmt.Sprintf("od-%d", i+1)},
		})
	}
	return map[string]any{"components": components}
}

func TestPipelinePricingAssignsSequentialVersions(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	res, err := p.Ingest(ctx, event(t, "evt-1", "PricingUpdated", "pricing.commerce.v1", "ord-1", pricingPayload(500000)))
	require.NoError(t, err)
	assert.Equal(t, DispositionCommitted, res.Disposition)
	assert.Equal(t, 1, res.Version)

	res, err = p.Ingest(ctx, event(t, "evt-2", "PricingUpdated", "pricing.commerce.v1", "ord-1", pricingPayload(480000)))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Version)

	rows, err := store.Pricing().ListByOrder(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Same dimensions and type: identity is stable across versions, the
	// occurrence is not.
	assert.Equal(t, rows[0].ComponentSemanticID, rows[1].ComponentSemanticID)
	assert.NotEqual(t, rows[0].ComponentInstanceID, rows[1].ComponentInstanceID)
	assert.NotEqual(t, rows[0].PricingSnapshotID, rows[1].PricingSnapshotID)
}

func TestPipelineDuplicateEventSkipped(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()
	raw := event(t, "evt-dup", "PricingUpdated", "pricing.commerce.v1", "ord-1", pricingPayload(500000))

	res, err := p.Ingest(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, DispositionCommitted, res.Disposition)

	res, err = p.Ingest(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, DispositionSkipped, res.Disposition)

	rows, err := store.Pricing().ListByOrder(ctx, "ord-1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPipelineExplicitVersionHonored(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	payload := pricingPayload(500000)
	payload["version"] = 5
	res, err := p.Ingest(ctx, event(t, "evt-1", "PricingUpdated", "pricing.commerce.v1", "ord-1", payload))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Version)

	// The next implicit version continues after the gap.
	res, err = p.Ingest(ctx, event(t, "evt-2", "PricingUpdated", "pricing.commerce.v1", "ord-1", pricingPayload(480000)))
	require.NoError(t, err)
	assert.Equal(t, 6, res.Version)

	latest, err := store.Pricing().LatestVersion(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, 6, latest)
}

func TestPipelineExplicitVersionBelowOneDeadLetters(t *testing.T) {
	p, _ := newTestPipeline(t)

	payload := pricingPayload(500000)
	payload["version"] = 0
	res, err := p.Ingest(context.Background(), event(t, "evt-1", "PricingUpdated", "pricing.commerce.v1", "ord-1", payload))
	require.NoError(t, err)
	assert.Equal(t, DispositionDeadLettered, res.Disposition)
	assert.Equal(t, string(fault.KindValidation), res.ErrorKind)
}

func TestPipelineTotalsMismatchWarnsButCommits(t *testing.T) {
	p, _ := newTestPipeline(t)

	payload := pricingPayload(500000, 50000)
	payload["totals"] = map[string]any{"customer_total": 999999, "currency": "IDR"}
	res, err := p.Ingest(context.Background(), event(t, "evt-1", "PricingUpdated", "pricing.commerce.v1", "ord-1", payload))
	require.NoError(t, err)
	assert.Equal(t, DispositionCommitted, res.Disposition)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "customer_total")
}

func TestPipelineMalformedEventDeadLetters(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	res, err := p.Ingest(ctx, []byte(`{"event_type": "PricingUpdated"`))
	require.NoError(t, err)
	assert.Equal(t, DispositionDeadLettered, res.Disposition)
	require.NotEmpty(t, res.DLQID)

	entry, err := store.DLQ().Get(ctx, res.DLQID)
	require.NoError(t, err)
	assert.Equal(t, fault.KindValidation, entry.ErrorKind)
	assert.NotEmpty(t, entry.RawEvent)
}

func TestPipelineUnknownEventTypeDeadLetters(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	res, err := p.Ingest(ctx, event(t, "evt-1", "OrderShipped", "pricing.commerce.v1", "ord-1", nil))
	require.NoError(t, err)
	assert.Equal(t, DispositionDeadLettered, res.Disposition)

	entries, err := store.DLQ().List(ctx, model.DLQFilter{OrderID: "ord-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "OrderShipped", entries[0].EventType)
}

func TestPipelineMislabeledSchemaVersionDeadLetters(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	// A supplier payload wearing a pricing token must not reach the
	// supplier decoder, where it would dodge the v1/v2 restrictions.
	supplier := map[string]any{
		"order_detail_id": "od-1",
		"supplier": map[string]any{
			"status":      "Confirmed",
			"supplier_id": "sup-1",
			"amount_due":  48000,
			"currency":    "IDR",
		},
	}
	res, err := p.Ingest(ctx, event(t, "evt-1", "IssuanceSupplierLifecycle", "pricing.commerce.v1", "ord-1", supplier))
	require.NoError(t, err)
	assert.Equal(t, DispositionDeadLettered, res.Disposition)
	assert.Equal(t, string(fault.KindValidation), res.ErrorKind)

	facts, err := store.Supplier().ListByOrder(ctx, "ord-1")
	require.NoError(t, err)
	assert.Empty(t, facts, "nothing committed under the wrong schema")
}

func TestPipelineRefundIssuedWritesPricingFamily(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	_, err := p.Ingest(ctx, event(t, "evt-1", "PricingUpdated", "pricing.commerce.v1", "ord-1", pricingPayload(500000)))
	require.NoError(t, err)

	base, err := store.Pricing().ListByOrder(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, base, 1)

	refund := map[string]any{
		"refund_id": "rf-1",
		"components": []map[string]any{{
			"component_type":                  "BASE_FARE",
			"amount":                          -500000,
			"currency":                        "IDR",
			"dimensions":                      map[string]any{"order_detail_id": "od-1"},
			"refund_of_component_semantic_id": base[0].ComponentSemanticID,
		}},
	}
	res, err := p.Ingest(ctx, event(t, "evt-2", "refund.issued", "refund.components.v1", "ord-1", refund))
	require.NoError(t, err)
	assert.Equal(t, DispositionCommitted, res.Disposition)
	assert.Equal(t, 2, res.Version, "refund rows version in the pricing family")

	refunds, err := store.Pricing().ListRefundsOf(ctx, base[0].ComponentSemanticID)
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.True(t, refunds[0].IsRefund)
	assert.Equal(t, int64(-500000), refunds[0].Amount)

	// No refund_timeline fact is written by refund.issued.
	timeline, err := store.Refund().ListByOrder(ctx, "ord-1")
	require.NoError(t, err)
	assert.Empty(t, timeline)
}

func TestPipelineSupplierSynthesizesCancellationFeeLine(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	supplier := map[string]any{
		"order_detail_id": "od-1",
		"supplier": map[string]any{
			"status":                   "CancelledWithFee",
			"supplier_id":              "sup-1",
			"supplier_ref":             "ref-1",
			"amount_due":               0,
			"currency":                 "IDR",
			"cancellation_fee_amount":  55210,
			"cancellation_fee_currency": "IDR",
		},
	}
	res, err := p.Ingest(ctx, event(t, "evt-1", "IssuanceSupplierLifecycle", "supplier.timeline.v1", "ord-1", supplier))
	require.NoError(t, err)
	assert.Equal(t, DispositionCommitted, res.Disposition)

	lines, err := store.Supplier().ListLinesByOrder(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, model.ObligationCancellationFee, lines[0].ObligationType)
	assert.Equal(t, int64(55210), lines[0].Amount)
	assert.Equal(t, model.PartySupplier, lines[0].PartyType)
	assert.Equal(t, int64(55210), lines[0].AmountEffect.Apply(lines[0].Amount))
}

func TestPipelineSupplierKeepsProducerFeeLine(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	supplier := map[string]any{
		"order_detail_id": "od-1",
		"supplier": map[string]any{
			"status":       "CancelledWithFee",
			"supplier_id":  "sup-1",
			"supplier_ref": "ref-1",
			"amount_due":   0,
			"currency":     "IDR",
			"cancellation": map[string]any{"fee_amount": 55210, "fee_currency": "IDR"},
		},
		"parties": []map[string]any{{
			"party_type": "SUPPLIER",
			"party_id":   "sup-1",
			"lines": []map[string]any{{
				"obligation_type": model.ObligationCancellationFee,
				"amount":          55210,
				"currency":        "IDR",
				"amount_effect":   "INCREASES_PAYABLE",
			}},
		}},
	}
	_, err := p.Ingest(ctx, event(t, "evt-1", "IssuanceSupplierLifecycle", "supplier.timeline.v2", "ord-1", supplier))
	require.NoError(t, err)

	lines, err := store.Supplier().ListLinesByOrder(ctx, "ord-1")
	require.NoError(t, err)
	assert.Len(t, lines, 1, "no synthetic duplicate next to the producer's fee line")
}

func TestPipelineSupplierVersionsPerInstance(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx := context.Background()

	supplierEvent := func(eventID, fulfillment string) []byte {
		return event(t, eventID, "IssuanceSupplierLifecycle", "supplier.timeline.v2", "ord-1", map[string]any{
			"order_detail_id": "od-1",
			"supplier": map[string]any{
				"status":                  "Confirmed",
				"supplier_id":             "sup-1",
				"supplier_ref":            "ref-1",
				"fulfillment_instance_id": fulfillment,
				"amount_due":              48000,
				"currency":                "IDR",
			},
		})
	}

	res, err := p.Ingest(ctx, supplierEvent("evt-1", "room-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Version)

	// A different fulfillment instance starts its own sequence.
	res, err = p.Ingest(ctx, supplierEvent("evt-2", "room-2"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Version)

	res, err = p.Ingest(ctx, supplierEvent("evt-3", "room-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Version)
}

func TestPipelinePaymentLegacyFlatShape(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	legacy := map[string]any{
		"status":         "Captured",
		"payment_method": map[string]any{"channel": "VA", "provider": "bca"},
		"currency":       "IDR",
		"amount":         550000,
	}
	res, err := p.Ingest(ctx, event(t, "evt-1", "payment.captured", "payment.timeline.v1", "ord-1", legacy))
	require.NoError(t, err)
	assert.Equal(t, DispositionCommitted, res.Disposition)
	assert.Equal(t, 1, res.Version)

	facts, err := store.Payment().ListByOrder(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, model.PaymentCaptured, facts[0].Status)
	assert.Equal(t, int64(550000), facts[0].CapturedAmountTotal)
	assert.Equal(t, int64(550000), facts[0].Amount, "legacy amount column persisted")
}

func TestPipelineRefundLifecycleVersionsPerRefund(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx := context.Background()

	refund := func(eventID, refundID, status string) []byte {
		return event(t, eventID, "RefundLifecycle", "refund.lifecycle.v1", "ord-1", map[string]any{
			"refund_id": refundID, "status": status, "refund_amount": 100000, "currency": "IDR",
		})
	}

	res, err := p.Ingest(ctx, refund("evt-1", "rf-1", "INITIATED"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Version)

	res, err = p.Ingest(ctx, refund("evt-2", "rf-1", "ISSUED"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Version)

	// A second refund on the same order starts at 1.
	res, err = p.Ingest(ctx, refund("evt-3", "rf-2", "INITIATED"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Version)
}

func TestPipelineAdjustmentReplayIsIdempotent(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	adjustment := map[string]any{
		"order_detail_id":       "od-1",
		"supplier_reference_id": "ref-1",
		"party":                 map[string]any{"party_type": "AFFILIATE", "party_id": "aff-9"},
		"line": map[string]any{
			"obligation_type": "MARKETING_REBATE",
			"amount":          12000,
			"currency":        "IDR",
			"amount_effect":   "DECREASES_PAYABLE",
		},
	}
	raw := event(t, "evt-adj", "PartnerAdjustmentEvent", "partner.adjustment.v1", "ord-1", adjustment)

	res, err := p.Ingest(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, DispositionCommitted, res.Disposition)
	assert.Equal(t, -1, res.Version)

	// Replaying lands on the same deterministic line id.
	_, err = p.Ingest(ctx, raw)
	require.NoError(t, err)

	lines, err := store.Supplier().ListLinesByOrder(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, -1, lines[0].SupplierTimelineVersion)
}

func TestPipelineConcurrentIngestKeepsVersionsDense(t *testing.T) {
	p, store := newTestPipeline(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw := event(t, fmt.Sprintf("evt-%d", i), "PricingUpdated", "pricing.commerce.v1", "ord-1", pricingPayload(int64(1000+i)))
			_, err := p.Ingest(ctx, raw)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rows, err := store.Pricing().ListByOrder(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, rows, n)

	seen := map[int]bool{}
	for _, row := range rows {
		assert.False(t, seen[row.Version], "version %d assigned twice", row.Version)
		seen[row.Version] = true
	}
	for v := 1; v <= n; v++ {
		assert.True(t, seen[v], "version %d missing", v)
	}
}
