package projection

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/infrastructure/memory"
)

func supplierFact(eventID, orderID string, version int, status valueobject.SupplierStatus, amount int64) model.SupplierTimelineFact {
	return model.SupplierTimelineFact{
		EventID:                 eventID,
		OrderID:                 orderID,
		OrderDetailID:           "od-1",
		SupplierTimelineVersion: version,
		EventType:               "IssuanceSupplierLifecycle",
		SupplierID:              "sup-1",
		SupplierReferenceID:     "ref-1",
		Status:                  status,
		Amount:                  amount,
		Currency:                "IDR",
		EmittedAt:               time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		IngestedAt:              time.Date(2026, 3, 1, 10, 0, 1, 0, time.UTC),
	}
}

func payableLine(lineID, orderID string, version int, partyID, obligation string, amount int64, effect valueobject.AmountEffect) model.SupplierPayableLine {
	return model.SupplierPayableLine{
		LineID:                  lineID,
		EventID:                 "evt-" + lineID,
		OrderID:                 orderID,
		OrderDetailID:           "od-1",
		SupplierReferenceID:     "ref-1",
		SupplierTimelineVersion: version,
		ObligationType:          obligation,
		PartyType:               model.PartyAffiliate,
		PartyID:                 partyID,
		Amount:                  amount,
		AmountEffect:            effect,
		Currency:                "IDR",
		IngestedAt:              time.Date(2026, 3, 1, 10, 0, 1, 0, time.UTC),
	}
}

func TestEffectivePayablesLastWriterWins(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Supplier().AppendEvent(ctx,
		supplierFact("evt-1", "ord-1", 1, valueobject.SupplierConfirmed, 100000),
		[]model.SupplierPayableLine{
			payableLine("l1", "ord-1", 1, "aff-1", "COMMISSION", 5000, valueobject.DecreasesPayable),
		}))
	require.NoError(t, store.Supplier().AppendEvent(ctx,
		supplierFact("evt-2", "ord-1", 2, valueobject.SupplierIssued, 100000),
		[]model.SupplierPayableLine{
			payableLine("l2", "ord-1", 2, "aff-1", "COMMISSION", 7000, valueobject.DecreasesPayable),
		}))

	p := NewProjector(store, slog.New(slog.DiscardHandler))
	view, err := p.EffectivePayables(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, view.Instances, 1)

	inst := view.Instances[0]
	require.Len(t, inst.Obligations, 1, "only the v2 commission line stays effective")
	assert.Equal(t, 2, inst.Obligations[0].Version)
	assert.Equal(t, int64(-7000), inst.Obligations[0].EffectiveAmount)
	assert.Equal(t, int64(100000), inst.Baseline)
	assert.Equal(t, int64(93000), inst.Total)
}

func TestEffectivePayablesCancelledNoFeeDropsTimelineLines(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Supplier().AppendEvent(ctx,
		supplierFact("evt-1", "ord-1", 1, valueobject.SupplierConfirmed, 100000),
		[]model.SupplierPayableLine{
			payableLine("l1", "ord-1", 1, "aff-1", "COMMISSION", 5000, valueobject.IncreasesPayable),
		}))
	require.NoError(t, store.Supplier().AppendEvent(ctx,
		supplierFact("evt-2", "ord-1", 2, valueobject.SupplierCancelledNoFee, 100000), nil))

	// A standalone adjustment survives the cancellation.
	require.NoError(t, store.Supplier().AppendStandaloneLine(ctx,
		payableLine("l3", "ord-1", valueobject.StandaloneVersion, "aff-1", "PENALTY", 8000, valueobject.IncreasesPayable)))

	p := NewProjector(store, slog.New(slog.DiscardHandler))
	view, err := p.EffectivePayables(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, view.Instances, 1)

	inst := view.Instances[0]
	assert.Equal(t, int64(0), inst.Baseline)
	require.Len(t, inst.Obligations, 1)
	assert.True(t, inst.Obligations[0].Standalone)
	assert.Equal(t, int64(8000), inst.Total)
}

func TestEffectivePayablesUnknownStatusWarns(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Supplier().AppendEvent(ctx,
		supplierFact("evt-1", "ord-1", 1, valueobject.SupplierStatus("HalfCancelled"), 90000), nil))

	p := NewProjector(store, slog.New(slog.DiscardHandler))
	view, err := p.EffectivePayables(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, view.Instances, 1)

	// Unknown status: baseline falls back to the latest amount, loudly.
	assert.Equal(t, int64(90000), view.Instances[0].Baseline)
	require.NotEmpty(t, view.Warnings)
	assert.Contains(t, view.Warnings[0], "HalfCancelled")
}

func TestEffectivePayablesStandaloneOnlyInstance(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Supplier().AppendStandaloneLine(ctx,
		payableLine("l1", "ord-1", valueobject.StandaloneVersion, "aff-1", "PENALTY", 12000, valueobject.IncreasesPayable)))

	p := NewProjector(store, slog.New(slog.DiscardHandler))
	view, err := p.EffectivePayables(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, view.Instances, 1)

	inst := view.Instances[0]
	assert.Equal(t, int64(0), inst.Baseline)
	assert.Equal(t, int64(12000), inst.Total)
	assert.Empty(t, inst.Status)
}

func TestEffectivePayablesPartyTotals(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Supplier().AppendEvent(ctx,
		supplierFact("evt-1", "ord-1", 1, valueobject.SupplierIssued, 100000),
		[]model.SupplierPayableLine{
			payableLine("l1", "ord-1", 1, "aff-1", "COMMISSION", 5000, valueobject.DecreasesPayable),
			payableLine("l2", "ord-1", 1, "aff-2", "MARKETING_REBATE", 3000, valueobject.IncreasesPayable),
		}))

	p := NewProjector(store, slog.New(slog.DiscardHandler))
	view, err := p.EffectivePayables(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, view.Instances, 1)

	totals := map[string]int64{}
	for _, pt := range view.Instances[0].PartyTotals {
		totals[pt.PartyID] = pt.Total
	}
	assert.Equal(t, int64(100000), totals["sup-1"], "supplier party carries the baseline")
	assert.Equal(t, int64(-5000), totals["aff-1"])
	assert.Equal(t, int64(3000), totals["aff-2"])
	assert.Equal(t, int64(98000), view.Instances[0].Total)
}

func TestEffectivePayablesDeterministic(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Supplier().AppendEvent(ctx,
		supplierFact("evt-1", "ord-1", 1, valueobject.SupplierIssued, 100000),
		[]model.SupplierPayableLine{
			payableLine("l1", "ord-1", 1, "aff-2", "B", 100, valueobject.IncreasesPayable),
			payableLine("l2", "ord-1", 1, "aff-1", "A", 200, valueobject.IncreasesPayable),
		}))

	p := NewProjector(store, slog.New(slog.DiscardHandler))
	first, err := p.EffectivePayables(ctx, "ord-1")
	require.NoError(t, err)
	second, err := p.EffectivePayables(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
