package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/schema"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
)

// ingestAdjustment writes one standalone payable line at version -1. No
// scope lock is taken: standalone lines never consume a version, so two
// concurrent adjustments cannot conflict.
func (p *Pipeline) ingestAdjustment(ctx context.Context, env schema.Envelope) (Result, error) {
	payload, err := schema.DecodePartnerAdjustment(env.Raw)
	if err != nil {
		return Result{}, err
	}

	effect, err := valueobject.ParseAmountEffect(payload.Line.AmountEffect)
	if err != nil {
		return Result{}, fault.Wrap(fault.KindValidation, err, "amount_effect")
	}

	line := model.SupplierPayableLine{
		LineID:                  adjustmentLineID(env.EventID),
		EventID:                 eventIDOrNew(env),
		OrderID:                 env.OrderID,
		OrderDetailID:           payload.OrderDetailID,
		SupplierReferenceID:     payload.SupplierReferenceID,
		FulfillmentInstanceID:   payload.FulfillmentInstance(),
		SupplierTimelineVersion: valueobject.StandaloneVersion,
		ObligationType:          payload.Line.ObligationType,
		PartyType:               schema.PartyTypeOf(payload.Party.PartyType),
		PartyID:                 payload.Party.PartyID,
		PartyName:               payload.Party.PartyName,
		Amount:                  payload.Line.Amount.Int64(),
		AmountEffect:            effect,
		Currency:                payload.Line.Currency,
		IngestedAt:              p.now().UTC(),
		Metadata:                payload.Line.Metadata,
	}
	if c := payload.Line.Calculation; c != nil {
		line.CalculationBasis = c.Basis
		line.CalculationRate = c.Rate
		line.CalculationDescription = c.Description
	}
	if err := line.Validate(); err != nil {
		return Result{}, err
	}

	if err := p.withRetry(ctx, env.EventType, func() error {
		return p.store.Supplier().AppendStandaloneLine(ctx, line)
	}); err != nil {
		return Result{}, err
	}

	return Result{Disposition: DispositionCommitted, Version: valueobject.StandaloneVersion}, nil
}

// adjustmentLineID derives a deterministic line id from the event id so
// a replayed adjustment lands on the same primary key and is skipped,
// instead of double-counting the obligation.
func adjustmentLineID(eventID string) string {
	if eventID == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("partner-adjustment:"+eventID)).String()
}
