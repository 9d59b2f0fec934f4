package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/schema"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
)

// ingestSupplier appends one supplier timeline fact with its payable
// lines, versioned per payable instance. On CancelledWithFee the fee is
// materialized as a CANCELLATION_FEE line so the projector's baseline
// stays at zero.
func (p *Pipeline) ingestSupplier(ctx context.Context, env schema.Envelope) (Result, error) {
	payload, err := schema.DecodeSupplier(env.Raw, env.SchemaVersion)
	if err != nil {
		return Result{}, err
	}

	if env.EventID != "" {
		seen, err := p.store.Supplier().HasEvent(ctx, env.EventID)
		if err != nil {
			return Result{}, fault.Wrap(fault.KindStorage, err, "supplier idempotency check")
		}
		if seen {
			p.logger.Warn("duplicate supplier event skipped",
				"order_id", env.OrderID, "event_id", env.EventID)
			return Result{Disposition: DispositionSkipped}, nil
		}
	}

	key := valueobject.InstanceKey{
		OrderID:               env.OrderID,
		OrderDetailID:         payload.OrderDetailID,
		SupplierReferenceID:   payload.Supplier.SupplierRef,
		FulfillmentInstanceID: payload.FulfillmentInstance(),
	}
	scope := SupplierScope(key)
	unlock := p.locks.Acquire(scope.LockKey())
	defer unlock()

	version, err := p.registry.Next(ctx, scope)
	if err != nil {
		return Result{}, fault.Wrap(fault.KindStorage, err, "supplier version read")
	}

	var warnings []string
	if !payload.Supplier.Status.Known() {
		w := fmt.Sprintf("unknown supplier status %q ingested verbatim", payload.Supplier.Status)
		warnings = append(warnings, w)
		p.logger.Warn("unknown supplier status",
			"order_id", env.OrderID, "instance", key.String(), "status", string(payload.Supplier.Status))
	}

	now := p.now().UTC()
	eventID := eventIDOrNew(env)
	feeAmount, feeCurrency := cancellationFee(payload)

	fact := model.SupplierTimelineFact{
		EventID:                 eventID,
		OrderID:                 env.OrderID,
		OrderDetailID:           payload.OrderDetailID,
		SupplierTimelineVersion: version,
		EventType:               env.EventType,
		SupplierID:              payload.Supplier.SupplierID,
		BookingCode:             payload.Supplier.BookingCode,
		SupplierReferenceID:     payload.Supplier.SupplierRef,
		FulfillmentInstanceID:   key.FulfillmentInstanceID,
		Status:                  payload.Supplier.Status,
		Amount:                  payload.Supplier.AmountDue.Int64(),
		AmountBasis:             payload.Supplier.AmountBasis,
		Currency:                payload.Supplier.Currency,
		CancellationFeeAmount:   feeAmount,
		CancellationFeeCurrency: feeCurrency,
		FXContext:               payload.Supplier.FXContext,
		EntityContext:           payload.Supplier.EntityContext,
		EmitterService:          env.EmitterService,
		EmittedAt:               env.EmittedTime(now),
		IngestedAt:              now,
		Metadata:                env.Meta,
	}

	lines, err := buildPayableLines(payload, key, fact, now)
	if err != nil {
		return Result{}, err
	}

	if err := p.withRetry(ctx, env.EventType, func() error {
		return p.store.Supplier().AppendEvent(ctx, fact, lines)
	}); err != nil {
		return Result{}, err
	}

	return Result{Disposition: DispositionCommitted, Version: version, Warnings: warnings}, nil
}

// cancellationFee resolves the fee from the v2 cancellation block or the
// legacy flat fields.
func cancellationFee(e schema.SupplierEvent) (int64, string) {
	if c := e.Supplier.Cancellation; c != nil && c.FeeAmount != 0 {
		return c.FeeAmount.Int64(), c.FeeCurrency
	}
	return e.Supplier.CancellationFeeAmount.Int64(), e.Supplier.CancellationFeeCurrency
}

// buildPayableLines flattens the parties block into line rows at the
// event's version, synthesizing the CANCELLATION_FEE line when the
// event cancels with a fee and no producer-supplied fee line exists.
func buildPayableLines(e schema.SupplierEvent, key valueobject.InstanceKey, fact model.SupplierTimelineFact, now time.Time) ([]model.SupplierPayableLine, error) {
	var lines []model.SupplierPayableLine
	hasFeeLine := false

	if e.Parties != nil {
		for _, party := range *e.Parties {
			for _, l := range party.Lines {
				effect, err := valueobject.ParseAmountEffect(l.AmountEffect)
				if err != nil {
					return nil, fault.Wrap(fault.KindValidation, err, "amount_effect")
				}
				if l.ObligationType == model.ObligationCancellationFee {
					hasFeeLine = true
				}
				line := model.SupplierPayableLine{
					LineID:                  uuid.NewString(),
					EventID:                 fact.EventID,
					OrderID:                 key.OrderID,
					OrderDetailID:           key.OrderDetailID,
					SupplierReferenceID:     key.SupplierReferenceID,
					FulfillmentInstanceID:   key.FulfillmentInstanceID,
					SupplierTimelineVersion: fact.SupplierTimelineVersion,
					ObligationType:          l.ObligationType,
					PartyType:               schema.PartyTypeOf(party.PartyType),
					PartyID:                 party.PartyID,
					PartyName:               party.PartyName,
					Amount:                  l.Amount.Int64(),
					AmountEffect:            effect,
					Currency:                lineCurrency(l.Currency, fact.Currency),
					IngestedAt:              now,
					Metadata:                l.Metadata,
				}
				if l.Calculation != nil {
					line.CalculationBasis = l.Calculation.Basis
					line.CalculationRate = l.Calculation.Rate
					line.CalculationDescription = l.Calculation.Description
				}
				if err := line.Validate(); err != nil {
					return nil, err
				}
				lines = append(lines, line)
			}
		}
	}

	if fact.Status == valueobject.SupplierCancelledWithFee && fact.CancellationFeeAmount > 0 && !hasFeeLine {
		lines = append(lines, model.SupplierPayableLine{
			LineID:                  uuid.NewString(),
			EventID:                 fact.EventID,
			OrderID:                 key.OrderID,
			OrderDetailID:           key.OrderDetailID,
			SupplierReferenceID:     key.SupplierReferenceID,
			FulfillmentInstanceID:   key.FulfillmentInstanceID,
			SupplierTimelineVersion: fact.SupplierTimelineVersion,
			ObligationType:          model.ObligationCancellationFee,
			PartyType:               model.PartySupplier,
			PartyID:                 fact.SupplierID,
			Amount:                  fact.CancellationFeeAmount,
			AmountEffect:            valueobject.IncreasesPayable,
			Currency:                lineCurrency(fact.CancellationFeeCurrency, fact.Currency),
			IngestedAt:              now,
		})
	}
	return lines, nil
}

func lineCurrency(currency, fallback string) string {
	if currency != "" {
		return currency
	}
	return fallback
}
