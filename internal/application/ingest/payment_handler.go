package ingest

import (
	"context"
	"encoding/json"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/schema"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
)

// ingestPayment appends one payment timeline fact, versioned per order.
func (p *Pipeline) ingestPayment(ctx context.Context, env schema.Envelope) (Result, error) {
	body, err := schema.DecodePayment(env.Raw)
	if err != nil {
		return Result{}, err
	}

	if env.EventID != "" {
		seen, err := p.store.Payment().HasEvent(ctx, env.EventID)
		if err != nil {
			return Result{}, fault.Wrap(fault.KindStorage, err, "payment idempotency check")
		}
		if seen {
			p.logger.Warn("duplicate payment event skipped",
				"order_id", env.OrderID, "event_id", env.EventID)
			return Result{Disposition: DispositionSkipped}, nil
		}
	}

	scope := PaymentScope(env.OrderID)
	unlock := p.locks.Acquire(scope.LockKey())
	defer unlock()

	version, err := p.registry.Next(ctx, scope)
	if err != nil {
		return Result{}, fault.Wrap(fault.KindStorage, err, "payment version read")
	}

	var instrument json.RawMessage
	if body.Instrument != nil {
		instrument, err = json.Marshal(body.Instrument)
		if err != nil {
			return Result{}, fault.Wrap(fault.KindValidation, err, "instrument encode")
		}
	}

	now := p.now().UTC()
	fact := model.PaymentTimelineFact{
		EventID:             eventIDOrNew(env),
		OrderID:             env.OrderID,
		TimelineVersion:     version,
		EventType:           env.EventType,
		Status:              model.PaymentStatus(body.Status),
		PaymentMethod:       body.PaymentMethod,
		PaymentIntentID:     body.PaymentID,
		AuthorizedAmount:    body.AuthorizedAmount.Int64(),
		CapturedAmount:      body.CapturedAmount.Int64(),
		CapturedAmountTotal: body.CapturedAmountTotal.Int64(),
		Amount:              body.Amount.Int64(),
		Currency:            body.Currency,
		Instrument:          instrument,
		PGReferenceID:       body.PGReferenceID,
		EmitterService:      env.EmitterService,
		EmittedAt:           env.EmittedTime(now),
		IngestedAt:          now,
		Metadata:            env.Meta,
	}

	if err := p.withRetry(ctx, env.EventType, func() error {
		return p.store.Payment().Append(ctx, fact)
	}); err != nil {
		return Result{}, err
	}

	return Result{Disposition: DispositionCommitted, Version: version}, nil
}
