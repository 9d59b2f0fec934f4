package ingest

import (
	"context"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/schema"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
)

// ingestRefundLifecycle appends one status-only refund fact, versioned
// per (order_id, refund_id). refund.issued does not pass through here;
// it carries components and is handled by the pricing path.
func (p *Pipeline) ingestRefundLifecycle(ctx context.Context, env schema.Envelope) (Result, error) {
	payload, err := schema.DecodeRefundLifecycle(env.Raw)
	if err != nil {
		return Result{}, err
	}

	if env.EventID != "" {
		seen, err := p.store.Refund().HasEvent(ctx, env.EventID)
		if err != nil {
			return Result{}, fault.Wrap(fault.KindStorage, err, "refund idempotency check")
		}
		if seen {
			p.logger.Warn("duplicate refund event skipped",
				"order_id", env.OrderID, "event_id", env.EventID)
			return Result{Disposition: DispositionSkipped}, nil
		}
	}

	scope := RefundScope(env.OrderID, payload.RefundID)
	unlock := p.locks.Acquire(scope.LockKey())
	defer unlock()

	version, err := p.registry.Next(ctx, scope)
	if err != nil {
		return Result{}, fault.Wrap(fault.KindStorage, err, "refund version read")
	}

	now := p.now().UTC()
	fact := model.RefundTimelineFact{
		EventID:               eventIDOrNew(env),
		OrderID:               env.OrderID,
		RefundID:              payload.RefundID,
		RefundTimelineVersion: version,
		EventType:             env.EventType,
		Status:                model.RefundStatus(payload.Status),
		RefundAmount:          payload.RefundAmount.Int64(),
		Currency:              payload.Currency,
		RefundReason:          payload.RefundReason,
		EmitterService:        env.EmitterService,
		EmittedAt:             env.EmittedTime(now),
		IngestedAt:            now,
		Metadata:              env.Meta,
	}

	if err := p.withRetry(ctx, env.EventType, func() error {
		return p.store.Refund().Append(ctx, fact)
	}); err != nil {
		return Result{}, err
	}

	return Result{Disposition: DispositionCommitted, Version: version}, nil
}
