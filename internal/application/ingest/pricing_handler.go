package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/schema"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/identity"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
)

// ingestPricing handles PricingUpdated and, with isRefund set,
// refund.issued. Both write pricing component rows versioned in the
// pricing family of the order; refund rows additionally carry lineage.
func (p *Pipeline) ingestPricing(ctx context.Context, env schema.Envelope, isRefund bool) (Result, error) {
	payload, err := schema.DecodePricingUpdated(env.Raw, isRefund)
	if err != nil {
		return Result{}, err
	}

	if env.EventID != "" {
		seen, err := p.store.Pricing().HasEvent(ctx, env.OrderID, env.EventID)
		if err != nil {
			return Result{}, fault.Wrap(fault.KindStorage, err, "pricing idempotency check")
		}
		if seen {
			p.logger.Warn("duplicate pricing event skipped",
				"order_id", env.OrderID, "event_id", env.EventID)
			return Result{Disposition: DispositionSkipped}, nil
		}
	}

	scope := PricingScope(env.OrderID)
	unlock := p.locks.Acquire(scope.LockKey())
	defer unlock()

	latest, err := p.registry.Latest(ctx, scope)
	if err != nil {
		return Result{}, fault.Wrap(fault.KindStorage, err, "pricing version read")
	}
	version := latest + 1
	if payload.Version != nil {
		// Explicit versions come from replays and out-of-order producers;
		// they are stored verbatim, gaps included.
		if *payload.Version < 1 {
			return Result{}, fault.New(fault.KindValidation, "explicit version %d must be >= 1", *payload.Version)
		}
		version = *payload.Version
		p.registry.WarnOnGap(scope, latest, version)
	}

	var warnings []string
	snapshotID := uuid.NewString()
	now := p.now().UTC()
	emitted := env.EmittedTime(now)

	rows := make([]model.PricingComponentFact, 0, len(payload.Components))
	for i, c := range payload.Components {
		dims, err := identity.CanonicalDimensions(c.Dimensions)
		if err != nil {
			return Result{}, fault.Wrap(fault.KindIdentity, err, "components[%d]", i)
		}
		refundID := ""
		if isRefund {
			refundID = payload.RefundID
		}
		semanticID, err := identity.SemanticID(env.OrderID, refundID, dims, c.ComponentType)
		if err != nil {
			return Result{}, fault.Wrap(fault.KindIdentity, err, "components[%d]", i)
		}

		row := model.PricingComponentFact{
			ComponentSemanticID:    semanticID,
			ComponentInstanceID:    identity.InstanceID(semanticID, snapshotID),
			OrderID:                env.OrderID,
			PricingSnapshotID:      snapshotID,
			Version:                version,
			ComponentType:          c.ComponentType,
			CanonicalComponentType: model.CanonicalizeComponentType(c.ComponentType),
			Amount:                 c.Amount.Int64(),
			Currency:               c.Currency,
			Dimensions:             identity.CanonicalJSON(dims),
			Description:            c.Description,
			IsRefund:               isRefund || c.IsRefund,
			RefundOfSemanticID:     c.RefundOf,
			EventID:                env.EventID,
			EmitterService:         env.EmitterService,
			EmittedAt:              emitted,
			IngestedAt:             now,
			Metadata:               componentMetadata(c, payload, dims),
		}
		if err := row.Validate(); err != nil {
			return Result{}, err
		}
		rows = append(rows, row)
	}

	if payload.Totals != nil {
		if sum := payload.ComponentSum(); sum != payload.Totals.CustomerTotal.Int64() {
			w := fmt.Sprintf("component sum %d != declared customer_total %d",
				sum, payload.Totals.CustomerTotal.Int64())
			warnings = append(warnings, w)
			p.logger.Warn("pricing totals mismatch",
				"order_id", env.OrderID, "version", version, "detail", w)
		}
	}

	if err := p.withRetry(ctx, env.EventType, func() error {
		return p.store.Pricing().AppendSnapshot(ctx, rows)
	}); err != nil {
		return Result{}, err
	}

	return Result{Disposition: DispositionCommitted, Version: version, Warnings: warnings}, nil
}

// componentMetadata merges the component's own metadata with the
// resolved detail context, when the component is pinned to an order
// detail that has one.
func componentMetadata(c schema.PricingComponent, payload schema.PricingUpdated, dims map[string]string) json.RawMessage {
	dc := payload.ContextFor(dims["order_detail_id"])
	if dc == nil {
		return c.Metadata
	}
	merged := map[string]json.RawMessage{}
	if len(c.Metadata) > 0 {
		// Non-object metadata is kept under its own key rather than lost.
		if err := json.Unmarshal(c.Metadata, &merged); err != nil {
			merged = map[string]json.RawMessage{"metadata": c.Metadata}
		}
	}
	ctxJSON, err := json.Marshal(dc)
	if err != nil {
		return c.Metadata
	}
	merged["detail_context"] = ctxJSON
	out, err := json.Marshal(merged)
	if err != nil {
		return c.Metadata
	}
	return out
}
