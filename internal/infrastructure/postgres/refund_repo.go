package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	pg "github.com/adhikag24/unified-pricing-layer-mvp/pkg/postgres"
)

type refundRepo struct {
	pool *pgxpool.Pool
}

const refundColumns = `
	event_id, order_id, refund_id, refund_timeline_version, event_type,
	status, refund_amount, currency, refund_reason, emitter_service,
	emitted_at, ingested_at, metadata`

func (r *refundRepo) Append(ctx context.Context, fact model.RefundTimelineFact) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refund_timeline (`+refundColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (event_id) DO NOTHING`,
		fact.EventID, fact.OrderID, fact.RefundID, fact.RefundTimelineVersion, fact.EventType,
		string(fact.Status), fact.RefundAmount, fact.Currency, fact.RefundReason, fact.EmitterService,
		fact.EmittedAt, fact.IngestedAt, jsonb(fact.Metadata),
	)
	if err != nil {
		if pg.UniqueConstraint(err) == "uq_refund_order_version" {
			return fault.Wrap(fault.KindVersionConflict, err,
				"refund version %d already taken for %s/%s",
				fact.RefundTimelineVersion, fact.OrderID, fact.RefundID)
		}
		return fault.Wrap(fault.KindStorage, err, "insert refund fact %s", fact.EventID)
	}
	return nil
}

func (r *refundRepo) HasEvent(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM refund_timeline WHERE event_id = $1)`,
		eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("refund has event: %w", err)
	}
	return exists, nil
}

func (r *refundRepo) LatestVersion(ctx context.Context, orderID, refundID string) (int, error) {
	var latest int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(refund_timeline_version), 0) FROM refund_timeline
		WHERE order_id = $1 AND refund_id = $2`, orderID, refundID).Scan(&latest)
	if err != nil {
		return 0, fmt.Errorf("refund latest version: %w", err)
	}
	return latest, nil
}

func (r *refundRepo) ListByOrder(ctx context.Context, orderID string) ([]model.RefundTimelineFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+refundColumns+`
		FROM refund_timeline
		WHERE order_id = $1
		ORDER BY refund_id, refund_timeline_version`, orderID)
	if err != nil {
		return nil, fmt.Errorf("refund list by order: %w", err)
	}
	defer rows.Close()

	var out []model.RefundTimelineFact
	for rows.Next() {
		var f model.RefundTimelineFact
		var status string
		if err := rows.Scan(
			&f.EventID, &f.OrderID, &f.RefundID, &f.RefundTimelineVersion, &f.EventType,
			&status, &f.RefundAmount, &f.Currency, &f.RefundReason, &f.EmitterService,
			&f.EmittedAt, &f.IngestedAt, &f.Metadata,
		); err != nil {
			return nil, fmt.Errorf("scan refund row: %w", err)
		}
		f.Status = model.RefundStatus(status)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *refundRepo) OrderIDs(ctx context.Context) ([]string, error) {
	return distinctOrderIDs(ctx, r.pool, "refund_timeline")
}
