package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	pg "github.com/adhikag24/unified-pricing-layer-mvp/pkg/postgres"
)

type paymentRepo struct {
	pool *pgxpool.Pool
}

const paymentColumns = `
	event_id, order_id, timeline_version, event_type, status,
	payment_channel, payment_provider, payment_brand, payment_intent_id,
	authorized_amount, captured_amount, captured_amount_total, amount,
	currency, instrument, pg_reference_id, emitter_service,
	emitted_at, ingested_at, metadata`

func (r *paymentRepo) Append(ctx context.Context, fact model.PaymentTimelineFact) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payment_timeline (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (event_id) DO NOTHING`,
		fact.EventID, fact.OrderID, fact.TimelineVersion, fact.EventType, string(fact.Status),
		fact.PaymentMethod.Channel, fact.PaymentMethod.Provider, fact.PaymentMethod.Brand, fact.PaymentIntentID,
		fact.AuthorizedAmount, fact.CapturedAmount, fact.CapturedAmountTotal, fact.Amount,
		fact.Currency, jsonb(fact.Instrument), fact.PGReferenceID, fact.EmitterService,
		fact.EmittedAt, fact.IngestedAt, jsonb(fact.Metadata),
	)
	if err != nil {
		if pg.UniqueConstraint(err) == "uq_payment_order_version" {
			return fault.Wrap(fault.KindVersionConflict, err,
				"payment version %d already taken for order %s", fact.TimelineVersion, fact.OrderID)
		}
		return fault.Wrap(fault.KindStorage, err, "insert payment fact %s", fact.EventID)
	}
	return nil
}

func (r *paymentRepo) HasEvent(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM payment_timeline WHERE event_id = $1)`,
		eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("payment has event: %w", err)
	}
	return exists, nil
}

func (r *paymentRepo) LatestVersion(ctx context.Context, orderID string) (int, error) {
	var latest int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(timeline_version), 0) FROM payment_timeline
		WHERE order_id = $1`, orderID).Scan(&latest)
	if err != nil {
		return 0, fmt.Errorf("payment latest version: %w", err)
	}
	return latest, nil
}

func (r *paymentRepo) ListByOrder(ctx context.Context, orderID string) ([]model.PaymentTimelineFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payment_timeline
		WHERE order_id = $1
		ORDER BY timeline_version`, orderID)
	if err != nil {
		return nil, fmt.Errorf("payment list by order: %w", err)
	}
	return scanPaymentRows(rows)
}

func (r *paymentRepo) OrderIDs(ctx context.Context) ([]string, error) {
	return distinctOrderIDs(ctx, r.pool, "payment_timeline")
}

func scanPaymentRows(rows pgx.Rows) ([]model.PaymentTimelineFact, error) {
	defer rows.Close()
	var out []model.PaymentTimelineFact
	for rows.Next() {
		var f model.PaymentTimelineFact
		var status string
		if err := rows.Scan(
			&f.EventID, &f.OrderID, &f.TimelineVersion, &f.EventType, &status,
			&f.PaymentMethod.Channel, &f.PaymentMethod.Provider, &f.PaymentMethod.Brand, &f.PaymentIntentID,
			&f.AuthorizedAmount, &f.CapturedAmount, &f.CapturedAmountTotal, &f.Amount,
			&f.Currency, &f.Instrument, &f.PGReferenceID, &f.EmitterService,
			&f.EmittedAt, &f.IngestedAt, &f.Metadata,
		); err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		f.Status = model.PaymentStatus(status)
		out = append(out, f)
	}
	return out, rows.Err()
}

var _ pg.Querier = (*pgxpool.Pool)(nil)
