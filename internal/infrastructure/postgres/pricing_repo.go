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

type pricingRepo struct {
	pool *pgxpool.Pool
}

const pricingColumns = `
	component_instance_id, component_semantic_id, order_id,
	pricing_snapshot_id, version, component_type, canonical_component_type,
	amount, currency, dimensions, description, is_refund,
	refund_of_component_semantic_id, event_id, emitter_service,
	emitted_at, ingested_at, metadata`

func (r *pricingRepo) AppendSnapshot(ctx context.Context, rows []model.PricingComponentFact) error {
	return pg.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		for _, row := range rows {
			_, err := tx.Exec(ctx, `
				INSERT INTO pricing_components_fact (`+pricingColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
				ON CONFLICT (component_instance_id) DO NOTHING`,
				row.ComponentInstanceID, row.ComponentSemanticID, row.OrderID,
				row.PricingSnapshotID, row.Version, row.ComponentType, row.CanonicalComponentType,
				row.Amount, row.Currency, jsonb(row.Dimensions), row.Description, row.IsRefund,
				row.RefundOfSemanticID, row.EventID, row.EmitterService,
				row.EmittedAt, row.IngestedAt, jsonb(row.Metadata),
			)
			if err != nil {
				return fault.Wrap(fault.KindStorage, err, "insert pricing component %s", row.ComponentInstanceID)
			}
		}
		return nil
	})
}

func (r *pricingRepo) HasEvent(ctx context.Context, orderID, eventID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pricing_components_fact
			WHERE order_id = $1 AND event_id = $2
		)`, orderID, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pricing has event: %w", err)
	}
	return exists, nil
}

func (r *pricingRepo) LatestVersion(ctx context.Context, orderID string) (int, error) {
	var latest int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM pricing_components_fact
		WHERE order_id = $1`, orderID).Scan(&latest)
	if err != nil {
		return 0, fmt.Errorf("pricing latest version: %w", err)
	}
	return latest, nil
}

func (r *pricingRepo) ListByOrder(ctx context.Context, orderID string) ([]model.PricingComponentFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+pricingColumns+`
		FROM pricing_components_fact
		WHERE order_id = $1
		ORDER BY version, ingested_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("pricing list by order: %w", err)
	}
	return scanPricingRows(rows)
}

func (r *pricingRepo) ListBySemanticID(ctx context.Context, semanticID string) ([]model.PricingComponentFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+pricingColumns+`
		FROM pricing_components_fact
		WHERE component_semantic_id = $1 AND NOT is_refund
		ORDER BY version, ingested_at`, semanticID)
	if err != nil {
		return nil, fmt.Errorf("pricing list by semantic id: %w", err)
	}
	return scanPricingRows(rows)
}

func (r *pricingRepo) ListRefundsOf(ctx context.Context, semanticID string) ([]model.PricingComponentFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+pricingColumns+`
		FROM pricing_components_fact
		WHERE is_refund AND refund_of_component_semantic_id = $1
		ORDER BY version, ingested_at`, semanticID)
	if err != nil {
		return nil, fmt.Errorf("pricing list refunds of: %w", err)
	}
	return scanPricingRows(rows)
}

func (r *pricingRepo) OrderIDs(ctx context.Context) ([]string, error) {
	return distinctOrderIDs(ctx, r.pool, "pricing_components_fact")
}

func scanPricingRows(rows pgx.Rows) ([]model.PricingComponentFact, error) {
	defer rows.Close()
	var out []model.PricingComponentFact
	for rows.Next() {
		var f model.PricingComponentFact
		if err := rows.Scan(
			&f.ComponentInstanceID, &f.ComponentSemanticID, &f.OrderID,
			&f.PricingSnapshotID, &f.Version, &f.ComponentType, &f.CanonicalComponentType,
			&f.Amount, &f.Currency, &f.Dimensions, &f.Description, &f.IsRefund,
			&f.RefundOfSemanticID, &f.EventID, &f.EmitterService,
			&f.EmittedAt, &f.IngestedAt, &f.Metadata,
		); err != nil {
			return nil, fmt.Errorf("scan pricing row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// distinctOrderIDs is shared by the per-family order listings.
func distinctOrderIDs(ctx context.Context, q pg.Querier, table string) ([]string, error) {
	rows, err := q.Query(ctx, `SELECT DISTINCT order_id FROM `+table+` ORDER BY order_id`)
	if err != nil {
		return nil, fmt.Errorf("%s order ids: %w", table, err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
