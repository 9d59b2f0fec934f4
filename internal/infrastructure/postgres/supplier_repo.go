package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
	pg "github.com/adhikag24/unified-pricing-layer-mvp/pkg/postgres"
)

type supplierRepo struct {
	pool *pgxpool.Pool
}

const supplierColumns = `
	event_id, order_id, order_detail_id, supplier_timeline_version,
	event_type, supplier_id, booking_code, supplier_reference_id,
	COALESCE(fulfillment_instance_id, ''), status, amount, amount_basis,
	currency, cancellation_fee_amount, cancellation_fee_currency,
	fx_context, entity_context, emitter_service, emitted_at, ingested_at, metadata`

const lineColumns = `
	line_id, event_id, order_id, order_detail_id, supplier_reference_id,
	COALESCE(fulfillment_instance_id, ''), supplier_timeline_version,
	obligation_type, party_type, party_id, party_name, amount,
	amount_effect, currency, calculation_basis,
	COALESCE(calculation_rate::text, '0'), calculation_description,
	ingested_at, metadata`

func (r *supplierRepo) AppendEvent(ctx context.Context, fact model.SupplierTimelineFact, lines []model.SupplierPayableLine) error {
	return pg.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO supplier_timeline (
				event_id, order_id, order_detail_id, supplier_timeline_version,
				event_type, supplier_id, booking_code, supplier_reference_id,
				fulfillment_instance_id, status, amount, amount_basis,
				currency, cancellation_fee_amount, cancellation_fee_currency,
				fx_context, entity_context, emitter_service, emitted_at, ingested_at, metadata
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
			ON CONFLICT (event_id) DO NOTHING`,
			fact.EventID, fact.OrderID, fact.OrderDetailID, fact.SupplierTimelineVersion,
			fact.EventType, fact.SupplierID, fact.BookingCode, fact.SupplierReferenceID,
			nullable(fact.FulfillmentInstanceID), string(fact.Status), fact.Amount, fact.AmountBasis,
			fact.Currency, fact.CancellationFeeAmount, fact.CancellationFeeCurrency,
			jsonb(fact.FXContext), jsonb(fact.EntityContext), fact.EmitterService,
			fact.EmittedAt, fact.IngestedAt, jsonb(fact.Metadata),
		)
		if err != nil {
			if pg.UniqueConstraint(err) == "uq_supplier_instance_version" {
				return fault.Wrap(fault.KindVersionConflict, err,
					"supplier version %d already taken for instance %s",
					fact.SupplierTimelineVersion, fact.InstanceKey())
			}
			return fault.Wrap(fault.KindStorage, err, "insert supplier fact %s", fact.EventID)
		}
		if tag.RowsAffected() == 0 {
			// Redelivered event; its lines are already committed too.
			return nil
		}

		for _, line := range lines {
			if err := insertLine(ctx, tx, line); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *supplierRepo) AppendStandaloneLine(ctx context.Context, line model.SupplierPayableLine) error {
	return insertLine(ctx, r.pool, line)
}

func insertLine(ctx context.Context, q pg.Querier, line model.SupplierPayableLine) error {
	_, err := q.Exec(ctx, `
		INSERT INTO supplier_payable_lines (
			line_id, event_id, order_id, order_detail_id, supplier_reference_id,
			fulfillment_instance_id, supplier_timeline_version,
			obligation_type, party_type, party_id, party_name, amount,
			amount_effect, currency, calculation_basis, calculation_rate,
			calculation_description, ingested_at, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (line_id) DO NOTHING`,
		line.LineID, line.EventID, line.OrderID, line.OrderDetailID, line.SupplierReferenceID,
		nullable(line.FulfillmentInstanceID), line.SupplierTimelineVersion,
		line.ObligationType, string(line.PartyType), line.PartyID, line.PartyName, line.Amount,
		string(line.AmountEffect), line.Currency, line.CalculationBasis, nullableRate(line.CalculationRate),
		line.CalculationDescription, line.IngestedAt, jsonb(line.Metadata),
	)
	if err != nil {
		return fault.Wrap(fault.KindStorage, err, "insert payable line %s", line.LineID)
	}
	return nil
}

// nullableRate renders the decimal rate for the NUMERIC column, NULL
// when zero (no calculation block on the wire).
func nullableRate(rate decimal.Decimal) any {
	if rate.IsZero() {
		return nil
	}
	return rate.String()
}

func (r *supplierRepo) HasEvent(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM supplier_timeline WHERE event_id = $1)`,
		eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("supplier has event: %w", err)
	}
	return exists, nil
}

func (r *supplierRepo) LatestVersion(ctx context.Context, key valueobject.InstanceKey) (int, error) {
	var latest int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(supplier_timeline_version), 0) FROM supplier_timeline
		WHERE order_id = $1
		  AND order_detail_id = $2
		  AND supplier_reference_id = $3
		  AND COALESCE(fulfillment_instance_id, '__BOOKING_LEVEL__') = $4`,
		key.OrderID, key.OrderDetailID, key.SupplierReferenceID, key.FulfillmentKey(),
	).Scan(&latest)
	if err != nil {
		return 0, fmt.Errorf("supplier latest version: %w", err)
	}
	return latest, nil
}

func (r *supplierRepo) ListByOrder(ctx context.Context, orderID string) ([]model.SupplierTimelineFact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+supplierColumns+`
		FROM supplier_timeline
		WHERE order_id = $1
		ORDER BY supplier_timeline_version, ingested_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("supplier list by order: %w", err)
	}
	defer rows.Close()

	var out []model.SupplierTimelineFact
	for rows.Next() {
		var f model.SupplierTimelineFact
		var status string
		if err := rows.Scan(
			&f.EventID, &f.OrderID, &f.OrderDetailID, &f.SupplierTimelineVersion,
			&f.EventType, &f.SupplierID, &f.BookingCode, &f.SupplierReferenceID,
			&f.FulfillmentInstanceID, &status, &f.Amount, &f.AmountBasis,
			&f.Currency, &f.CancellationFeeAmount, &f.CancellationFeeCurrency,
			&f.FXContext, &f.EntityContext, &f.EmitterService, &f.EmittedAt, &f.IngestedAt, &f.Metadata,
		); err != nil {
			return nil, fmt.Errorf("scan supplier row: %w", err)
		}
		f.Status = valueobject.SupplierStatus(status)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *supplierRepo) ListLinesByOrder(ctx context.Context, orderID string) ([]model.SupplierPayableLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+lineColumns+`
		FROM supplier_payable_lines
		WHERE order_id = $1
		ORDER BY supplier_timeline_version, ingested_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("payable lines by order: %w", err)
	}
	defer rows.Close()

	var out []model.SupplierPayableLine
	for rows.Next() {
		var l model.SupplierPayableLine
		var partyType, effect, rate string
		if err := rows.Scan(
			&l.LineID, &l.EventID, &l.OrderID, &l.OrderDetailID, &l.SupplierReferenceID,
			&l.FulfillmentInstanceID, &l.SupplierTimelineVersion,
			&l.ObligationType, &partyType, &l.PartyID, &l.PartyName, &l.Amount,
			&effect, &l.Currency, &l.CalculationBasis, &rate, &l.CalculationDescription,
			&l.IngestedAt, &l.Metadata,
		); err != nil {
			return nil, fmt.Errorf("scan payable line: %w", err)
		}
		l.PartyType = model.PartyType(partyType)
		l.AmountEffect = valueobject.AmountEffect(effect)
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("parse calculation rate %q: %w", rate, err)
		}
		l.CalculationRate = parsed
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *supplierRepo) OrderIDs(ctx context.Context) ([]string, error) {
	timeline, err := distinctOrderIDs(ctx, r.pool, "supplier_timeline")
	if err != nil {
		return nil, err
	}
	standalone, err := distinctOrderIDs(ctx, r.pool, "supplier_payable_lines")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(timeline))
	out := timeline
	for _, id := range timeline {
		seen[id] = struct{}{}
	}
	for _, id := range standalone {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out, nil
}
