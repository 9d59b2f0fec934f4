package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
)

type dlqRepo struct {
	pool *pgxpool.Pool
}

const dlqColumns = `
	dlq_id, event_id, event_type, order_id, raw_event,
	error_kind, error_detail, received_at, retry_count`

func (r *dlqRepo) Append(ctx context.Context, entry model.DLQEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO dlq_events (`+dlqColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (dlq_id) DO NOTHING`,
		entry.DLQID, entry.EventID, entry.EventType, entry.OrderID, jsonb(entry.RawEvent),
		string(entry.ErrorKind), entry.ErrorDetail, entry.ReceivedAt, entry.RetryCount,
	)
	if err != nil {
		return fault.Wrap(fault.KindStorage, err, "insert dlq entry %s", entry.DLQID)
	}
	return nil
}

func (r *dlqRepo) List(ctx context.Context, filter model.DLQFilter) ([]model.DLQEntry, error) {
	query := `SELECT ` + dlqColumns + ` FROM dlq_events WHERE 1=1`
	args := []any{}
	if filter.ErrorKind != "" {
		args = append(args, string(filter.ErrorKind))
		query += fmt.Sprintf(" AND error_kind = $%d", len(args))
	}
	if filter.OrderID != "" {
		args = append(args, filter.OrderID)
		query += fmt.Sprintf(" AND order_id = $%d", len(args))
	}
	if filter.EventType != "" {
		args = append(args, filter.EventType)
		query += fmt.Sprintf(" AND event_type = $%d", len(args))
	}
	query += " ORDER BY received_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("dlq list: %w", err)
	}
	defer rows.Close()

	var out []model.DLQEntry
	for rows.Next() {
		entry, err := scanDLQ(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (r *dlqRepo) Get(ctx context.Context, dlqID string) (model.DLQEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+dlqColumns+` FROM dlq_events WHERE dlq_id = $1`, dlqID)
	entry, err := scanDLQ(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DLQEntry{}, fault.New(fault.KindValidation, "dlq entry %s not found", dlqID)
	}
	return entry, err
}

func (r *dlqRepo) MarkRetried(ctx context.Context, dlqID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE dlq_events SET retry_count = retry_count + 1 WHERE dlq_id = $1`, dlqID)
	if err != nil {
		return fault.Wrap(fault.KindStorage, err, "dlq mark retried %s", dlqID)
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.KindValidation, "dlq entry %s not found", dlqID)
	}
	return nil
}

func scanDLQ(row pgx.Row) (model.DLQEntry, error) {
	var e model.DLQEntry
	var kind string
	if err := row.Scan(
		&e.DLQID, &e.EventID, &e.EventType, &e.OrderID, &e.RawEvent,
		&kind, &e.ErrorDetail, &e.ReceivedAt, &e.RetryCount,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan dlq entry: %w", err)
	}
	e.ErrorKind = fault.Kind(kind)
	return e, nil
}
