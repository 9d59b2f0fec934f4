// Package postgres implements the fact store ports on PostgreSQL via
// pgx. Every write is an append; uniqueness violations either mean an
// at-least-once redelivery (skipped) or a version slot race (surfaced
// as a retryable version conflict).
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/port"
	pg "github.com/adhikag24/unified-pricing-layer-mvp/pkg/postgres"
)

// Store is the pgx-backed port.FactStore.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store over a connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Pricing() port.PricingRepository   { return &pricingRepo{pool: s.pool} }
func (s *Store) Payment() port.PaymentRepository   { return &paymentRepo{pool: s.pool} }
func (s *Store) Supplier() port.SupplierRepository { return &supplierRepo{pool: s.pool} }
func (s *Store) Refund() port.RefundRepository     { return &refundRepo{pool: s.pool} }
func (s *Store) DLQ() port.DLQRepository           { return &dlqRepo{pool: s.pool} }

// Ready reports whether the database is reachable.
func (s *Store) Ready(ctx context.Context) error {
	return pg.HealthCheck(ctx, s.pool)
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// jsonb maps empty JSON payloads to SQL NULL.
func jsonb(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
