// Package port declares the persistence boundary of the core. All
// repositories are append-only: there is no update or delete operation
// on any fact table.
package port

import (
	"context"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
)

// PricingRepository persists pricing component facts.
type PricingRepository interface {
	// AppendSnapshot writes all components of one pricing event
	// atomically. Rows whose instance id already exists are skipped.
	AppendSnapshot(ctx context.Context, rows []model.PricingComponentFact) error
	// HasEvent reports whether an event id was already ingested for the order.
	HasEvent(ctx context.Context, orderID, eventID string) (bool, error)
	// LatestVersion returns the highest committed pricing version for the
	// order, or 0 when none exists.
	LatestVersion(ctx context.Context, orderID string) (int, error)
	// ListByOrder returns every component row of the order, all versions.
	ListByOrder(ctx context.Context, orderID string) ([]model.PricingComponentFact, error)
	// ListBySemanticID returns all non-refund occurrences of a component.
	ListBySemanticID(ctx context.Context, semanticID string) ([]model.PricingComponentFact, error)
	// ListRefundsOf returns refund components linked to a semantic id.
	ListRefundsOf(ctx context.Context, semanticID string) ([]model.PricingComponentFact, error)
	// OrderIDs returns the distinct order ids present in the table.
	OrderIDs(ctx context.Context) ([]string, error)
}

// PaymentRepository persists payment timeline facts.
type PaymentRepository interface {
	Append(ctx context.Context, fact model.PaymentTimelineFact) error
	HasEvent(ctx context.Context, eventID string) (bool, error)
	LatestVersion(ctx context.Context, orderID string) (int, error)
	ListByOrder(ctx context.Context, orderID string) ([]model.PaymentTimelineFact, error)
	OrderIDs(ctx context.Context) ([]string, error)
}

// SupplierRepository persists supplier timeline facts and their payable
// lines.
type SupplierRepository interface {
	// AppendEvent writes the timeline row and its payable lines in one
	// transaction.
	AppendEvent(ctx context.Context, fact model.SupplierTimelineFact, lines []model.SupplierPayableLine) error
	// AppendStandaloneLine writes a partner-adjustment line (version -1).
	AppendStandaloneLine(ctx context.Context, line model.SupplierPayableLine) error
	HasEvent(ctx context.Context, eventID string) (bool, error)
	// LatestVersion returns the highest committed timeline version for
	// one payable instance, or 0 when none exists.
	LatestVersion(ctx context.Context, key valueobject.InstanceKey) (int, error)
	ListByOrder(ctx context.Context, orderID string) ([]model.SupplierTimelineFact, error)
	ListLinesByOrder(ctx context.Context, orderID string) ([]model.SupplierPayableLine, error)
	OrderIDs(ctx context.Context) ([]string, error)
}

// RefundRepository persists refund timeline facts.
type RefundRepository interface {
	Append(ctx context.Context, fact model.RefundTimelineFact) error
	HasEvent(ctx context.Context, eventID string) (bool, error)
	LatestVersion(ctx context.Context, orderID, refundID string) (int, error)
	ListByOrder(ctx context.Context, orderID string) ([]model.RefundTimelineFact, error)
	OrderIDs(ctx context.Context) ([]string, error)
}

// DLQRepository parks and serves dead-lettered events.
type DLQRepository interface {
	Append(ctx context.Context, entry model.DLQEntry) error
	List(ctx context.Context, filter model.DLQFilter) ([]model.DLQEntry, error)
	Get(ctx context.Context, dlqID string) (model.DLQEntry, error)
	// MarkRetried increments the retry counter after a replay attempt.
	MarkRetried(ctx context.Context, dlqID string) error
}

// FactStore bundles every repository. The ingestion pipeline and the
// projections depend on this single port.
type FactStore interface {
	Pricing() PricingRepository
	Payment() PaymentRepository
	Supplier() SupplierRepository
	Refund() RefundRepository
	DLQ() DLQRepository
}

// EventPublisher re-emits raw events onto the bus (DLQ replay).
type EventPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}
