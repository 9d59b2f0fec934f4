// Package memory implements the fact store ports in process. It backs
// hermetic tests and local development; semantics mirror the Postgres
// implementation, including primary-key idempotency on appends.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/port"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
)

// Store is an in-memory port.FactStore. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	pricing       []model.PricingComponentFact
	pricingByInst map[string]struct{}

	payments     []model.PaymentTimelineFact
	paymentByEID map[string]struct{}

	suppliers     []model.SupplierTimelineFact
	supplierByEID map[string]struct{}
	lines         []model.SupplierPayableLine
	lineByID      map[string]struct{}

	refunds     []model.RefundTimelineFact
	refundByEID map[string]struct{}

	dlq     []model.DLQEntry
	dlqByID map[string]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		pricingByInst: map[string]struct{}{},
		paymentByEID:  map[string]struct{}{},
		supplierByEID: map[string]struct{}{},
		lineByID:      map[string]struct{}{},
		refundByEID:   map[string]struct{}{},
		dlqByID:       map[string]int{},
	}
}

func (s *Store) Pricing() port.PricingRepository   { return (*pricingRepo)(s) }
func (s *Store) Payment() port.PaymentRepository   { return (*paymentRepo)(s) }
func (s *Store) Supplier() port.SupplierRepository { return (*supplierRepo)(s) }
func (s *Store) Refund() port.RefundRepository     { return (*refundRepo)(s) }
func (s *Store) DLQ() port.DLQRepository           { return (*dlqRepo)(s) }

type pricingRepo Store

func (r *pricingRepo) AppendSnapshot(_ context.Context, rows []model.PricingComponentFact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range rows {
		if _, ok := r.pricingByInst[row.ComponentInstanceID]; ok {
			continue
		}
		r.pricingByInst[row.ComponentInstanceID] = struct{}{}
		r.pricing = append(r.pricing, row)
	}
	return nil
}

func (r *pricingRepo) HasEvent(_ context.Context, orderID, eventID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, row := range r.pricing {
		if row.OrderID == orderID && row.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (r *pricingRepo) LatestVersion(_ context.Context, orderID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	latest := 0
	for _, row := range r.pricing {
		if row.OrderID == orderID && row.Version > latest {
			latest = row.Version
		}
	}
	return latest, nil
}

func (r *pricingRepo) ListByOrder(_ context.Context, orderID string) ([]model.PricingComponentFact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.PricingComponentFact
	for _, row := range r.pricing {
		if row.OrderID == orderID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *pricingRepo) ListBySemanticID(_ context.Context, semanticID string) ([]model.PricingComponentFact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.PricingComponentFact
	for _, row := range r.pricing {
		if row.ComponentSemanticID == semanticID && !row.IsRefund {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *pricingRepo) ListRefundsOf(_ context.Context, semanticID string) ([]model.PricingComponentFact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.PricingComponentFact
	for _, row := range r.pricing {
		if row.IsRefund && row.RefundOfSemanticID == semanticID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *pricingRepo) OrderIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	var out []string
	for _, row := range r.pricing {
		if _, ok := seen[row.OrderID]; !ok {
			seen[row.OrderID] = struct{}{}
			out = append(out, row.OrderID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type paymentRepo Store

func (r *paymentRepo) Append(_ context.Context, fact model.PaymentTimelineFact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.paymentByEID[fact.EventID]; ok {
		return nil
	}
	r.paymentByEID[fact.EventID] = struct{}{}
	r.payments = append(r.payments, fact)
	return nil
}

func (r *paymentRepo) HasEvent(_ context.Context, eventID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.paymentByEID[eventID]
	return ok, nil
}

func (r *paymentRepo) LatestVersion(_ context.Context, orderID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	latest := 0
	for _, f := range r.payments {
		if f.OrderID == orderID && f.TimelineVersion > latest {
			latest = f.TimelineVersion
		}
	}
	return latest, nil
}

func (r *paymentRepo) ListByOrder(_ context.Context, orderID string) ([]model.PaymentTimelineFact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.PaymentTimelineFact
	for _, f := range r.payments {
		if f.OrderID == orderID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimelineVersion < out[j].TimelineVersion })
	return out, nil
}

func (r *paymentRepo) OrderIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	var out []string
	for _, f := range r.payments {
		if _, ok := seen[f.OrderID]; !ok {
			seen[f.OrderID] = struct{}{}
			out = append(out, f.OrderID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type supplierRepo Store

func (r *supplierRepo) AppendEvent(_ context.Context, fact model.SupplierTimelineFact, lines []model.SupplierPayableLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.supplierByEID[fact.EventID]; ok {
		return nil
	}
	r.supplierByEID[fact.EventID] = struct{}{}
	r.suppliers = append(r.suppliers, fact)
	for _, l := range lines {
		if _, ok := r.lineByID[l.LineID]; ok {
			continue
		}
		r.lineByID[l.LineID] = struct{}{}
		r.lines = append(r.lines, l)
	}
	return nil
}

func (r *supplierRepo) AppendStandaloneLine(_ context.Context, line model.SupplierPayableLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lineByID[line.LineID]; ok {
		return nil
	}
	r.lineByID[line.LineID] = struct{}{}
	r.lines = append(r.lines, line)
	return nil
}

func (r *supplierRepo) HasEvent(_ context.Context, eventID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.supplierByEID[eventID]
	return ok, nil
}

func (r *supplierRepo) LatestVersion(_ context.Context, key valueobject.InstanceKey) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	latest := 0
	for _, f := range r.suppliers {
		if f.InstanceKey() == key && f.SupplierTimelineVersion > latest {
			latest = f.SupplierTimelineVersion
		}
	}
	return latest, nil
}

func (r *supplierRepo) ListByOrder(_ context.Context, orderID string) ([]model.SupplierTimelineFact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.SupplierTimelineFact
	for _, f := range r.suppliers {
		if f.OrderID == orderID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SupplierTimelineVersion < out[j].SupplierTimelineVersion
	})
	return out, nil
}

func (r *supplierRepo) ListLinesByOrder(_ context.Context, orderID string) ([]model.SupplierPayableLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.SupplierPayableLine
	for _, l := range r.lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SupplierTimelineVersion < out[j].SupplierTimelineVersion
	})
	return out, nil
}

func (r *supplierRepo) OrderIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	var out []string
	for _, f := range r.suppliers {
		if _, ok := seen[f.OrderID]; !ok {
			seen[f.OrderID] = struct{}{}
			out = append(out, f.OrderID)
		}
	}
	for _, l := range r.lines {
		if _, ok := seen[l.OrderID]; !ok {
			seen[l.OrderID] = struct{}{}
			out = append(out, l.OrderID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type refundRepo Store

func (r *refundRepo) Append(_ context.Context, fact model.RefundTimelineFact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.refundByEID[fact.EventID]; ok {
		return nil
	}
	r.refundByEID[fact.EventID] = struct{}{}
	r.refunds = append(r.refunds, fact)
	return nil
}

func (r *refundRepo) HasEvent(_ context.Context, eventID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.refundByEID[eventID]
	return ok, nil
}

func (r *refundRepo) LatestVersion(_ context.Context, orderID, refundID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	latest := 0
	for _, f := range r.refunds {
		if f.OrderID == orderID && f.RefundID == refundID && f.RefundTimelineVersion > latest {
			latest = f.RefundTimelineVersion
		}
	}
	return latest, nil
}

func (r *refundRepo) ListByOrder(_ context.Context, orderID string) ([]model.RefundTimelineFact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.RefundTimelineFact
	for _, f := range r.refunds {
		if f.OrderID == orderID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RefundTimelineVersion < out[j].RefundTimelineVersion
	})
	return out, nil
}

func (r *refundRepo) OrderIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]struct{}{}
	var out []string
	for _, f := range r.refunds {
		if _, ok := seen[f.OrderID]; !ok {
			seen[f.OrderID] = struct{}{}
			out = append(out, f.OrderID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type dlqRepo Store

func (r *dlqRepo) Append(_ context.Context, entry model.DLQEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dlqByID[entry.DLQID]; ok {
		return nil
	}
	r.dlqByID[entry.DLQID] = len(r.dlq)
	r.dlq = append(r.dlq, entry)
	return nil
}

func (r *dlqRepo) List(_ context.Context, filter model.DLQFilter) ([]model.DLQEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.DLQEntry
	// Newest first, matching the Postgres ORDER BY received_at DESC.
	for i := len(r.dlq) - 1; i >= 0; i-- {
		e := r.dlq[i]
		if filter.ErrorKind != "" && e.ErrorKind != filter.ErrorKind {
			continue
		}
		if filter.OrderID != "" && e.OrderID != filter.OrderID {
			continue
		}
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *dlqRepo) Get(_ context.Context, dlqID string) (model.DLQEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.dlqByID[dlqID]
	if !ok {
		return model.DLQEntry{}, fault.New(fault.KindValidation, "dlq entry %s not found", dlqID)
	}
	return r.dlq[i], nil
}

func (r *dlqRepo) MarkRetried(_ context.Context, dlqID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.dlqByID[dlqID]
	if !ok {
		return fault.New(fault.KindValidation, "dlq entry %s not found", dlqID)
	}
	r.dlq[i].RetryCount++
	return nil
}
