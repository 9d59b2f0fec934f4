package projection

import (
	"context"
	"sort"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/dto"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
)

// Order returns the latest-state view of one order across all families.
func (p *Projector) Order(ctx context.Context, orderID string) (dto.OrderView, error) {
	out := dto.OrderView{OrderID: orderID}

	pricing, err := p.store.Pricing().ListByOrder(ctx, orderID)
	if err != nil {
		return out, fault.Wrap(fault.KindStorage, err, "pricing read")
	}
	out.PricingLatest = pricingLatest(pricing)

	payments, err := p.store.Payment().ListByOrder(ctx, orderID)
	if err != nil {
		return out, fault.Wrap(fault.KindStorage, err, "payment read")
	}
	if len(payments) > 0 {
		latest := payments[0]
		for _, f := range payments[1:] {
			if f.TimelineVersion > latest.TimelineVersion {
				latest = f
			}
		}
		v := dto.PaymentFromModel(latest)
		out.PaymentLatest = &v
	}

	suppliers, err := p.store.Supplier().ListByOrder(ctx, orderID)
	if err != nil {
		return out, fault.Wrap(fault.KindStorage, err, "supplier read")
	}
	out.SupplierLatest = supplierLatest(suppliers)

	refunds, err := p.store.Refund().ListByOrder(ctx, orderID)
	if err != nil {
		return out, fault.Wrap(fault.KindStorage, err, "refund read")
	}
	out.RefundLatest = refundLatest(refunds)

	return out, nil
}

// pricingLatest picks, per component semantic id, the row of the
// highest version, tie-broken by emitted_at then ingested_at.
func pricingLatest(rows []model.PricingComponentFact) []dto.PricingComponentView {
	latest := map[string]model.PricingComponentFact{}
	var order []string
	for _, row := range rows {
		prev, ok := latest[row.ComponentSemanticID]
		if !ok {
			order = append(order, row.ComponentSemanticID)
			latest[row.ComponentSemanticID] = row
			continue
		}
		if newerPricing(row, prev) {
			latest[row.ComponentSemanticID] = row
		}
	}
	out := make([]dto.PricingComponentView, 0, len(order))
	for _, id := range order {
		out = append(out, dto.PricingComponentFromModel(latest[id]))
	}
	return out
}

func newerPricing(a, b model.PricingComponentFact) bool {
	if a.Version != b.Version {
		return a.Version > b.Version
	}
	if !a.EmittedAt.Equal(b.EmittedAt) {
		return a.EmittedAt.After(b.EmittedAt)
	}
	return a.IngestedAt.After(b.IngestedAt)
}

// supplierLatest picks the highest-version row per payable instance.
func supplierLatest(rows []model.SupplierTimelineFact) []dto.SupplierView {
	latest := map[valueobject.InstanceKey]model.SupplierTimelineFact{}
	var order []valueobject.InstanceKey
	for _, row := range rows {
		k := row.InstanceKey()
		prev, ok := latest[k]
		if !ok {
			order = append(order, k)
		}
		if !ok || row.SupplierTimelineVersion > prev.SupplierTimelineVersion {
			latest[k] = row
		}
	}
	out := make([]dto.SupplierView, 0, len(order))
	for _, k := range order {
		out = append(out, dto.SupplierFromModel(latest[k]))
	}
	return out
}

// refundLatest picks the highest-version row per refund id.
func refundLatest(rows []model.RefundTimelineFact) []dto.RefundView {
	latest := map[string]model.RefundTimelineFact{}
	var order []string
	for _, row := range rows {
		prev, ok := latest[row.RefundID]
		if !ok {
			order = append(order, row.RefundID)
		}
		if !ok || row.RefundTimelineVersion > prev.RefundTimelineVersion {
			latest[row.RefundID] = row
		}
	}
	out := make([]dto.RefundView, 0, len(order))
	for _, id := range order {
		out = append(out, dto.RefundFromModel(latest[id]))
	}
	return out
}

// PricingHistory groups every pricing row of an order by
// (version, snapshot), oldest first, with per-version counts and sums.
func (p *Projector) PricingHistory(ctx context.Context, orderID string) (dto.PricingHistory, error) {
	rows, err := p.store.Pricing().ListByOrder(ctx, orderID)
	if err != nil {
		return dto.PricingHistory{}, fault.Wrap(fault.KindStorage, err, "pricing read")
	}

	type versionKey struct {
		version  int
		snapshot string
	}
	grouped := map[versionKey]*dto.PricingVersionView{}
	var order []versionKey
	for _, row := range rows {
		k := versionKey{row.Version, row.PricingSnapshotID}
		g, ok := grouped[k]
		if !ok {
			g = &dto.PricingVersionView{
				Version:           row.Version,
				PricingSnapshotID: row.PricingSnapshotID,
				Currency:          row.Currency,
				EmittedAt:         row.EmittedAt,
			}
			grouped[k] = g
			order = append(order, k)
		}
		g.ComponentCount++
		g.Sum += row.Amount
		g.Components = append(g.Components, dto.PricingComponentFromModel(row))
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].version < order[j].version })
	out := dto.PricingHistory{OrderID: orderID}
	for _, k := range order {
		out.Versions = append(out.Versions, *grouped[k])
	}
	return out, nil
}

// Lineage returns the occurrences of one component across snapshots
// together with the refund components that reference it.
func (p *Projector) Lineage(ctx context.Context, semanticID string) (dto.ComponentLineage, error) {
	occurrences, err := p.store.Pricing().ListBySemanticID(ctx, semanticID)
	if err != nil {
		return dto.ComponentLineage{}, fault.Wrap(fault.KindStorage, err, "lineage read")
	}
	refunds, err := p.store.Pricing().ListRefundsOf(ctx, semanticID)
	if err != nil {
		return dto.ComponentLineage{}, fault.Wrap(fault.KindStorage, err, "refund lineage read")
	}

	out := dto.ComponentLineage{ComponentSemanticID: semanticID}
	for _, row := range occurrences {
		out.Occurrences = append(out.Occurrences, dto.PricingComponentFromModel(row))
	}
	for _, row := range refunds {
		out.Refunds = append(out.Refunds, dto.PricingComponentFromModel(row))
	}

	// Net = latest occurrence + all refunds against it.
	if latest := pricingLatest(occurrences); len(latest) == 1 {
		out.NetAmount = latest[0].Amount
	}
	for _, r := range out.Refunds {
		out.NetAmount += r.Amount
	}
	return out, nil
}

// PaymentTimeline returns every payment row of an order by version.
func (p *Projector) PaymentTimeline(ctx context.Context, orderID string) ([]dto.PaymentView, error) {
	rows, err := p.store.Payment().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err, "payment read")
	}
	out := make([]dto.PaymentView, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.PaymentFromModel(row))
	}
	return out, nil
}

// SupplierTimeline returns every supplier row of an order by version.
func (p *Projector) SupplierTimeline(ctx context.Context, orderID string) ([]dto.SupplierView, error) {
	rows, err := p.store.Supplier().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err, "supplier read")
	}
	out := make([]dto.SupplierView, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.SupplierFromModel(row))
	}
	return out, nil
}

// RefundTimeline returns every refund row of an order by version.
func (p *Projector) RefundTimeline(ctx context.Context, orderID string) ([]dto.RefundView, error) {
	rows, err := p.store.Refund().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err, "refund read")
	}
	out := make([]dto.RefundView, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.RefundFromModel(row))
	}
	return out, nil
}

// Orders lists every known order id with the families it appears in.
func (p *Projector) Orders(ctx context.Context) ([]dto.OrderSummary, error) {
	families := map[string][]string{}

	add := func(ids []string, family valueobject.Family) {
		for _, id := range ids {
			families[id] = append(families[id], string(family))
		}
	}

	pricing, err := p.store.Pricing().OrderIDs(ctx)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err, "pricing order listing")
	}
	add(pricing, valueobject.FamilyPricing)

	payments, err := p.store.Payment().OrderIDs(ctx)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err, "payment order listing")
	}
	add(payments, valueobject.FamilyPayment)

	suppliers, err := p.store.Supplier().OrderIDs(ctx)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err, "supplier order listing")
	}
	add(suppliers, valueobject.FamilySupplier)

	refunds, err := p.store.Refund().OrderIDs(ctx)
	if err != nil {
		return nil, fault.Wrap(fault.KindStorage, err, "refund order listing")
	}
	add(refunds, valueobject.FamilyRefund)

	ids := make([]string, 0, len(families))
	for id := range families {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]dto.OrderSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, dto.OrderSummary{OrderID: id, Families: families[id]})
	}
	return out, nil
}
