// Package projection derives read views from the fact store. Every
// projection is pure over its inputs and never writes; identical store
// state yields identical output.
package projection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/application/dto"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/port"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
)

// Projector computes payables and latest-state views.
type Projector struct {
	store  port.FactStore
	logger *slog.Logger
}

// NewProjector creates a projector over the fact store.
func NewProjector(store port.FactStore, logger *slog.Logger) *Projector {
	return &Projector{store: store, logger: logger}
}

// EffectivePayables computes the payable instances of an order: for each
// instance, a status-driven baseline plus the signed sum of its
// effective obligations. A bad instance degrades to a warning; it never
// fails the whole order read.
func (p *Projector) EffectivePayables(ctx context.Context, orderID string) (dto.EffectivePayables, error) {
	facts, err := p.store.Supplier().ListByOrder(ctx, orderID)
	if err != nil {
		return dto.EffectivePayables{}, fault.Wrap(fault.KindStorage, err, "supplier timeline read")
	}
	lines, err := p.store.Supplier().ListLinesByOrder(ctx, orderID)
	if err != nil {
		return dto.EffectivePayables{}, fault.Wrap(fault.KindStorage, err, "payable lines read")
	}

	out := dto.EffectivePayables{OrderID: orderID}

	latestByKey := map[valueobject.InstanceKey]model.SupplierTimelineFact{}
	var keyOrder []valueobject.InstanceKey
	for _, f := range facts {
		k := f.InstanceKey()
		prev, ok := latestByKey[k]
		if !ok {
			keyOrder = append(keyOrder, k)
		}
		if !ok || f.SupplierTimelineVersion > prev.SupplierTimelineVersion {
			latestByKey[k] = f
		}
	}

	linesByKey := map[valueobject.InstanceKey][]model.SupplierPayableLine{}
	for _, l := range lines {
		k := l.InstanceKey()
		if _, ok := latestByKey[k]; !ok {
			// Standalone lines can precede any timeline event for their
			// instance; they still owe a payable instance of their own.
			if _, seen := linesByKey[k]; !seen {
				keyOrder = append(keyOrder, k)
			}
		}
		linesByKey[k] = append(linesByKey[k], l)
	}

	for _, k := range keyOrder {
		inst, warns := p.projectInstance(k, latestByKey[k], linesByKey[k])
		out.Instances = append(out.Instances, inst)
		out.GrandTotal += inst.Total
		out.Warnings = append(out.Warnings, warns...)
	}
	return out, nil
}

// projectInstance computes one payable instance. latest is the zero
// fact when the instance has only standalone lines.
func (p *Projector) projectInstance(key valueobject.InstanceKey, latest model.SupplierTimelineFact, lines []model.SupplierPayableLine) (dto.PayableInstanceView, []string) {
	var warnings []string

	status := latest.Status
	baseline := status.Baseline(latest.Amount)
	if latest.EventID != "" && !status.Known() {
		w := fmt.Sprintf("instance %s: unknown supplier status %q, baseline falls back to latest amount", key, status)
		warnings = append(warnings, w)
		p.logger.Warn("payables projection fallback", "instance", key.String(), "status", string(status))
	}
	if latest.EventID == "" {
		// No timeline event yet: standalone-only instance, baseline 0.
		baseline = 0
	}

	effective := effectiveLines(status, latest.EventID != "", lines)

	inst := dto.PayableInstanceView{
		OrderDetailID:         key.OrderDetailID,
		SupplierReferenceID:   key.SupplierReferenceID,
		FulfillmentInstanceID: key.FulfillmentInstanceID,
		FulfillmentKey:        key.FulfillmentKey(),
		SupplierID:            latest.SupplierID,
		Status:                string(status),
		Currency:              latest.Currency,
		Baseline:              baseline,
	}

	partyTotals := map[string]*dto.PartyTotal{}
	orderedParties := []string{}
	addPartyAmount := func(partyType model.PartyType, partyID string, amount int64) {
		pt, ok := partyTotals[partyID]
		if !ok {
			pt = &dto.PartyTotal{PartyType: string(partyType), PartyID: partyID}
			partyTotals[partyID] = pt
			orderedParties = append(orderedParties, partyID)
		}
		pt.Total += amount
	}
	if latest.SupplierID != "" {
		addPartyAmount(model.PartySupplier, latest.SupplierID, baseline)
	}

	for _, l := range effective {
		signed := l.AmountEffect.Apply(l.Amount)
		inst.Adjustment += signed
		inst.Obligations = append(inst.Obligations, dto.ObligationView{
			PartyType:       string(l.PartyType),
			PartyID:         l.PartyID,
			PartyName:       l.PartyName,
			ObligationType:  l.ObligationType,
			Amount:          l.Amount,
			AmountEffect:    string(l.AmountEffect),
			EffectiveAmount: signed,
			Currency:        l.Currency,
			Version:         l.SupplierTimelineVersion,
			Standalone:      l.SupplierTimelineVersion == valueobject.StandaloneVersion,
			CalculationRate: l.CalculationRate,
		})
		addPartyAmount(l.PartyType, l.PartyID, signed)
	}

	inst.Total = inst.Baseline + inst.Adjustment
	for _, id := range orderedParties {
		inst.PartyTotals = append(inst.PartyTotals, *partyTotals[id])
	}
	return inst, warnings
}

// effectiveLines applies the status filter and last-writer-wins rule:
// for timeline-linked lines the latest version per (party_id,
// obligation_type) stays effective; standalone lines are always
// included. hasTimeline distinguishes a real status from the zero value
// of a standalone-only instance.
func effectiveLines(status valueobject.SupplierStatus, hasTimeline bool, lines []model.SupplierPayableLine) []model.SupplierPayableLine {
	var out []model.SupplierPayableLine

	includeTimeline := hasTimeline && status.IncludesTimelineLines()
	if includeTimeline {
		type partyObligation struct {
			partyID        string
			obligationType string
		}
		latestVersion := map[partyObligation]int{}
		for _, l := range lines {
			if l.SupplierTimelineVersion < 1 {
				continue
			}
			k := partyObligation{l.PartyID, l.ObligationType}
			if l.SupplierTimelineVersion > latestVersion[k] {
				latestVersion[k] = l.SupplierTimelineVersion
			}
		}
		for _, l := range lines {
			if l.SupplierTimelineVersion < 1 {
				continue
			}
			if latestVersion[partyObligation{l.PartyID, l.ObligationType}] == l.SupplierTimelineVersion {
				out = append(out, l)
			}
		}
	}

	for _, l := range lines {
		if l.SupplierTimelineVersion == valueobject.StandaloneVersion {
			out = append(out, l)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PartyID != out[j].PartyID {
			return out[i].PartyID < out[j].PartyID
		}
		return out[i].ObligationType < out[j].ObligationType
	})
	return out
}

// PayablesTimeline returns the full supplier audit history of an order:
// every timeline event and every line, grouped per payable instance.
func (p *Projector) PayablesTimeline(ctx context.Context, orderID string) (dto.PayablesTimeline, error) {
	facts, err := p.store.Supplier().ListByOrder(ctx, orderID)
	if err != nil {
		return dto.PayablesTimeline{}, fault.Wrap(fault.KindStorage, err, "supplier timeline read")
	}
	lines, err := p.store.Supplier().ListLinesByOrder(ctx, orderID)
	if err != nil {
		return dto.PayablesTimeline{}, fault.Wrap(fault.KindStorage, err, "payable lines read")
	}

	byKey := map[valueobject.InstanceKey]*dto.PayableInstanceTimeline{}
	var keyOrder []valueobject.InstanceKey
	instance := func(k valueobject.InstanceKey) *dto.PayableInstanceTimeline {
		if t, ok := byKey[k]; ok {
			return t
		}
		t := &dto.PayableInstanceTimeline{
			OrderDetailID:       k.OrderDetailID,
			SupplierReferenceID: k.SupplierReferenceID,
			FulfillmentKey:      k.FulfillmentKey(),
		}
		byKey[k] = t
		keyOrder = append(keyOrder, k)
		return t
	}

	for _, f := range facts {
		t := instance(f.InstanceKey())
		t.Events = append(t.Events, dto.SupplierFromModel(f))
	}
	for _, l := range lines {
		t := instance(l.InstanceKey())
		t.Lines = append(t.Lines, dto.ObligationView{
			PartyType:       string(l.PartyType),
			PartyID:         l.PartyID,
			PartyName:       l.PartyName,
			ObligationType:  l.ObligationType,
			Amount:          l.Amount,
			AmountEffect:    string(l.AmountEffect),
			EffectiveAmount: l.AmountEffect.Apply(l.Amount),
			Currency:        l.Currency,
			Version:         l.SupplierTimelineVersion,
			Standalone:      l.SupplierTimelineVersion == valueobject.StandaloneVersion,
			CalculationRate: l.CalculationRate,
		})
	}

	out := dto.PayablesTimeline{OrderID: orderID}
	for _, k := range keyOrder {
		out.Instances = append(out.Instances, *byKey[k])
	}
	return out, nil
}
