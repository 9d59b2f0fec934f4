package valueobject

// SupplierStatus is the lifecycle state reported by a supplier event.
type SupplierStatus string

const (
	SupplierConfirmed        SupplierStatus = "Confirmed"
	SupplierIssued           SupplierStatus = "ISSUED"
	SupplierInvoiced         SupplierStatus = "Invoiced"
	SupplierSettled          SupplierStatus = "Settled"
	SupplierCancelledWithFee SupplierStatus = "CancelledWithFee"
	SupplierCancelledNoFee   SupplierStatus = "CancelledNoFee"
	SupplierVoided           SupplierStatus = "Voided"
)

// Known reports whether s is one of the enumerated lifecycle states.
// Unknown statuses are still ingested; the projector warns on them.
func (s SupplierStatus) Known() bool {
	switch s {
	case SupplierConfirmed, SupplierIssued, SupplierInvoiced, SupplierSettled,
		SupplierCancelledWithFee, SupplierCancelledNoFee, SupplierVoided:
		return true
	}
	return false
}

// Active reports whether the supplier obligation is still owed in full.
func (s SupplierStatus) Active() bool {
	switch s {
	case SupplierConfirmed, SupplierIssued, SupplierInvoiced, SupplierSettled:
		return true
	}
	return false
}

// Baseline returns the payable baseline for the latest timeline amount.
// Cancellation fees never contribute here: for CancelledWithFee the fee
// is carried as a CANCELLATION_FEE obligation line and the baseline is 0.
// Unknown statuses fall back to the latest amount; the caller warns.
func (s SupplierStatus) Baseline(latestAmount int64) int64 {
	switch {
	case s.Active():
		return latestAmount
	case s == SupplierCancelledWithFee, s == SupplierCancelledNoFee, s == SupplierVoided:
		return 0
	default:
		return latestAmount
	}
}

// IncludesTimelineLines reports whether timeline-linked obligation lines
// (version >= 1) participate in the party projection for this status.
// Standalone lines (version -1) are always included regardless.
func (s SupplierStatus) IncludesTimelineLines() bool {
	switch s {
	case SupplierCancelledNoFee, SupplierVoided:
		return false
	}
	return true
}
