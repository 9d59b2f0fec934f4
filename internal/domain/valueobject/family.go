package valueobject

// Family is one of the five independent version counters. Versions in
// different families never interact; each family has its own scope key.
type Family string

const (
	FamilyPricing  Family = "pricing"
	FamilyPayment  Family = "payment"
	FamilySupplier Family = "supplier"
	FamilyRefund   Family = "refund"
	// FamilyIssuance is reserved; no event currently triggers it.
	FamilyIssuance Family = "issuance"
)

// StandaloneVersion marks a payable line written outside any supplier
// timeline event (partner adjustments). It is stored verbatim and never
// assigned by the registry.
const StandaloneVersion = -1
