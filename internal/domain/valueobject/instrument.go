package valueobject

import "fmt"

// InstrumentType enumerates supported payment instruments.
type InstrumentType string

const (
	InstrumentVA      InstrumentType = "VA"
	InstrumentCard    InstrumentType = "CARD"
	InstrumentEWallet InstrumentType = "EWALLET"
	InstrumentBNPL    InstrumentType = "BNPL"
	InstrumentQR      InstrumentType = "QR"
	InstrumentLoyalty InstrumentType = "LOYALTY"
)

// Instrument is a tagged union: exactly one sub-payload may be populated
// and it must match Type. Producers sending multiple sub-payloads are
// rejected at validation.
type Instrument struct {
	Type    InstrumentType  `json:"type"`
	VA      *VADetails      `json:"va,omitempty"`
	Card    *CardDetails    `json:"card,omitempty"`
	EWallet *EWalletDetails `json:"ewallet,omitempty"`
	BNPL    *BNPLDetails    `json:"bnpl,omitempty"`
	QR      *QRDetails      `json:"qr,omitempty"`
	Loyalty *LoyaltyDetails `json:"loyalty,omitempty"`
}

// VADetails describes a virtual account instrument.
type VADetails struct {
	BankCode string `json:"bank_code"`
	VANumber string `json:"va_number"`
}

// CardDetails carries masked card data only.
type CardDetails struct {
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	ExpMonth  int    `json:"exp_month,omitempty"`
	ExpYear   int    `json:"exp_year,omitempty"`
	IssuerBIN string `json:"issuer_bin,omitempty"`
}

// EWalletDetails describes an e-wallet instrument.
type EWalletDetails struct {
	Provider  string `json:"provider"`
	AccountID string `json:"account_id,omitempty"`
}

// BNPLDetails describes a buy-now-pay-later instrument.
type BNPLDetails struct {
	Provider    string `json:"provider"`
	PlanID      string `json:"plan_id,omitempty"`
	Installment int    `json:"installment,omitempty"`
}

// QRDetails describes a QR payment instrument.
type QRDetails struct {
	Network string `json:"network"`
	QRID    string `json:"qr_id,omitempty"`
}

// LoyaltyDetails describes a loyalty-points instrument.
type LoyaltyDetails struct {
	Program    string `json:"program"`
	PointsUsed int64  `json:"points_used,omitempty"`
}

// Validate enforces the single-payload rule and the type/payload match.
func (i Instrument) Validate() error {
	switch i.Type {
	case InstrumentVA, InstrumentCard, InstrumentEWallet, InstrumentBNPL, InstrumentQR, InstrumentLoyalty:
	default:
		return fmt.Errorf("unknown instrument type %q", i.Type)
	}

	populated := 0
	var match bool
	for _, p := range []struct {
		t   InstrumentType
		set bool
	}{
		{InstrumentVA, i.VA != nil},
		{InstrumentCard, i.Card != nil},
		{InstrumentEWallet, i.EWallet != nil},
		{InstrumentBNPL, i.BNPL != nil},
		{InstrumentQR, i.QR != nil},
		{InstrumentLoyalty, i.Loyalty != nil},
	} {
		if p.set {
			populated++
			if p.t == i.Type {
				match = true
			}
		}
	}

	if populated > 1 {
		return fmt.Errorf("instrument %s: %d sub-payloads populated, want at most 1", i.Type, populated)
	}
	if populated == 1 && !match {
		return fmt.Errorf("instrument %s: populated sub-payload does not match type", i.Type)
	}
	return nil
}
