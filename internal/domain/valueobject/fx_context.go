package valueobject

import (
	"github.com/shopspring/decimal"
)

// FXContext is the exchange-rate snapshot a supplier service attaches to
// an event. Stored verbatim as canonical JSON; rates are decimals so that
// re-serialization never drifts. The timestamp stays a string because
// producers emit both zoned and naive ISO-8601 forms.
type FXContext struct {
	PaymentCurrency     string          `json:"payment_currency"`
	SupplyCurrency      string          `json:"supply_currency"`
	RecordCurrency      string          `json:"record_currency"`
	GBVCurrency         string          `json:"gbv_currency"`
	PaymentValue        int64           `json:"payment_value"`
	SupplyToPaymentRate decimal.Decimal `json:"supply_to_payment_fx_rate"`
	SupplyToRecordRate  decimal.Decimal `json:"supply_to_record_fx_rate"`
	PaymentToGBVRate    decimal.Decimal `json:"payment_to_gbv_fx_rate"`
	Source              string          `json:"source"`
	TimestampFXRate     string          `json:"timestamp_fx_rate"`
}

// EntityContext carries the legal-entity attribution of an event.
type EntityContext struct {
	EntityCode string `json:"entity_code"`
}
