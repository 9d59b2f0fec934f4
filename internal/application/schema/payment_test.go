package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
)

func TestDecodePaymentNested(t *testing.T) {
	raw := []byte(`{
		"payment": {
			"status": "Captured",
			"payment_id": "pay-1",
			"pg_reference_id": "pg-1",
			"payment_method": {"channel": "CREDIT_CARD", "provider": "stripe", "brand": "visa"},
			"currency": "IDR",
			"authorized_amount": 550000,
			"captured_amount": 550000,
			"captured_amount_total": 550000,
			"instrument": {"type": "CARD", "card": {"brand": "visa", "last4": "1111"}}
		}
	}`)

	body, err := DecodePayment(raw)
	require.NoError(t, err)
	assert.Equal(t, "Captured", body.Status)
	assert.Equal(t, "CREDIT_CARD", body.PaymentMethod.Channel)
	assert.Equal(t, int64(550000), body.CapturedAmountTotal.Int64())
	require.NotNil(t, body.Instrument)
}

func TestDecodePaymentLegacyFlatLift(t *testing.T) {
	t.Run("captured amount stands in for totals", func(t *testing.T) {
		raw := []byte(`{
			"status": "Captured",
			"payment_method": {"channel": "VA"},
			"currency": "IDR",
			"amount": 550000,
			"payment_intent_id": "pi-1"
		}`)
		body, err := DecodePayment(raw)
		require.NoError(t, err)
		assert.Equal(t, int64(550000), body.CapturedAmount.Int64())
		assert.Equal(t, int64(550000), body.CapturedAmountTotal.Int64())
		assert.Equal(t, int64(550000), body.Amount.Int64(), "raw legacy amount kept verbatim")
		assert.Equal(t, "pi-1", body.PaymentID)
	})

	t.Run("authorized amount on Authorized status", func(t *testing.T) {
		raw := []byte(`{
			"status": "Authorized",
			"payment_method": {"channel": "VA"},
			"currency": "IDR",
			"amount": 550000
		}`)
		body, err := DecodePayment(raw)
		require.NoError(t, err)
		assert.Equal(t, int64(550000), body.AuthorizedAmount.Int64())
		assert.Equal(t, int64(550000), body.Amount.Int64())
		assert.Zero(t, body.CapturedAmount.Int64())
	})
}

func TestDecodePaymentRejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing status", `{"payment": {"currency": "IDR", "payment_method": {"channel": "VA"}}}`},
		{"unknown status", `{"payment": {"status": "Exploded", "currency": "IDR", "payment_method": {"channel": "VA"}}}`},
		{"missing currency", `{"payment": {"status": "Captured", "payment_method": {"channel": "VA"}}}`},
		{"missing channel", `{"payment": {"status": "Captured", "currency": "IDR"}}`},
		{"instrument payload mismatch", `{"payment": {"status": "Captured", "currency": "IDR",
			"payment_method": {"channel": "VA"},
			"instrument": {"type": "VA", "card": {"brand": "visa", "last4": "1111"}}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayment([]byte(tt.raw))
			require.Error(t, err)
			assert.Equal(t, fault.KindValidation, fault.KindOf(err))
		})
	}
}
