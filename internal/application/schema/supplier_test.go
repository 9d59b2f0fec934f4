package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
)

func TestDecodeSupplierV2(t *testing.T) {
	raw := []byte(`{
		"order_detail_id": "od-1",
		"supplier": {
			"status": "Confirmed",
			"supplier_id": "sup-1",
			"booking_code": "BK123",
			"supplier_ref": "ref-1",
			"fulfillment_instance_id": "room-1",
			"amount_due": 48000,
			"currency": "IDR"
		},
		"parties": [
			{"party_type": "SUPPLIER", "party_id": "sup-1", "lines": [
				{"obligation_type": "COMMISSION", "amount": 7210, "currency": "IDR",
				 "amount_effect": "DECREASES_PAYABLE",
				 "calculation": {"basis": "PERCENT_OF_BASE", "rate": "0.13"}}
			]}
		]
	}`)

	e, err := DecodeSupplier(raw, SchemaSupplierTimelineV2)
	require.NoError(t, err)
	assert.Equal(t, "room-1", e.FulfillmentInstance())
	require.NotNil(t, e.Parties)
	require.Len(t, *e.Parties, 1)
	line := (*e.Parties)[0].Lines[0]
	assert.Equal(t, "COMMISSION", line.ObligationType)
	require.NotNil(t, line.Calculation)
	assert.Equal(t, "0.13", line.Calculation.Rate.String())
}

// Absent parties and an explicit empty list carry different projection
// semantics; the decoder must keep them apart.
func TestDecodeSupplierAbsentVsEmptyParties(t *testing.T) {
	base := `{
		"order_detail_id": "od-1",
		"supplier": {"status": "Confirmed", "supplier_id": "sup-1", "amount_due": 100, "currency": "IDR"}
	}`
	e, err := DecodeSupplier([]byte(base), SchemaSupplierTimelineV2)
	require.NoError(t, err)
	assert.Nil(t, e.Parties)

	withEmpty := `{
		"order_detail_id": "od-1",
		"supplier": {"status": "Confirmed", "supplier_id": "sup-1", "amount_due": 100, "currency": "IDR"},
		"parties": []
	}`
	e, err = DecodeSupplier([]byte(withEmpty), SchemaSupplierTimelineV2)
	require.NoError(t, err)
	require.NotNil(t, e.Parties)
	assert.Empty(t, *e.Parties)
}

func TestDecodeSupplierV1RejectsParties(t *testing.T) {
	raw := []byte(`{
		"order_detail_id": "od-1",
		"supplier": {"status": "Confirmed", "supplier_id": "sup-1", "amount_due": 100, "currency": "IDR"},
		"parties": []
	}`)
	_, err := DecodeSupplier(raw, SchemaSupplierTimelineV1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supplier.timeline.v2")
}

func TestDecodeSupplierRejectsForeignSchema(t *testing.T) {
	raw := []byte(`{
		"order_detail_id": "od-1",
		"supplier": {"status": "Confirmed", "supplier_id": "sup-1", "amount_due": 100, "currency": "IDR"}
	}`)
	_, err := DecodeSupplier(raw, SchemaPricingCommerceV1)
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
}

func TestDecodeSupplierFXContext(t *testing.T) {
	t.Run("well-formed block accepted", func(t *testing.T) {
		raw := []byte(`{
			"order_detail_id": "od-1",
			"supplier": {
				"status": "Confirmed", "supplier_id": "sup-1", "amount_due": 100, "currency": "IDR",
				"fx_context": {
					"payment_currency": "IDR", "supply_currency": "USD",
					"supply_to_payment_fx_rate": "15700.25",
					"timestamp_fx_rate": "2026-03-01T10:00:00"
				}
			}
		}`)
		e, err := DecodeSupplier(raw, SchemaSupplierTimelineV2)
		require.NoError(t, err)
		assert.NotEmpty(t, e.Supplier.FXContext, "block survives verbatim")
	})

	t.Run("non-numeric rate rejected", func(t *testing.T) {
		raw := []byte(`{
			"order_detail_id": "od-1",
			"supplier": {
				"status": "Confirmed", "supplier_id": "sup-1", "amount_due": 100, "currency": "IDR",
				"fx_context": {"supply_to_payment_fx_rate": "about fifteen thousand"}
			}
		}`)
		_, err := DecodeSupplier(raw, SchemaSupplierTimelineV2)
		require.Error(t, err)
		assert.Equal(t, fault.KindValidation, fault.KindOf(err))
	})
}

func TestDecodeSupplierRejectsEmptyFulfillmentID(t *testing.T) {
	raw := []byte(`{
		"order_detail_id": "od-1",
		"supplier": {"status": "Confirmed", "supplier_id": "sup-1",
			"fulfillment_instance_id": "", "amount_due": 100, "currency": "IDR"}
	}`)
	_, err := DecodeSupplier(raw, SchemaSupplierTimelineV2)
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
}

func TestDecodeSupplierNullFulfillmentIsBookingLevel(t *testing.T) {
	raw := []byte(`{
		"order_detail_id": "od-1",
		"supplier": {"status": "Confirmed", "supplier_id": "sup-1",
			"fulfillment_instance_id": null, "amount_due": 100, "currency": "IDR"}
	}`)
	e, err := DecodeSupplier(raw, SchemaSupplierTimelineV2)
	require.NoError(t, err)
	assert.Empty(t, e.FulfillmentInstance())
}

func TestDecodeSupplierLineValidation(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing obligation_type", `{"amount": 100, "currency": "IDR"}`},
		{"negative amount", `{"obligation_type": "COMMISSION", "amount": -5, "currency": "IDR"}`},
		{"bad amount_effect", `{"obligation_type": "COMMISSION", "amount": 5, "currency": "IDR", "amount_effect": "SIDEWAYS"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte(`{
				"order_detail_id": "od-1",
				"supplier": {"status": "Confirmed", "supplier_id": "sup-1", "amount_due": 100, "currency": "IDR"},
				"parties": [{"party_type": "SUPPLIER", "party_id": "sup-1", "lines": [` + tt.line + `]}]
			}`)
			_, err := DecodeSupplier(raw, SchemaSupplierTimelineV2)
			require.Error(t, err)
			assert.Equal(t, fault.KindValidation, fault.KindOf(err))
		})
	}
}

func TestDecodeSupplierLegacyCancellationFields(t *testing.T) {
	raw := []byte(`{
		"order_detail_id": "od-1",
		"supplier": {"status": "CancelledWithFee", "supplier_id": "sup-1",
			"amount_due": 0, "currency": "IDR",
			"cancellation_fee_amount": 55210, "cancellation_fee_currency": "IDR"}
	}`)
	e, err := DecodeSupplier(raw, SchemaSupplierTimelineV1)
	require.NoError(t, err)
	assert.Equal(t, int64(55210), e.Supplier.CancellationFeeAmount.Int64())
	assert.Nil(t, e.Supplier.Cancellation)
}

func TestPartyTypeOf(t *testing.T) {
	assert.Equal(t, model.PartySupplier, PartyTypeOf("SUPPLIER"))
	assert.Equal(t, model.PartyAffiliate, PartyTypeOf("AFFILIATE"))
	assert.Equal(t, model.PartyType("UNKNOWN"), PartyTypeOf("MARSUPIAL"))
	assert.Equal(t, model.PartyType("UNKNOWN"), PartyTypeOf(""))
}

func TestDecodeRefundLifecycle(t *testing.T) {
	raw := []byte(`{"refund_id": "rf-1", "status": "INITIATED", "refund_amount": 660000, "currency": "IDR"}`)
	e, err := DecodeRefundLifecycle(raw)
	require.NoError(t, err)
	assert.Equal(t, "rf-1", e.RefundID)

	_, err = DecodeRefundLifecycle([]byte(`{"refund_id": "rf-1", "status": "SHRUGGED", "currency": "IDR"}`))
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))

	_, err = DecodeRefundLifecycle([]byte(`{"status": "INITIATED", "currency": "IDR"}`))
	require.Error(t, err)
}

func TestDecodePartnerAdjustment(t *testing.T) {
	raw := []byte(`{
		"order_detail_id": "od-1",
		"supplier_reference_id": "ref-1",
		"party": {"party_type": "AFFILIATE", "party_id": "aff-9"},
		"line": {"obligation_type": "MARKETING_REBATE", "amount": 12000, "currency": "IDR",
			"amount_effect": "DECREASES_PAYABLE"}
	}`)
	e, err := DecodePartnerAdjustment(raw)
	require.NoError(t, err)
	assert.Equal(t, "aff-9", e.Party.PartyID)
	assert.Empty(t, e.FulfillmentInstance())

	_, err = DecodePartnerAdjustment([]byte(`{"order_detail_id": "od-1", "line": {"obligation_type": "X", "amount": 1}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "party_id")
}
