package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
)

func TestDecodePricingUpdated(t *testing.T) {
	raw := []byte(`{
		"vertical": "flight",
		"components": [
			{"component_type": "BASE_FARE", "amount": 500000, "currency": "IDR",
			 "dimensions": {"order_detail_id": "od-1", "pax_type": "ADULT"}},
			{"component_type": "tax", "amount": 50000, "currency": "IDR",
			 "dimensions": {"order_detail_id": "od-1"}}
		],
		"totals": {"customer_total": 550000, "currency": "IDR"}
	}`)

	p, err := DecodePricingUpdated(raw, false)
	require.NoError(t, err)
	require.Len(t, p.Components, 2)
	assert.Equal(t, int64(550000), p.ComponentSum())
	assert.Nil(t, p.Version)
}

func TestDecodePricingUpdatedRejectsEmptyComponents(t *testing.T) {
	_, err := DecodePricingUpdated([]byte(`{"components": []}`), false)
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
}

func TestDecodePricingUpdatedRefundRules(t *testing.T) {
	t.Run("missing lineage", func(t *testing.T) {
		raw := []byte(`{
			"refund_id": "rf-1",
			"components": [{"component_type": "BASE_FARE", "amount": -100, "currency": "IDR"}]
		}`)
		_, err := DecodePricingUpdated(raw, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refund_of_component_semantic_id")
	})

	t.Run("non-negative amount", func(t *testing.T) {
		raw := []byte(`{
			"refund_id": "rf-1",
			"components": [{"component_type": "BASE_FARE", "amount": 100, "currency": "IDR",
				"refund_of_component_semantic_id": "abc123"}]
		}`)
		_, err := DecodePricingUpdated(raw, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative")
	})

	t.Run("missing refund_id", func(t *testing.T) {
		raw := []byte(`{
			"components": [{"component_type": "BASE_FARE", "amount": -100, "currency": "IDR",
				"refund_of_component_semantic_id": "abc123"}]
		}`)
		_, err := DecodePricingUpdated(raw, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "refund_id")
	})

	t.Run("valid refund", func(t *testing.T) {
		raw := []byte(`{
			"refund_id": "rf-1",
			"components": [{"component_type": "BASE_FARE", "amount": -100, "currency": "IDR",
				"refund_of_component_semantic_id": "abc123", "is_refund": true}]
		}`)
		p, err := DecodePricingUpdated(raw, true)
		require.NoError(t, err)
		assert.Equal(t, "rf-1", p.RefundID)
	})
}

func TestPricingContextsLiftsLegacySingle(t *testing.T) {
	raw := []byte(`{
		"components": [{"component_type": "BASE_FARE", "amount": 100, "currency": "IDR"}],
		"detail_context": {"order_detail_id": "od-1", "entity_context": {"entity": "ID"}}
	}`)
	p, err := DecodePricingUpdated(raw, false)
	require.NoError(t, err)

	contexts := p.Contexts()
	require.Len(t, contexts, 1)
	assert.Equal(t, "od-1", contexts[0].OrderDetailID)

	require.NotNil(t, p.ContextFor("od-1"))
	assert.Nil(t, p.ContextFor("od-2"))
}

func TestPricingContextsPrefersList(t *testing.T) {
	raw := []byte(`{
		"components": [{"component_type": "BASE_FARE", "amount": 100, "currency": "IDR"}],
		"detail_context": {"order_detail_id": "legacy"},
		"detail_contexts": [
			{"order_detail_id": "od-1"},
			{"order_detail_id": "od-2"}
		]
	}`)
	p, err := DecodePricingUpdated(raw, false)
	require.NoError(t, err)
	require.Len(t, p.Contexts(), 2)
	assert.Nil(t, p.ContextFor("legacy"))
}

func TestDecodePricingUpdatedExplicitVersion(t *testing.T) {
	raw := []byte(`{
		"version": 4,
		"components": [{"component_type": "BASE_FARE", "amount": 100, "currency": "IDR"}]
	}`)
	p, err := DecodePricingUpdated(raw, false)
	require.NoError(t, err)
	require.NotNil(t, p.Version)
	assert.Equal(t, 4, *p.Version)
}
