package testutil

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event builds an envelope JSON document with payload fields merged at
// the top level, the way producers emit them.
func Event(eventType, schemaVersion, orderID string, payload map[string]any) []byte {
	m := map[string]any{
		"event_id":        uuid.NewString(),
		"event_type":      eventType,
		"schema_version":  schemaVersion,
		"order_id":        orderID,
		"emitted_at":      time.Now().UTC().Format(time.RFC3339Nano),
		"emitter_service": "test-producer",
	}
	for k, v := range payload {
		m[k] = v
	}
	b, err := json.Marshal(m)
	if err != nil {
		panic(err)
	}
	return b
}

// Component builds one pricing component payload.
func Component(componentType string, amount int64, currency string, dims map[string]any) map[string]any {
	c := map[string]any{
		"component_type": componentType,
		"amount":         amount,
		"currency":       currency,
	}
	if dims != nil {
		c["dimensions"] = dims
	}
	return c
}

// RefundComponent builds one refund component payload with lineage.
func RefundComponent(componentType string, amount int64, currency string, dims map[string]any, refundOf string) map[string]any {
	c := Component(componentType, amount, currency, dims)
	c["is_refund"] = true
	c["refund_of_component_semantic_id"] = refundOf
	return c
}

// ObligationLine builds one payable line payload.
func ObligationLine(obligationType string, amount int64, currency, effect string) map[string]any {
	return map[string]any{
		"obligation_type": obligationType,
		"amount":          amount,
		"currency":        currency,
		"amount_effect":   effect,
	}
}

// Party builds one obligation party payload.
func Party(partyType, partyID string, lines ...map[string]any) map[string]any {
	return map[string]any{
		"party_type": partyType,
		"party_id":   partyID,
		"lines":      lines,
	}
}
