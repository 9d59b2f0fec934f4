package valueobject

import "fmt"

// BookingLevelKey is the sentinel stored in place of an absent
// fulfillment_instance_id. A null instance id is a meaningful key (the
// booking-level instance), not a wildcard, so range scans need a concrete
// value to group on.
const BookingLevelKey = "__BOOKING_LEVEL__"

// InstanceKey identifies one payable instance: a supplier booking, or a
// single fulfillment (e.g. one pass redemption) under an order line.
type InstanceKey struct {
	OrderID               string
	OrderDetailID         string
	SupplierReferenceID   string
	FulfillmentInstanceID string // empty = booking level
}

// FulfillmentKey returns the storage key for the fulfillment dimension.
func (k InstanceKey) FulfillmentKey() string {
	if k.FulfillmentInstanceID == "" {
		return BookingLevelKey
	}
	return k.FulfillmentInstanceID
}

// FulfillmentKeyFor maps a nullable wire value to its storage key.
func FulfillmentKeyFor(fulfillmentInstanceID string) string {
	if fulfillmentInstanceID == "" {
		return BookingLevelKey
	}
	return fulfillmentInstanceID
}

func (k InstanceKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.OrderID, k.OrderDetailID, k.SupplierReferenceID, k.FulfillmentKey())
}
