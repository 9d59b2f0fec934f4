package model

import (
	"encoding/json"
	"time"
)

// RefundStatus enumerates refund lifecycle states.
type RefundStatus string

const (
	RefundInitiated  RefundStatus = "INITIATED"
	RefundProcessing RefundStatus = "PROCESSING"
	RefundIssued     RefundStatus = "ISSUED"
	RefundClosed     RefundStatus = "CLOSED"
	RefundFailed     RefundStatus = "FAILED"
)

// Valid reports whether s is an enumerated refund status.
func (s RefundStatus) Valid() bool {
	switch s {
	case RefundInitiated, RefundProcessing, RefundIssued, RefundClosed, RefundFailed:
		return true
	}
	return false
}

// RefundTimelineFact is one status-only refund lifecycle event,
// versioned per (order_id, refund_id).
type RefundTimelineFact struct {
	EventID               string
	OrderID               string
	RefundID              string
	RefundTimelineVersion int
	EventType             string
	Status                RefundStatus
	RefundAmount          int64
	Currency              string
	RefundReason          string
	EmitterService        string
	EmittedAt             time.Time
	IngestedAt            time.Time
	Metadata              json.RawMessage
}
