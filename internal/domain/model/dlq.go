package model

import (
	"encoding/json"
	"time"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
)

// DLQEntry parks an event that failed validation or persistence. The raw
// payload is kept verbatim so the event can be replayed after
// remediation.
type DLQEntry struct {
	DLQID        string
	EventID      string
	EventType    string
	OrderID      string
	RawEvent     json.RawMessage
	ErrorKind    fault.Kind
	ErrorDetail  string
	ReceivedAt   time.Time
	RetryCount   int
}

// DLQFilter narrows a DLQ listing. Zero values match everything.
type DLQFilter struct {
	ErrorKind fault.Kind
	OrderID   string
	EventType string
	Limit     int
}
