package model

import (
	"encoding/json"
	"time"
)

// PaymentStatus enumerates payment lifecycle states.
type PaymentStatus string

const (
	PaymentAuthorized PaymentStatus = "Authorized"
	PaymentCaptured   PaymentStatus = "Captured"
	PaymentRefunded   PaymentStatus = "Refunded"
	PaymentSettled    PaymentStatus = "Settled"
)

// Valid reports whether s is an enumerated payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentAuthorized, PaymentCaptured, PaymentRefunded, PaymentSettled:
		return true
	}
	return false
}

// PaymentMethod is the channel/provider/brand triple of a payment.
type PaymentMethod struct {
	Channel  string `json:"channel"`
	Provider string `json:"provider"`
	Brand    string `json:"brand"`
}

// PaymentTimelineFact is one payment lifecycle event, versioned per
// order. Legacy flat events are lifted to this shape before persistence.
type PaymentTimelineFact struct {
	EventID             string
	OrderID             string
	TimelineVersion     int
	EventType           string
	Status              PaymentStatus
	PaymentMethod       PaymentMethod
	PaymentIntentID     string
	AuthorizedAmount    int64
	CapturedAmount      int64 // amount captured in this event
	CapturedAmountTotal int64 // running total across captures
	Amount              int64 // legacy single-amount field
	Currency            string
	Instrument          json.RawMessage // masked instrument details
	PGReferenceID       string
	EmitterService      string
	EmittedAt           time.Time
	IngestedAt          time.Time
	Metadata            json.RawMessage
}
