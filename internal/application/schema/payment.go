package schema

import (
	"encoding/json"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/model"
	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/valueobject"
)

// PaymentEvent accepts both the current nested `payment` object and the
// legacy flat fields. DecodePayment always returns the nested form.
type PaymentEvent struct {
	Payment *PaymentBody `json:"payment"`

	// Legacy flat shape (payment.timeline.v1 early producers).
	Status           string               `json:"status"`
	PaymentMethod    *model.PaymentMethod `json:"payment_method"`
	Currency         string               `json:"currency"`
	Amount           Minor                `json:"amount"`
	AuthorizedAmount Minor                `json:"authorized_amount"`
	CapturedAmount   Minor                `json:"captured_amount"`
	PaymentIntentID  string               `json:"payment_intent_id"`
	PGReferenceID    string               `json:"pg_reference_id"`
}

// PaymentBody is the canonical nested payment object.
type PaymentBody struct {
	Status              string                  `json:"status"`
	PaymentID           string                  `json:"payment_id"`
	PGReferenceID       string                  `json:"pg_reference_id"`
	PaymentMethod       model.PaymentMethod     `json:"payment_method"`
	Currency            string                  `json:"currency"`
	Amount              Minor                   `json:"amount"`
	AuthorizedAmount    Minor                   `json:"authorized_amount"`
	CapturedAmount      Minor                   `json:"captured_amount"`
	CapturedAmountTotal Minor                   `json:"captured_amount_total"`
	Instrument          *valueobject.Instrument `json:"instrument"`
	BNPLPlan            json.RawMessage         `json:"bnpl_plan"`
}

// DecodePayment parses a payment payload, lifting the legacy flat shape
// to the nested form, and validates status, method and instrument.
func DecodePayment(raw []byte) (PaymentBody, error) {
	var e PaymentEvent
	if err := json.Unmarshal(raw, &e); err != nil {
		return PaymentBody{}, fault.Wrap(fault.KindValidation, err, "malformed payment payload")
	}

	body := e.lift()

	if body.Status == "" {
		return body, fault.New(fault.KindValidation, "payment status is required")
	}
	if !model.PaymentStatus(body.Status).Valid() {
		return body, fault.New(fault.KindValidation, "unknown payment status %q", body.Status)
	}
	if body.Currency == "" {
		return body, fault.New(fault.KindValidation, "payment currency is required")
	}
	if body.PaymentMethod.Channel == "" {
		return body, fault.New(fault.KindValidation, "payment_method.channel is required")
	}
	if body.Instrument != nil {
		if err := body.Instrument.Validate(); err != nil {
			return body, fault.Wrap(fault.KindValidation, err, "invalid instrument")
		}
	}
	return body, nil
}

func (e PaymentEvent) lift() PaymentBody {
	if e.Payment != nil {
		return *e.Payment
	}

	body := PaymentBody{
		Status:           e.Status,
		PaymentID:        e.PaymentIntentID,
		PGReferenceID:    e.PGReferenceID,
		Currency:         e.Currency,
		Amount:           e.Amount,
		AuthorizedAmount: e.AuthorizedAmount,
		CapturedAmount:   e.CapturedAmount,
	}
	if e.PaymentMethod != nil {
		body.PaymentMethod = *e.PaymentMethod
	}
	// The flat shape had no running capture total; the single amount is
	// kept verbatim and also stands in for whichever stage the event
	// describes.
	if e.CapturedAmount != 0 {
		body.CapturedAmountTotal = e.CapturedAmount
	} else if e.Amount != 0 {
		switch model.PaymentStatus(e.Status) {
		case model.PaymentAuthorized:
			body.AuthorizedAmount = e.Amount
		default:
			body.CapturedAmount = e.Amount
			body.CapturedAmountTotal = e.Amount
		}
	}
	return body
}
