package valueobject

import "fmt"

// AmountEffect is the directional flag on a payable line. The magnitude
// of a line is always non-negative; the direction lives here.
type AmountEffect string

const (
	IncreasesPayable AmountEffect = "INCREASES_PAYABLE"
	DecreasesPayable AmountEffect = "DECREASES_PAYABLE"
)

// ParseAmountEffect validates the wire value. An empty value defaults to
// INCREASES_PAYABLE for v1 events that predate the flag.
func ParseAmountEffect(s string) (AmountEffect, error) {
	switch AmountEffect(s) {
	case IncreasesPayable, DecreasesPayable:
		return AmountEffect(s), nil
	case "":
		return IncreasesPayable, nil
	default:
		return "", fmt.Errorf("unknown amount_effect %q", s)
	}
}

// Sign returns +1 for INCREASES_PAYABLE and -1 for DECREASES_PAYABLE.
func (e AmountEffect) Sign() int64 {
	if e == DecreasesPayable {
		return -1
	}
	return 1
}

// Apply returns amount signed by the effect direction.
func (e AmountEffect) Apply(amount int64) int64 {
	return e.Sign() * amount
}
