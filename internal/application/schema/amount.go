package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

// Minor is a monetary amount in minor units. Legacy producers emitted
// amounts as floats with a zero fraction (e.g. 180.00); those decode as
// their integral value. A non-integral amount is rejected rather than
// rounded.
type Minor int64

func (m *Minor) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*m = Minor(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("amount %q is not numeric", n)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("amount %q has a fractional part; minor units must be integral", n)
	}
	*m = Minor(int64(f))
	return nil
}

func (m Minor) Int64() int64 { return int64(m) }
