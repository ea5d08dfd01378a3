package stats

import (
	"encoding/json"
	"math"
	"strconv"
)

// Ratio is a performance ratio that may be unbounded (no downside, no losses).
// Unbounded ratios serialize as the string "inf".
type Ratio struct {
	Value     float64
	Unbounded bool
}

// Finite wraps an ordinary value
func Finite(v float64) Ratio { return Ratio{Value: v} }

// Unbounded is the positive-infinity variant
func Unbounded() Ratio { return Ratio{Unbounded: true} }

// Float returns +Inf for the unbounded variant
func (r Ratio) Float() float64 {
	if r.Unbounded {
		return math.Inf(1)
	}
	return r.Value
}

func (r Ratio) String() string {
	if r.Unbounded {
		return "inf"
	}
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

// MarshalJSON encodes a number or "inf"
func (r Ratio) MarshalJSON() ([]byte, error) {
	if r.Unbounded {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or "inf"
func (r *Ratio) UnmarshalJSON(b []byte) error {
	if string(b) == `"inf"` {
		*r = Unbounded()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Finite(v)
	return nil
}
