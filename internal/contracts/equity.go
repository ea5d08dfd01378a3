package contracts

import (
	"fmt"
	"sort"
	"time"
)

// EquityPoint is one (timestamp, account equity) observation
type EquityPoint struct {
	Time   time.Time `json:"time" yaml:"time"`
	Equity float64   `json:"equity" yaml:"equity"`
}

// EquitySeries is an equity curve ordered by strictly increasing timestamp.
// ⭐ 계산 중에는 불변: 분석 함수는 시리즈를 수정하지 않음
type EquitySeries []EquityPoint

// Len returns the number of points
func (s EquitySeries) Len() int { return len(s) }

// Values returns the equity values in order
func (s EquitySeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Equity
	}
	return out
}

// Times returns the timestamps in order
func (s EquitySeries) Times() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Time
	}
	return out
}

// Last returns the final point; ok is false on an empty series
func (s EquitySeries) Last() (EquityPoint, bool) {
	if len(s) == 0 {
		return EquityPoint{}, false
	}
	return s[len(s)-1], true
}

// Validate checks ordering and positivity
func (s EquitySeries) Validate() error {
	for i, p := range s {
		if p.Equity <= 0 {
			return fmt.Errorf("equity point %d (%s): non-positive equity %v", i, p.Time.Format(time.DateOnly), p.Equity)
		}
		if i > 0 && !p.Time.After(s[i-1].Time) {
			return fmt.Errorf("equity point %d: timestamp %s not after %s", i, p.Time.Format(time.RFC3339), s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Normalize returns a sorted copy with duplicate timestamps collapsed to the last value
func (s EquitySeries) Normalize() EquitySeries {
	out := make(EquitySeries, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for _, p := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Time.Equal(p.Time) {
			dedup[n-1] = p
			continue
		}
		dedup = append(dedup, p)
	}
	return dedup
}

// NewDailySeries builds a series from consecutive daily values starting at start
func NewDailySeries(start time.Time, values ...float64) EquitySeries {
	out := make(EquitySeries, len(values))
	for i, v := range values {
		out[i] = EquityPoint{Time: start.AddDate(0, 0, i), Equity: v}
	}
	return out
}
