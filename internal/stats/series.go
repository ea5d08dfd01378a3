package stats

// Returns converts an equity curve into period-over-period fractional changes.
// The result has len(values)-1 elements; a zero previous value yields 0.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out[i-1] = values[i]/values[i-1] - 1
	}
	return out
}

// DrawdownSeries returns (v - runningMax) / runningMax * 100 for every point.
// All values are ≤ 0 and exactly 0 at a new high.
func DrawdownSeries(values []float64) []float64 {
	out := make([]float64, len(values))
	peak := 0.0
	for i, v := range values {
		if i == 0 || v > peak {
			peak = v
		}
		if peak > 0 {
			out[i] = (v - peak) / peak * 100
		}
	}
	return out
}

// RollingDrawdownSeries measures each point against the highest value in the
// trailing window of the given size (shorter windows at the start).
func RollingDrawdownSeries(values []float64, window int) []float64 {
	if window <= 0 {
		return DrawdownSeries(values)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		peak := values[start]
		for _, w := range values[start : i+1] {
			if w > peak {
				peak = w
			}
		}
		if peak > 0 {
			out[i] = (v - peak) / peak * 100
		}
	}
	return out
}

// MinIndex returns the index of the first minimum, -1 on empty input
func MinIndex(values []float64) int {
	idx := -1
	for i, v := range values {
		if idx < 0 || v < values[idx] {
			idx = i
		}
	}
	return idx
}

// MaxIndex returns the index of the first maximum, -1 on empty input
func MaxIndex(values []float64) int {
	idx := -1
	for i, v := range values {
		if idx < 0 || v > values[idx] {
			idx = i
		}
	}
	return idx
}
