package audit

// Metric history keys
const (
	HistorySharpe    = "sharpe"
	HistorySortino   = "sortino"
	HistoryCalmar    = "calmar"
	HistoryDLeverage = "d_leverage"
)

// DefaultHistorySize is the number of refreshes kept per metric
const DefaultHistorySize = 100

// MetricHistory keeps the last values of each tracked metric, oldest first.
// Not safe for concurrent use; the Analyzer serialises access.
type MetricHistory struct {
	size   int
	series map[string][]float64
}

// NewMetricHistory creates buffers holding size values each
func NewMetricHistory(size int) *MetricHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &MetricHistory{size: size, series: make(map[string][]float64)}
}

// Push appends v to the named buffer, dropping the oldest value when full
func (h *MetricHistory) Push(name string, v float64) {
	s := append(h.series[name], v)
	if len(s) > h.size {
		s = s[len(s)-h.size:]
	}
	h.series[name] = s
}

// Values returns a copy of the named buffer
func (h *MetricHistory) Values(name string) []float64 {
	s := h.series[name]
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

// Len returns the number of values held for name
func (h *MetricHistory) Len(name string) int {
	return len(h.series[name])
}

// Reset empties every buffer
func (h *MetricHistory) Reset() {
	h.series = make(map[string][]float64)
}
