// Package interpret turns metric values into ratings, explanations and recommendations.
package interpret

import (
	"fmt"

	"github.com/wonny/riskdesk/internal/stats"
)

// Ratings, lowest first
const (
	RatingPoor        = "Poor"
	RatingAcceptable  = "Acceptable"
	RatingGood        = "Good"
	RatingVeryGood    = "Very Good"
	RatingExceptional = "Exceptional"

	RatingSubOptimal = "Sub-optimal"
	RatingOptimal    = "Optimal"
	RatingExcessive  = "Excessive"
)

// Interpretation is the judgement on one metric
type Interpretation struct {
	Metric          string      `json:"metric"`
	Value           stats.Ratio `json:"value"`
	Rating          string      `json:"rating"`
	Color           string      `json:"color"`
	Interpretation  string      `json:"interpretation"`
	Trend           string      `json:"trend_analysis,omitempty"`
	Comparison      string      `json:"comparative_analysis,omitempty"`
	Context         string      `json:"contextual_analysis,omitempty"`
	Recommendations []string    `json:"recommendations"`

	// D-Leverage only
	Style        string `json:"style,omitempty"`
	OptimalRange string `json:"optimal_range,omitempty"`

	// Calmar only
	MaxDrawdown *float64 `json:"max_drawdown,omitempty"`
}

// Thresholds are the four cut points between the five rating tiers
type Thresholds struct {
	Poor, Acceptable, Good, Excellent float64
}

var (
	SharpeThresholds  = Thresholds{Poor: 0.5, Acceptable: 1, Good: 2, Excellent: 3}
	SortinoThresholds = Thresholds{Poor: 0.5, Acceptable: 1, Good: 2, Excellent: 3}
	CalmarThresholds  = Thresholds{Poor: 0.5, Acceptable: 1, Good: 3, Excellent: 5}
)

type tier struct {
	rating string
	color  string
}

var tiers = [5]tier{
	{RatingPoor, "red"},
	{RatingAcceptable, "orange"},
	{RatingGood, "lightgreen"},
	{RatingVeryGood, "green"},
	{RatingExceptional, "darkgreen"},
}

// tierOf returns the tier index 0..4 for v
func (t Thresholds) tierOf(v stats.Ratio) int {
	if v.Unbounded {
		return 4
	}
	switch {
	case v.Value < t.Poor:
		return 0
	case v.Value < t.Acceptable:
		return 1
	case v.Value < t.Good:
		return 2
	case v.Value < t.Excellent:
		return 3
	default:
		return 4
	}
}

// trend summarises the recent direction and the overall instability of a history
type trend struct {
	slope      float64
	unstable   bool
	recentMin  float64
	recentMax  float64
	overallMin float64
	overallMax float64
}

// analyzeTrend needs more than two points. The recent window is the last
// max(3, 20%) points; instability is population CoV above limit.
func analyzeTrend(history []float64, limit float64) (trend, bool) {
	if len(history) <= 2 {
		return trend{}, false
	}

	recentN := len(history) / 5
	if recentN < 3 {
		recentN = 3
	}
	recent := history[len(history)-recentN:]

	cov := stats.CoefficientOfVariation(history)
	tr := trend{
		slope:    stats.Slope(recent),
		unstable: cov.Unbounded || cov.Value > limit,
	}
	tr.recentMin = recent[stats.MinIndex(recent)]
	tr.recentMax = recent[stats.MaxIndex(recent)]
	tr.overallMin = history[stats.MinIndex(history)]
	tr.overallMax = history[stats.MaxIndex(history)]
	return tr, true
}

// ratioTrend builds the shared trend sentence for Sharpe-like ratios
func ratioTrend(name string, history []float64) string {
	tr, ok := analyzeTrend(history, 0.5)
	if !ok {
		return ""
	}

	text := ""
	switch {
	case tr.slope > 0.05:
		text = fmt.Sprintf("Your %s has improved significantly recently, which points to a successful refinement of the strategy.", name)
	case tr.slope < -0.05:
		text = fmt.Sprintf("Your %s has been deteriorating recently. Check whether market conditions changed or execution became less disciplined.", name)
	}
	if tr.unstable {
		text = join(text, fmt.Sprintf("The high variability of your %s suggests an inconsistent approach or a strong dependence on market conditions.", name))
	}
	return text
}

func join(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}
