// Package riskscore combines six risk measures into one 0–100 score.
package riskscore

import (
	"math"

	"github.com/wonny/riskdesk/internal/contracts"
)

// Ratings
const (
	RatingVeryLow       = "Very Low"
	RatingLow           = "Low"
	RatingModerate      = "Moderate"
	RatingHigh          = "High"
	RatingExtreme       = "Extreme"
	RatingIndeterminate = "Indeterminate"
)

// NeutralScore is returned when any input is missing
const NeutralScore = 50

// Weights of each component in the composite
var Weights = Components{
	DLeverage:     0.25,
	VaR:           0.20,
	Drawdown:      0.15,
	Margin:        0.15,
	Concentration: 0.15,
	Volatility:    0.10,
}

// Input carries the seven required measures; nil means missing
type Input struct {
	DLeverage     *float64                `json:"d_leverage"`
	TradingStyle  *contracts.TradingStyle `json:"trading_style"`
	VaRMonthly    *float64                `json:"var_monthly"`   // %
	MaxDrawdown   *float64                `json:"max_drawdown"`  // %, sign ignored
	MarginPct     *float64                `json:"margin_pct"`    // %
	Concentration *float64                `json:"concentration"` // HHI 0..1
	Volatility    *float64                `json:"volatility"`    // annualized %
}

// Complete reports whether every required measure is present
func (in Input) Complete() bool {
	return in.DLeverage != nil && in.TradingStyle != nil && in.VaRMonthly != nil &&
		in.MaxDrawdown != nil && in.MarginPct != nil && in.Concentration != nil && in.Volatility != nil
}

// Components holds one 0–100 score per measure (higher is riskier)
type Components struct {
	DLeverage     float64 `json:"d_leverage"`
	VaR           float64 `json:"var"`
	Drawdown      float64 `json:"drawdown"`
	Margin        float64 `json:"margin_pct"`
	Concentration float64 `json:"concentration"`
	Volatility    float64 `json:"volatility"`
}

// Result is the composite score. Components is nil when the score is indeterminate.
type Result struct {
	Score      int         `json:"score"`
	Components *Components `json:"details,omitempty"`
	Rating     string      `json:"rating"`
	Color      string      `json:"color"`
}

// Calculate scores the inputs. Missing inputs yield 50 / Indeterminate / gray.
func Calculate(in Input) Result {
	if !in.Complete() {
		return Result{Score: NeutralScore, Rating: RatingIndeterminate, Color: "gray"}
	}

	c := Components{
		DLeverage:     DLeverageScore(*in.DLeverage, *in.TradingStyle),
		VaR:           VaRScore(*in.VaRMonthly),
		Drawdown:      DrawdownScore(*in.MaxDrawdown),
		Margin:        MarginScore(*in.MarginPct),
		Concentration: clamp(*in.Concentration * 100),
		Volatility:    VolatilityScore(*in.Volatility),
	}

	total := c.DLeverage*Weights.DLeverage +
		c.VaR*Weights.VaR +
		c.Drawdown*Weights.Drawdown +
		c.Margin*Weights.Margin +
		c.Concentration*Weights.Concentration +
		c.Volatility*Weights.Volatility

	score := int(math.RoundToEven(total))
	rating, color := Band(score)
	return Result{Score: score, Components: &c, Rating: rating, Color: color}
}

// Band maps a composite score to its rating and color
func Band(score int) (rating, color string) {
	switch {
	case score < 20:
		return RatingVeryLow, "#0070C0"
	case score < 40:
		return RatingLow, "#00B050"
	case score < 60:
		return RatingModerate, "#FFC000"
	case score < 80:
		return RatingHigh, "#FF6600"
	default:
		return RatingExtreme, "#C00000"
	}
}

// segment is one linear piece: values up to upTo map onto [from, to]
type segment struct {
	upTo     float64
	from, to float64
}

// piecewise interpolates v across consecutive segments starting at 0;
// beyond the last breakpoint the score is 100
func piecewise(v float64, segs []segment) float64 {
	lower := 0.0
	for _, s := range segs {
		if v <= s.upTo {
			return clamp(s.from + (v-lower)/(s.upTo-lower)*(s.to-s.from))
		}
		lower = s.upTo
	}
	return 100
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// DLeverageScore: 0 at or below 0, 20→50 up to the style's sub-optimal level,
// 50→70 up to optimal max, 70→100 up to 1.5× optimal max
func DLeverageScore(d float64, style contracts.TradingStyle) float64 {
	if d <= 0 {
		return 0
	}
	band := style.Band()
	return piecewise(d, []segment{
		{band.SubOptimal, 20, 50},
		{band.OptimalMax, 50, 70},
		{band.OptimalMax * 1.5, 70, 100},
	})
}

// VaRScore maps monthly VaR % with breakpoints 5/10/15/25
func VaRScore(v float64) float64 {
	return piecewise(v, []segment{{5, 0, 30}, {10, 30, 60}, {15, 60, 80}, {25, 80, 100}})
}

// DrawdownScore maps |max drawdown| % with breakpoints 5/15/25/40
func DrawdownScore(dd float64) float64 {
	return piecewise(math.Abs(dd), []segment{{5, 0, 20}, {15, 20, 60}, {25, 60, 80}, {40, 80, 100}})
}

// MarginScore maps margin usage % with breakpoints 20/40/70/90
func MarginScore(m float64) float64 {
	return piecewise(m, []segment{{20, 0, 20}, {40, 20, 50}, {70, 50, 80}, {90, 80, 100}})
}

// VolatilityScore maps annualized volatility % with breakpoints 10/20/30/50
func VolatilityScore(v float64) float64 {
	return piecewise(v, []segment{{10, 0, 25}, {20, 25, 50}, {30, 50, 75}, {50, 75, 100}})
}
