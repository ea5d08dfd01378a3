package riskscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskdesk/internal/contracts"
)

func f(v float64) *float64 { return &v }

func fullInput() Input {
	style := contracts.StyleScalping
	return Input{
		DLeverage:     f(5),
		TradingStyle:  &style,
		VaRMonthly:    f(7.5),
		MaxDrawdown:   f(-10),
		MarginPct:     f(30),
		Concentration: f(0.5),
		Volatility:    f(15),
	}
}

func TestCalculate(t *testing.T) {
	res := Calculate(fullInput())

	require.NotNil(t, res.Components)
	assert.InDelta(t, 35.0, res.Components.DLeverage, 1e-9)
	assert.InDelta(t, 45.0, res.Components.VaR, 1e-9)
	assert.InDelta(t, 40.0, res.Components.Drawdown, 1e-9)
	assert.InDelta(t, 35.0, res.Components.Margin, 1e-9)
	assert.InDelta(t, 50.0, res.Components.Concentration, 1e-9)
	assert.InDelta(t, 37.5, res.Components.Volatility, 1e-9)

	// 8.75 + 9 + 6 + 5.25 + 7.5 + 3.75 = 40.25
	assert.Equal(t, 40, res.Score)
	assert.Equal(t, RatingModerate, res.Rating)
	assert.Equal(t, "#FFC000", res.Color)
}

func TestCalculate_MissingInput(t *testing.T) {
	in := fullInput()
	in.Volatility = nil

	res := Calculate(in)
	assert.Equal(t, NeutralScore, res.Score)
	assert.Equal(t, RatingIndeterminate, res.Rating)
	assert.Equal(t, "gray", res.Color)
	assert.Nil(t, res.Components)

	assert.Equal(t, RatingIndeterminate, Calculate(Input{}).Rating)
}

func TestDLeverageScore(t *testing.T) {
	tests := []struct {
		name  string
		d     float64
		style contracts.TradingStyle
		want  float64
	}{
		{"zero", 0, contracts.StyleSwing, 0},
		{"negative", -1, contracts.StyleSwing, 0},
		{"half of sub-optimal", 2.5, contracts.StyleSwing, 35},
		{"at sub-optimal", 5, contracts.StyleSwing, 50},
		{"at optimal max", 9.75, contracts.StyleSwing, 70},
		{"at extreme", 9.75 * 1.5, contracts.StyleSwing, 100},
		{"beyond extreme", 30, contracts.StyleSwing, 100},
		{"intraday midway", 10.5, contracts.StyleIntraday, 60},
		{"unknown style uses swing", 5, contracts.TradingStyle("position"), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DLeverageScore(tt.d, tt.style), 1e-9)
		})
	}
}

func TestComponentBreakpoints(t *testing.T) {
	assert.InDelta(t, 30.0, VaRScore(5), 1e-9)
	assert.InDelta(t, 60.0, VaRScore(10), 1e-9)
	assert.InDelta(t, 80.0, VaRScore(15), 1e-9)
	assert.InDelta(t, 100.0, VaRScore(25), 1e-9)
	assert.Equal(t, 100.0, VaRScore(40))
	assert.Equal(t, 0.0, VaRScore(-3), "a gain is not negative risk")

	assert.InDelta(t, 20.0, DrawdownScore(-5), 1e-9)
	assert.InDelta(t, 60.0, DrawdownScore(15), 1e-9)
	assert.InDelta(t, 90.0, DrawdownScore(-32.5), 1e-9)

	assert.InDelta(t, 20.0, MarginScore(20), 1e-9)
	assert.InDelta(t, 65.0, MarginScore(55), 1e-9)
	assert.Equal(t, 100.0, MarginScore(120))

	assert.InDelta(t, 25.0, VolatilityScore(10), 1e-9)
	assert.InDelta(t, 87.5, VolatilityScore(40), 1e-9)
}

func TestBand(t *testing.T) {
	tests := []struct {
		score  int
		rating string
		color  string
	}{
		{0, RatingVeryLow, "#0070C0"},
		{19, RatingVeryLow, "#0070C0"},
		{20, RatingLow, "#00B050"},
		{59, RatingModerate, "#FFC000"},
		{60, RatingHigh, "#FF6600"},
		{80, RatingExtreme, "#C00000"},
		{100, RatingExtreme, "#C00000"},
	}

	for _, tt := range tests {
		rating, color := Band(tt.score)
		assert.Equal(t, tt.rating, rating, "score %d", tt.score)
		assert.Equal(t, tt.color, color, "score %d", tt.score)
	}
}

func TestCalculate_Bounds(t *testing.T) {
	style := contracts.StyleSwing
	worst := Input{
		DLeverage: f(100), TradingStyle: &style, VaRMonthly: f(100), MaxDrawdown: f(-90),
		MarginPct: f(500), Concentration: f(1), Volatility: f(200),
	}
	assert.Equal(t, 100, Calculate(worst).Score)

	best := Input{
		DLeverage: f(0), TradingStyle: &style, VaRMonthly: f(0), MaxDrawdown: f(0),
		MarginPct: f(0), Concentration: f(0), Volatility: f(0),
	}
	res := Calculate(best)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, RatingVeryLow, res.Rating)
}
