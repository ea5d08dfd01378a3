package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturns(t *testing.T) {
	assert.Nil(t, Returns([]float64{100}))

	r := Returns([]float64{100, 110, 99})
	require.Len(t, r, 2)
	assert.InDelta(t, 0.10, r[0], 1e-12)
	assert.InDelta(t, -0.10, r[1], 1e-12)
}

func TestDrawdownSeries(t *testing.T) {
	dd := DrawdownSeries([]float64{100, 110, 99, 121, 120})

	require.Len(t, dd, 5)
	assert.Equal(t, 0.0, dd[0])
	assert.Equal(t, 0.0, dd[1])
	assert.InDelta(t, -10.0, dd[2], 1e-9)
	assert.Equal(t, 0.0, dd[3])
	assert.Less(t, dd[4], 0.0)

	for _, v := range DrawdownSeries([]float64{5, 3, 8, 1, 9, 2}) {
		assert.LessOrEqual(t, v, 0.0)
	}
}

func TestRollingDrawdownSeries(t *testing.T) {
	values := []float64{100, 90, 80, 85}

	// window of 2 only looks one point back
	dd := RollingDrawdownSeries(values, 2)
	assert.InDelta(t, -10.0, dd[1], 1e-9)
	assert.InDelta(t, -100.0/9, dd[2], 1e-9)
	assert.Equal(t, 0.0, dd[3])

	assert.Equal(t, DrawdownSeries(values), RollingDrawdownSeries(values, 0))
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		q    float64
		want float64
	}{
		{"empty", nil, 0.5, 0},
		{"single", []float64{3}, 0.05, 3},
		{"lower quartile", []float64{4, 1, 3, 2}, 0.25, 1.75},
		{"median odd", []float64{50, 10, 30, 20, 40}, 0.5, 30},
		{"interpolated", []float64{10, 20, 30, 40, 50}, 0.1, 14},
		{"max", []float64{1, 2, 3}, 1, 3},
		{"min", []float64{1, 2, 3}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.x, tt.q), 1e-12)
		})
	}
}

func TestQuantileDoesNotMutate(t *testing.T) {
	x := []float64{3, 1, 2}
	_ = Quantile(x, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, x)
}

func TestMoments(t *testing.T) {
	x := []float64{1, 2, 3}

	assert.InDelta(t, 0.0, Skewness(x), 1e-12)
	assert.InDelta(t, -1.5, ExcessKurtosis(x), 1e-12)
	assert.Equal(t, 0.0, Skewness([]float64{1, 2}))
	assert.Equal(t, 0.0, ExcessKurtosis([]float64{2, 2, 2}))

	assert.Greater(t, Skewness([]float64{1, 1, 1, 1, 10}), 0.0)
}

func TestJarqueBera(t *testing.T) {
	jb, p := JarqueBera([]float64{1, 2, 3})
	assert.InDelta(t, 0.28125, jb, 1e-12)
	assert.InDelta(t, math.Exp(-0.28125/2), p, 1e-9)

	jb, p = JarqueBera([]float64{1, 2})
	assert.Equal(t, 0.0, jb)
	assert.Equal(t, 1.0, p)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev([]float64{1}))
	assert.InDelta(t, math.Sqrt(2), StdDev([]float64{1, 3}), 1e-12)
	assert.InDelta(t, 1.0, PopStdDev([]float64{1, 3}), 1e-12)
}

func TestNormalQuantile(t *testing.T) {
	assert.InDelta(t, -1.6448536, NormalQuantile(0.05), 1e-6)
	assert.InDelta(t, -2.3263479, NormalQuantile(0.01), 1e-6)
	assert.InDelta(t, 0.0, NormalQuantile(0.5), 1e-12)
}

func TestCorrelationAndSlope(t *testing.T) {
	assert.InDelta(t, 1.0, Correlation([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-12)
	assert.InDelta(t, -1.0, Correlation([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-12)
	assert.Equal(t, 0.0, Correlation([]float64{1, 1, 1}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, Correlation([]float64{1, 2}, []float64{1}))

	assert.InDelta(t, 2.0, Slope([]float64{1, 3, 5, 7}), 1e-12)
	assert.Equal(t, 0.0, Slope([]float64{4}))

	assert.InDelta(t, 1.0, Covariance([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 1.0, Variance([]float64{1, 2, 3}), 1e-12)
}

func TestCoefficientOfVariation(t *testing.T) {
	assert.Equal(t, Finite(0), CoefficientOfVariation([]float64{2, 2, 2}))
	assert.True(t, CoefficientOfVariation([]float64{1, -1}).Unbounded)
	assert.InDelta(t, 0.5, CoefficientOfVariation([]float64{1, 3}).Value, 1e-12)
}

func TestSharpe(t *testing.T) {
	assert.Equal(t, 0.0, Sharpe(nil, 0.03, 252))
	assert.Equal(t, 0.0, Sharpe([]float64{0.01, 0.01, 0.01}, 0, 252))
	assert.InDelta(t, 2*math.Sqrt(2), Sharpe([]float64{0.01, 0.03}, 0, 4), 1e-9)
}

func TestSortino(t *testing.T) {
	assert.Equal(t, Finite(0), Sortino(nil, 0.03, 252))
	assert.True(t, Sortino([]float64{0.01, 0.02}, 0, 252).Unbounded)

	s := Sortino([]float64{0.02, -0.01}, 0, 1)
	require.False(t, s.Unbounded)
	assert.InDelta(t, 0.5, s.Value, 1e-12)
}

func TestCalmar(t *testing.T) {
	assert.InDelta(t, 12.6, Calmar([]float64{0.01, 0.01}, -0.2, 252), 1e-9)
	assert.Equal(t, 0.0, Calmar([]float64{0.01}, 0, 252))
}

func TestWinRatio(t *testing.T) {
	assert.InDelta(t, 40.0, WinRatio([]float64{0.01, -0.02, 0.03, 0, -0.01}), 1e-12)
	assert.Equal(t, 0.0, WinRatio(nil))
}

func TestPeriodRate(t *testing.T) {
	rf := PeriodRate(0.03, 252)
	assert.InDelta(t, 1.03, math.Pow(1+rf, 252), 1e-12)
	assert.Equal(t, 0.0, PeriodRate(0.03, 0))
}

func TestRatioJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Ratio{"a": Finite(1.5), "b": Unbounded()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":"inf"}`, string(b))

	var back map[string]Ratio
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back["b"].Unbounded)
	assert.True(t, math.IsInf(back["b"].Float(), 1))
	assert.Equal(t, "1.50", back["a"].String())
}

func TestIndexHelpers(t *testing.T) {
	assert.Equal(t, -1, MinIndex(nil))
	assert.Equal(t, 1, MinIndex([]float64{3, 1, 1}))
	assert.Equal(t, 0, MaxIndex([]float64{5, 5, 1}))
}
