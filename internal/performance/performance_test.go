package performance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCalculate(t *testing.T) {
	c := NewCalculator(0.03, 252)
	m := c.Calculate(contracts.NewDailySeries(start, 100, 110, 99, 108.9))

	require.False(t, m.Empty())
	assert.Equal(t, 3, m.PeriodCount)
	assert.InDelta(t, 8.9, m.TotalReturn, 1e-9)
	assert.InDelta(t, 8.9*252/3, m.AnnualizedReturn, 1e-9)

	returns := []float64{0.1, -0.1, 0.1}
	assert.InDelta(t, stats.StdDev(returns)*math.Sqrt(252)*100, m.Volatility, 1e-6)
	assert.InDelta(t, -10.0, m.MaxDrawdown, 1e-9)
	assert.InDelta(t, stats.Mean(returns)*252/0.1, m.Calmar, 1e-6)
	assert.False(t, m.Sortino.Unbounded)

	assert.InDelta(t, 200.0/3, m.WinRatio, 1e-9)
	assert.InDelta(t, 10.0, m.AvgWin, 1e-9)
	assert.InDelta(t, -10.0, m.AvgLoss, 1e-9)
	assert.InDelta(t, 1.0, m.WinLossRatio.Value, 1e-9)
}

func TestCalculate_Degenerate(t *testing.T) {
	c := NewCalculator(0.03, 252)

	assert.True(t, c.Calculate(contracts.NewDailySeries(start, 100)).Empty())
	assert.True(t, c.Calculate(nil).Empty())

	rising := c.Calculate(contracts.NewDailySeries(start, 100, 101, 103, 104))
	assert.Equal(t, 0.0, rising.MaxDrawdown)
	assert.Equal(t, 0.0, rising.Calmar)
	assert.True(t, rising.WinLossRatio.Unbounded)
	assert.True(t, rising.Sortino.Unbounded)
	assert.Equal(t, 0.0, rising.AvgLoss)

	two := c.Calculate(contracts.NewDailySeries(start, 100, 90))
	assert.Equal(t, 0.0, two.Skewness)
	assert.Equal(t, 0.0, two.Kurtosis)
	assert.Equal(t, 0.0, two.Volatility)
}

func TestNewCalculator_DefaultPeriods(t *testing.T) {
	assert.Equal(t, 252, NewCalculator(0, 0).PeriodsPerYear())
	assert.Equal(t, 52, NewCalculator(0, 52).PeriodsPerYear())
}

func TestRolling(t *testing.T) {
	c := NewCalculator(0, 252)
	eq := contracts.NewDailySeries(start, 100, 110, 99, 108.9, 119.79)

	points := c.Rolling(eq, 3)
	require.Len(t, points, 2)

	assert.Equal(t, eq[3].Time, points[0].Time)
	assert.Equal(t, eq[4].Time, points[1].Time)
	assert.InDelta(t, 8.9, points[0].Return, 1e-9)
	assert.InDelta(t, -10.0, points[0].MaxDrawdown, 1e-9)
	assert.InDelta(t, -10.0, points[1].MaxDrawdown, 1e-9)
	for _, p := range points {
		assert.Greater(t, p.Volatility, 0.0)
	}

	assert.Empty(t, c.Rolling(eq, 5))
	assert.Empty(t, c.Rolling(eq, 0))
}

func TestDistribution(t *testing.T) {
	c := NewCalculator(0.03, 252)

	assert.Nil(t, c.Distribution(contracts.NewDailySeries(start, 100)))

	d := c.Distribution(contracts.NewDailySeries(start, 100, 110, 99, 108.9))
	require.NotNil(t, d)

	assert.Equal(t, 3, d.Count)
	assert.InDelta(t, 10.0/3, d.Mean, 1e-9)
	assert.InDelta(t, 10.0, d.Median, 1e-9)
	assert.InDelta(t, -10.0, d.Min, 1e-9)
	assert.InDelta(t, 10.0, d.Max, 1e-9)
	assert.InDelta(t, 8.0, d.VaR95, 1e-9)
	assert.InDelta(t, 10.0, d.ES95, 1e-9)
	assert.GreaterOrEqual(t, d.ES95, d.VaR95)
	assert.LessOrEqual(t, d.Q1, d.Q3)
	assert.LessOrEqual(t, d.P1, d.Q1)
	assert.GreaterOrEqual(t, d.P99, d.Q3)
	assert.GreaterOrEqual(t, d.JarqueBeraPValue, 0.0)
	assert.LessOrEqual(t, d.JarqueBeraPValue, 1.0)
}

func TestCompare(t *testing.T) {
	c := NewCalculator(0.03, 252)
	strategy := contracts.NewDailySeries(start, 100, 102, 101, 105, 104)

	t.Run("identical curves", func(t *testing.T) {
		cmp := c.Compare(strategy, strategy)
		require.NotNil(t, cmp)

		assert.Equal(t, 5, cmp.CommonPoints)
		assert.InDelta(t, 1.0, cmp.Beta, 1e-9)
		assert.InDelta(t, 1.0, cmp.Correlation, 1e-9)
		assert.InDelta(t, 0.0, cmp.Alpha, 1e-9)
		assert.Equal(t, cmp.Strategy, cmp.Benchmark)
		assert.InDelta(t, 4.0, cmp.Strategy.TotalReturn, 1e-9)
	})

	t.Run("leveraged strategy", func(t *testing.T) {
		bench := contracts.NewDailySeries(start, 100, 101, 100, 102)
		levValues := []float64{100}
		for _, r := range stats.Returns(bench.Values()) {
			levValues = append(levValues, levValues[len(levValues)-1]*(1+2*r))
		}
		lev := contracts.NewDailySeries(start, levValues...)

		cmp := c.Compare(lev, bench)
		require.NotNil(t, cmp)
		assert.InDelta(t, 2.0, cmp.Beta, 1e-6)
		assert.InDelta(t, 1.0, cmp.Correlation, 1e-6)
	})

	t.Run("only common dates are used", func(t *testing.T) {
		bench := contracts.NewDailySeries(start.AddDate(0, 0, 3), 50, 51, 52)
		cmp := c.Compare(strategy, bench)
		require.NotNil(t, cmp)
		assert.Equal(t, 2, cmp.CommonPoints)
	})

	t.Run("no overlap", func(t *testing.T) {
		bench := contracts.NewDailySeries(start.AddDate(1, 0, 0), 100, 101)
		assert.Nil(t, c.Compare(strategy, bench))
	})
}
