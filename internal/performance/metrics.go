// Package performance computes return, risk-adjusted and distribution metrics of an equity curve.
package performance

import (
	"math"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

// Metrics is the performance bundle of one equity curve.
// The zero value (PeriodCount 0) is the empty bundle.
type Metrics struct {
	// 수익률
	TotalReturn      float64 `json:"total_return"`      // %
	AnnualizedReturn float64 `json:"annualized_return"` // %, linear

	// 리스크 지표
	Volatility  float64     `json:"volatility"`   // annualized %
	MaxDrawdown float64     `json:"max_drawdown"` // %, ≤ 0
	Sharpe      float64     `json:"sharpe_ratio"`
	Sortino     stats.Ratio `json:"sortino_ratio"`
	Calmar      float64     `json:"calmar_ratio"`

	// 분포
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess

	// 승률
	WinRatio     float64     `json:"win_ratio"` // %
	AvgWin       float64     `json:"avg_win"`   // %
	AvgLoss      float64     `json:"avg_loss"`  // %, ≤ 0
	WinLossRatio stats.Ratio `json:"win_loss_ratio"`

	PeriodCount int `json:"period_count"`
}

// Empty reports whether the bundle was computed from too few points
func (m Metrics) Empty() bool {
	return m.PeriodCount == 0
}

// Calculator holds the market assumptions shared by every metric
type Calculator struct {
	riskFreeRate   float64
	periodsPerYear int
}

// NewCalculator creates a calculator; periodsPerYear ≤ 0 falls back to 252
func NewCalculator(riskFreeRate float64, periodsPerYear int) *Calculator {
	if periodsPerYear <= 0 {
		periodsPerYear = 252
	}
	return &Calculator{riskFreeRate: riskFreeRate, periodsPerYear: periodsPerYear}
}

// PeriodsPerYear returns the annualization factor
func (c *Calculator) PeriodsPerYear() int {
	return c.periodsPerYear
}

// RiskFreeRate returns the annual risk-free rate
func (c *Calculator) RiskFreeRate() float64 {
	return c.riskFreeRate
}

// Calculate computes the full bundle. Fewer than two points yields the empty bundle.
func (c *Calculator) Calculate(equity contracts.EquitySeries) Metrics {
	if len(equity) < 2 {
		return Metrics{}
	}

	values := equity.Values()
	returns := stats.Returns(values)
	n := float64(c.periodsPerYear)

	m := Metrics{PeriodCount: len(returns)}

	m.TotalReturn = (values[len(values)-1]/values[0] - 1) * 100
	m.AnnualizedReturn = m.TotalReturn * n / float64(m.PeriodCount)
	m.Volatility = stats.StdDev(returns) * math.Sqrt(n) * 100

	dd := stats.DrawdownSeries(values)
	m.MaxDrawdown = dd[stats.MinIndex(dd)]

	m.Sharpe = stats.Sharpe(returns, c.riskFreeRate, c.periodsPerYear)
	m.Sortino = stats.Sortino(returns, c.riskFreeRate, c.periodsPerYear)
	m.Calmar = stats.Calmar(returns, m.MaxDrawdown/100, c.periodsPerYear)

	m.Skewness = stats.Skewness(returns)
	m.Kurtosis = stats.ExcessKurtosis(returns)

	m.WinRatio = stats.WinRatio(returns)
	m.AvgWin, m.AvgLoss, m.WinLossRatio = winLoss(returns)

	return m
}

// winLoss returns the mean gain and mean loss in percent and |avgWin/avgLoss|,
// unbounded when there are no losing periods
func winLoss(returns []float64) (avgWin, avgLoss float64, ratio stats.Ratio) {
	var wins, losses []float64
	for _, r := range returns {
		switch {
		case r > 0:
			wins = append(wins, r)
		case r < 0:
			losses = append(losses, r)
		}
	}
	if len(wins) > 0 {
		avgWin = stats.Mean(wins) * 100
	}
	if len(losses) == 0 {
		return avgWin, 0, stats.Unbounded()
	}
	avgLoss = stats.Mean(losses) * 100
	return avgWin, avgLoss, stats.Finite(math.Abs(avgWin / avgLoss))
}
