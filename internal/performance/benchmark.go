package performance

import (
	"math"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

// SeriesSummary is the headline set shown side by side for strategy and benchmark
type SeriesSummary struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	Sharpe           float64 `json:"sharpe"` // risk-free rate 0
	MaxDrawdown      float64 `json:"max_drawdown"`
}

// Comparison relates the strategy to a benchmark over their common dates
type Comparison struct {
	Strategy  SeriesSummary `json:"strategy"`
	Benchmark SeriesSummary `json:"benchmark"`

	Alpha       float64 `json:"alpha"` // annualized %
	Beta        float64 `json:"beta"`
	Correlation float64 `json:"correlation"`

	CommonPoints int `json:"common_points"`
}

// Compare aligns both curves on calendar dates and computes relative metrics.
// Fewer than two common dates yields nil.
func (c *Calculator) Compare(strategy, benchmark contracts.EquitySeries) *Comparison {
	s, b := align(strategy, benchmark)
	if len(s) < 2 {
		return nil
	}

	sr, br := stats.Returns(s), stats.Returns(b)
	cmp := &Comparison{
		Strategy:     c.summary(s, sr),
		Benchmark:    c.summary(b, br),
		Correlation:  stats.Correlation(sr, br),
		CommonPoints: len(s),
	}

	if v := stats.Variance(br); v > 0 {
		cmp.Beta = stats.Covariance(sr, br) / v
	}
	cmp.Alpha = (stats.Mean(sr) - cmp.Beta*stats.Mean(br)) * float64(c.periodsPerYear) * 100

	return cmp
}

func (c *Calculator) summary(values, returns []float64) SeriesSummary {
	n := float64(c.periodsPerYear)
	total := (values[len(values)-1]/values[0] - 1) * 100
	dd := stats.DrawdownSeries(values)

	return SeriesSummary{
		TotalReturn:      total,
		AnnualizedReturn: total * n / float64(len(returns)),
		Volatility:       stats.StdDev(returns) * math.Sqrt(n) * 100,
		Sharpe:           stats.Sharpe(returns, 0, c.periodsPerYear),
		MaxDrawdown:      dd[stats.MinIndex(dd)],
	}
}

// align returns the values of both series on the dates they share, oldest first
func align(a, b contracts.EquitySeries) ([]float64, []float64) {
	byDay := make(map[string]float64, len(b))
	for _, p := range b {
		byDay[p.Time.Format("2006-01-02")] = p.Equity
	}

	var av, bv []float64
	for _, p := range a.Normalize() {
		if v, ok := byDay[p.Time.Format("2006-01-02")]; ok && v > 0 {
			av = append(av, p.Equity)
			bv = append(bv, v)
		}
	}
	return av, bv
}
