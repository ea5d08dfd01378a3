package performance

import (
	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

// Distribution summarises period returns. Values marked % are percentages.
type Distribution struct {
	Mean   float64 `json:"mean"`   // %
	Median float64 `json:"median"` // %
	Std    float64 `json:"std"`    // %
	Min    float64 `json:"min"`    // %
	Max    float64 `json:"max"`    // %

	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`

	JarqueBeraStat   float64 `json:"jarque_bera_stat"`
	JarqueBeraPValue float64 `json:"jarque_bera_pvalue"`

	Q1  float64 `json:"q1"`  // %
	Q3  float64 `json:"q3"`  // %
	P1  float64 `json:"p1"`  // %
	P99 float64 `json:"p99"` // %

	// one-period historical loss at 95%, positive = loss
	VaR95 float64 `json:"var_95"`
	ES95  float64 `json:"es_95"`

	Count int `json:"count"`
}

// Distribution analyses the return distribution. Fewer than two points yields nil.
func (c *Calculator) Distribution(equity contracts.EquitySeries) *Distribution {
	if len(equity) < 2 {
		return nil
	}
	returns := stats.Returns(equity.Values())

	d := &Distribution{
		Mean:     stats.Mean(returns) * 100,
		Median:   stats.Median(returns) * 100,
		Std:      stats.StdDev(returns) * 100,
		Min:      returns[stats.MinIndex(returns)] * 100,
		Max:      returns[stats.MaxIndex(returns)] * 100,
		Skewness: stats.Skewness(returns),
		Kurtosis: stats.ExcessKurtosis(returns),
		Q1:       stats.Quantile(returns, 0.25) * 100,
		Q3:       stats.Quantile(returns, 0.75) * 100,
		P1:       stats.Quantile(returns, 0.01) * 100,
		P99:      stats.Quantile(returns, 0.99) * 100,
		Count:    len(returns),
	}
	d.JarqueBeraStat, d.JarqueBeraPValue = stats.JarqueBera(returns)

	cutoff := stats.Quantile(returns, 0.05)
	var tail []float64
	for _, r := range returns {
		if r <= cutoff {
			tail = append(tail, r)
		}
	}
	d.VaR95 = -cutoff * 100
	d.ES95 = -stats.Mean(tail) * 100

	return d
}
