package performance

import (
	"math"
	"time"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

// RollingPoint is the trailing-window metrics ending at Time
type RollingPoint struct {
	Time        time.Time `json:"time"`
	Return      float64   `json:"return"`     // window return %
	Volatility  float64   `json:"volatility"` // annualized %
	Sharpe      float64   `json:"sharpe"`
	MaxDrawdown float64   `json:"max_drawdown"` // window max drawdown %
}

// Rolling computes trailing-window metrics for every point with a full window of
// returns behind it. Requires len(equity) ≥ window+1, otherwise empty.
func (c *Calculator) Rolling(equity contracts.EquitySeries, window int) []RollingPoint {
	points := []RollingPoint{}
	if window < 1 || len(equity) < window+1 {
		return points
	}

	values := equity.Values()
	returns := stats.Returns(values)
	sqrtN := math.Sqrt(float64(c.periodsPerYear))

	// returns[i-1] is the change into equity point i
	for i := window; i <= len(returns); i++ {
		windowReturns := returns[i-window : i]
		windowValues := values[i-window : i+1]

		dd := stats.DrawdownSeries(windowValues)
		points = append(points, RollingPoint{
			Time:        equity[i].Time,
			Return:      (windowValues[len(windowValues)-1]/windowValues[0] - 1) * 100,
			Volatility:  stats.StdDev(windowReturns) * sqrtN * 100,
			Sharpe:      stats.Sharpe(windowReturns, c.riskFreeRate, c.periodsPerYear),
			MaxDrawdown: dd[stats.MinIndex(dd)],
		})
	}
	return points
}
