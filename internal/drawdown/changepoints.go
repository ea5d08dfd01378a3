package drawdown

import (
	"math"
	"time"

	"github.com/markcheno/go-talib"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

// ChangePoint is a regime change detected in the equity returns
type ChangePoint struct {
	Date       time.Time `json:"date"`
	Difference float64   `json:"difference"` // short MA - long MA after the cross
}

// FindChangePoints compares 10- and 30-period simple moving averages of returns and
// reports dates where short-long changes sign with |short-long| above the sensitivity.
// Fewer than thirty equity points yields an empty slice.
func (a *Analyzer) FindChangePoints(equity contracts.EquitySeries) []ChangePoint {
	points := []ChangePoint{}
	if len(equity) < minChangePointPoints {
		return points
	}

	returns := stats.Returns(equity.Values())
	if len(returns) <= longWindow {
		return points
	}

	short := talib.Sma(returns, shortWindow)
	long := talib.Sma(returns, longWindow)

	var prev float64
	havePrev := false
	for k := longWindow; k < len(returns); k++ {
		diff := short[k] - long[k]
		if havePrev {
			crossed := (prev < 0 && diff > 0) || (prev > 0 && diff < 0)
			if crossed && math.Abs(diff) > a.cfg.Sensitivity {
				// returns[k] belongs to equity point k+1
				points = append(points, ChangePoint{Date: equity[k+1].Time, Difference: diff})
			}
		}
		prev, havePrev = diff, true
	}
	return points
}
