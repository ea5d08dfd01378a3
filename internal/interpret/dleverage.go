package interpret

import (
	"fmt"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

// DLeverage rates the current D-Leverage against the band of the trading style
// implied by avgDurationMinutes (nil: undetermined, swing band).
func DLeverage(d float64, avgDurationMinutes *float64, history []float64) Interpretation {
	style, determined := contracts.ClassifyStyle(avgDurationMinutes)
	band := style.Band()

	styleName := style.Label()
	if !determined {
		styleName = fmt.Sprintf("Undetermined (default %s)", style.Label())
	}

	out := Interpretation{
		Metric:       "D-Leverage",
		Value:        stats.Finite(d),
		Style:        styleName,
		OptimalRange: fmt.Sprintf("%.2f - %.2f", band.SubOptimal, band.OptimalMax),
		Trend:        dLeverageTrend(history),
	}

	switch {
	case d < band.SubOptimal:
		out.Rating, out.Color = RatingSubOptimal, "blue"
		out.Interpretation = fmt.Sprintf("Capital is under-used for the %s style. You could carefully increase exposure.", styleName)
		out.Recommendations = increaseRecommendations(style, d, band.Midpoint())

	case d <= band.OptimalMax:
		out.Rating, out.Color = RatingOptimal, "green"
		out.Interpretation = fmt.Sprintf("Optimal zone for the %s style. Good balance between risk and capital usage.", styleName)
		out.Recommendations = []string{
			fmt.Sprintf("Keep the current D-Leverage, it is optimal for the %s style.", styleName),
			"Monitor the ratio regularly during significant market moves.",
			"Make sure stops and risk management match this exposure level.",
		}

	default:
		excess := (d/band.OptimalMax - 1) * 100
		reduction := (1 - band.OptimalMax/d) * 100
		out.Rating, out.Color = RatingExcessive, "red"
		out.Interpretation = fmt.Sprintf("Excessive risk for the %s style. D-Leverage exceeds the recommended maximum by %.1f%%.", styleName, excess)
		out.Recommendations = []string{
			fmt.Sprintf("Reduce overall exposure by about %.1f%% to return to an appropriate risk level.", reduction),
			"Reduce first the positions with the weakest reward-to-risk profile.",
			"Follow a gradual reduction plan to avoid liquidating in unfavourable conditions.",
		}
	}
	return out
}

// increaseRecommendations targets the middle of the optimal band
func increaseRecommendations(style contracts.TradingStyle, d, target float64) []string {
	first := fmt.Sprintf("Increase exposure gradually toward a D-Leverage of about %.2f.", target)
	if d > 0 {
		first = fmt.Sprintf("Increase exposure gradually by %.1f%% to reach a more efficient D-Leverage of about %.2f.", (target/d-1)*100, target)
	}

	switch style {
	case contracts.StyleScalping:
		return []string{
			first,
			"Look for low-risk scalping setups to add exposure.",
			"Prefer more positions over larger positions for better diversification.",
		}
	case contracts.StyleIntraday:
		return []string{
			first,
			"Look for intraday setups with a good reward-to-risk ratio to add positions.",
			"Consider widening the instrument universe to spread the extra exposure.",
		}
	default:
		return []string{
			first,
			"Look for swing opportunities with solid technical setups.",
			"Add uncorrelated positions to keep overall risk in check.",
		}
	}
}

func dLeverageTrend(history []float64) string {
	tr, ok := analyzeTrend(history, 0.3)
	if !ok {
		return ""
	}

	text := ""
	switch {
	case tr.slope > 0.1:
		text = fmt.Sprintf("Your D-Leverage is rising (from %.2f to %.2f recently). Growing risk-taking should be watched closely.", tr.recentMin, tr.recentMax)
	case tr.slope < -0.1:
		text = fmt.Sprintf("Your D-Leverage is falling (from %.2f to %.2f recently). This reduction helps if you were previously in the excessive zone.", tr.recentMax, tr.recentMin)
	}
	if tr.unstable {
		text = join(text, fmt.Sprintf("Your D-Leverage fluctuates considerably (between %.2f and %.2f), which suggests inconsistent risk and position sizing.", tr.overallMin, tr.overallMax))
	}
	return text
}
