package interpret

import (
	"fmt"
	"math"
	"time"

	"github.com/wonny/riskdesk/internal/stats"
)

var sharpeTexts = [5]string{
	"Returns do not sufficiently compensate for the risk taken.",
	"Sub-optimal performance. Risk is only partly compensated.",
	"The strategy generates returns that adequately compensate for risk.",
	"The strategy outperforms most professional managers.",
	"Remarkable performance, but watch its long-term sustainability.",
}

// Sharpe rates a Sharpe ratio; history enables trend analysis
func Sharpe(sharpe float64, history []float64) Interpretation {
	v := stats.Finite(sharpe)
	idx := SharpeThresholds.tierOf(v)

	var recs []string
	switch {
	case sharpe < 1:
		recs = []string{
			"Reduce exposure to instruments that drag the ratio down.",
			"Re-evaluate entry and exit rules to improve the reward-to-risk profile.",
			"Consider tighter stops to limit large losses.",
		}
	case sharpe < 2:
		recs = []string{
			"The strategy works well but can be optimised further.",
			"Find the positions contributing most to the ratio and increase their allocation.",
			"Keep your trading discipline while exploring marginal improvements.",
		}
	default:
		recs = []string{
			"Keep the current approach, it is working very well.",
			"Document the process carefully so it stays reproducible.",
			"Check that the ratio is statistically significant and not the product of a small sample or unusually favourable markets.",
		}
	}

	return Interpretation{
		Metric:          "Sharpe Ratio",
		Value:           v,
		Rating:          tiers[idx].rating,
		Color:           tiers[idx].color,
		Interpretation:  sharpeTexts[idx],
		Trend:           ratioTrend("Sharpe ratio", history),
		Recommendations: recs,
	}
}

var sortinoTexts = [5]string{
	"Downside risk is poorly managed. The strategy is vulnerable to adverse moves.",
	"Moderate protection against downside risk. There is room for improvement.",
	"Good downside protection. The strategy limits losses effectively.",
	"Excellent downside risk management. Returns come without significant losses.",
	"Exceptional protection against downside risk.",
}

// Sortino rates a Sortino ratio and, when sharpe is given, compares the two
func Sortino(sortino stats.Ratio, sharpe *float64, history []float64) Interpretation {
	idx := SortinoThresholds.tierOf(sortino)

	comparison := ""
	if sharpe != nil {
		diff := sortino.Float() - *sharpe
		switch {
		case diff > 1:
			comparison = "Sortino is well above Sharpe: the strategy handles downside risk particularly well, avoiding adverse moves while capturing favourable ones."
		case diff > 0.2:
			comparison = "Sortino is above Sharpe: downside risk is handled better than overall volatility, an effective asymmetric profile."
		case diff > -0.2:
			comparison = "Sortino and Sharpe are nearly identical: volatility is roughly symmetric between up and down moves."
		default:
			comparison = "Sortino is below Sharpe, which is unusual: downside volatility is more of a problem than upside volatility. Review how losses are managed."
		}
	}

	var recs []string
	switch {
	case !sortino.Unbounded && sortino.Value < 1:
		recs = []string{
			"Strengthen loss management with stop-losses or trailing stops.",
			"Consider hedging during high-volatility periods.",
			"Review entries to avoid positions with high downside risk.",
		}
	case !sortino.Unbounded && sortino.Value < 2:
		recs = []string{
			"Downside risk management is effective but can be refined.",
			"Study the trades behind the largest losses to find patterns to avoid.",
			"Consider reducing exposure adaptively during strong downside volatility.",
		}
	default:
		recs = []string{
			"Keep the current downside risk management.",
			"Make sure protection is not costing too many upside opportunities.",
			"Document the downside risk process to keep it consistent.",
		}
	}

	return Interpretation{
		Metric:          "Sortino Ratio",
		Value:           sortino,
		Rating:          tiers[idx].rating,
		Color:           tiers[idx].color,
		Interpretation:  sortinoTexts[idx],
		Trend:           ratioTrend("Sortino ratio", history),
		Comparison:      comparison,
		Recommendations: recs,
	}
}

var calmarTexts = [5]string{
	"Slow recovery from drawdowns. Returns do not compensate for the deepest declines.",
	"Acceptable balance between return and maximum drawdown.",
	"Good balance between return and drawdown. The strategy recovers effectively.",
	"Excellent performance relative to drawdown risk.",
	"Exceptional performance with remarkable resilience to drawdowns.",
}

// DrawdownContext locates the maximum drawdown in time
type DrawdownContext struct {
	MaxDrawdownPct float64
	Date           time.Time
	AsOf           time.Time
}

// smallSample is the history length below which Calmar carries a warning
const smallSample = 30

// Calmar rates a Calmar ratio. dd adds recency context; a history shorter than
// thirty points adds a small-sample warning.
func Calmar(calmar float64, dd *DrawdownContext, history []float64) Interpretation {
	v := stats.Finite(calmar)
	idx := CalmarThresholds.tierOf(v)

	context := ""
	var mdd *float64
	if dd != nil {
		depth := dd.MaxDrawdownPct
		mdd = &depth

		days := int(dd.AsOf.Sub(dd.Date).Hours() / 24)
		switch {
		case days < 30:
			context = fmt.Sprintf("Your maximum drawdown of %.2f%% is recent (%d days ago). You are likely still recovering.", math.Abs(depth), days)
		case days < 90:
			context = fmt.Sprintf("Your maximum drawdown occurred %d days ago. Recovery has started but stay vigilant.", days)
		default:
			context = fmt.Sprintf("Your maximum drawdown of %.2f%% occurred %d days ago. You have recovered well since.", math.Abs(depth), days)
		}
	}
	if len(history) > 0 && len(history) < smallSample {
		context = join(context, "Note: a Calmar ratio based on a small sample should be read with caution. The real test comes in difficult markets.")
	}

	var recs []string
	switch {
	case calmar < 1:
		recs = []string{
			"Improve drawdown limits, for example portfolio-level stop-losses.",
			"Diversify further to reduce drawdown depth.",
			"Consider temporarily reducing exposure during clear downtrends.",
		}
	case calmar < 3:
		recs = []string{
			"Drawdown management is effective but can be optimised.",
			"Study what preceded the maximum drawdown to find early warning signals.",
			"Consider a dynamic allocation that adapts to market conditions.",
		}
	default:
		recs = []string{
			"The strategy handles drawdowns exceptionally well.",
			"Document the current drawdown process to keep this performance.",
			"Run stress tests to confirm robustness against extreme scenarios.",
		}
	}

	return Interpretation{
		Metric:          "Calmar Ratio",
		Value:           v,
		Rating:          tiers[idx].rating,
		Color:           tiers[idx].color,
		Interpretation:  calmarTexts[idx],
		Context:         context,
		Recommendations: recs,
		MaxDrawdown:     mdd,
	}
}
