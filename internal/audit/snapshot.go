package audit

import (
	"time"

	"github.com/wonny/riskdesk/internal/contracts"
)

// DailySnapshot is the end-of-day account record kept by the repository
type DailySnapshot struct {
	Date           time.Time `json:"date"`
	Balance        float64   `json:"balance"`
	Equity         float64   `json:"equity"`
	FloatingProfit float64   `json:"floating_profit"`
	MarginPct      float64   `json:"margin_pct"`
	DLeverage      float64   `json:"d_leverage"`
	DrawdownPct    float64   `json:"drawdown_pct"`
	RiskScore      int       `json:"risk_score"`
	Positions      int       `json:"positions"`
	DailyReturn    float64   `json:"daily_return"` // fraction
	CumReturn      float64   `json:"cum_return"`   // growth factor since the first snapshot
}

// NewDailySnapshot extracts the daily record from a connected report
func NewDailySnapshot(r *Report) DailySnapshot {
	at := r.GeneratedAt
	return DailySnapshot{
		Date:           time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
		Balance:        r.Overview.Balance,
		Equity:         r.Overview.Equity,
		FloatingProfit: r.Overview.FloatingProfit,
		MarginPct:      r.Overview.MarginPct,
		DLeverage:      r.Overview.DLeverage,
		DrawdownPct:    r.Drawdown.Current,
		RiskScore:      r.RiskScore.Score,
		Positions:      r.Overview.OpenPositions,
		CumReturn:      1,
	}
}

// Chain sets the daily and cumulative return relative to the previous snapshot.
// Without a previous snapshot this is the first day: 0 and 1.
func (s *DailySnapshot) Chain(prev *DailySnapshot) {
	if prev == nil || prev.Equity <= 0 {
		s.DailyReturn = 0
		s.CumReturn = 1
		return
	}
	s.DailyReturn = (s.Equity - prev.Equity) / prev.Equity
	cum := prev.CumReturn
	if cum == 0 {
		cum = 1
	}
	s.CumReturn = cum * (1 + s.DailyReturn)
}

// EquityCurve turns stored snapshots into an equity series
func EquityCurve(snaps []DailySnapshot) contracts.EquitySeries {
	curve := make(contracts.EquitySeries, 0, len(snaps))
	for _, s := range snaps {
		if s.Equity <= 0 {
			continue
		}
		curve = append(curve, contracts.EquityPoint{Time: s.Date, Equity: s.Equity})
	}
	return curve.Normalize()
}
