package audit

import (
	"math"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

// TradeStats summarises closed deals
type TradeStats struct {
	Trades       int         `json:"trades"`
	WinRate      float64     `json:"win_rate"` // %
	AvgWin       float64     `json:"avg_win"`
	AvgLoss      float64     `json:"avg_loss"` // ≤ 0
	ProfitFactor stats.Ratio `json:"profit_factor"`
	NetProfit    float64     `json:"net_profit"`
}

// AnalyzeTrades computes trade statistics over deals with a symbol.
// Deals without a symbol are balance operations and are ignored. Zero-profit
// deals count as trades but neither wins nor losses.
func AnalyzeTrades(deals []contracts.Deal) TradeStats {
	var s TradeStats
	var sumWin, sumLoss float64
	var wins, losses int

	for _, d := range deals {
		if d.Symbol == "" {
			continue
		}
		pnl := d.Profit + d.Commission + d.Swap
		s.Trades++
		s.NetProfit += pnl

		switch {
		case pnl > 0:
			sumWin += pnl
			wins++
		case pnl < 0:
			sumLoss += pnl
			losses++
		}
	}

	if s.Trades == 0 {
		return s
	}

	s.WinRate = float64(wins) / float64(s.Trades) * 100
	if wins > 0 {
		s.AvgWin = sumWin / float64(wins)
	}
	if losses > 0 {
		s.AvgLoss = sumLoss / float64(losses)
	}

	switch {
	case sumLoss < 0:
		s.ProfitFactor = stats.Finite(sumWin / math.Abs(sumLoss))
	case sumWin > 0:
		s.ProfitFactor = stats.Unbounded()
	}
	return s
}
