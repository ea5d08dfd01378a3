package broker

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/riskdesk/internal/contracts"
)

// BuildEquityCurve reconstructs a daily equity curve from closed deals.
//
// The starting balance is the current balance minus the profit of every deal in
// the window. Each day of the grid (historyDays back from now, today included)
// carries the equity after the last deal closed on or before that day; days before
// the first deal carry the starting balance. No deals yields an empty series.
func BuildEquityCurve(balance float64, deals []contracts.Deal, now time.Time, historyDays int) contracts.EquitySeries {
	if len(deals) == 0 || historyDays <= 0 {
		return contracts.EquitySeries{}
	}

	sorted := make([]contracts.Deal, len(deals))
	copy(sorted, deals)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	total := decimal.Zero
	for _, d := range sorted {
		total = total.Add(decimal.NewFromFloat(d.Profit))
	}
	initial := decimal.NewFromFloat(balance).Sub(total)

	// 누적 잔고
	cumulative := make([]decimal.Decimal, len(sorted))
	running := initial
	for i, d := range sorted {
		running = running.Add(decimal.NewFromFloat(d.Profit))
		cumulative[i] = running
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -historyDays)

	out := make(contracts.EquitySeries, 0, historyDays+1)
	next := 0
	current := initial
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		end := day.AddDate(0, 0, 1)
		for next < len(sorted) && sorted[next].Time.Before(end) {
			current = cumulative[next]
			next++
		}
		out = append(out, contracts.EquityPoint{Time: day, Equity: current.InexactFloat64()})
	}
	return out
}
