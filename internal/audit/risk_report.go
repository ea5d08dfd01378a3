package audit

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/riskdesk/internal/allocation"
	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/drawdown"
	"github.com/wonny/riskdesk/internal/interpret"
	"github.com/wonny/riskdesk/internal/performance"
	"github.com/wonny/riskdesk/internal/risk"
	"github.com/wonny/riskdesk/internal/riskscore"
)

// =============================================================================
// Report Types
// =============================================================================

// Report is the output of one refresh cycle
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Connected   bool      `json:"connected"`

	Account  *contracts.Account `json:"account,omitempty"`
	Overview Overview           `json:"overview"`

	// 성과
	Metrics      performance.Metrics        `json:"metrics"`
	Rolling      []performance.RollingPoint `json:"rolling"`
	Distribution *performance.Distribution  `json:"distribution,omitempty"`
	Benchmark    *performance.Comparison    `json:"benchmark,omitempty"`

	// 리스크
	VaR           []risk.VaRResult        `json:"var"`
	MonteCarlo    *risk.MonteCarloResult  `json:"monte_carlo,omitempty"`
	PositionsRisk risk.PositionsRisk      `json:"positions_risk"`
	Concentration risk.Concentration      `json:"concentration"`
	Correlation   *risk.CorrelationMatrix `json:"correlation,omitempty"`
	Stress        map[string]float64      `json:"stress_test"`

	// 드로다운
	Drawdown DrawdownSection `json:"drawdown"`

	RiskScore       riskscore.Result                   `json:"risk_score"`
	Interpretations []interpret.Interpretation         `json:"interpretations"`
	Alerts          []contracts.AlertRecord            `json:"alerts"`
	Optimizations   []contracts.OptimizationSuggestion `json:"optimizations"`
	Allocation      allocation.Report                  `json:"allocation"`
	Attribution     []Attribution                      `json:"attribution"`
	Trades          TradeStats                         `json:"trades"`
}

// Overview holds the account-level figures derived from the snapshot
type Overview struct {
	Balance            float64                `json:"balance"`
	Equity             float64                `json:"equity"`
	FloatingProfit     float64                `json:"floating_profit"`
	DailyPnLPct        float64                `json:"daily_pnl_pct"`
	MarginPct          float64                `json:"margin_pct"`
	MarginLevel        float64                `json:"margin_level"`
	DLeverage          float64                `json:"d_leverage"`
	TradingStyle       contracts.TradingStyle `json:"trading_style"`
	StyleDetermined    bool                   `json:"style_determined"`
	AvgDurationMinutes *float64               `json:"avg_duration_minutes"`
	OpenPositions      int                    `json:"open_positions"`
	TotalVolume        float64                `json:"total_volume"`
}

// DrawdownSection groups the drawdown analyses
type DrawdownSection struct {
	Current      float64                     `json:"current_pct"`
	Max          risk.MaxDrawdown            `json:"max"`
	Profile      *risk.DrawdownProfile       `json:"profile,omitempty"`
	Episodes     []contracts.DrawdownEpisode `json:"episodes"`
	UlcerIndex   float64                     `json:"ulcer_index"`
	PainIndex    float64                     `json:"pain_index"`
	ChangePoints []drawdown.ChangePoint      `json:"change_points"`
}

// emptyReport is the report of a cycle without a usable snapshot
func emptyReport(runID string, at time.Time) *Report {
	return &Report{
		RunID:           runID,
		GeneratedAt:     at,
		Rolling:         []performance.RollingPoint{},
		VaR:             []risk.VaRResult{},
		Stress:          map[string]float64{},
		Drawdown:        DrawdownSection{Episodes: []contracts.DrawdownEpisode{}, ChangePoints: []drawdown.ChangePoint{}},
		RiskScore:       riskscore.Calculate(riskscore.Input{}),
		Interpretations: []interpret.Interpretation{},
		Alerts:          []contracts.AlertRecord{},
		Optimizations:   []contracts.OptimizationSuggestion{},
		Attribution:     []Attribution{},
	}
}

// =============================================================================
// Output Formatting
// =============================================================================

// ToJSON JSON 형식으로 출력
func (report *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// ToSummary 요약 문자열 출력
func (report *Report) ToSummary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "=== Risk Report (%s) ===\n", report.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Run ID: %s\n\n", report.RunID)

	if !report.Connected {
		b.WriteString("Terminal not connected: no data.\n")
		return b.String()
	}

	currency := ""
	if report.Account != nil {
		currency = report.Account.Currency
	}

	o := report.Overview
	b.WriteString("📊 Account\n")
	fmt.Fprintf(&b, "  Balance: %s\n", FormatCurrency(o.Balance, currency, 2, false))
	fmt.Fprintf(&b, "  Equity: %s\n", FormatCurrency(o.Equity, currency, 2, false))
	fmt.Fprintf(&b, "  Floating P&L: %s (%s)\n", FormatCurrency(o.FloatingProfit, currency, 2, true), FormatPercent(o.DailyPnLPct, 2, true))
	fmt.Fprintf(&b, "  Margin: %s of free margin\n", FormatPercent(o.MarginPct, 1, false))
	fmt.Fprintf(&b, "  Positions: %d (%.2f lots), avg holding %s\n", o.OpenPositions, o.TotalVolume, FormatMinutes(o.AvgDurationMinutes))
	fmt.Fprintf(&b, "  D-Leverage: %.2f (%s)\n\n", o.DLeverage, o.TradingStyle.Label())

	rs := report.RiskScore
	fmt.Fprintf(&b, "🛡️ Risk Score: %d/100 (%s)\n\n", rs.Score, rs.Rating)

	if m := report.Metrics; !m.Empty() {
		b.WriteString("📈 Performance\n")
		fmt.Fprintf(&b, "  Total Return: %s\n", FormatPercent(m.TotalReturn, 2, true))
		fmt.Fprintf(&b, "  Annualized Return: %s\n", FormatPercent(m.AnnualizedReturn, 2, true))
		fmt.Fprintf(&b, "  Volatility: %s\n", FormatPercent(m.Volatility, 2, false))
		fmt.Fprintf(&b, "  Max Drawdown: %s\n", FormatPercent(m.MaxDrawdown, 2, false))
		fmt.Fprintf(&b, "  Sharpe: %.2f  Sortino: %s  Calmar: %.2f\n", m.Sharpe, m.Sortino, m.Calmar)
		fmt.Fprintf(&b, "  Win Ratio: %s\n\n", FormatPercent(m.WinRatio, 1, false))
	}

	if len(report.VaR) > 0 {
		b.WriteString("⚠️ Value at Risk (1 day)\n")
		for _, v := range report.VaR {
			fmt.Fprintf(&b, "  %-12s %2.0f%%: VaR %s  ES %s\n", v.Method, v.Confidence*100,
				FormatPercent(v.VaR, 2, false), FormatPercent(v.ES, 2, false))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  Positions monthly VaR (95%%): %s\n\n", FormatPercent(report.PositionsRisk.MonthlyVaRPct, 2, false))

	d := report.Drawdown
	b.WriteString("📉 Drawdown\n")
	fmt.Fprintf(&b, "  Current: %s\n", FormatPercent(d.Current, 2, false))
	fmt.Fprintf(&b, "  Episodes: %d  Ulcer: %.2f  Pain: %.2f\n\n", len(d.Episodes), d.UlcerIndex, d.PainIndex)

	if len(report.Stress) > 0 {
		b.WriteString("🔥 Stress Test\n")
		names := make([]string, 0, len(report.Stress))
		for name := range report.Stress {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %s of equity\n", name, FormatPercent(report.Stress[name], 2, true))
		}
		b.WriteString("\n")
	}

	if bm := report.Benchmark; bm != nil {
		b.WriteString("🏁 Benchmark\n")
		fmt.Fprintf(&b, "  Strategy %s vs Benchmark %s\n",
			FormatPercent(bm.Strategy.TotalReturn, 2, true), FormatPercent(bm.Benchmark.TotalReturn, 2, true))
		fmt.Fprintf(&b, "  Alpha: %s  Beta: %.2f  Correlation: %.2f\n\n", FormatPercent(bm.Alpha, 2, true), bm.Beta, bm.Correlation)
	}

	if len(report.Alerts) > 0 {
		b.WriteString("🚨 Alerts\n")
		for _, a := range report.Alerts {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", a.Category, a.Message, a.Value)
		}
		b.WriteString("\n")
	}

	if recs := report.Allocation.Recommendations; len(recs) > 0 {
		b.WriteString("💡 Allocation\n")
		for _, r := range recs {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}

	return b.String()
}
