// Package alerts compares each snapshot against the configured thresholds and
// keeps a bounded history of alerts and optimization suggestions.
package alerts

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/drawdown"
	"github.com/wonny/riskdesk/internal/risk"
)

// ThresholdProvider supplies the thresholds; read on every Check
type ThresholdProvider interface {
	AlertThresholds() contracts.AlertThresholds
}

// Static is a fixed set of thresholds
type Static contracts.AlertThresholds

// AlertThresholds implements ThresholdProvider
func (s Static) AlertThresholds() contracts.AlertThresholds {
	return contracts.AlertThresholds(s)
}

// Engine is the alerts engine.
// ⭐ 동시성: Engine은 단일 스레드 전용, 호출자가 mutex 제공
type Engine struct {
	thresholds    ThresholdProvider
	alerts        *ring[contracts.AlertRecord]
	optimizations *ring[contracts.OptimizationSuggestion]
	ids           *idSource
	now           func() time.Time
	log           zerolog.Logger
}

// Option customises an Engine
type Option func(*Engine)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger attaches a logger
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine creates an engine reading thresholds from p
func NewEngine(p ThresholdProvider, opts ...Option) *Engine {
	e := &Engine{
		thresholds:    p,
		alerts:        newRing[contracts.AlertRecord](MaxAlerts),
		optimizations: newRing[contracts.OptimizationSuggestion](MaxOptimizations),
		now:           time.Now,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ids = newIDSource(e.now().UnixNano())
	return e
}

// cycle collects the breaches of one Check
type cycle struct {
	e     *Engine
	at    time.Time
	alert []contracts.AlertRecord
	opts  []contracts.OptimizationSuggestion
}

func (c *cycle) raise(message, value string) {
	c.alert = append(c.alert, contracts.AlertRecord{
		ID:        c.e.ids.next(c.at),
		Timestamp: c.at,
		Category:  contracts.CategoryRisk,
		Message:   message,
		Value:     value,
	})
}

func (c *cycle) suggest(title, message string) {
	c.opts = append(c.opts, contracts.OptimizationSuggestion{
		ID:        c.e.ids.next(c.at),
		Timestamp: c.at,
		Title:     title,
		Message:   message,
	})
}

// Check evaluates every rule against snap, appends the new records to the
// history and returns them. A disconnected snapshot or one without an account
// yields two empty slices. Repeated breaches are recorded again on every call.
func (e *Engine) Check(snap *contracts.Snapshot) ([]contracts.AlertRecord, []contracts.OptimizationSuggestion) {
	if !snap.Ready() {
		return []contracts.AlertRecord{}, []contracts.OptimizationSuggestion{}
	}

	th := e.thresholds.AlertThresholds()
	c := &cycle{e: e, at: e.now()}

	// 마진
	if margin := snap.MarginPercent(); margin > th.MarginPct {
		c.raise("High margin level", fmt.Sprintf("%.1f%%", margin))
		c.suggest("MARGIN REDUCTION", fmt.Sprintf(
			"Current margin level (%.1f%%) exceeds the recommended threshold of %g%%. "+
				"Consider reducing positions or adding capital to trade more safely.", margin, th.MarginPct))
	}

	// D-Leverage
	if d := risk.DLeverage(snap.TotalVolume(), snap.Account.Equity, risk.DefaultContractSize); d > th.DLeverage {
		c.raise("High D-Leverage", fmt.Sprintf("%.2f", d))
		e.dLeverageSuggestion(c, snap, d)
	}

	// VaR
	if v := risk.AssessPositions(snap).MonthlyVaRPct; v > th.VaRMonthly {
		c.raise("High monthly VaR", fmt.Sprintf("%.2f%%", v))
		c.suggest("VAR REDUCTION", fmt.Sprintf(
			"Monthly VaR (%.2f%%) is above the configured threshold of %g%%. "+
				"Consider diversifying further or reducing exposure to volatile instruments.", v, th.VaRMonthly))
	}

	// 일일 손실
	if pnl := snap.DailyPnLPercent(); pnl < th.DailyLoss {
		c.raise("Significant daily loss", fmt.Sprintf("%.2f%%", pnl))
		c.suggest("DAILY RISK MANAGEMENT", fmt.Sprintf(
			"Daily loss (%.2f%%) exceeds the configured threshold of %g%%. "+
				"Consider reducing exposure for the rest of the day or tightening stops.", pnl, math.Abs(th.DailyLoss)))
	}

	// 드로다운
	if len(snap.Equity) > 0 {
		if dd := drawdown.CurrentDrawdown(snap.Equity); dd < th.Drawdown {
			c.raise("Significant drawdown", fmt.Sprintf("%.2f%%", dd))
			c.suggest("DRAWDOWN MANAGEMENT", fmt.Sprintf(
				"Current drawdown (%.2f%%) exceeds the configured threshold of %g%%. "+
					"Consider temporarily reducing position size and reviewing risk management.", dd, math.Abs(th.Drawdown)))
		}
	}

	// 상관관계
	if th.Correlation > 0 && len(snap.PriceHistory) > 1 {
		matrix := risk.BuildCorrelationMatrix(risk.SymbolReturns(snap))
		for _, pair := range matrix.HighlyCorrelated(th.Correlation) {
			c.raise(fmt.Sprintf("High correlation %s/%s", pair.A, pair.B), fmt.Sprintf("%.2f", pair.Correlation))
			c.suggest("CORRELATION HEDGE", fmt.Sprintf(
				"%s and %s move together (correlation %.2f, threshold %.2f). "+
					"Their risks add up: reduce one leg or hedge the combined exposure.", pair.A, pair.B, pair.Correlation, th.Correlation))
		}
	}

	e.alerts.push(c.alert...)
	e.optimizations.push(c.opts...)

	if len(c.alert) > 0 {
		e.log.Info().
			Int("alerts", len(c.alert)).
			Int("optimizations", len(c.opts)).
			Msg("Threshold breaches recorded")
	}

	if c.alert == nil {
		c.alert = []contracts.AlertRecord{}
	}
	if c.opts == nil {
		c.opts = []contracts.OptimizationSuggestion{}
	}
	return c.alert, c.opts
}

// dLeverageSuggestion targets the optimal max of the style implied by holding time
func (e *Engine) dLeverageSuggestion(c *cycle, snap *contracts.Snapshot, d float64) {
	avg := snap.AveragePositionDuration(c.at)
	style, _ := contracts.ClassifyStyle(avg)
	target := style.Band().OptimalMax
	if d <= target {
		return
	}

	duration := "unknown holding time"
	if avg != nil {
		duration = fmt.Sprintf("%.0f min", *avg)
	}
	reduction := (d - target) / d * 100
	c.suggest("D-LEVERAGE OPTIMIZATION", fmt.Sprintf(
		"Current D-Leverage (%.2f) exceeds the recommended %.2f for your average holding time (%s - %s). "+
			"Reducing total volume by about %.1f%% would reach the optimal level. Reduce positions gradually.",
		d, target, duration, style.Label(), reduction))
}

// Alerts returns the newest n alerts (n ≤ 0: all), oldest first
func (e *Engine) Alerts(n int) []contracts.AlertRecord {
	return e.alerts.last(n)
}

// Optimizations returns the newest n suggestions (n ≤ 0: all), oldest first
func (e *Engine) Optimizations(n int) []contracts.OptimizationSuggestion {
	return e.optimizations.last(n)
}

// ClearAlerts empties the alert history
func (e *Engine) ClearAlerts() {
	e.alerts.clear()
}

// ClearOptimizations empties the suggestion history
func (e *Engine) ClearOptimizations() {
	e.optimizations.clear()
}
