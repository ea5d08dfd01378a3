// Package audit runs the full analytics pipeline over a snapshot and stores,
// caches and renders the resulting risk report.
package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/riskdesk/internal/alerts"
	"github.com/wonny/riskdesk/internal/allocation"
	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/drawdown"
	"github.com/wonny/riskdesk/internal/interpret"
	"github.com/wonny/riskdesk/internal/performance"
	"github.com/wonny/riskdesk/internal/risk"
	"github.com/wonny/riskdesk/internal/riskscore"
	"github.com/wonny/riskdesk/internal/stats"
	"github.com/wonny/riskdesk/pkg/config"
	"github.com/wonny/riskdesk/pkg/logger"
)

// benchmarkTTL is how long a downloaded benchmark series is reused
const benchmarkTTL = time.Hour

// VaR confidence levels reported every cycle (1-day horizon)
var reportConfidences = []float64{0.95, 0.99}

// Options are the numeric parameters of the pipeline
type Options struct {
	RiskFreeRate      float64
	PeriodsPerYear    int
	DrawdownThreshold float64
	RollingWindow     int
	HistorySize       int
	MonteCarlo        risk.MonteCarloConfig
	Scenarios         []risk.Scenario
}

// DefaultOptions returns rf 3%, 252 periods, -5% threshold, 30-period rolling window
func DefaultOptions() Options {
	return Options{
		RiskFreeRate:      0.03,
		PeriodsPerYear:    252,
		DrawdownThreshold: -5,
		RollingWindow:     30,
		HistorySize:       DefaultHistorySize,
		MonteCarlo:        risk.DefaultMonteCarloConfig(),
		Scenarios:         risk.DefaultScenarios(),
	}
}

// OptionsFromConfig maps the analytics section of the config
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	a := cfg.Analytics
	opts.RiskFreeRate = a.RiskFreeRate
	opts.PeriodsPerYear = a.PeriodsPerYear
	opts.DrawdownThreshold = a.DrawdownThreshold
	opts.RollingWindow = a.RollingWindow
	opts.HistorySize = a.HistorySize
	opts.MonteCarlo.NumSimulations = a.MCSimulations
	opts.MonteCarlo.Seed = a.MCSeed
	return opts
}

// BenchmarkSource supplies the benchmark series when the snapshot carries none
type BenchmarkSource interface {
	Series(ctx context.Context) (contracts.EquitySeries, error)
}

// Analyzer runs one refresh cycle over a snapshot.
// ⭐ SSOT: 전체 분석 파이프라인 조립은 여기서만
// ⭐ 동시성: 알림 엔진과 지표 히스토리는 mu로 보호
type Analyzer struct {
	mu sync.Mutex

	opts      Options
	calc      *performance.Calculator
	risk      *risk.Engine
	drawdowns *drawdown.Analyzer
	alerts    *alerts.Engine
	history   *MetricHistory

	benchmark        BenchmarkSource
	benchmarkSeries  contracts.EquitySeries
	benchmarkFetched time.Time

	logger *logger.Logger
	now    func() time.Time
}

// NewAnalyzer creates the pipeline; thresholds are read on every cycle
func NewAnalyzer(opts Options, thresholds alerts.ThresholdProvider, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Nop()
	}

	ddCfg := drawdown.DefaultConfig()
	if opts.DrawdownThreshold < 0 {
		ddCfg.ThresholdPct = opts.DrawdownThreshold
	}

	a := &Analyzer{
		opts:      opts,
		calc:      performance.NewCalculator(opts.RiskFreeRate, opts.PeriodsPerYear),
		risk:      risk.NewEngineWithConfig(opts.MonteCarlo),
		drawdowns: drawdown.NewAnalyzer(ddCfg),
		history:   NewMetricHistory(opts.HistorySize),
		logger:    log.WithField("component", "audit.analyzer"),
		now:       time.Now,
	}
	a.alerts = alerts.NewEngine(thresholds,
		alerts.WithClock(func() time.Time { return a.now() }),
		alerts.WithLogger(log.Component("alerts")),
	)
	return a
}

// WithBenchmark sets the fallback benchmark source
func (a *Analyzer) WithBenchmark(src BenchmarkSource) *Analyzer {
	a.benchmark = src
	return a
}

// Analyze runs every analysis over snap. A disconnected snapshot yields an empty
// report (Connected false) and no error; only context cancellation is returned.
func (a *Analyzer) Analyze(ctx context.Context, snap *contracts.Snapshot) (*Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	report := emptyReport(uuid.New().String(), now)
	if !snap.Ready() {
		return report, nil
	}
	report.Connected = true
	report.Account = snap.Account

	equity := snap.Equity
	values := equity.Values()
	returns := stats.Returns(values)

	// 계좌 개요
	avg := snap.AveragePositionDuration(now)
	style, determined := contracts.ClassifyStyle(avg)
	dLev := risk.DLeverage(snap.TotalVolume(), snap.Account.Equity, risk.DefaultContractSize)
	report.Overview = Overview{
		Balance:            snap.Account.Balance,
		Equity:             snap.Account.Equity,
		FloatingProfit:     snap.FloatingProfit(),
		DailyPnLPct:        snap.DailyPnLPercent(),
		MarginPct:          snap.MarginPercent(),
		MarginLevel:        snap.MarginLevel(),
		DLeverage:          dLev,
		TradingStyle:       style,
		StyleDetermined:    determined,
		AvgDurationMinutes: avg,
		OpenPositions:      len(snap.Positions),
		TotalVolume:        snap.TotalVolume(),
	}

	// 성과
	report.Metrics = a.calc.Calculate(equity)
	report.Rolling = a.calc.Rolling(equity, a.opts.RollingWindow)
	report.Distribution = a.calc.Distribution(equity)

	// VaR / Monte Carlo
	if len(returns) >= 2 {
		for _, conf := range reportConfidences {
			report.VaR = append(report.VaR, a.risk.VaRAllMethods(returns, conf, 1)...)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mc, err := a.risk.MonteCarlo(ctx, returns); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		a.logger.WithError(err).Debug("Monte Carlo skipped")
	} else {
		report.MonteCarlo = mc
	}

	// 포지션 리스크
	exposures := make(map[string]float64)
	for _, p := range snap.Positions {
		exposures[p.Symbol] += p.Direction.Sign() * p.Exposure(snap.ContractSize(p.Symbol))
	}
	report.PositionsRisk = risk.AssessPositions(snap)
	report.Concentration = risk.RiskConcentration(exposures)
	report.Stress = a.risk.StressTest(exposures, snap.Account.Equity, a.opts.Scenarios)
	if len(snap.PriceHistory) >= 2 {
		m := risk.BuildCorrelationMatrix(risk.SymbolReturns(snap))
		if len(m.Symbols) >= 2 {
			report.Correlation = &m
		}
	}

	// 드로다운
	maxDD := risk.MaximumDrawdown(equity)
	report.Drawdown = DrawdownSection{
		Current:      drawdown.CurrentDrawdown(equity),
		Max:          maxDD,
		Profile:      risk.AnalyzeDrawdownProfile(equity, a.drawdowns.Config().ThresholdPct),
		Episodes:     a.drawdowns.IdentifyDrawdowns(equity),
		UlcerIndex:   a.drawdowns.UlcerIndex(equity),
		PainIndex:    a.drawdowns.PainIndex(equity, 0),
		ChangePoints: a.drawdowns.FindChangePoints(equity),
	}

	// 배분
	report.Allocation = allocation.Analyze(snap, now, &dLev)
	report.Attribution = AnalyzeAttribution(snap)
	report.Trades = AnalyzeTrades(snap.Deals)

	// 벤치마크
	if bench := a.benchmarkFor(ctx, snap); len(bench) > 0 {
		report.Benchmark = a.calc.Compare(equity, bench)
	}

	// 지표 히스토리 + 해석
	m := report.Metrics
	a.history.Push(HistoryDLeverage, dLev)
	if !m.Empty() {
		a.history.Push(HistorySharpe, m.Sharpe)
		if !m.Sortino.Unbounded {
			a.history.Push(HistorySortino, m.Sortino.Value)
		}
		a.history.Push(HistoryCalmar, m.Calmar)

		sharpe := m.Sharpe
		report.Interpretations = append(report.Interpretations,
			interpret.Sharpe(m.Sharpe, a.history.Values(HistorySharpe)),
			interpret.Sortino(m.Sortino, &sharpe, a.history.Values(HistorySortino)),
			interpret.Calmar(m.Calmar, drawdownContext(maxDD, equity), a.history.Values(HistoryCalmar)),
		)
	}
	report.Interpretations = append(report.Interpretations,
		interpret.DLeverage(dLev, avg, a.history.Values(HistoryDLeverage)))

	// 리스크 점수
	report.RiskScore = riskscore.Calculate(scoreInput(report, style))

	// 알림
	report.Alerts, report.Optimizations = a.alerts.Check(snap)

	a.logger.WithFields(map[string]interface{}{
		"run_id":     report.RunID,
		"equity":     len(equity),
		"positions":  len(snap.Positions),
		"risk_score": report.RiskScore.Score,
		"alerts":     len(report.Alerts),
	}).Info("Risk report generated")

	return report, nil
}

// scoreInput collects the risk score measures; metrics that need an equity
// curve stay missing without one
func scoreInput(r *Report, style contracts.TradingStyle) riskscore.Input {
	d := r.Overview.DLeverage
	varMonthly := r.PositionsRisk.MonthlyVaRPct
	margin := r.Overview.MarginPct
	concentration := r.Allocation.Sizing.Concentration

	in := riskscore.Input{
		DLeverage:     &d,
		TradingStyle:  &style,
		VaRMonthly:    &varMonthly,
		MarginPct:     &margin,
		Concentration: &concentration,
	}
	if !r.Metrics.Empty() {
		mdd := r.Metrics.MaxDrawdown
		vol := r.Metrics.Volatility
		in.MaxDrawdown = &mdd
		in.Volatility = &vol
	}
	return in
}

func drawdownContext(md risk.MaxDrawdown, equity contracts.EquitySeries) *interpret.DrawdownContext {
	last, ok := equity.Last()
	if md.TroughDate == nil || !ok {
		return nil
	}
	return &interpret.DrawdownContext{
		MaxDrawdownPct: md.DrawdownPct,
		Date:           *md.TroughDate,
		AsOf:           last.Time,
	}
}

// benchmarkFor prefers the snapshot's own series and otherwise reuses the
// last download for up to an hour
func (a *Analyzer) benchmarkFor(ctx context.Context, snap *contracts.Snapshot) contracts.EquitySeries {
	if len(snap.Benchmark) > 0 {
		return snap.Benchmark
	}
	if a.benchmark == nil {
		return nil
	}
	if a.benchmarkSeries != nil && a.now().Sub(a.benchmarkFetched) < benchmarkTTL {
		return a.benchmarkSeries
	}

	series, err := a.benchmark.Series(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Benchmark unavailable")
		return a.benchmarkSeries
	}
	a.benchmarkSeries = series
	a.benchmarkFetched = a.now()
	return series
}

// Alerts returns the newest n alerts (n ≤ 0: all), oldest first
func (a *Analyzer) Alerts(n int) []contracts.AlertRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alerts.Alerts(n)
}

// Optimizations returns the newest n suggestions (n ≤ 0: all), oldest first
func (a *Analyzer) Optimizations(n int) []contracts.OptimizationSuggestion {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.alerts.Optimizations(n)
}

// ClearAlerts empties the alert history
func (a *Analyzer) ClearAlerts() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts.ClearAlerts()
}

// ClearOptimizations empties the suggestion history
func (a *Analyzer) ClearOptimizations() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts.ClearOptimizations()
}

// History returns a copy of the named metric history
func (a *Analyzer) History(name string) []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.history.Values(name)
}
