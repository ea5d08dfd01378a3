package audit

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskdesk/internal/alerts"
	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/riskscore"
	"github.com/wonny/riskdesk/pkg/config"
	"github.com/wonny/riskdesk/pkg/database"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testCurve(n int) contracts.EquitySeries {
	values := make([]float64, n)
	for i := range values {
		values[i] = 10000 + 30*float64(i) + 200*math.Sin(float64(i)/3)
	}
	return contracts.NewDailySeries(testNow.AddDate(0, 0, -n), values...)
}

func testSnapshot() *contracts.Snapshot {
	curve := testCurve(60)
	last, _ := curve.Last()
	return &contracts.Snapshot{
		Connected: true,
		TakenAt:   testNow,
		Account: &contracts.Account{
			Currency: "USD", Balance: last.Equity, Equity: last.Equity, Margin: 100, MarginFree: 1000,
		},
		Positions: []contracts.Position{
			{Symbol: "EURUSD", Volume: 0.5, PriceCurrent: 1.1, Profit: 12, OpenTime: testNow.Add(-2 * time.Hour)},
			{Symbol: "GBPUSD", Direction: contracts.DirectionSell, Volume: 0.2, PriceCurrent: 1.3, Profit: -4, OpenTime: testNow.Add(-3 * time.Hour)},
		},
		Deals: []contracts.Deal{
			{Symbol: "EURUSD", Profit: 50},
			{Symbol: "GBPUSD", Profit: -20},
			{Profit: 10000}, // deposit
		},
		Equity: curve,
	}
}

func newTestAnalyzer(th contracts.AlertThresholds) *Analyzer {
	opts := DefaultOptions()
	opts.MonteCarlo.NumSimulations = 1000
	a := NewAnalyzer(opts, alerts.Static(th), nil)
	a.now = func() time.Time { return testNow }
	return a
}

type countingBenchmark struct {
	calls  int
	series contracts.EquitySeries
	err    error
}

func (c *countingBenchmark) Series(ctx context.Context) (contracts.EquitySeries, error) {
	c.calls++
	return c.series, c.err
}

func TestAnalyze_Disconnected(t *testing.T) {
	a := newTestAnalyzer(contracts.DefaultAlertThresholds())

	for _, snap := range []*contracts.Snapshot{nil, {Connected: false}, {Connected: true}} {
		r, err := a.Analyze(context.Background(), snap)
		require.NoError(t, err)
		assert.False(t, r.Connected)
		assert.NotEmpty(t, r.RunID)
		assert.Empty(t, r.Alerts)
		assert.NotNil(t, r.Alerts)
		assert.Equal(t, riskscore.RatingIndeterminate, r.RiskScore.Rating)
		assert.Contains(t, r.ToSummary(), "not connected")
	}
	assert.Empty(t, a.Alerts(0))
}

func TestAnalyze_FullSnapshot(t *testing.T) {
	a := newTestAnalyzer(contracts.DefaultAlertThresholds())
	snap := testSnapshot()

	r, err := a.Analyze(context.Background(), snap)
	require.NoError(t, err)

	_, err = uuid.Parse(r.RunID)
	assert.NoError(t, err)
	assert.True(t, r.Connected)
	assert.Equal(t, testNow, r.GeneratedAt)

	o := r.Overview
	assert.InDelta(t, 0.7*100000/snap.Account.Equity, o.DLeverage, 1e-9)
	assert.Equal(t, contracts.StyleSwing, o.TradingStyle)
	assert.True(t, o.StyleDetermined)
	require.NotNil(t, o.AvgDurationMinutes)
	assert.InDelta(t, 150, *o.AvgDurationMinutes, 1e-9)
	assert.InDelta(t, 10, o.MarginPct, 1e-9)
	assert.InDelta(t, 8, o.FloatingProfit, 1e-9)

	assert.Equal(t, 59, r.Metrics.PeriodCount)
	assert.Len(t, r.Rolling, 30)
	assert.NotNil(t, r.Distribution)
	assert.Len(t, r.VaR, 6)
	require.NotNil(t, r.MonteCarlo)
	assert.Equal(t, 1000, r.MonteCarlo.Config.NumSimulations)

	assert.Len(t, r.Stress, 3)
	assert.Less(t, r.Stress["shock -10%"], 0.0)
	assert.Nil(t, r.Correlation)

	assert.LessOrEqual(t, r.Drawdown.Current, 0.0)
	assert.NotNil(t, r.Drawdown.Episodes)
	assert.NotNil(t, r.Drawdown.Max.TroughDate)

	require.Len(t, r.Interpretations, 4)
	assert.Equal(t, "D-Leverage", r.Interpretations[3].Metric)

	assert.NotEqual(t, riskscore.RatingIndeterminate, r.RiskScore.Rating)
	assert.NotNil(t, r.RiskScore.Components)

	assert.Empty(t, r.Alerts)
	assert.Len(t, r.Allocation.BySymbol, 2)
	require.Len(t, r.Attribution, 2)
	assert.Equal(t, "EURUSD", r.Attribution[0].Symbol)
	assert.Equal(t, 2, r.Trades.Trades)
	assert.Nil(t, r.Benchmark)

	assert.Equal(t, []float64{r.Metrics.Sharpe}, a.History(HistorySharpe))
	assert.Len(t, a.History(HistoryDLeverage), 1)
}

func TestAnalyze_AlertsAccumulate(t *testing.T) {
	a := newTestAnalyzer(contracts.DefaultAlertThresholds())
	snap := testSnapshot()
	snap.Account.Margin = 600

	for i := 0; i < 3; i++ {
		r, err := a.Analyze(context.Background(), snap)
		require.NoError(t, err)
		require.Len(t, r.Alerts, 1)
		assert.Equal(t, "60.0%", r.Alerts[0].Value)
	}
	assert.Len(t, a.Alerts(0), 3)
	assert.Len(t, a.Optimizations(2), 2)
	assert.Len(t, a.History(HistorySharpe), 3)

	a.ClearAlerts()
	a.ClearOptimizations()
	assert.Empty(t, a.Alerts(0))
	assert.Empty(t, a.Optimizations(0))
}

func TestAnalyze_Benchmark(t *testing.T) {
	t.Run("source reused within ttl", func(t *testing.T) {
		src := &countingBenchmark{series: testCurve(60)}
		a := newTestAnalyzer(contracts.DefaultAlertThresholds()).WithBenchmark(src)

		for i := 0; i < 2; i++ {
			r, err := a.Analyze(context.Background(), testSnapshot())
			require.NoError(t, err)
			require.NotNil(t, r.Benchmark)
			assert.InDelta(t, 1, r.Benchmark.Beta, 1e-9)
		}
		assert.Equal(t, 1, src.calls)
	})

	t.Run("snapshot series wins", func(t *testing.T) {
		src := &countingBenchmark{series: testCurve(60)}
		a := newTestAnalyzer(contracts.DefaultAlertThresholds()).WithBenchmark(src)

		snap := testSnapshot()
		snap.Benchmark = testCurve(60)
		r, err := a.Analyze(context.Background(), snap)
		require.NoError(t, err)
		assert.NotNil(t, r.Benchmark)
		assert.Zero(t, src.calls)
	})

	t.Run("source failure", func(t *testing.T) {
		src := &countingBenchmark{err: errors.New("down")}
		a := newTestAnalyzer(contracts.DefaultAlertThresholds()).WithBenchmark(src)

		r, err := a.Analyze(context.Background(), testSnapshot())
		require.NoError(t, err)
		assert.Nil(t, r.Benchmark)
	})
}

func TestAnalyze_Canceled(t *testing.T) {
	a := newTestAnalyzer(contracts.DefaultAlertThresholds())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, testSnapshot())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport_Rendering(t *testing.T) {
	a := newTestAnalyzer(contracts.DefaultAlertThresholds())
	snap := testSnapshot()
	snap.Account.Margin = 600

	r, err := a.Analyze(context.Background(), snap)
	require.NoError(t, err)

	summary := r.ToSummary()
	for _, want := range []string{"Risk Report (2024-03-01 12:00)", "Account", "Risk Score", "Performance",
		"Value at Risk", "Drawdown", "Stress Test", "High margin level: 60.0%", "USD"} {
		assert.Contains(t, summary, want)
	}

	data, err := r.ToJSON()
	require.NoError(t, err)

	var back Report
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.RunID, back.RunID)
	assert.Equal(t, r.RiskScore.Score, back.RiskScore.Score)
	assert.Len(t, back.Alerts, 1)
}

func TestMetricHistory(t *testing.T) {
	h := NewMetricHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(HistorySharpe, float64(i))
	}
	assert.Equal(t, []float64{3, 4, 5}, h.Values(HistorySharpe))
	assert.Equal(t, 3, h.Len(HistorySharpe))
	assert.Empty(t, h.Values(HistoryCalmar))

	out := h.Values(HistorySharpe)
	out[0] = 99
	assert.Equal(t, 3.0, h.Values(HistorySharpe)[0])

	h.Reset()
	assert.Zero(t, h.Len(HistorySharpe))

	assert.Equal(t, DefaultHistorySize, NewMetricHistory(0).size)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "+1.23", FormatNumber(1.234, 2, true))
	assert.Equal(t, "-1.23", FormatNumber(-1.234, 2, true))
	assert.Equal(t, "0.00", FormatNumber(0, 2, true))
	assert.Equal(t, "12.5%", FormatPercent(12.5, 1, false))
	assert.Equal(t, "+100.00 EUR", FormatCurrency(100, "EUR", 2, true))
	assert.Equal(t, "100.00", FormatCurrency(100, "", 2, false))

	tests := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Second, "0m"},
		{45 * time.Minute, "45m"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
		{2*24*time.Hour + 3*time.Hour + 45*time.Minute, "2d 3h 45m"},
		{24*time.Hour + 10*time.Minute, "1d 0h 10m"},
		{-time.Minute, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimespan(tt.in))
		})
	}

	m := 150.0
	assert.Equal(t, "2h 30m", FormatMinutes(&m))
	assert.Equal(t, "-", FormatMinutes(nil))
}

func TestAnalyzeTrades(t *testing.T) {
	s := AnalyzeTrades([]contracts.Deal{
		{Symbol: "EURUSD", Profit: 100, Commission: -2},
		{Symbol: "EURUSD", Profit: -50},
		{Symbol: "GBPUSD", Profit: 0},
		{Symbol: "GBPUSD", Profit: 40, Swap: 2},
		{Profit: 5000},
	})

	assert.Equal(t, 4, s.Trades)
	assert.InDelta(t, 50, s.WinRate, 1e-9)
	assert.InDelta(t, 70, s.AvgWin, 1e-9)
	assert.InDelta(t, -50, s.AvgLoss, 1e-9)
	assert.InDelta(t, 2.8, s.ProfitFactor.Value, 1e-9)
	assert.InDelta(t, 90, s.NetProfit, 1e-9)

	assert.True(t, AnalyzeTrades([]contracts.Deal{{Symbol: "X", Profit: 1}}).ProfitFactor.Unbounded)
	assert.Equal(t, TradeStats{}, AnalyzeTrades(nil))
}

func TestAnalyzeAttribution(t *testing.T) {
	attrs := AnalyzeAttribution(testSnapshot())
	require.Len(t, attrs, 2)

	eur, gbp := attrs[0], attrs[1]
	assert.Equal(t, "EURUSD", eur.Symbol)
	assert.InDelta(t, 12, eur.Floating, 1e-9)
	assert.InDelta(t, 50, eur.Realized, 1e-9)
	assert.InDelta(t, 62, eur.Contribution, 1e-9)
	assert.InDelta(t, 62.0/86*100, eur.ContributionPct, 1e-9)
	assert.InDelta(t, -24.0/86*100, gbp.ContributionPct, 1e-9)

	assert.InDelta(t, 55000, eur.Exposure, 1e-6)
	assert.InDelta(t, -26000, gbp.Exposure, 1e-6)
	assert.InDelta(t, 55.0/81*100, eur.ExposurePct, 1e-9)

	assert.Equal(t, "EURUSD", TopContributors(attrs, 1)[0].Symbol)
	assert.Equal(t, "GBPUSD", BottomContributors(attrs, 1)[0].Symbol)
	assert.Len(t, BottomContributors(attrs, 5), 2)
	assert.Empty(t, AnalyzeAttribution(nil))
}

func TestDailySnapshotChain(t *testing.T) {
	first := DailySnapshot{Equity: 1000}
	first.Chain(nil)
	assert.Equal(t, 0.0, first.DailyReturn)
	assert.Equal(t, 1.0, first.CumReturn)

	second := DailySnapshot{Equity: 1100}
	second.Chain(&first)
	assert.InDelta(t, 0.1, second.DailyReturn, 1e-12)
	assert.InDelta(t, 1.1, second.CumReturn, 1e-12)

	third := DailySnapshot{Equity: 990}
	third.Chain(&second)
	assert.InDelta(t, -0.1, third.DailyReturn, 1e-12)
	assert.InDelta(t, 0.99, third.CumReturn, 1e-12)

	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }
	curve := EquityCurve([]DailySnapshot{{Date: d(2), Equity: 1100}, {Date: d(1), Equity: 1000}, {Date: d(3)}})
	assert.Equal(t, []float64{1000, 1100}, curve.Values())
}

func TestNewDailySnapshot(t *testing.T) {
	r := &Report{
		GeneratedAt: time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC),
		Overview:    Overview{Balance: 1000, Equity: 1010, MarginPct: 12, DLeverage: 3, OpenPositions: 2},
		Drawdown:    DrawdownSection{Current: -1.5},
		RiskScore:   riskscore.Result{Score: 42},
	}
	s := NewDailySnapshot(r)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), s.Date)
	assert.Equal(t, 1010.0, s.Equity)
	assert.Equal(t, -1.5, s.DrawdownPct)
	assert.Equal(t, 42, s.RiskScore)
	assert.Equal(t, 1.0, s.CumReturn)
}

func TestReportCache_Memory(t *testing.T) {
	ctx := context.Background()
	c := NewReportCache(nil, time.Minute)

	_, ok := c.Latest(ctx)
	assert.False(t, ok)

	r := &Report{RunID: "abc"}
	require.NoError(t, c.Store(ctx, r))
	got, ok := c.Latest(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc", got.RunID)

	require.NoError(t, c.Invalidate(ctx))
	_, ok = c.Latest(ctx)
	assert.False(t, ok)
}

func TestRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, &config.Config{Database: config.DatabaseConfig{URL: url, MaxConns: 2, MinConns: 1}})
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db.Pool)
	require.NoError(t, repo.EnsureSchema(ctx))

	a := newTestAnalyzer(contracts.DefaultAlertThresholds())
	snap := testSnapshot()
	snap.Account.Margin = 600
	r, err := a.Analyze(ctx, snap)
	require.NoError(t, err)

	require.NoError(t, repo.SaveReport(ctx, r))

	latest, err := repo.LatestReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, r.RiskScore.Score, latest.RiskScore.Score)

	stored, err := repo.RecentAlerts(ctx, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, stored)
	assert.True(t, strings.HasSuffix(stored[0].Value, "%"))

	history, err := repo.GetSnapshotHistory(ctx, testNow.AddDate(0, 0, -1), testNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.NotEmpty(t, history)
}
