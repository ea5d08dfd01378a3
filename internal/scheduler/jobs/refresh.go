package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/riskdesk/internal/audit"
	"github.com/wonny/riskdesk/internal/broker"
	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/pkg/logger"
	"github.com/wonny/riskdesk/pkg/metrics"
)

// ReportStore persists refresh results
type ReportStore interface {
	SaveReport(ctx context.Context, report *audit.Report) error
}

// Publisher pushes a fresh report to live subscribers
type Publisher interface {
	Publish(report *audit.Report)
}

// RefreshJob pulls a snapshot and runs the analytics pipeline over it
// ⭐ SSOT: 갱신 주기 실행은 이 Job에서만
type RefreshJob struct {
	source   broker.DataSource
	analyzer *audit.Analyzer
	schedule string

	cache     *audit.ReportCache
	store     ReportStore
	metrics   *metrics.Recorder
	publisher Publisher

	logger *logger.Logger
}

// NewRefreshJob creates a refresh job running on schedule
func NewRefreshJob(source broker.DataSource, analyzer *audit.Analyzer, schedule string, log *logger.Logger) *RefreshJob {
	if log == nil {
		log = logger.Nop()
	}
	return &RefreshJob{
		source:   source,
		analyzer: analyzer,
		schedule: schedule,
		logger:   log.WithField("job", "refresh"),
	}
}

// WithCache stores every report in c
func (j *RefreshJob) WithCache(c *audit.ReportCache) *RefreshJob {
	j.cache = c
	return j
}

// WithStore persists every connected report
func (j *RefreshJob) WithStore(s ReportStore) *RefreshJob {
	j.store = s
	return j
}

// WithMetrics records refresh duration and snapshot gauges
func (j *RefreshJob) WithMetrics(m *metrics.Recorder) *RefreshJob {
	j.metrics = m
	return j
}

// WithPublisher pushes every report to p
func (j *RefreshJob) WithPublisher(p Publisher) *RefreshJob {
	j.publisher = p
	return j
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "refresh"
}

// Schedule returns the cron schedule
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one refresh cycle
func (j *RefreshJob) Run(ctx context.Context) error {
	start := time.Now()
	report, err := j.Refresh(ctx)
	if j.metrics != nil {
		j.metrics.ObserveRefresh(time.Since(start), err)
	}
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":     report.RunID,
		"connected":  report.Connected,
		"risk_score": report.RiskScore.Score,
		"duration":   time.Since(start),
	}).Debug("Refresh completed")
	return nil
}

// Refresh runs the pipeline once and fans the report out. A terminal that is
// not connected still produces an (empty) report. Cache and store failures are
// logged, not returned: the alerts of this cycle are already recorded.
func (j *RefreshJob) Refresh(ctx context.Context) (*audit.Report, error) {
	snap, err := j.source.Snapshot(ctx)
	if err != nil && !errors.Is(err, broker.ErrNotConnected) {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	if err != nil {
		j.logger.WithError(err).Warn("Terminal not connected")
	}

	report, err := j.analyzer.Analyze(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	if j.cache != nil {
		if err := j.cache.Store(ctx, report); err != nil {
			j.logger.WithError(err).Warn("Failed to cache report")
		}
	}
	if j.store != nil {
		if err := j.store.SaveReport(ctx, report); err != nil {
			j.logger.WithError(err).Error("Failed to save report")
		}
	}
	if j.metrics != nil && report.Connected {
		j.metrics.SetSnapshot(metrics.Snapshot{
			RiskScore:       float64(report.RiskScore.Score),
			DLeverage:       report.Overview.DLeverage,
			CurrentDrawdown: report.Drawdown.Current,
			VaRMonthly:      report.PositionsRisk.MonthlyVaRPct,
		})
		j.metrics.AddAlerts(contracts.CategoryRisk, len(report.Alerts))
	}
	if j.publisher != nil {
		j.publisher.Publish(report)
	}
	return report, nil
}
