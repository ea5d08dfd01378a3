package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/riskdesk/pkg/logger"
)

// Pruner deletes stored rows older than a cutoff
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// RetentionJob prunes old reports and alerts
type RetentionJob struct {
	pruner Pruner
	days   int
	now    func() time.Time
	logger *logger.Logger
}

// NewRetentionJob creates a retention job keeping days of history
func NewRetentionJob(p Pruner, days int, log *logger.Logger) *RetentionJob {
	if log == nil {
		log = logger.Nop()
	}
	return &RetentionJob{pruner: p, days: days, now: time.Now, logger: log}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "retention"
}

// Schedule returns the cron schedule (every day at 3:30 AM)
func (j *RetentionJob) Schedule() string {
	return "0 30 3 * * *"
}

// Run executes the pruning; non-positive retention keeps everything
func (j *RetentionJob) Run(ctx context.Context) error {
	if j.days <= 0 {
		return nil
	}

	cutoff := j.now().AddDate(0, 0, -j.days)
	n, err := j.pruner.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}

	if n > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": n,
			"cutoff":  cutoff.Format("2006-01-02"),
		}).Info("Retention cleanup completed")
	}
	return nil
}
