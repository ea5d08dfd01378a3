package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/riskdesk/internal/contracts"
)

// ErrNotFound is returned when no stored row matches
var ErrNotFound = errors.New("audit: not found")

// Repository handles report persistence
// ⭐ SSOT: 리포트/알림 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS riskdesk;

CREATE TABLE IF NOT EXISTS riskdesk.reports (
	run_id       UUID PRIMARY KEY,
	generated_at TIMESTAMPTZ NOT NULL,
	risk_score   INTEGER NOT NULL,
	rating       TEXT NOT NULL,
	report       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_generated_at_idx ON riskdesk.reports (generated_at DESC);

CREATE TABLE IF NOT EXISTS riskdesk.alerts (
	id         TEXT PRIMARY KEY,
	run_id     UUID,
	created_at TIMESTAMPTZ NOT NULL,
	category   TEXT NOT NULL,
	message    TEXT NOT NULL,
	value      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS riskdesk.optimizations (
	id         TEXT PRIMARY KEY,
	run_id     UUID,
	created_at TIMESTAMPTZ NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS riskdesk.daily_snapshots (
	date            DATE PRIMARY KEY,
	balance         DOUBLE PRECISION NOT NULL,
	equity          DOUBLE PRECISION NOT NULL,
	floating_profit DOUBLE PRECISION NOT NULL,
	margin_pct      DOUBLE PRECISION NOT NULL,
	d_leverage      DOUBLE PRECISION NOT NULL,
	drawdown_pct    DOUBLE PRECISION NOT NULL,
	risk_score      INTEGER NOT NULL,
	positions       INTEGER NOT NULL,
	daily_return    DOUBLE PRECISION NOT NULL,
	cum_return      DOUBLE PRECISION NOT NULL
);
`

// EnsureSchema creates the tables when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveReport stores the report, its alerts and suggestions and the day's
// snapshot in one transaction. Disconnected reports are not stored.
func (r *Repository) SaveReport(ctx context.Context, report *Report) error {
	if !report.Connected {
		return nil
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO riskdesk.reports (run_id, generated_at, risk_score, rating, report)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO NOTHING
	`, report.RunID, report.GeneratedAt, report.RiskScore.Score, report.RiskScore.Rating, reportJSON)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	if err := saveAlerts(ctx, tx, report.RunID, report.Alerts, report.Optimizations); err != nil {
		return err
	}

	snap := NewDailySnapshot(report)
	prev, err := previousSnapshot(ctx, tx, snap.Date)
	if err != nil {
		return err
	}
	snap.Chain(prev)
	if err := saveSnapshot(ctx, tx, &snap); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveAlerts stores alerts and suggestions outside a report
func (r *Repository) SaveAlerts(ctx context.Context, alerts []contracts.AlertRecord, opts []contracts.OptimizationSuggestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := saveAlerts(ctx, tx, "", alerts, opts); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullableRunID(runID string) interface{} {
	if runID == "" {
		return nil
	}
	return runID
}

func saveAlerts(ctx context.Context, tx pgx.Tx, runID string, alerts []contracts.AlertRecord, opts []contracts.OptimizationSuggestion) error {
	batch := &pgx.Batch{}
	for _, a := range alerts {
		batch.Queue(`
			INSERT INTO riskdesk.alerts (id, run_id, created_at, category, message, value)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, a.ID, nullableRunID(runID), a.Timestamp, a.Category, a.Message, a.Value)
	}
	for _, o := range opts {
		batch.Queue(`
			INSERT INTO riskdesk.optimizations (id, run_id, created_at, title, message)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, o.ID, nullableRunID(runID), o.Timestamp, o.Title, o.Message)
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save alerts: %w", err)
	}
	return nil
}

func saveSnapshot(ctx context.Context, tx pgx.Tx, s *DailySnapshot) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO riskdesk.daily_snapshots (
			date, balance, equity, floating_profit, margin_pct, d_leverage,
			drawdown_pct, risk_score, positions, daily_return, cum_return
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (date) DO UPDATE SET
			balance = EXCLUDED.balance,
			equity = EXCLUDED.equity,
			floating_profit = EXCLUDED.floating_profit,
			margin_pct = EXCLUDED.margin_pct,
			d_leverage = EXCLUDED.d_leverage,
			drawdown_pct = EXCLUDED.drawdown_pct,
			risk_score = EXCLUDED.risk_score,
			positions = EXCLUDED.positions,
			daily_return = EXCLUDED.daily_return,
			cum_return = EXCLUDED.cum_return
	`,
		s.Date, s.Balance, s.Equity, s.FloatingProfit, s.MarginPct, s.DLeverage,
		s.DrawdownPct, s.RiskScore, s.Positions, s.DailyReturn, s.CumReturn,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

const snapshotColumns = `date, balance, equity, floating_profit, margin_pct, d_leverage,
	drawdown_pct, risk_score, positions, daily_return, cum_return`

func scanSnapshot(row pgx.Row) (*DailySnapshot, error) {
	var s DailySnapshot
	err := row.Scan(
		&s.Date, &s.Balance, &s.Equity, &s.FloatingProfit, &s.MarginPct, &s.DLeverage,
		&s.DrawdownPct, &s.RiskScore, &s.Positions, &s.DailyReturn, &s.CumReturn,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func previousSnapshot(ctx context.Context, q pgx.Tx, date time.Time) (*DailySnapshot, error) {
	row := q.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM riskdesk.daily_snapshots
		WHERE date < $1
		ORDER BY date DESC
		LIMIT 1
	`, date)

	s, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // 첫 스냅샷
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get previous snapshot: %w", err)
	}
	return s, nil
}

// LatestReport returns the most recent stored report
func (r *Repository) LatestReport(ctx context.Context) (*Report, error) {
	var reportJSON []byte
	err := r.pool.QueryRow(ctx, `
		SELECT report
		FROM riskdesk.reports
		ORDER BY generated_at DESC
		LIMIT 1
	`).Scan(&reportJSON)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	var report Report
	if err := json.Unmarshal(reportJSON, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// RecentAlerts returns up to limit stored alerts, newest first
func (r *Repository) RecentAlerts(ctx context.Context, limit int) ([]contracts.AlertRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, created_at, category, message, value
		FROM riskdesk.alerts
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]contracts.AlertRecord, 0)
	for rows.Next() {
		var a contracts.AlertRecord
		if err := rows.Scan(&a.ID, &a.Timestamp, &a.Category, &a.Message, &a.Value); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return alerts, nil
}

// GetSnapshotHistory retrieves daily snapshots for a date range
func (r *Repository) GetSnapshotHistory(ctx context.Context, startDate, endDate time.Time) ([]DailySnapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM riskdesk.daily_snapshots
		WHERE date BETWEEN $1 AND $2
		ORDER BY date ASC
	`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]DailySnapshot, 0)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return snapshots, nil
}

// Prune deletes reports, alerts and suggestions older than before. Daily
// snapshots are kept. Returns the number of deleted reports.
func (r *Repository) Prune(ctx context.Context, before time.Time) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM riskdesk.reports WHERE generated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune reports: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM riskdesk.alerts WHERE created_at < $1`, before); err != nil {
		return 0, fmt.Errorf("failed to prune alerts: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM riskdesk.optimizations WHERE created_at < $1`, before); err != nil {
		return 0, fmt.Errorf("failed to prune optimizations: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tag.RowsAffected(), nil
}
