package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskdesk/internal/api"
	"github.com/wonny/riskdesk/internal/api/handlers"
	"github.com/wonny/riskdesk/internal/audit"
	"github.com/wonny/riskdesk/internal/scheduler"
	"github.com/wonny/riskdesk/internal/scheduler/jobs"
	"github.com/wonny/riskdesk/pkg/database"
	"github.com/wonny/riskdesk/pkg/metrics"
	"github.com/wonny/riskdesk/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and the refresh scheduler",
	Long: `Starts the HTTP API and refreshes the risk report on REFRESH_SCHEDULE.

이 명령어는:
- 주기적 갱신 (스냅샷 → 분석 → 캐시/저장 → 알림 push)
- REST API + WebSocket 알림 스트림
- Prometheus /metrics

Endpoints:
  GET    /health
  GET    /api/report            - 최신 리포트
  GET    /api/report/summary    - 텍스트 요약
  GET    /api/risk-score
  GET    /api/drawdowns
  GET    /api/var
  GET    /api/allocation
  GET    /api/history           - 일별 스냅샷 (DB)
  POST   /api/refresh           - 즉시 갱신
  GET    /api/alerts            - 알림 (?limit=, ?source=db)
  DELETE /api/alerts
  GET    /api/optimizations
  DELETE /api/optimizations
  GET    /ws/alerts             - WebSocket
  GET    /metrics

Example:
  go run ./cmd/riskdesk serve
  go run ./cmd/riskdesk serve --port 8090 --snapshot account.yaml`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== riskdesk API Server ===")

	// 1. Config, logger, data source, analyzer
	d, err := loadDeps()
	if err != nil {
		return err
	}
	cfg, log := d.cfg, d.log
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// 2. Optional persistence
	var repo *audit.Repository
	db, err := database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		log.Info("DATABASE_URL not set, persistence disabled")
	case err != nil:
		return fmt.Errorf("connect to database: %w", err)
	default:
		defer db.Close()
		repo = audit.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		log.Info("Connected to database")
	}

	// 3. Report cache (Redis optional)
	rdb, err := redis.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()

	var remote *redis.Cache
	if rdb.Enabled() {
		remote = redis.NewCache(rdb, "riskdesk")
	}
	cache := audit.NewReportCache(remote, cfg.Refresh.CacheTTL)

	// 4. Metrics and live alerts
	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.New()
	}
	hub := api.NewHub(log)

	// 5. Refresh job
	refresh := jobs.NewRefreshJob(d.source, d.analyzer, cfg.Refresh.Schedule, log).
		WithCache(cache).
		WithMetrics(rec).
		WithPublisher(hub)
	if repo != nil {
		refresh.WithStore(repo)
	}

	sched := scheduler.New(log, scheduler.WithRetry(1, 5*time.Second))
	if cfg.Refresh.AutoRefresh {
		if err := sched.AddJob(refresh); err != nil {
			return err
		}
	}
	if repo != nil {
		if err := sched.AddJob(jobs.NewRetentionJob(repo, cfg.Refresh.RetentionDays, log)); err != nil {
			return err
		}
	}

	// 6. Router and server
	var reportStore handlers.ReportStore
	var alertStore handlers.AlertStore
	if repo != nil {
		reportStore, alertStore = repo, repo
	}
	router := api.NewRouter(api.Routes{
		Report:  handlers.NewReportHandler(cache, reportStore, refresh, log),
		Alerts:  handlers.NewAlertsHandler(d.analyzer, alertStore, log),
		Hub:     hub,
		Metrics: rec,
	}, log)
	server := api.New(cfg, log, router, hub)

	// 7. First report before serving, then the schedule
	if _, err := refresh.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial refresh failed")
	}
	sched.Start()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			sched.Stop()
			return err
		}
	}

	log.Info("Shutting down...")
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
