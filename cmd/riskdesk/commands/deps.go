package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/riskdesk/internal/audit"
	"github.com/wonny/riskdesk/internal/benchmark"
	"github.com/wonny/riskdesk/internal/broker"
	"github.com/wonny/riskdesk/pkg/config"
	"github.com/wonny/riskdesk/pkg/logger"
)

// deps are the components shared by the one-shot commands
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	source   broker.DataSource
	analyzer *audit.Analyzer
}

func loadDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	} else if cfg.LogLevel == "info" {
		cfg.LogLevel = "warn" // keep CLI output readable
	}
	log := logger.New(cfg)

	var source broker.DataSource
	if snapshotFile != "" {
		source = broker.NewFileSource(snapshotFile)
	} else {
		source = broker.NewBridgeClient(cfg.Broker, log)
	}

	analyzer := audit.NewAnalyzer(audit.OptionsFromConfig(cfg), cfg, log)
	if cfg.Benchmark.URL != "" {
		analyzer.WithBenchmark(benchmark.NewClient(cfg.Benchmark.URL, cfg.Benchmark.Symbol, log))
	}

	return &deps{cfg: cfg, log: log, source: source, analyzer: analyzer}, nil
}

// analyzeOnce reads one snapshot and runs the full pipeline over it
func (d *deps) analyzeOnce(ctx context.Context) (*audit.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	snap, err := d.source.Snapshot(ctx)
	if err != nil && !errors.Is(err, broker.ErrNotConnected) {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return d.analyzer.Analyze(ctx, snap)
}

// runReport loads dependencies and analyses one snapshot
func runReport(ctx context.Context) (*audit.Report, error) {
	d, err := loadDeps()
	if err != nil {
		return nil, err
	}
	return d.analyzeOnce(ctx)
}
