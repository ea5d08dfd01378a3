package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wonny/riskdesk/internal/audit"
	"github.com/wonny/riskdesk/pkg/logger"
)

// ReportStore is the persisted side of the report API
type ReportStore interface {
	LatestReport(ctx context.Context) (*audit.Report, error)
	GetSnapshotHistory(ctx context.Context, startDate, endDate time.Time) ([]audit.DailySnapshot, error)
}

// Refresher runs one refresh cycle on demand
type Refresher interface {
	Refresh(ctx context.Context) (*audit.Report, error)
}

// ReportHandler serves the latest risk report and its sections
// ⭐ SSOT: 리포트 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	cache     *audit.ReportCache
	store     ReportStore // optional
	refresher Refresher   // optional
	logger    *logger.Logger
}

// NewReportHandler creates a report handler; store and refresher may be nil
func NewReportHandler(cache *audit.ReportCache, store ReportStore, refresher Refresher, log *logger.Logger) *ReportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportHandler{cache: cache, store: store, refresher: refresher, logger: log}
}

// latest returns the cached report, falling back to the database
func (h *ReportHandler) latest(w http.ResponseWriter, r *http.Request) (*audit.Report, bool) {
	ctx := r.Context()
	if report, ok := h.cache.Latest(ctx); ok {
		return report, true
	}

	if h.store != nil {
		report, err := h.store.LatestReport(ctx)
		if err == nil {
			return report, true
		}
		if !errors.Is(err, audit.ErrNotFound) {
			h.logger.WithError(err).Error("Failed to load latest report")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve report")
			return nil, false
		}
	}

	respondError(w, http.StatusNotFound, "No report available yet")
	return nil, false
}

// GetReport returns the full latest report
// GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetSummary returns the text rendering of the latest report
// GET /api/report/summary
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report.ToSummary()))
}

// GetRiskScore returns the composite risk score
// GET /api/risk-score
func (h *ReportHandler) GetRiskScore(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":       report.RunID,
		"generated_at": report.GeneratedAt,
		"risk_score":   report.RiskScore,
	})
}

// GetDrawdowns returns the drawdown section
// GET /api/drawdowns
func (h *ReportHandler) GetDrawdowns(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report.Drawdown)
}

// GetVaR returns the VaR estimates and the Monte Carlo run
// GET /api/var
func (h *ReportHandler) GetVaR(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"var":            report.VaR,
		"monte_carlo":    report.MonteCarlo,
		"positions_risk": report.PositionsRisk,
		"stress_test":    report.Stress,
	})
}

// GetAllocation returns the allocation breakdown
// GET /api/allocation
func (h *ReportHandler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	report, ok := h.latest(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, report.Allocation)
}

// Refresh runs a refresh cycle now and returns its report
// POST /api/refresh
func (h *ReportHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		respondError(w, http.StatusServiceUnavailable, "Refresh not available")
		return
	}

	report, err := h.refresher.Refresh(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Manual refresh failed")
		respondError(w, http.StatusBadGateway, "Refresh failed")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetHistory returns stored daily snapshots
// GET /api/history?from=2024-01-01&to=2024-03-01
func (h *ReportHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Persistence disabled")
		return
	}

	to := time.Now()
	from := to.AddDate(0, 0, -30)
	var err error

	if s := r.URL.Query().Get("from"); s != "" {
		if from, err = time.Parse("2006-01-02", s); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'from' date format (expected YYYY-MM-DD)")
			return
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		if to, err = time.Parse("2006-01-02", s); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'to' date format (expected YYYY-MM-DD)")
			return
		}
	}
	if to.Before(from) {
		respondError(w, http.StatusBadRequest, "'to' must not be before 'from'")
		return
	}

	snaps, err := h.store.GetSnapshotHistory(r.Context(), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get snapshot history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": snaps,
		"count":     len(snaps),
	})
}
