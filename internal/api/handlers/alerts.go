package handlers

import (
	"context"
	"net/http"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/pkg/logger"
)

// AlertSource is the in-memory alert history
type AlertSource interface {
	Alerts(n int) []contracts.AlertRecord
	Optimizations(n int) []contracts.OptimizationSuggestion
	ClearAlerts()
	ClearOptimizations()
}

// AlertStore is the persisted alert history
type AlertStore interface {
	RecentAlerts(ctx context.Context, limit int) ([]contracts.AlertRecord, error)
}

// defaultLimit caps list endpoints without an explicit limit
const defaultLimit = 50

// AlertsHandler serves alerts and optimization suggestions
type AlertsHandler struct {
	source AlertSource
	store  AlertStore // optional
	logger *logger.Logger
}

// NewAlertsHandler creates an alerts handler; store may be nil
func NewAlertsHandler(source AlertSource, store AlertStore, log *logger.Logger) *AlertsHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AlertsHandler{source: source, store: store, logger: log}
}

// GetAlerts returns the newest alerts, oldest first. source=db reads the
// stored history instead, newest first.
// GET /api/alerts?limit=20&source=db
func (h *AlertsHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	if r.URL.Query().Get("source") == "db" {
		if h.store == nil {
			respondError(w, http.StatusServiceUnavailable, "Persistence disabled")
			return
		}
		if limit == 0 {
			limit = defaultLimit
		}
		alerts, err := h.store.RecentAlerts(r.Context(), limit)
		if err != nil {
			h.logger.WithError(err).Error("Failed to get stored alerts")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve alerts")
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts, "count": len(alerts)})
		return
	}

	alerts := h.source.Alerts(limit)
	respondJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts, "count": len(alerts)})
}

// ClearAlerts empties the in-memory alert history
// DELETE /api/alerts
func (h *AlertsHandler) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	h.source.ClearAlerts()
	h.logger.Info("Alert history cleared")
	w.WriteHeader(http.StatusNoContent)
}

// GetOptimizations returns the newest suggestions, oldest first
// GET /api/optimizations?limit=20
func (h *AlertsHandler) GetOptimizations(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	opts := h.source.Optimizations(limit)
	respondJSON(w, http.StatusOK, map[string]interface{}{"optimizations": opts, "count": len(opts)})
}

// ClearOptimizations empties the suggestion history
// DELETE /api/optimizations
func (h *AlertsHandler) ClearOptimizations(w http.ResponseWriter, r *http.Request) {
	h.source.ClearOptimizations()
	w.WriteHeader(http.StatusNoContent)
}
