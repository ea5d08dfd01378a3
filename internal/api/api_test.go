package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskdesk/internal/alerts"
	"github.com/wonny/riskdesk/internal/api/handlers"
	"github.com/wonny/riskdesk/internal/audit"
	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/pkg/logger"
	"github.com/wonny/riskdesk/pkg/metrics"
)

type fakeStore struct {
	report *audit.Report
	snaps  []audit.DailySnapshot
	from   time.Time
}

func (f *fakeStore) LatestReport(ctx context.Context) (*audit.Report, error) {
	if f.report == nil {
		return nil, audit.ErrNotFound
	}
	return f.report, nil
}

func (f *fakeStore) GetSnapshotHistory(ctx context.Context, start, end time.Time) ([]audit.DailySnapshot, error) {
	f.from = start
	return f.snaps, nil
}

func (f *fakeStore) RecentAlerts(ctx context.Context, limit int) ([]contracts.AlertRecord, error) {
	return []contracts.AlertRecord{{ID: "stored", Category: contracts.CategoryRisk}}, nil
}

type fakeRefresher struct{ report *audit.Report }

func (f fakeRefresher) Refresh(ctx context.Context) (*audit.Report, error) { return f.report, nil }

type fixture struct {
	analyzer *audit.Analyzer
	cache    *audit.ReportCache
	hub      *Hub
	metrics  *metrics.Recorder
	router   http.Handler
	report   *audit.Report
}

func breachingSnapshot() *contracts.Snapshot {
	now := time.Now()
	return &contracts.Snapshot{
		Connected: true,
		TakenAt:   now,
		Account:   &contracts.Account{Currency: "USD", Balance: 10000, Equity: 10000, Margin: 600, MarginFree: 1000},
		Positions: []contracts.Position{{Symbol: "EURUSD", Volume: 0.1, PriceCurrent: 1.1, OpenTime: now.Add(-time.Hour)}},
		Equity:    contracts.NewDailySeries(now.AddDate(0, 0, -6), 9800, 9900, 9850, 10050, 9950, 10000),
	}
}

func newFixture(t *testing.T, store *fakeStore, refresher handlers.Refresher) *fixture {
	t.Helper()

	opts := audit.DefaultOptions()
	opts.MonteCarlo.NumSimulations = 500
	f := &fixture{
		analyzer: audit.NewAnalyzer(opts, alerts.Static(contracts.DefaultAlertThresholds()), nil),
		cache:    audit.NewReportCache(nil, time.Minute),
		hub:      NewHub(nil),
		metrics:  metrics.New(),
	}

	report, err := f.analyzer.Analyze(context.Background(), breachingSnapshot())
	require.NoError(t, err)
	f.report = report

	var rs handlers.ReportStore
	var as handlers.AlertStore
	if store != nil {
		rs, as = store, store
	}
	f.router = NewRouter(Routes{
		Report:  handlers.NewReportHandler(f.cache, rs, refresher, nil),
		Alerts:  handlers.NewAlertsHandler(f.analyzer, as, nil),
		Hub:     f.hub,
		Metrics: f.metrics,
	}, nil)
	return f
}

func (f *fixture) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil, nil)
	rec := f.do(http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestReportEndpoints(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(http.MethodGet, "/api/report")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, f.cache.Store(context.Background(), f.report))

	rec = f.do(http.MethodGet, "/api/report")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, f.report.RunID, body["run_id"])
	assert.Equal(t, true, body["connected"])

	tests := []struct {
		path string
		key  string
	}{
		{"/api/risk-score", "risk_score"},
		{"/api/drawdowns", "episodes"},
		{"/api/var", "var"},
		{"/api/allocation", "recommendations"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := f.do(http.MethodGet, tt.path)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, decodeBody(t, rec), tt.key)
		})
	}

	rec = f.do(http.MethodGet, "/api/report/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "High margin level")
}

func TestReportFallsBackToStore(t *testing.T) {
	store := &fakeStore{}
	f := newFixture(t, store, nil)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/report").Code)

	store.report = f.report
	rec := f.do(http.MethodGet, "/api/risk-score")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, f.report.RunID, decodeBody(t, rec)["run_id"])
}

func TestHistory(t *testing.T) {
	f := newFixture(t, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, "/api/history").Code)

	store := &fakeStore{snaps: []audit.DailySnapshot{{Equity: 1000}, {Equity: 1010}}}
	f = newFixture(t, store, nil)

	rec := f.do(http.MethodGet, "/api/history?from=2024-01-01&to=2024-02-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, decodeBody(t, rec)["count"])
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), store.from)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/history?from=01/01/2024").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/history?from=2024-02-01&to=2024-01-01").Code)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodPost, "/api/refresh").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(http.MethodGet, "/api/refresh").Code)

	g := newFixture(t, nil, nil)
	f = newFixture(t, nil, fakeRefresher{report: g.report})
	rec := f.do(http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, g.report.RunID, decodeBody(t, rec)["run_id"])
}

func TestAlertEndpoints(t *testing.T) {
	f := newFixture(t, &fakeStore{}, nil)

	rec := f.do(http.MethodGet, "/api/alerts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decodeBody(t, rec)["count"])

	rec = f.do(http.MethodGet, "/api/alerts?source=db")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decodeBody(t, rec)["count"])

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/alerts?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/optimizations?limit=-1").Code)

	rec = f.do(http.MethodGet, "/api/optimizations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decodeBody(t, rec)["count"])

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/alerts").Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/optimizations").Code)
	assert.Empty(t, f.analyzer.Alerts(0))
	assert.Empty(t, f.analyzer.Optimizations(0))
}

func TestAlertsFromStoreDisabled(t *testing.T) {
	f := newFixture(t, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(http.MethodGet, "/api/alerts?source=db").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.do(http.MethodGet, "/health")

	rec := f.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `route="/health"`))
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHubPublish(t *testing.T) {
	f := newFixture(t, nil, nil)
	srv := httptest.NewServer(f.router)
	defer srv.Close()
	defer f.hub.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/alerts"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return f.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	f.hub.Publish(f.report)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg AlertMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "refresh", msg.Type)
	assert.Equal(t, f.report.RunID, msg.RunID)
	assert.Len(t, msg.Alerts, 1)

	conn.Close()
	require.Eventually(t, func() bool { return f.hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}
