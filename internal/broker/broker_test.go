package broker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/pkg/config"
)

var testNow = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func TestBuildEquityCurve(t *testing.T) {
	deals := []contracts.Deal{
		{Time: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), Profit: -50},
		{Time: time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC), Profit: 100},
		{Time: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), Profit: 25},
	}

	curve := BuildEquityCurve(1075, deals, testNow, 3)
	require.Len(t, curve, 4)
	assert.Equal(t, []float64{1000, 1100, 1050, 1075}, curve.Values())
	assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), curve[0].Time)
	assert.NoError(t, curve.Validate())

	// input order is untouched
	assert.Equal(t, -50.0, deals[0].Profit)

	assert.Empty(t, BuildEquityCurve(1000, nil, testNow, 90))
	assert.Empty(t, BuildEquityCurve(1000, deals, testNow, 0))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func bridgeServer(t *testing.T, withDeals bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/account", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Bridge-Token"))
		writeJSON(w, map[string]interface{}{
			"login": 42, "balance": 1075, "equity": 1100, "margin": 50, "margin_free": 1000,
		})
	})
	mux.HandleFunc("/positions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"ticket": 1, "symbol": "EURUSD", "type": 0, "volume": 0.1, "price_current": 1.1, "time": "2024-03-10T12:00:00Z"},
			{"ticket": 2, "symbol": "EURUSD", "type": "SELL", "volume": 0.2, "price_current": 1.1, "time": "2024-03-10T13:00:00Z"},
			{"ticket": 3, "symbol": "XAUUSD", "type": 0, "volume": 0.01, "price_current": 2100, "time": "2024-03-09T13:00:00Z"},
		})
	})
	mux.HandleFunc("/deals", func(w http.ResponseWriter, r *http.Request) {
		if !withDeals {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "3", r.URL.Query().Get("days"))
		writeJSON(w, []map[string]interface{}{
			{"ticket": 10, "time": "2024-03-08T10:00:00Z", "symbol": "EURUSD", "profit": 100},
			{"ticket": 11, "time": "2024-03-09T12:00:00Z", "symbol": "EURUSD", "profit": -25},
		})
	})
	mux.HandleFunc("/rates/EURUSD", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "30", r.URL.Query().Get("count"))
		writeJSON(w, []map[string]interface{}{
			{"time": "2024-03-09T00:00:00Z", "close": 1.09},
			{"time": "2024-03-08T00:00:00Z", "close": 1.08},
			{"time": "2024-03-10T00:00:00Z", "close": 1.10},
		})
	})
	mux.HandleFunc("/symbols/EURUSD", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"name": "EURUSD", "trade_contract_size": 100000})
	})
	mux.HandleFunc("/symbols/XAUUSD", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"name": "XAUUSD", "trade_contract_size": 100})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *BridgeClient {
	c := NewBridgeClient(config.BrokerConfig{
		BaseURL:      baseURL + "/",
		Token:        "secret",
		Timeout:      5 * time.Second,
		HistoryDays:  3,
		ContractSize: 100000,
		PriceBars:    30,
	}, nil)
	c.httpClient.DisableRetry()
	c.now = func() time.Time { return testNow }
	return c
}

func TestBridgeClient_Snapshot(t *testing.T) {
	srv := bridgeServer(t, true)
	c := newTestClient(srv.URL)

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Ready())
	assert.Equal(t, int64(42), snap.Account.Login)
	assert.Equal(t, testNow, snap.TakenAt)

	require.Len(t, snap.Positions, 3)
	assert.Equal(t, contracts.DirectionSell, snap.Positions[1].Direction)
	assert.InDelta(t, 0.31, snap.TotalVolume(), 1e-12)

	require.Len(t, snap.Deals, 2)
	// 1075 - 75 = 1000 start, +100 on the 8th, -25 on the 9th
	assert.Equal(t, []float64{1000, 1100, 1075, 1075}, snap.Equity.Values())

	assert.Equal(t, []float64{1.08, 1.09, 1.10}, snap.PriceHistory["EURUSD"])
	_, ok := snap.PriceHistory["XAUUSD"]
	assert.False(t, ok, "missing rates are skipped")

	assert.Equal(t, 100000.0, snap.ContractSize("EURUSD"))
	assert.Equal(t, 100.0, snap.ContractSize("XAUUSD"))
}

func TestBridgeClient_SnapshotWithoutDeals(t *testing.T) {
	srv := bridgeServer(t, false)
	c := newTestClient(srv.URL)

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Connected)
	assert.Empty(t, snap.Deals)
	assert.NotNil(t, snap.Equity)
	assert.Empty(t, snap.Equity)
}

func TestBridgeClient_NotConnected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "terminal offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	snap, err := c.Snapshot(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConnected))
	require.NotNil(t, snap)
	assert.False(t, snap.Connected)
	assert.False(t, snap.Ready())
}

const yamlSnapshot = `
connected: true
account:
  currency: USD
  balance: 10000
  equity: 10050
  margin: 200
  margin_free: 9850
positions:
  - symbol: EURUSD
    type: SELL
    volume: 0.5
    price_current: 1.08
    time: 2024-03-10T08:00:00Z
equity:
  - time: 2024-03-02T00:00:00Z
    equity: 10020
  - time: 2024-03-01T00:00:00Z
    equity: 10000
price_history:
  EURUSD: [1.07, 1.08, 1.085, 1.08, 1.09]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource_YAML(t *testing.T) {
	src := NewFileSource(writeFile(t, "snap.yaml", yamlSnapshot))
	src.now = func() time.Time { return testNow }

	snap, err := src.Snapshot(context.Background())
	require.NoError(t, err)

	assert.True(t, snap.Ready())
	assert.Equal(t, "USD", snap.Account.Currency)
	assert.Equal(t, testNow, snap.TakenAt)
	require.Len(t, snap.Positions, 1)
	assert.Equal(t, contracts.DirectionSell, snap.Positions[0].Direction)
	assert.Equal(t, []float64{10000, 10020}, snap.Equity.Values())
	assert.Len(t, snap.PriceHistory["EURUSD"], 5)
}

func TestFileSource_JSON(t *testing.T) {
	content := `{
  "connected": true,
  "account": {"balance": 5000, "equity": 5000, "margin": 0, "margin_free": 5000},
  "positions": [],
  "equity": [{"time": "2024-03-01T00:00:00Z", "equity": 5000}]
}`
	snap, err := NewFileSource(writeFile(t, "snap.json", content)).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5000.0, snap.Account.Balance)
	assert.Len(t, snap.Equity, 1)
}

func TestFileSource_Errors(t *testing.T) {
	t.Run("disconnected", func(t *testing.T) {
		snap, err := NewFileSource(writeFile(t, "off.yaml", "connected: false\n")).Snapshot(context.Background())
		assert.True(t, errors.Is(err, ErrNotConnected))
		assert.False(t, snap.Ready())
	})

	t.Run("missing file", func(t *testing.T) {
		snap, err := NewFileSource(filepath.Join(t.TempDir(), "nope.yaml")).Snapshot(context.Background())
		assert.Error(t, err)
		assert.False(t, snap.Connected)
	})

	t.Run("non-positive equity", func(t *testing.T) {
		content := "connected: true\nequity:\n  - time: 2024-03-01T00:00:00Z\n    equity: 0\n"
		_, err := LoadSnapshot(writeFile(t, "bad.yaml", content))
		assert.ErrorContains(t, err, "non-positive equity")
	})
}

func TestSaveSnapshot(t *testing.T) {
	snap, err := LoadSnapshot(writeFile(t, "in.yaml", yamlSnapshot))
	require.NoError(t, err)

	for _, name := range []string{"out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveSnapshot(path, snap))

			back, err := LoadSnapshot(path)
			require.NoError(t, err)
			assert.Equal(t, snap.Equity.Values(), back.Equity.Values())
			assert.Equal(t, snap.Positions[0].Direction, back.Positions[0].Direction)
			assert.Equal(t, snap.Account.Equity, back.Account.Equity)
		})
	}
}
