package broker

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/pkg/config"
	"github.com/wonny/riskdesk/pkg/httputil"
	"github.com/wonny/riskdesk/pkg/logger"
)

// BridgeClient reads account data from the terminal bridge REST API
type BridgeClient struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	cfg        config.BrokerConfig
	now        func() time.Time
}

// rateBar is one OHLC bar as served by /rates
type rateBar struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// symbolInfo is the subset of /symbols used here
type symbolInfo struct {
	Name         string  `json:"name"`
	ContractSize float64 `json:"trade_contract_size"`
}

// NewBridgeClient creates a bridge client
func NewBridgeClient(cfg config.BrokerConfig, log *logger.Logger) *BridgeClient {
	if log == nil {
		log = logger.Nop()
	}
	hc := httputil.New(log, cfg.Timeout).WithRateLimit(cfg.RateLimit)
	if cfg.Token != "" {
		hc.WithHeader("X-Bridge-Token", cfg.Token)
	}

	return &BridgeClient{
		httpClient: hc,
		logger:     log.WithField("component", "broker"),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		cfg:        cfg,
		now:        time.Now,
	}
}

// Account fetches the account summary
func (c *BridgeClient) Account(ctx context.Context) (*contracts.Account, error) {
	var acc contracts.Account
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/account", &acc); err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}
	return &acc, nil
}

// Positions fetches open positions
func (c *BridgeClient) Positions(ctx context.Context) ([]contracts.Position, error) {
	var positions []contracts.Position
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/positions", &positions); err != nil {
		return nil, fmt.Errorf("fetch positions: %w", err)
	}
	return positions, nil
}

// Deals fetches closed deals of the last days
func (c *BridgeClient) Deals(ctx context.Context, days int) ([]contracts.Deal, error) {
	var deals []contracts.Deal
	u := fmt.Sprintf("%s/deals?days=%d", c.baseURL, days)
	if err := c.httpClient.GetJSON(ctx, u, &deals); err != nil {
		return nil, fmt.Errorf("fetch deals: %w", err)
	}
	return deals, nil
}

// Closes fetches the last count daily closes of symbol, oldest first
func (c *BridgeClient) Closes(ctx context.Context, symbol string, count int) ([]float64, error) {
	var bars []rateBar
	u := fmt.Sprintf("%s/rates/%s?count=%d", c.baseURL, url.PathEscape(symbol), count)
	if err := c.httpClient.GetJSON(ctx, u, &bars); err != nil {
		return nil, fmt.Errorf("fetch rates for %s: %w", symbol, err)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes, nil
}

// ContractSize fetches the contract size of symbol
func (c *BridgeClient) ContractSize(ctx context.Context, symbol string) (float64, error) {
	var info symbolInfo
	if err := c.httpClient.GetJSON(ctx, c.baseURL+"/symbols/"+url.PathEscape(symbol), &info); err != nil {
		return 0, fmt.Errorf("fetch symbol %s: %w", symbol, err)
	}
	return info.ContractSize, nil
}

// Snapshot implements DataSource.
// Account and positions are required; deals, closes and contract sizes are
// enrichments and are skipped with a warning when unavailable.
func (c *BridgeClient) Snapshot(ctx context.Context) (*contracts.Snapshot, error) {
	acc, err := c.Account(ctx)
	if err != nil {
		return Disconnected(), fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	positions, err := c.Positions(ctx)
	if err != nil {
		return Disconnected(), fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	now := c.now()
	snap := &contracts.Snapshot{
		Connected:     true,
		TakenAt:       now,
		Account:       acc,
		Positions:     positions,
		Equity:        contracts.EquitySeries{},
		PriceHistory:  map[string][]float64{},
		ContractSizes: map[string]float64{},
	}

	// 거래 내역 → 자산 곡선
	deals, err := c.Deals(ctx, c.cfg.HistoryDays)
	if err != nil {
		c.logger.WithError(err).Warn("Deal history unavailable, equity curve skipped")
	} else {
		snap.Deals = deals
		snap.Equity = BuildEquityCurve(acc.Balance, deals, now, c.cfg.HistoryDays)
	}

	// 심볼별 가격/계약 크기
	for _, sym := range distinctSymbols(positions) {
		if err := ctx.Err(); err != nil {
			return snap, err
		}

		closes, err := c.Closes(ctx, sym, c.cfg.PriceBars)
		if err != nil {
			c.logger.WithError(err).WithField("symbol", sym).Warn("Price history unavailable")
		} else {
			snap.PriceHistory[sym] = closes
		}

		size, err := c.ContractSize(ctx, sym)
		switch {
		case err != nil:
			c.logger.WithError(err).WithField("symbol", sym).Warn("Symbol info unavailable, using default contract size")
			snap.ContractSizes[sym] = c.cfg.ContractSize
		case size > 0:
			snap.ContractSizes[sym] = size
		default:
			snap.ContractSizes[sym] = c.cfg.ContractSize
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"positions": len(positions),
		"deals":     len(snap.Deals),
		"equity":    len(snap.Equity),
	}).Debug("Fetched snapshot")
	return snap, nil
}

func distinctSymbols(positions []contracts.Position) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range positions {
		if !seen[p.Symbol] {
			seen[p.Symbol] = true
			out = append(out, p.Symbol)
		}
	}
	return out
}
