// Package benchmark loads benchmark index history from an HTML quote page.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/pkg/httputil"
	"github.com/wonny/riskdesk/pkg/logger"
)

// dateLayouts are the date formats seen in quote history tables
var dateLayouts = []string{
	"2006-01-02",
	"2006.01.02",
	"2006/01/02",
	"Jan 2, 2006",
	"02.01.2006",
}

// Client fetches benchmark closes
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
	symbol     string
}

// NewClient creates a benchmark client for the page at url
func NewClient(url, symbol string, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		httpClient: httputil.New(log, 10*time.Second).
			WithHeader("User-Agent", "Mozilla/5.0 (compatible; riskdesk)"),
		logger: log.WithField("component", "benchmark"),
		url:    url,
		symbol: symbol,
	}
}

// Symbol returns the benchmark symbol
func (c *Client) Symbol() string {
	return c.symbol
}

// Series downloads the page and parses it into an equity-like series of closes
func (c *Client) Series(ctx context.Context) (contracts.EquitySeries, error) {
	resp, err := c.httpClient.Get(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.url)
	}

	series, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": c.symbol,
		"count":  len(series),
	}).Debug("Fetched benchmark history")
	return series, nil
}

// Parse reads every table row whose first cell is a date and whose second cell
// is a positive number. Rows in any order are accepted; the result is sorted with
// duplicate dates collapsed.
func Parse(r io.Reader) (contracts.EquitySeries, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse benchmark page: %w", err)
	}

	var series contracts.EquitySeries
	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		date, ok := parseDate(cells.Eq(0).Text())
		if !ok {
			return
		}
		price, ok := parseNum(cells.Eq(1).Text())
		if !ok || price <= 0 {
			return
		}
		series = append(series, contracts.EquityPoint{Time: date, Equity: price})
	})

	if len(series) == 0 {
		return nil, fmt.Errorf("no benchmark rows found")
	}
	return series.Normalize(), nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNum(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
