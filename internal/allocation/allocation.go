// Package allocation breaks open positions down by symbol, direction and holding
// time and derives sizing and exposure recommendations.
package allocation

import (
	"sort"
	"time"

	"github.com/wonny/riskdesk/internal/contracts"
)

// Share is one bucket's size and its percentage of the total
type Share struct {
	Name    string  `json:"name"`
	Size    float64 `json:"size"`
	Percent float64 `json:"percent"`
}

// DirectionSplit is a bucket's size per direction
type DirectionSplit struct {
	Name  string  `json:"name"`
	Buy   float64 `json:"buy"`
	Sell  float64 `json:"sell"`
	Total float64 `json:"total"`
}

// Exposure is the portfolio's directional exposure
type Exposure struct {
	Long     float64 `json:"long_exposure"`
	Short    float64 `json:"short_exposure"` // ≤ 0
	Net      float64 `json:"net_exposure"`
	Gross    float64 `json:"gross_exposure"`
	LongPct  float64 `json:"long_pct"`
	ShortPct float64 `json:"short_pct"`
}

// Sizing relates position sizes to account equity
type Sizing struct {
	AvgPct        float64 `json:"avg_position_size_pct"`
	MaxPct        float64 `json:"max_position_size_pct"`
	MinPct        float64 `json:"min_position_size_pct"`
	MaxSymbol     string  `json:"max_position_symbol,omitempty"`
	Count         int     `json:"total_positions"`
	Concentration float64 `json:"position_concentration"` // HHI of position weights
}

// Duration buckets, shortest first
const (
	BucketScalping   = "< 30 min (Scalping)"
	BucketIntraday   = "30-60 min (Intraday)"
	BucketDayTrading = "1-24 h (Day Trading)"
	BucketSwing      = "> 24 h (Swing/Position)"
)

var bucketOrder = []string{BucketScalping, BucketIntraday, BucketDayTrading, BucketSwing}

// DurationBucket places a holding time in minutes into its bucket
func DurationBucket(minutes float64) string {
	switch {
	case minutes < 30:
		return BucketScalping
	case minutes < 60:
		return BucketIntraday
	case minutes < 1440:
		return BucketDayTrading
	default:
		return BucketSwing
	}
}

// shares converts sizes into percentages of their sum; a non-positive sum yields nil
func shares(names []string, sizes map[string]float64) []Share {
	var total float64
	for _, n := range names {
		total += sizes[n]
	}
	if total <= 0 {
		return nil
	}
	out := make([]Share, 0, len(names))
	for _, n := range names {
		out = append(out, Share{Name: n, Size: sizes[n], Percent: sizes[n] / total * 100})
	}
	return out
}

// BySymbol returns each symbol's share of total size, largest first, and the
// signed exposure per symbol
func BySymbol(positions []contracts.Position) ([]Share, map[string]float64) {
	sizes := map[string]float64{}
	exposure := map[string]float64{}
	var names []string
	for _, p := range positions {
		if _, ok := sizes[p.Symbol]; !ok {
			names = append(names, p.Symbol)
		}
		sizes[p.Symbol] += p.Size()
		exposure[p.Symbol] += p.SignedSize()
	}

	out := shares(names, sizes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Size > out[j].Size })
	return out, exposure
}

// ByDirection returns the BUY/SELL split of total size and a per-symbol
// breakdown sorted by total, largest first
func ByDirection(positions []contracts.Position) ([]Share, []DirectionSplit) {
	sizes := map[string]float64{}
	splits := map[string]*DirectionSplit{}
	var symbols []string

	for _, p := range positions {
		sizes[p.Direction.String()] += p.Size()

		s, ok := splits[p.Symbol]
		if !ok {
			s = &DirectionSplit{Name: p.Symbol}
			splits[p.Symbol] = s
			symbols = append(symbols, p.Symbol)
		}
		addSplit(s, p)
	}

	var dirs []string
	for _, d := range []contracts.Direction{contracts.DirectionBuy, contracts.DirectionSell} {
		if _, ok := sizes[d.String()]; ok {
			dirs = append(dirs, d.String())
		}
	}

	pivot := make([]DirectionSplit, 0, len(symbols))
	for _, sym := range symbols {
		pivot = append(pivot, *splits[sym])
	}
	sort.SliceStable(pivot, func(i, j int) bool { return pivot[i].Total > pivot[j].Total })

	return shares(dirs, sizes), pivot
}

// ByDuration returns the share of each holding-time bucket and its direction
// split, both in bucket order and limited to non-empty buckets
func ByDuration(positions []contracts.Position, now time.Time) ([]Share, []DirectionSplit) {
	sizes := map[string]float64{}
	splits := map[string]*DirectionSplit{}

	for _, p := range positions {
		bucket := DurationBucket(p.HoldingMinutes(now))
		sizes[bucket] += p.Size()

		s, ok := splits[bucket]
		if !ok {
			s = &DirectionSplit{Name: bucket}
			splits[bucket] = s
		}
		addSplit(s, p)
	}

	var names []string
	var pivot []DirectionSplit
	for _, b := range bucketOrder {
		if s, ok := splits[b]; ok {
			names = append(names, b)
			pivot = append(pivot, *s)
		}
	}
	return shares(names, sizes), pivot
}

func addSplit(s *DirectionSplit, p contracts.Position) {
	if p.Direction == contracts.DirectionSell {
		s.Sell += p.Size()
	} else {
		s.Buy += p.Size()
	}
	s.Total += p.Size()
}

// PortfolioExposure sums signed sizes into long, short, net and gross exposure
func PortfolioExposure(positions []contracts.Position) Exposure {
	var e Exposure
	for _, p := range positions {
		switch v := p.SignedSize(); {
		case v > 0:
			e.Long += v
		case v < 0:
			e.Short += v
		}
	}
	e.Net = e.Long + e.Short
	e.Gross = e.Long - e.Short
	if e.Gross > 0 {
		e.LongPct = e.Long / e.Gross * 100
		e.ShortPct = -e.Short / e.Gross * 100
	}
	return e
}

// PositionSizing expresses each position as a percentage of equity.
// No positions or non-positive equity yields the zero value.
func PositionSizing(positions []contracts.Position, equity float64) Sizing {
	if len(positions) == 0 || equity <= 0 {
		return Sizing{}
	}

	s := Sizing{Count: len(positions), MinPct: -1}
	var total, sumPct float64
	for _, p := range positions {
		pct := p.Size() / equity * 100
		sumPct += pct
		total += p.Size()
		if pct > s.MaxPct || s.MaxSymbol == "" {
			s.MaxPct, s.MaxSymbol = pct, p.Symbol
		}
		if s.MinPct < 0 || pct < s.MinPct {
			s.MinPct = pct
		}
	}
	s.AvgPct = sumPct / float64(len(positions))

	if total > 0 {
		for _, p := range positions {
			w := p.Size() / total
			s.Concentration += w * w
		}
	}
	return s
}
