package audit

import (
	"math"
	"sort"

	"github.com/wonny/riskdesk/internal/contracts"
)

// Attribution is one symbol's contribution to account profit and exposure
type Attribution struct {
	Symbol          string  `json:"symbol"`
	Floating        float64 `json:"floating_profit"`
	Realized        float64 `json:"realized_profit"` // closed deals in the history window
	Contribution    float64 `json:"contribution"`    // floating + realized
	ContributionPct float64 `json:"contribution_pct"`
	Exposure        float64 `json:"exposure"` // signed notional
	ExposurePct     float64 `json:"exposure_pct"`
}

// AnalyzeAttribution splits profit and notional exposure by symbol.
// Percentages are shares of the absolute totals. Sorted by contribution, best first.
func AnalyzeAttribution(snap *contracts.Snapshot) []Attribution {
	if snap == nil {
		return []Attribution{}
	}

	bySymbol := map[string]*Attribution{}
	get := func(sym string) *Attribution {
		a, ok := bySymbol[sym]
		if !ok {
			a = &Attribution{Symbol: sym}
			bySymbol[sym] = a
		}
		return a
	}

	for _, p := range snap.Positions {
		a := get(p.Symbol)
		a.Floating += p.Profit + p.Swap
		a.Exposure += p.Direction.Sign() * p.Exposure(snap.ContractSize(p.Symbol))
	}
	for _, d := range snap.Deals {
		if d.Symbol == "" {
			continue // balance operations
		}
		get(d.Symbol).Realized += d.Profit + d.Commission + d.Swap
	}

	var totalContribution, totalExposure float64
	for _, a := range bySymbol {
		a.Contribution = a.Floating + a.Realized
		totalContribution += math.Abs(a.Contribution)
		totalExposure += math.Abs(a.Exposure)
	}

	attrs := make([]Attribution, 0, len(bySymbol))
	for _, a := range bySymbol {
		if totalContribution > 0 {
			a.ContributionPct = a.Contribution / totalContribution * 100
		}
		if totalExposure > 0 {
			a.ExposurePct = math.Abs(a.Exposure) / totalExposure * 100
		}
		attrs = append(attrs, *a)
	}

	sort.Slice(attrs, func(i, j int) bool {
		if attrs[i].Contribution != attrs[j].Contribution {
			return attrs[i].Contribution > attrs[j].Contribution
		}
		return attrs[i].Symbol < attrs[j].Symbol
	})
	return attrs
}

// TopContributors returns the best limit symbols
func TopContributors(attrs []Attribution, limit int) []Attribution {
	if limit > len(attrs) {
		limit = len(attrs)
	}
	out := make([]Attribution, limit)
	copy(out, attrs[:limit])
	return out
}

// BottomContributors returns the worst limit symbols, worst first
func BottomContributors(attrs []Attribution, limit int) []Attribution {
	if limit > len(attrs) {
		limit = len(attrs)
	}
	out := make([]Attribution, 0, limit)
	for i := len(attrs) - 1; i >= len(attrs)-limit; i-- {
		out = append(out, attrs[i])
	}
	return out
}
