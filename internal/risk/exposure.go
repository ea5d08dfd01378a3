package risk

import (
	"math"
	"sort"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

// minPriceBars is the shortest close history used for a symbol's volatility
const minPriceBars = 5

// DLeverage is volume·contractSize/equity; 0 when equity ≤ 0.
// A non-positive contract size falls back to DefaultContractSize.
func DLeverage(totalVolume, equity, contractSize float64) float64 {
	if equity <= 0 {
		return 0
	}
	if contractSize <= 0 {
		contractSize = DefaultContractSize
	}
	return totalVolume * contractSize / equity
}

// RiskConcentration computes HHI, top-3 share and max share over absolute exposures.
// A zero total yields all zeros.
func RiskConcentration(exposureByBucket map[string]float64) Concentration {
	var total float64
	shares := make([]float64, 0, len(exposureByBucket))
	for _, v := range exposureByBucket {
		total += math.Abs(v)
	}
	if total == 0 {
		return Concentration{}
	}

	var hhi float64
	for _, v := range exposureByBucket {
		s := math.Abs(v) / total
		hhi += s * s
		shares = append(shares, s*100)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(shares)))

	var top float64
	for i := 0; i < len(shares) && i < 3; i++ {
		top += shares[i]
	}

	return Concentration{HHI: hhi, TopThreePct: top, MaxExposurePct: shares[0]}
}

// BuildCorrelationMatrix computes pairwise correlations of per-symbol return series.
// Series are aligned on their most recent common length. Symbols are sorted.
func BuildCorrelationMatrix(returnsBySymbol map[string][]float64) CorrelationMatrix {
	symbols := make([]string, 0, len(returnsBySymbol))
	minLen := -1
	for sym, r := range returnsBySymbol {
		symbols = append(symbols, sym)
		if minLen < 0 || len(r) < minLen {
			minLen = len(r)
		}
	}
	sort.Strings(symbols)

	m := CorrelationMatrix{Symbols: symbols, Values: make([][]float64, len(symbols))}
	for i := range symbols {
		m.Values[i] = make([]float64, len(symbols))
		m.Values[i][i] = 1
	}
	if minLen < 2 {
		return m
	}

	tail := func(sym string) []float64 {
		r := returnsBySymbol[sym]
		return r[len(r)-minLen:]
	}
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			c := stats.Correlation(tail(symbols[i]), tail(symbols[j]))
			m.Values[i][j] = c
			m.Values[j][i] = c
		}
	}
	return m
}

// HighlyCorrelated lists distinct pairs with |correlation| above threshold
func (m CorrelationMatrix) HighlyCorrelated(threshold float64) []CorrelatedPair {
	var pairs []CorrelatedPair
	for i := 0; i < len(m.Symbols); i++ {
		for j := i + 1; j < len(m.Symbols); j++ {
			if math.Abs(m.Values[i][j]) > threshold {
				pairs = append(pairs, CorrelatedPair{A: m.Symbols[i], B: m.Symbols[j], Correlation: m.Values[i][j]})
			}
		}
	}
	return pairs
}

// AssessPositions computes exposure-weighted daily volatility of open positions,
// scaled by total exposure over equity, and the matching 95% monthly VaR
// (volatility·1.65·√22). Positions without at least five closes are skipped.
func AssessPositions(snap *contracts.Snapshot) PositionsRisk {
	if !snap.Ready() || len(snap.Positions) == 0 || snap.Account.Equity <= 0 {
		return PositionsRisk{}
	}

	type contribution struct{ exposure, vol float64 }
	var (
		parts []contribution
		total float64
	)
	for _, p := range snap.Positions {
		closes := snap.PriceHistory[p.Symbol]
		if len(closes) < minPriceBars {
			continue
		}
		vol := stats.StdDev(stats.Returns(closes)) * 100
		exposure := p.Exposure(snap.ContractSize(p.Symbol))
		total += exposure
		parts = append(parts, contribution{exposure: exposure, vol: vol})
	}
	if total <= 0 || len(parts) == 0 {
		return PositionsRisk{}
	}

	var weighted float64
	for _, c := range parts {
		weighted += c.exposure / total * c.vol
	}
	vol := weighted * total / snap.Account.Equity

	return PositionsRisk{
		TotalExposure: total,
		VolatilityPct: vol,
		MonthlyVaRPct: vol * 1.65 * math.Sqrt(22),
	}
}

// SymbolReturns converts the snapshot's close history into return series
func SymbolReturns(snap *contracts.Snapshot) map[string][]float64 {
	out := make(map[string][]float64, len(snap.PriceHistory))
	for sym, closes := range snap.PriceHistory {
		if len(closes) >= minPriceBars {
			out[sym] = stats.Returns(closes)
		}
	}
	return out
}
