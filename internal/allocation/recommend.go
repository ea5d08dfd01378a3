package allocation

import (
	"fmt"
	"time"

	"github.com/wonny/riskdesk/internal/contracts"
)

// Recommendation thresholds
const (
	maxConcentration   = 0.25 // HHI
	maxPositionPct     = 10.0 // % of equity
	maxOneSidedPct     = 80.0
	mixedScalpingShare = 50.0
	mixedSwingShare    = 30.0
)

// Report is the full allocation view of one snapshot
type Report struct {
	BySymbol        []Share            `json:"by_symbol"`
	SymbolExposure  map[string]float64 `json:"symbol_exposure"`
	ByDirection     []Share            `json:"by_direction"`
	SymbolDirection []DirectionSplit   `json:"symbol_direction"`
	ByDuration      []Share            `json:"by_duration"`
	DurationSplit   []DirectionSplit   `json:"duration_direction"`
	Exposure        Exposure           `json:"exposure"`
	Sizing          Sizing             `json:"sizing"`
	Recommendations []string           `json:"recommendations"`
}

// Analyze builds the allocation report. dLeverage is optional.
func Analyze(snap *contracts.Snapshot, now time.Time, dLeverage *float64) Report {
	var positions []contracts.Position
	var equity float64
	if snap != nil {
		positions = snap.Positions
		if snap.Account != nil {
			equity = snap.Account.Equity
		}
	}

	r := Report{
		Exposure:        PortfolioExposure(positions),
		Sizing:          PositionSizing(positions, equity),
		Recommendations: Recommend(positions, equity, now, dLeverage),
	}
	r.BySymbol, r.SymbolExposure = BySymbol(positions)
	r.ByDirection, r.SymbolDirection = ByDirection(positions)
	r.ByDuration, r.DurationSplit = ByDuration(positions, now)
	return r
}

// Recommend lists allocation advice in a fixed order: concentration, oversized
// position, one-sided exposure, mixed holding styles, D-Leverage for the style.
// A balanced portfolio gets a single confirmation message.
func Recommend(positions []contracts.Position, equity float64, now time.Time, dLeverage *float64) []string {
	if len(positions) == 0 {
		return []string{"No open positions to analyse."}
	}

	var recs []string

	sizing := PositionSizing(positions, equity)
	if sizing.Concentration > maxConcentration {
		recs = append(recs, "High position concentration. Consider diversifying further to reduce specific risk.")
	}
	if sizing.MaxPct > maxPositionPct {
		recs = append(recs, fmt.Sprintf(
			"Oversized position on %s (%.1f%% of equity). Consider reducing it to lower risk.",
			sizing.MaxSymbol, sizing.MaxPct))
	}

	exp := PortfolioExposure(positions)
	switch {
	case exp.LongPct > maxOneSidedPct:
		recs = append(recs, fmt.Sprintf(
			"Strongly one-sided exposure (LONG: %.1f%%). Consider adding positions in the opposite direction to reduce directional risk.", exp.LongPct))
	case exp.ShortPct > maxOneSidedPct:
		recs = append(recs, fmt.Sprintf(
			"Strongly one-sided exposure (SHORT: %.1f%%). Consider adding positions in the opposite direction to reduce directional risk.", exp.ShortPct))
	}

	durations, _ := ByDuration(positions, now)
	var scalping, swing float64
	for _, s := range durations {
		switch s.Name {
		case BucketScalping:
			scalping = s.Percent
		case BucketSwing:
			swing = s.Percent
		}
	}
	if scalping > mixedScalpingShare && swing > mixedSwingShare {
		recs = append(recs, "Inconsistent mix of trading styles: short-term scalping and long-term swing positions at the same time. "+
			"Consider focusing on a more consistent style.")
	}

	if dLeverage != nil {
		var total float64
		for _, p := range positions {
			total += p.HoldingMinutes(now)
		}
		avg := total / float64(len(positions))
		style, _ := contracts.ClassifyStyle(&avg)
		if limit := style.Band().OptimalMax; *dLeverage > limit {
			recs = append(recs, fmt.Sprintf(
				"D-Leverage too high (%.2f) for a %s trading style. Keep D-Leverage below %.2f for this style.",
				*dLeverage, style.Label(), limit))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Portfolio allocation looks well balanced. No specific recommendation at this stage.")
	}
	return recs
}
