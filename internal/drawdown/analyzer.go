// Package drawdown identifies drawdown episodes and drawdown-based indices of an equity curve.
package drawdown

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

const (
	minEpisodePoints     = 5
	minChangePointPoints = 30
	shortWindow          = 10
	longWindow           = 30
)

// Config holds the analyzer parameters
type Config struct {
	ThresholdPct float64 // episode opens strictly below this drawdown, e.g. -5
	UlcerPeriod  int     // rolling peak window for the ulcer index
	Sensitivity  float64 // minimum |short-long| for a change point
}

// DefaultConfig returns threshold -5%, ulcer period 14, sensitivity 0.05
func DefaultConfig() Config {
	return Config{ThresholdPct: -5, UlcerPeriod: 14, Sensitivity: 0.05}
}

// Analyzer is stateless; every method is a pure function of its input
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer with the given configuration
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Config returns the analyzer configuration
func (a *Analyzer) Config() Config {
	return a.cfg
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// IdentifyDrawdowns runs the episode state machine over the drawdown series.
//
// An episode opens when the drawdown drops strictly below the threshold and is
// anchored at the running peak that preceded it. It closes at the first point
// whose drawdown is back to ≥ 0. An episode still open at the end of the series
// is reported as active with no recovery date.
//
// Episodes are returned sorted by MaxDrawdownPct ascending (deepest first).
// Fewer than five points yields an empty slice.
func (a *Analyzer) IdentifyDrawdowns(equity contracts.EquitySeries) []contracts.DrawdownEpisode {
	episodes := []contracts.DrawdownEpisode{}
	if len(equity) < minEpisodePoints {
		return episodes
	}

	values := equity.Values()
	dd := stats.DrawdownSeries(values)

	var (
		inDrawdown bool
		peak       int // index of the running peak
		crossing   int
		trough     int
	)

	for i, v := range dd {
		if !inDrawdown {
			if v >= 0 {
				peak = i
				continue
			}
			if v < a.cfg.ThresholdPct {
				inDrawdown, crossing, trough = true, i, i
			}
			continue
		}

		if v < dd[trough] {
			trough = i
			continue
		}
		if v >= 0 {
			episodes = append(episodes, a.episode(equity, dd, peak, crossing, trough, i))
			inDrawdown = false
			peak = i
		}
	}

	if inDrawdown {
		episodes = append(episodes, a.episode(equity, dd, peak, crossing, trough, -1))
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].MaxDrawdownPct < episodes[j].MaxDrawdownPct
	})
	return episodes
}

// episode builds the record; recovery < 0 marks an active episode measured to the last point
func (a *Analyzer) episode(equity contracts.EquitySeries, dd []float64, peak, crossing, trough, recovery int) contracts.DrawdownEpisode {
	active := recovery < 0
	end := recovery
	if active {
		end = len(equity) - 1
	}

	peakPt, troughPt, endPt := equity[peak], equity[trough], equity[end]

	e := contracts.DrawdownEpisode{
		PeakDate:       peakPt.Time,
		PeakValue:      peakPt.Equity,
		ThresholdDate:  equity[crossing].Time,
		TroughDate:     troughPt.Time,
		TroughValue:    troughPt.Equity,
		RecoveryValue:  endPt.Equity,
		MaxDrawdownPct: dd[trough],
		DrawdownDays:   daysBetween(peakPt.Time, troughPt.Time),
		TotalDays:      daysBetween(peakPt.Time, endPt.Time),
		Active:         active,
	}
	if !active {
		recoveryDate := endPt.Time
		e.RecoveryDate = &recoveryDate
		e.RecoveryDays = daysBetween(troughPt.Time, endPt.Time)
	}

	e.DrawdownAmountPct = (troughPt.Equity - peakPt.Equity) / peakPt.Equity * 100
	if troughPt.Equity != 0 {
		e.RecoveryAmountPct = (endPt.Equity - troughPt.Equity) / troughPt.Equity * 100
	}
	e.PainIndex = math.Abs(e.MaxDrawdownPct) * float64(e.TotalDays) / 365
	if e.DrawdownAmountPct != 0 {
		e.RecoveryRatio = math.Abs(e.RecoveryAmountPct / e.DrawdownAmountPct)
	}
	return e
}

// UlcerIndex is sqrt(mean(dd²)) where dd is measured against the highest value
// of the trailing UlcerPeriod points. A series shorter than the period yields 0.
func (a *Analyzer) UlcerIndex(equity contracts.EquitySeries) float64 {
	period := a.cfg.UlcerPeriod
	if period <= 0 || len(equity) < period {
		return 0
	}
	dd := stats.RollingDrawdownSeries(equity.Values(), period)

	var sumSq float64
	for _, v := range dd {
		sumSq += v * v
	}
	return math.Abs(math.Sqrt(sumSq / float64(len(dd))))
}

// PainIndex is the mean absolute drawdown over the whole series, or over the
// trailing period points when 0 < period < len. Fewer than two points yields 0.
func (a *Analyzer) PainIndex(equity contracts.EquitySeries, period int) float64 {
	if len(equity) < 2 {
		return 0
	}
	values := equity.Values()
	if period > 0 && period < len(values) {
		values = values[len(values)-period:]
	}

	var sum float64
	for _, v := range stats.DrawdownSeries(values) {
		sum += math.Abs(v)
	}
	return sum / float64(len(values))
}

// CurrentDrawdown is the drawdown of the last point, 0 on an empty series
func CurrentDrawdown(equity contracts.EquitySeries) float64 {
	if len(equity) == 0 {
		return 0
	}
	dd := stats.DrawdownSeries(equity.Values())
	return dd[len(dd)-1]
}
