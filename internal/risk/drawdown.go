package risk

import (
	"github.com/wonny/riskdesk/internal/contracts"
	"github.com/wonny/riskdesk/internal/stats"
)

// minProfilePoints is the shortest series DrawdownProfile will analyse
const minProfilePoints = 10

func days(from, to contracts.EquityPoint) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// MaximumDrawdown finds the global trough of the drawdown series and the
// highest point preceding it. Fewer than two points yields the zero value.
func MaximumDrawdown(equity contracts.EquitySeries) MaxDrawdown {
	if len(equity) < 2 {
		return MaxDrawdown{}
	}
	values := equity.Values()
	dd := stats.DrawdownSeries(values)

	trough := stats.MinIndex(dd)
	peak := stats.MaxIndex(values[:trough+1])

	peakDate := equity[peak].Time
	troughDate := equity[trough].Time
	return MaxDrawdown{
		DrawdownPct:  dd[trough],
		PeakDate:     &peakDate,
		TroughDate:   &troughDate,
		DurationDays: days(equity[peak], equity[trough]),
	}
}

// AnalyzeDrawdownProfile walks the drawdown series once, opening an episode when the
// drawdown falls strictly below thresholdPct and closing it on a return to ≥ 0.
// An episode still open at the end is closed at the last point.
// Fewer than ten points yields nil.
func AnalyzeDrawdownProfile(equity contracts.EquitySeries, thresholdPct float64) *DrawdownProfile {
	if len(equity) < minProfilePoints {
		return nil
	}
	dd := stats.DrawdownSeries(equity.Values())

	profile := &DrawdownProfile{Episodes: []ProfileEpisode{}}
	inDrawdown := false
	var start int
	var worst float64

	for i, v := range dd {
		switch {
		case !inDrawdown && v < thresholdPct:
			inDrawdown, start, worst = true, i, v
		case inDrawdown && v < worst:
			worst = v
		case inDrawdown && v >= 0:
			inDrawdown = false
			profile.Episodes = append(profile.Episodes, ProfileEpisode{
				Start:        equity[start].Time,
				End:          equity[i].Time,
				MaxDrawdown:  worst,
				DurationDays: days(equity[start], equity[i]),
				Recovered:    true,
			})
		}
	}
	if inDrawdown {
		last := len(equity) - 1
		profile.Episodes = append(profile.Episodes, ProfileEpisode{
			Start:        equity[start].Time,
			End:          equity[last].Time,
			MaxDrawdown:  worst,
			DurationDays: days(equity[start], equity[last]),
		})
	}

	profile.Count = len(profile.Episodes)
	if profile.Count == 0 {
		return profile
	}

	var sumDD, sumDur float64
	for i, e := range profile.Episodes {
		sumDD += e.MaxDrawdown
		sumDur += float64(e.DurationDays)
		if i == 0 || e.MaxDrawdown < profile.MaxDrawdown {
			profile.MaxDrawdown = e.MaxDrawdown
		}
		if e.DurationDays > profile.MaxDuration {
			profile.MaxDuration = e.DurationDays
		}
	}
	profile.AvgDrawdown = sumDD / float64(profile.Count)
	profile.AvgDuration = sumDur / float64(profile.Count)

	return profile
}
