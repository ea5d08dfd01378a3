package allocation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskdesk/internal/contracts"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func pos(symbol string, dir contracts.Direction, volume, price float64, age time.Duration) contracts.Position {
	return contracts.Position{Symbol: symbol, Direction: dir, Volume: volume, PriceCurrent: price, OpenTime: now.Add(-age)}
}

func mixedBook() []contracts.Position {
	return []contracts.Position{
		pos("EURUSD", contracts.DirectionBuy, 1, 1.1, 10*time.Minute),
		pos("EURUSD", contracts.DirectionSell, 0.5, 1.1, 48*time.Hour),
		pos("GBPUSD", contracts.DirectionBuy, 2, 1.3, 45*time.Minute),
	}
}

func TestBySymbol(t *testing.T) {
	shares, exposure := BySymbol(mixedBook())

	require.Len(t, shares, 2)
	assert.Equal(t, "GBPUSD", shares[0].Name)
	assert.InDelta(t, 2.6/4.25*100, shares[0].Percent, 1e-9)
	assert.InDelta(t, 1.65/4.25*100, shares[1].Percent, 1e-9)

	assert.InDelta(t, 0.55, exposure["EURUSD"], 1e-9)
	assert.InDelta(t, 2.6, exposure["GBPUSD"], 1e-9)

	empty, _ := BySymbol(nil)
	assert.Empty(t, empty)
}

func TestByDirection(t *testing.T) {
	shares, pivot := ByDirection(mixedBook())

	require.Len(t, shares, 2)
	assert.Equal(t, "BUY", shares[0].Name)
	assert.InDelta(t, 3.7/4.25*100, shares[0].Percent, 1e-9)
	assert.Equal(t, "SELL", shares[1].Name)

	require.Len(t, pivot, 2)
	assert.Equal(t, "GBPUSD", pivot[0].Name)
	assert.Equal(t, "EURUSD", pivot[1].Name)
	assert.InDelta(t, 1.1, pivot[1].Buy, 1e-9)
	assert.InDelta(t, 0.55, pivot[1].Sell, 1e-9)
	assert.InDelta(t, 1.65, pivot[1].Total, 1e-9)
}

func TestByDuration(t *testing.T) {
	shares, pivot := ByDuration(mixedBook(), now)

	require.Len(t, shares, 3)
	assert.Equal(t, BucketScalping, shares[0].Name)
	assert.Equal(t, BucketIntraday, shares[1].Name)
	assert.Equal(t, BucketSwing, shares[2].Name)
	assert.InDelta(t, 0.55/4.25*100, shares[2].Percent, 1e-9)

	require.Len(t, pivot, 3)
	assert.InDelta(t, 0.55, pivot[2].Sell, 1e-9)
}

func TestDurationBucket(t *testing.T) {
	assert.Equal(t, BucketScalping, DurationBucket(29.9))
	assert.Equal(t, BucketIntraday, DurationBucket(30))
	assert.Equal(t, BucketDayTrading, DurationBucket(60))
	assert.Equal(t, BucketSwing, DurationBucket(1440))
}

func TestPortfolioExposure(t *testing.T) {
	e := PortfolioExposure(mixedBook())

	assert.InDelta(t, 3.7, e.Long, 1e-9)
	assert.InDelta(t, -0.55, e.Short, 1e-9)
	assert.InDelta(t, 3.15, e.Net, 1e-9)
	assert.InDelta(t, 4.25, e.Gross, 1e-9)
	assert.InDelta(t, 100, e.LongPct+e.ShortPct, 1e-9)

	assert.Equal(t, Exposure{}, PortfolioExposure(nil))
}

func TestPositionSizing(t *testing.T) {
	s := PositionSizing(mixedBook(), 10)

	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 26.0, s.MaxPct, 1e-9)
	assert.Equal(t, "GBPUSD", s.MaxSymbol)
	assert.InDelta(t, 5.5, s.MinPct, 1e-9)
	assert.InDelta(t, (11.0+5.5+26)/3, s.AvgPct, 1e-9)

	w := []float64{1.1 / 4.25, 0.55 / 4.25, 2.6 / 4.25}
	assert.InDelta(t, w[0]*w[0]+w[1]*w[1]+w[2]*w[2], s.Concentration, 1e-9)

	assert.Equal(t, Sizing{}, PositionSizing(mixedBook(), 0))
}

func balancedBook() []contracts.Position {
	return []contracts.Position{
		pos("EURUSD", contracts.DirectionBuy, 1, 1, 2*time.Hour),
		pos("GBPUSD", contracts.DirectionSell, 1, 1, 2*time.Hour),
		pos("USDJPY", contracts.DirectionBuy, 1, 1, 2*time.Hour),
		pos("AUDUSD", contracts.DirectionSell, 1, 1, 2*time.Hour),
	}
}

func TestRecommend(t *testing.T) {
	t.Run("no positions", func(t *testing.T) {
		recs := Recommend(nil, 1000, now, nil)
		assert.Equal(t, []string{"No open positions to analyse."}, recs)
	})

	t.Run("balanced", func(t *testing.T) {
		recs := Recommend(balancedBook(), 1000, now, nil)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "well balanced")
	})

	t.Run("concentrated oversized one-sided", func(t *testing.T) {
		recs := Recommend(mixedBook(), 10, now, nil)
		require.Len(t, recs, 3)
		assert.Contains(t, recs[0], "concentration")
		assert.Contains(t, recs[1], "GBPUSD (26.0% of equity)")
		assert.Contains(t, recs[2], "LONG: 87.1%")
	})

	t.Run("mixed styles", func(t *testing.T) {
		book := []contracts.Position{
			pos("EURUSD", contracts.DirectionBuy, 3, 1, 5*time.Minute),
			pos("GBPUSD", contracts.DirectionSell, 2, 1, 48*time.Hour),
			pos("USDJPY", contracts.DirectionBuy, 0.1, 1, 5*time.Minute),
			pos("AUDUSD", contracts.DirectionSell, 0.1, 1, 48*time.Hour),
		}
		recs := Recommend(book, 1000, now, nil)
		assert.Contains(t, recs[len(recs)-1], "Inconsistent mix")
	})

	t.Run("d-leverage above the style band", func(t *testing.T) {
		d := 12.0
		recs := Recommend(balancedBook(), 1000, now, &d)
		require.Len(t, recs, 1)
		assert.Contains(t, recs[0], "Swing")
		assert.Contains(t, recs[0], "9.75")

		d = 9
		recs = Recommend(balancedBook(), 1000, now, &d)
		assert.Contains(t, recs[0], "well balanced")
	})
}

func TestAnalyze(t *testing.T) {
	snap := &contracts.Snapshot{
		Connected: true,
		Account:   &contracts.Account{Equity: 10},
		Positions: mixedBook(),
	}

	r := Analyze(snap, now, nil)
	assert.Len(t, r.BySymbol, 2)
	assert.Len(t, r.ByDirection, 2)
	assert.Len(t, r.ByDuration, 3)
	assert.Equal(t, 3, r.Sizing.Count)
	assert.Len(t, r.Recommendations, 3)

	empty := Analyze(nil, now, nil)
	assert.Equal(t, []string{"No open positions to analyse."}, empty.Recommendations)
}
