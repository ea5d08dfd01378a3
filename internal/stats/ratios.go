package stats

import "math"

// PeriodRate converts an annual rate into a per-period rate: (1+R)^(1/N) - 1
func PeriodRate(annual float64, periodsPerYear int) float64 {
	if periodsPerYear <= 0 {
		return 0
	}
	return math.Pow(1+annual, 1/float64(periodsPerYear)) - 1
}

func excess(returns []float64, rf float64) []float64 {
	out := make([]float64, len(returns))
	for i, r := range returns {
		out[i] = r - rf
	}
	return out
}

// Sharpe returns mean(excess)/std(excess)·√N. Empty input or zero deviation yields 0.
func Sharpe(returns []float64, riskFreeAnnual float64, periodsPerYear int) float64 {
	if len(returns) == 0 {
		return 0
	}
	ex := excess(returns, PeriodRate(riskFreeAnnual, periodsPerYear))
	std := StdDev(ex)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return Mean(ex) / std * math.Sqrt(float64(periodsPerYear))
}

// Sortino uses only negative excess returns for the deviation:
// dd = sqrt(Σneg²/len(neg))·√N, sortino = mean(excess)·N/dd.
// No negative excess returns yields the unbounded variant; empty input yields 0.
func Sortino(returns []float64, riskFreeAnnual float64, periodsPerYear int) Ratio {
	if len(returns) == 0 {
		return Finite(0)
	}
	ex := excess(returns, PeriodRate(riskFreeAnnual, periodsPerYear))

	var sumSq float64
	var count int
	for _, r := range ex {
		if r < 0 {
			sumSq += r * r
			count++
		}
	}
	if count == 0 {
		return Unbounded()
	}

	n := float64(periodsPerYear)
	downside := math.Sqrt(sumSq/float64(count)) * math.Sqrt(n)
	if downside == 0 {
		return Finite(0)
	}
	return Finite(Mean(ex) * n / downside)
}

// Calmar is annualized mean return over |max drawdown| (drawdown as a fraction).
// A zero drawdown yields 0.
func Calmar(returns []float64, maxDrawdownFrac float64, periodsPerYear int) float64 {
	if len(returns) == 0 || maxDrawdownFrac == 0 {
		return 0
	}
	return Mean(returns) * float64(periodsPerYear) / math.Abs(maxDrawdownFrac)
}

// WinRatio is the percentage of strictly positive returns
func WinRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns)) * 100
}
