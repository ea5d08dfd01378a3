package risk

import (
	"math"
	"math/rand"

	"github.com/wonny/riskdesk/internal/stats"
)

// =============================================================================
// VaR Methods (strategy)
// =============================================================================

// VaRMethod estimates the signed single-period return quantile at (1-confidence).
// ValueAtRisk negates and scales it, so implementations never deal with sign conventions.
type VaRMethod interface {
	Name() string
	Quantile(returns []float64, confidence float64) float64
}

// Parametric 정규분포 가정: mean + z·std, z = Φ⁻¹(1-c)
type Parametric struct{}

// Name implements VaRMethod
func (Parametric) Name() string { return "parametric" }

// Quantile implements VaRMethod
func (Parametric) Quantile(returns []float64, confidence float64) float64 {
	z := stats.NormalQuantile(1 - confidence)
	return stats.Mean(returns) + z*stats.StdDev(returns)
}

// Historical 과거 수익률의 경험적 분위수
type Historical struct{}

// Name implements VaRMethod
func (Historical) Name() string { return "historical" }

// Quantile implements VaRMethod
func (Historical) Quantile(returns []float64, confidence float64) float64 {
	return stats.Quantile(returns, 1-confidence)
}

// MonteCarlo draws Normal(mean, std) samples from a fixed seed and takes their percentile.
// Same seed and input give the same estimate.
type MonteCarlo struct {
	Simulations int
	Seed        int64
}

// Name implements VaRMethod
func (MonteCarlo) Name() string { return "monte_carlo" }

// Quantile implements VaRMethod
func (m MonteCarlo) Quantile(returns []float64, confidence float64) float64 {
	return stats.Quantile(m.draw(returns), 1-confidence)
}

func (m MonteCarlo) draw(returns []float64) []float64 {
	n := m.Simulations
	if n <= 0 {
		n = DefaultMonteCarloConfig().NumSimulations
	}
	mean := stats.Mean(returns)
	std := stats.StdDev(returns)

	rng := rand.New(rand.NewSource(m.Seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + std*rng.NormFloat64()
	}
	return out
}

// MethodByName resolves "parametric", "historical" or "monte_carlo"
func MethodByName(name string, mc MonteCarloConfig) (VaRMethod, bool) {
	switch name {
	case "parametric":
		return Parametric{}, true
	case "historical":
		return Historical{}, true
	case "monte_carlo", "montecarlo", "mc":
		return MonteCarlo{Simulations: mc.NumSimulations, Seed: mc.Seed}, true
	}
	return nil, false
}

// =============================================================================
// VaR / ES (Pure)
// =============================================================================

// ValueAtRisk returns -(quantile)·√periodDays·100.
// Fewer than two returns yields 0.
func ValueAtRisk(returns []float64, confidence float64, periodDays int, method VaRMethod) float64 {
	if len(returns) < 2 || method == nil {
		return 0
	}
	if periodDays < 1 {
		periodDays = 1
	}
	q := method.Quantile(returns, confidence)
	return -q * math.Sqrt(float64(periodDays)) * 100
}

// ExpectedShortfall is the mean of returns at or below the (1-confidence)
// empirical quantile, negated and scaled like ValueAtRisk.
// Fewer than two returns or an empty tail yields 0.
func ExpectedShortfall(returns []float64, confidence float64, periodDays int) float64 {
	if len(returns) < 2 {
		return 0
	}
	if periodDays < 1 {
		periodDays = 1
	}
	threshold := stats.Quantile(returns, 1-confidence)

	var sum float64
	var n int
	for _, r := range returns {
		if r <= threshold {
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return -(sum / float64(n)) * math.Sqrt(float64(periodDays)) * 100
}
