package risk

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/riskdesk/internal/stats"
)

// MonteCarloSimulator Monte Carlo 시뮬레이터 (정규분포, 고정 시드)
type MonteCarloSimulator struct {
	config MonteCarloConfig
}

// NewMonteCarloSimulator 새 시뮬레이터 생성
func NewMonteCarloSimulator(config MonteCarloConfig) *MonteCarloSimulator {
	return &MonteCarloSimulator{config: config}
}

// Simulate draws NumSimulations holding-period returns from Normal(mean·T, std·√T)
// and reports VaR/ES for every configured confidence level plus return percentiles.
func (mc *MonteCarloSimulator) Simulate(ctx context.Context, returns []float64) (*MonteCarloResult, error) {
	if err := ValidateConfig(mc.config); err != nil {
		return nil, err
	}
	if len(returns) < mc.config.MinSamples {
		return nil, fmt.Errorf("%w: got %d, need %d", ErrInsufficientData, len(returns), mc.config.MinSamples)
	}

	mean := stats.Mean(returns)
	std := stats.StdDev(returns)
	t := float64(mc.config.HoldingPeriod)

	rng := rand.New(rand.NewSource(mc.config.Seed))
	sims := make([]float64, mc.config.NumSimulations)
	for i := range sims {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		sims[i] = mean*t + std*math.Sqrt(t)*rng.NormFloat64()
	}

	result := &MonteCarloResult{
		RunID:            uuid.New().String(),
		Config:           mc.config,
		InputSampleCount: len(returns),
		InputMean:        mean,
		InputStdDev:      std,
		SimulatedMean:    stats.Mean(sims),
		SimulatedStdDev:  stats.StdDev(sims),
		Percentiles:      make(map[int]float64),
		CreatedAt:        time.Now(),
	}

	for _, c := range mc.config.ConfidenceLevels {
		result.Levels = append(result.Levels, VaRResult{
			Method:     MonteCarlo{}.Name(),
			Confidence: c,
			PeriodDays: mc.config.HoldingPeriod,
			// simulated values already carry the holding period
			VaR: -stats.Quantile(sims, 1-c) * 100,
			ES:  ExpectedShortfall(sims, c, 1),
		})
	}

	for _, p := range []int{1, 5, 10, 25, 50, 75, 90, 95, 99} {
		result.Percentiles[p] = stats.Quantile(sims, float64(p)/100) * 100
	}

	return result, nil
}

// ValidateConfig 설정 유효성 검사
func ValidateConfig(config MonteCarloConfig) error {
	if config.NumSimulations <= 0 {
		return fmt.Errorf("%w: NumSimulations must be > 0", ErrInvalidConfig)
	}
	if config.HoldingPeriod <= 0 {
		return fmt.Errorf("%w: HoldingPeriod must be > 0", ErrInvalidConfig)
	}
	if config.MinSamples < 2 {
		return fmt.Errorf("%w: MinSamples must be >= 2", ErrInvalidConfig)
	}
	if len(config.ConfidenceLevels) == 0 {
		return fmt.Errorf("%w: ConfidenceLevels cannot be empty", ErrInvalidConfig)
	}
	for _, cl := range config.ConfidenceLevels {
		if cl <= 0 || cl >= 1 {
			return fmt.Errorf("%w: ConfidenceLevel must be between 0 and 1", ErrInvalidConfig)
		}
	}
	return nil
}
