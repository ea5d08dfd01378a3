package risk

import "time"

// =============================================================================
// Conventions
// =============================================================================

// VaRConvention VaR 부호 규약
// ⭐ SSOT: 손실을 양수 퍼센트로 표현 (VaR=5 → 5% 손실 가능)
// A negative VaR means the chosen quantile is still a gain.
const VaRConvention = "loss_positive_pct"

// DefaultContractSize is the lot size used when the broker does not report one
const DefaultContractSize = 100000.0

// =============================================================================
// VaR Types
// =============================================================================

// VaRResult VaR 계산 결과 (percent, loss positive)
type VaRResult struct {
	Method     string  `json:"method"`
	Confidence float64 `json:"confidence"`
	PeriodDays int     `json:"period_days"`
	VaR        float64 `json:"var"`
	ES         float64 `json:"es"`
}

// =============================================================================
// Monte Carlo Types
// =============================================================================

// MonteCarloConfig Monte Carlo 시뮬레이션 설정
// ⭐ 재현성: Seed가 같으면 결과도 같음
type MonteCarloConfig struct {
	NumSimulations   int       `json:"num_simulations"`
	Seed             int64     `json:"seed"`
	HoldingPeriod    int       `json:"holding_period"` // days, scales by √T
	ConfidenceLevels []float64 `json:"confidence_levels"`
	MinSamples       int       `json:"min_samples"`
}

// DefaultMonteCarloConfig 기본 Monte Carlo 설정
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{
		NumSimulations:   10000,
		Seed:             42,
		HoldingPeriod:    1,
		ConfidenceLevels: []float64{0.95, 0.99},
		MinSamples:       2,
	}
}

// MonteCarloResult Monte Carlo 시뮬레이션 결과
type MonteCarloResult struct {
	RunID            string              `json:"run_id"`
	Config           MonteCarloConfig    `json:"config"`
	InputSampleCount int                 `json:"input_sample_count"`
	InputMean        float64             `json:"input_mean"`
	InputStdDev      float64             `json:"input_std_dev"`
	SimulatedMean    float64             `json:"simulated_mean"`
	SimulatedStdDev  float64             `json:"simulated_std_dev"`
	Levels           []VaRResult         `json:"levels"`
	Percentiles      map[int]float64     `json:"percentiles"` // return percentiles in percent
	CreatedAt        time.Time           `json:"created_at"`
}

// =============================================================================
// Drawdown Types
// =============================================================================

// MaxDrawdown is the deepest drawdown of a series and the peak preceding it
type MaxDrawdown struct {
	DrawdownPct  float64    `json:"drawdown_pct"` // ≤ 0
	PeakDate     *time.Time `json:"peak_date"`
	TroughDate   *time.Time `json:"trough_date"`
	DurationDays int        `json:"duration_days"`
}

// ProfileEpisode is one threshold-crossing drawdown in a DrawdownProfile
type ProfileEpisode struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	MaxDrawdown  float64   `json:"max_drawdown"`
	DurationDays int       `json:"duration_days"`
	Recovered    bool      `json:"recovered"`
}

// DrawdownProfile summarises threshold-crossing drawdowns
type DrawdownProfile struct {
	Count       int              `json:"count"`
	AvgDrawdown float64          `json:"avg_drawdown"`
	AvgDuration float64          `json:"avg_duration"`
	MaxDrawdown float64          `json:"max_drawdown"`
	MaxDuration int              `json:"max_duration"`
	Episodes    []ProfileEpisode `json:"drawdowns"`
}

// =============================================================================
// Exposure Types
// =============================================================================

// Concentration 집중도 지표
type Concentration struct {
	HHI            float64 `json:"hhi"`               // 0..1
	TopThreePct    float64 `json:"top_concentration"` // percent
	MaxExposurePct float64 `json:"max_exposure_pct"`  // percent
}

// CorrelationMatrix holds pairwise Pearson correlations of symbol returns
type CorrelationMatrix struct {
	Symbols []string    `json:"symbols"`
	Values  [][]float64 `json:"values"`
}

// CorrelatedPair is a symbol pair whose correlation exceeds a threshold
type CorrelatedPair struct {
	A           string  `json:"a"`
	B           string  `json:"b"`
	Correlation float64 `json:"correlation"`
}

// PositionsRisk is the volatility view of open positions
type PositionsRisk struct {
	TotalExposure float64 `json:"total_exposure"`
	VolatilityPct float64 `json:"volatility_pct"`  // daily, percent of equity
	MonthlyVaRPct float64 `json:"monthly_var_pct"` // 95%, 22 trading days
}

// Scenario 스트레스 시나리오
type Scenario struct {
	Name   string             `json:"name"`
	Shocks map[string]float64 `json:"shocks"` // symbol → return shock; "*" applies to all
}

// DefaultScenarios are broad market shocks applied to every symbol
func DefaultScenarios() []Scenario {
	return []Scenario{
		{Name: "shock -5%", Shocks: map[string]float64{"*": -0.05}},
		{Name: "shock -10%", Shocks: map[string]float64{"*": -0.10}},
		{Name: "shock -20%", Shocks: map[string]float64{"*": -0.20}},
	}
}
