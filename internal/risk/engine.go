package risk

import (
	"context"
	"errors"

	"github.com/wonny/riskdesk/internal/contracts"
)

// =============================================================================
// Engine - 순수 계산기
// =============================================================================

// Engine 리스크 엔진 (순수 계산기)
// ⭐ SSOT: 데이터 수집은 broker, 조립은 audit 레이어에서 담당
// internal/risk는 스냅샷에 대한 순수 계산만 담당
type Engine struct {
	mc MonteCarloConfig
}

var (
	ErrInsufficientData = errors.New("insufficient data for simulation")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// NewEngine creates an engine with the default Monte Carlo settings (10k draws, seed 42)
func NewEngine() *Engine {
	return &Engine{mc: DefaultMonteCarloConfig()}
}

// NewEngineWithConfig creates an engine with explicit Monte Carlo settings
func NewEngineWithConfig(mc MonteCarloConfig) *Engine {
	return &Engine{mc: mc}
}

// MonteCarloConfig returns the engine's simulation settings
func (e *Engine) MonteCarloConfig() MonteCarloConfig {
	return e.mc
}

// =============================================================================
// VaR / ES
// =============================================================================

// VaR computes VaR with the given method and the matching historical ES
func (e *Engine) VaR(returns []float64, confidence float64, periodDays int, method VaRMethod) VaRResult {
	if periodDays < 1 {
		periodDays = 1
	}
	return VaRResult{
		Method:     method.Name(),
		Confidence: confidence,
		PeriodDays: periodDays,
		VaR:        ValueAtRisk(returns, confidence, periodDays, method),
		ES:         ExpectedShortfall(returns, confidence, periodDays),
	}
}

// VaRAllMethods evaluates parametric, historical and Monte Carlo VaR in that order
func (e *Engine) VaRAllMethods(returns []float64, confidence float64, periodDays int) []VaRResult {
	methods := []VaRMethod{
		Parametric{},
		Historical{},
		MonteCarlo{Simulations: e.mc.NumSimulations, Seed: e.mc.Seed},
	}
	out := make([]VaRResult, 0, len(methods))
	for _, m := range methods {
		out = append(out, e.VaR(returns, confidence, periodDays, m))
	}
	return out
}

// MonteCarlo runs the full simulation report for a return series
func (e *Engine) MonteCarlo(ctx context.Context, returns []float64) (*MonteCarloResult, error) {
	return NewMonteCarloSimulator(e.mc).Simulate(ctx, returns)
}

// =============================================================================
// Exposure
// =============================================================================

// DLeverage of a snapshot: total lots · default contract size / equity
func (e *Engine) DLeverage(snap *contracts.Snapshot) float64 {
	if !snap.Ready() {
		return 0
	}
	return DLeverage(snap.TotalVolume(), snap.Account.Equity, DefaultContractSize)
}

// StressTest 스트레스 시나리오 테스트
// exposures: symbol → signed notional; returns scenario → P&L as percent of equity
func (e *Engine) StressTest(exposures map[string]float64, equity float64, scenarios []Scenario) map[string]float64 {
	results := make(map[string]float64, len(scenarios))
	if equity <= 0 {
		return results
	}

	for _, scenario := range scenarios {
		var pnl float64
		for symbol, exposure := range exposures {
			shock, ok := scenario.Shocks[symbol]
			if !ok {
				if shock, ok = scenario.Shocks["*"]; !ok {
					continue
				}
			}
			pnl += exposure * shock
		}
		results[scenario.Name] = pnl / equity * 100
	}

	return results
}
