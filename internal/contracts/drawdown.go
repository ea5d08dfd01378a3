package contracts

import "time"

// DrawdownEpisode is one peak-to-recovery drawdown.
// Recovery is nil while the episode is still active.
type DrawdownEpisode struct {
	PeakDate       time.Time  `json:"peak_date"`
	PeakValue      float64    `json:"peak_value"`
	ThresholdDate  time.Time  `json:"threshold_date"` // first point below the threshold
	TroughDate     time.Time  `json:"trough_date"`
	TroughValue    float64    `json:"trough_value"`
	RecoveryDate   *time.Time `json:"recovery_date"`
	RecoveryValue  float64    `json:"recovery_value"`
	MaxDrawdownPct float64    `json:"max_drawdown_pct"` // ≤ 0

	DrawdownAmountPct float64 `json:"drawdown_amount_pct"`
	RecoveryAmountPct float64 `json:"recovery_amount_pct"`

	DrawdownDays int `json:"drawdown_days"`
	RecoveryDays int `json:"recovery_days"`
	TotalDays    int `json:"total_days"`

	PainIndex     float64 `json:"pain_index"`
	RecoveryRatio float64 `json:"recovery_ratio"`
	Active        bool    `json:"active"`
}
