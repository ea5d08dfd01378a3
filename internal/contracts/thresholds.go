package contracts

// AlertThresholds configures the alerts engine. Externally owned; read every cycle.
type AlertThresholds struct {
	MarginPct           float64 `json:"margin_pct" yaml:"margin_pct"`
	DailyLoss           float64 `json:"daily_loss" yaml:"daily_loss"` // negative percent
	Drawdown            float64 `json:"drawdown" yaml:"drawdown"`     // negative percent
	DLeverage           float64 `json:"d_leverage" yaml:"d_leverage"`
	VaRMonthly          float64 `json:"var_monthly" yaml:"var_monthly"`
	Correlation         float64 `json:"correlation" yaml:"correlation"`
	SectorConcentration float64 `json:"sector_concentration" yaml:"sector_concentration"`
}

// DefaultAlertThresholds returns the factory defaults
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		MarginPct:           50,
		DailyLoss:           -5,
		Drawdown:            -15,
		DLeverage:           16.25,
		VaRMonthly:          12,
		Correlation:         0.8,
		SectorConcentration: 30,
	}
}

// TradingStyle classifies an account by average holding time
type TradingStyle string

const (
	StyleScalping TradingStyle = "scalping"
	StyleIntraday TradingStyle = "intraday"
	StyleSwing    TradingStyle = "swing"
)

// StyleBand holds the D-Leverage band for one style
type StyleBand struct {
	SubOptimal float64 `json:"sub_optimal"`
	OptimalMax float64 `json:"optimal_max"`
}

// Midpoint is the middle of the optimal band
func (b StyleBand) Midpoint() float64 {
	return (b.SubOptimal + b.OptimalMax) / 2
}

var styleBands = map[TradingStyle]StyleBand{
	StyleScalping: {SubOptimal: 10, OptimalMax: 16.25},
	StyleIntraday: {SubOptimal: 8, OptimalMax: 13},
	StyleSwing:    {SubOptimal: 5, OptimalMax: 9.75},
}

// Band returns the D-Leverage band; unknown styles fall back to swing
func (s TradingStyle) Band() StyleBand {
	if b, ok := styleBands[s]; ok {
		return b
	}
	return styleBands[StyleSwing]
}

// Valid reports whether s is one of the three known styles
func (s TradingStyle) Valid() bool {
	_, ok := styleBands[s]
	return ok
}

// Label returns the display name
func (s TradingStyle) Label() string {
	switch s {
	case StyleScalping:
		return "Scalping"
	case StyleIntraday:
		return "Intraday"
	default:
		return "Swing"
	}
}

// ClassifyStyle maps average holding minutes to a style.
// A nil duration yields swing with determined=false.
func ClassifyStyle(avgMinutes *float64) (style TradingStyle, determined bool) {
	if avgMinutes == nil {
		return StyleSwing, false
	}
	switch {
	case *avgMinutes < 30:
		return StyleScalping, true
	case *avgMinutes < 60:
		return StyleIntraday, true
	default:
		return StyleSwing, true
	}
}
