package contracts

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultContractSize is the standard FX lot size used for D-Leverage
const DefaultContractSize = 100000.0

// Account is the broker account summary
type Account struct {
	Login       int64   `json:"login" yaml:"login"`
	Currency    string  `json:"currency" yaml:"currency"`
	Balance     float64 `json:"balance" yaml:"balance"`
	Equity      float64 `json:"equity" yaml:"equity"`
	Margin      float64 `json:"margin" yaml:"margin"`
	MarginFree  float64 `json:"margin_free" yaml:"margin_free"`
	MarginLevel float64 `json:"margin_level" yaml:"margin_level"`
	Profit      float64 `json:"profit" yaml:"profit"`
}

// Deal is a closed trade from account history
type Deal struct {
	Ticket     int64     `json:"ticket" yaml:"ticket"`
	Time       time.Time `json:"time" yaml:"time"`
	Symbol     string    `json:"symbol" yaml:"symbol"`
	Volume     float64   `json:"volume" yaml:"volume"`
	Price      float64   `json:"price" yaml:"price"`
	Profit     float64   `json:"profit" yaml:"profit"`
	Commission float64   `json:"commission" yaml:"commission"`
	Swap       float64   `json:"swap" yaml:"swap"`
}

// Snapshot is everything one refresh cycle needs from the data source
type Snapshot struct {
	Connected bool         `json:"connected" yaml:"connected"`
	TakenAt   time.Time    `json:"taken_at" yaml:"taken_at"`
	Account   *Account     `json:"account,omitempty" yaml:"account,omitempty"`
	Positions []Position   `json:"positions" yaml:"positions"`
	Deals     []Deal       `json:"deals,omitempty" yaml:"deals,omitempty"`
	Equity    EquitySeries `json:"equity" yaml:"equity"`

	// Optional enrichments
	PriceHistory  map[string][]float64 `json:"price_history,omitempty" yaml:"price_history,omitempty"` // closes per symbol, oldest first
	ContractSizes map[string]float64   `json:"contract_sizes,omitempty" yaml:"contract_sizes,omitempty"`
	Benchmark     EquitySeries         `json:"benchmark,omitempty" yaml:"benchmark,omitempty"`
}

// Ready reports whether the snapshot can be analysed at all
func (s *Snapshot) Ready() bool {
	return s != nil && s.Connected && s.Account != nil
}

// ContractSize returns the configured contract size for symbol or the default
func (s *Snapshot) ContractSize(symbol string) float64 {
	if cs, ok := s.ContractSizes[symbol]; ok && cs > 0 {
		return cs
	}
	return DefaultContractSize
}

// MarginPercent is used margin relative to free margin, in percent (0 when free margin is 0)
func (s *Snapshot) MarginPercent() float64 {
	if s.Account == nil || s.Account.MarginFree <= 0 {
		return 0
	}
	return s.Account.Margin / s.Account.MarginFree * 100
}

// MarginLevel returns the broker's margin level, deriving equity/margin when absent
func (s *Snapshot) MarginLevel() float64 {
	if s.Account == nil {
		return 0
	}
	if s.Account.MarginLevel > 0 {
		return s.Account.MarginLevel
	}
	if s.Account.Margin <= 0 {
		return 0
	}
	return s.Account.Equity / s.Account.Margin * 100
}

// TotalVolume sums lots over open positions
func (s *Snapshot) TotalVolume() float64 {
	total := decimal.Zero
	for _, p := range s.Positions {
		total = total.Add(decimal.NewFromFloat(p.Volume))
	}
	return total.InexactFloat64()
}

// FloatingProfit sums profit over open positions
func (s *Snapshot) FloatingProfit() float64 {
	total := decimal.Zero
	for _, p := range s.Positions {
		total = total.Add(decimal.NewFromFloat(p.Profit))
	}
	return total.InexactFloat64()
}

// DailyPnLPercent is floating profit over balance, in percent (0 when balance is 0)
func (s *Snapshot) DailyPnLPercent() float64 {
	if s.Account == nil || s.Account.Balance == 0 {
		return 0
	}
	pnl := decimal.NewFromFloat(s.FloatingProfit())
	bal := decimal.NewFromFloat(s.Account.Balance)
	return pnl.Div(bal).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

// AveragePositionDuration is the mean holding time in minutes, nil without positions
func (s *Snapshot) AveragePositionDuration(now time.Time) *float64 {
	if len(s.Positions) == 0 {
		return nil
	}
	total := 0.0
	for _, p := range s.Positions {
		total += p.HoldingMinutes(now)
	}
	avg := total / float64(len(s.Positions))
	return &avg
}
