package contracts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Direction is the side of an open position. BUY=0, SELL=1 as reported by the terminal.
type Direction int

const (
	DirectionBuy  Direction = 0
	DirectionSell Direction = 1
)

// String returns BUY or SELL
func (d Direction) String() string {
	if d == DirectionSell {
		return "SELL"
	}
	return "BUY"
}

// Sign returns +1 for long and -1 for short exposure
func (d Direction) Sign() float64 {
	if d == DirectionSell {
		return -1
	}
	return 1
}

// MarshalJSON keeps the numeric wire value
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(d))
}

// UnmarshalJSON accepts 0/1 or "BUY"/"SELL"
func (d *Direction) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		return d.set(n)
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("direction: %w", err)
	}
	return d.parse(s)
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON
func (d *Direction) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		return d.set(n)
	}
	return d.parse(value.Value)
}

func (d *Direction) parse(s string) error {
	switch strings.ToUpper(s) {
	case "BUY", "LONG":
		*d = DirectionBuy
	case "SELL", "SHORT":
		*d = DirectionSell
	default:
		return fmt.Errorf("direction: unknown value %q", s)
	}
	return nil
}

func (d *Direction) set(n int) error {
	switch Direction(n) {
	case DirectionBuy, DirectionSell:
		*d = Direction(n)
		return nil
	}
	return fmt.Errorf("direction: unknown value %d", n)
}

// Position is an open position snapshot
type Position struct {
	Ticket       int64     `json:"ticket" yaml:"ticket"`
	Symbol       string    `json:"symbol" yaml:"symbol"`
	Direction    Direction `json:"type" yaml:"type"`
	Volume       float64   `json:"volume" yaml:"volume"` // lots
	PriceOpen    float64   `json:"price_open" yaml:"price_open"`
	PriceCurrent float64   `json:"price_current" yaml:"price_current"`
	OpenTime     time.Time `json:"time" yaml:"time"`
	Profit       float64   `json:"profit" yaml:"profit"`
	Swap         float64   `json:"swap" yaml:"swap"`
}

// Size is volume times current price, the position's nominal size
func (p Position) Size() float64 {
	return p.Volume * p.PriceCurrent
}

// SignedSize is Size with the direction sign applied
func (p Position) SignedSize() float64 {
	return p.Direction.Sign() * p.Size()
}

// Exposure is the notional value in account currency for a given contract size
func (p Position) Exposure(contractSize float64) float64 {
	return p.Volume * contractSize * p.PriceCurrent
}

// HoldingMinutes returns how long the position has been open at now
func (p Position) HoldingMinutes(now time.Time) float64 {
	if p.OpenTime.IsZero() {
		return 0
	}
	return now.Sub(p.OpenTime).Minutes()
}
