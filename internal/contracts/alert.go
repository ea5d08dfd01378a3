package contracts

import "time"

// CategoryRisk is the only alert category currently raised
const CategoryRisk = "RISK"

// AlertRecord is one threshold breach
type AlertRecord struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"type"`
	Message   string    `json:"message"`
	Value     string    `json:"value"` // formatted, e.g. "60.0%"
}

// OptimizationSuggestion is advice attached to a breach
type OptimizationSuggestion struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
}
