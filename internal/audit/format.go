package audit

import (
	"fmt"
	"strings"
	"time"
)

// FormatNumber renders v with the given decimals; sign adds "+" to positive values
func FormatNumber(v float64, decimals int, sign bool) string {
	s := fmt.Sprintf("%.*f", decimals, v)
	if sign && v > 0 {
		s = "+" + s
	}
	return s
}

// FormatPercent renders a value already expressed in percent
func FormatPercent(v float64, decimals int, sign bool) string {
	return FormatNumber(v, decimals, sign) + "%"
}

// FormatCurrency renders an amount followed by its currency code
func FormatCurrency(v float64, currency string, decimals int, sign bool) string {
	if currency == "" {
		return FormatNumber(v, decimals, sign)
	}
	return FormatNumber(v, decimals, sign) + " " + currency
}

// FormatTimespan renders a duration as "2d 3h 45m". Hours are shown once days
// are; minutes are always shown. Negative durations render as "-".
func FormatTimespan(d time.Duration) string {
	if d < 0 {
		return "-"
	}
	total := int(d / time.Minute)
	days, rem := total/1440, total%1440
	hours, minutes := rem/60, rem%60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	parts = append(parts, fmt.Sprintf("%dm", minutes))
	return strings.Join(parts, " ")
}

// FormatMinutes renders an optional holding time in minutes
func FormatMinutes(m *float64) string {
	if m == nil {
		return "-"
	}
	return FormatTimespan(time.Duration(*m * float64(time.Minute)))
}
