package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Monetary values persist as text to avoid float rounding drift; all
// arithmetic goes through decimals and renders back with two places.

// ParseMoney parses a monetary string, tolerating thousands separators.
func ParseMoney(value string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		cleaned = "0"
	}
	return decimal.NewFromString(cleaned)
}

// FormatMoney renders a decimal with exactly two places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
