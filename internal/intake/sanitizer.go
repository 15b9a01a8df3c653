package intake

import (
	"strings"
	"unicode"

	"github.com/cartage-systems/cartage/internal/orders"
)

// DefaultDenylist holds order-number values known from production scans to be
// column-capture artifacts: currency codes and person names that land in the
// order-number slot.
var DefaultDenylist = []string{
	"USD", "ZIG", "ZWG", "ZAR", "EUR", "GBP",
	"LOUISE", "LOIUSE", "TINROOF", "GREENS",
}

// defaultAlphaLimit: purely alphabetic candidates longer than this are
// assumed to be captured names, since real order numbers contain digits.
const defaultAlphaLimit = 3

// rejectRule reports whether an order-number candidate must be discarded.
// value arrives upper-cased and trimmed; totalValue is the record's own
// monetary total.
type rejectRule struct {
	name   string
	reject func(value, totalValue string) bool
}

// Sanitizer cleans order-number candidates with a data-driven rule table.
// It is pure: the same inputs always yield the same output.
type Sanitizer struct {
	rules []rejectRule
}

// NewSanitizer builds a Sanitizer from the default rule table, with the
// denylist extended by extraDenylist. alphaLimit <= 0 keeps the default.
func NewSanitizer(extraDenylist []string, alphaLimit int) *Sanitizer {
	if alphaLimit <= 0 {
		alphaLimit = defaultAlphaLimit
	}
	denied := make(map[string]struct{}, len(DefaultDenylist)+len(extraDenylist))
	for _, v := range DefaultDenylist {
		denied[v] = struct{}{}
	}
	for _, v := range extraDenylist {
		v = strings.ToUpper(strings.TrimSpace(v))
		if v != "" {
			denied[v] = struct{}{}
		}
	}

	return &Sanitizer{rules: []rejectRule{
		{
			name: "denylist",
			reject: func(value, _ string) bool {
				_, bad := denied[value]
				return bad
			},
		},
		{
			name: "alphabetic",
			reject: func(value, _ string) bool {
				return len(value) > alphaLimit && isAlpha(value)
			},
		},
		{
			name: "column-shift",
			reject: func(value, totalValue string) bool {
				return value != "" && value == strings.TrimSpace(totalValue)
			},
		},
	}}
}

// CleanOrderNumber validates an order-number candidate against the rule
// table. Rejected candidates come back as the "N/A" sentinel, never as the
// original garbage.
func (s *Sanitizer) CleanOrderNumber(candidate, totalValue string) string {
	value := strings.ToUpper(strings.TrimSpace(candidate))
	if value == "" {
		return orders.NotAvailable
	}
	for _, rule := range s.rules {
		if rule.reject(value, totalValue) {
			return orders.NotAvailable
		}
	}
	return value
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}
