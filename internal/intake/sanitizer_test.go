package intake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cartage-systems/cartage/internal/orders"
)

func TestCleanOrderNumber(t *testing.T) {
	s := NewSanitizer(nil, 0)

	tests := []struct {
		name       string
		value      string
		totalValue string
		want       string
	}{
		{"plain number kept", "PO12345", "100.00", "PO12345"},
		{"lowercase uppercased", "po12345", "100.00", "PO12345"},
		{"whitespace trimmed", "  PO12345  ", "100.00", "PO12345"},
		{"currency code rejected", "USD", "100.00", orders.NotAvailable},
		{"denylisted name rejected", "LOUISE", "100.00", orders.NotAvailable},
		{"misspelt name rejected", "LOIUSE", "100.00", orders.NotAvailable},
		{"long alphabetic rejected", "JOHNSON", "100.00", orders.NotAvailable},
		{"short alphabetic kept", "ABC", "100.00", "ABC"},
		{"column shift rejected", "150.00", "150.00", orders.NotAvailable},
		{"value-like but different kept", "150.00", "200.00", "150.00"},
		{"blank becomes sentinel", "", "100.00", orders.NotAvailable},
		{"mixed alphanumeric kept", "ORD99X", "100.00", "ORD99X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.CleanOrderNumber(tt.value, tt.totalValue))
		})
	}
}

func TestCleanOrderNumberExtraDenylist(t *testing.T) {
	s := NewSanitizer([]string{"depot7", " SPARE "}, 0)

	require.Equal(t, orders.NotAvailable, s.CleanOrderNumber("DEPOT7", "10.00"))
	require.Equal(t, orders.NotAvailable, s.CleanOrderNumber("spare", "10.00"))
	require.Equal(t, "PO1", s.CleanOrderNumber("PO1", "10.00"))
}

func TestCleanOrderNumberAlphaLimit(t *testing.T) {
	s := NewSanitizer(nil, 6)

	// A raised limit tolerates longer alphabetic candidates.
	require.Equal(t, "REPEAT", s.CleanOrderNumber("REPEAT", "10.00"))
	require.Equal(t, orders.NotAvailable, s.CleanOrderNumber("REPEATED", "10.00"))
}
