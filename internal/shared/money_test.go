package shared

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"200.00", "200"},
		{"1,250.50", "1250.5"},
		{"  75 ", "75"},
		{"", "0"},
		{"0.005", "0.005"},
	}
	for _, tt := range tests {
		d, err := ParseMoney(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, d.String(), tt.in)
	}
}

func TestParseMoneyRejectsGarbage(t *testing.T) {
	_, err := ParseMoney("N/A")
	require.Error(t, err)
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "150.00", FormatMoney(decimal.RequireFromString("150")))
	require.Equal(t, "0.50", FormatMoney(decimal.RequireFromString("0.5")))
	require.Equal(t, "1250.56", FormatMoney(decimal.RequireFromString("1250.555")))
}
