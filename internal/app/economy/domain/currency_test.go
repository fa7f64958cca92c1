package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCurrency_Format(t *testing.T) {
	coin := NewCurrency("Coin", "Coins", "$", 2, true)

	tests := []struct {
		name   string
		amount string
		digits int32
		want   string
	}{
		{name: "half_up_not_bankers", amount: "1.005", digits: 2, want: "$1.01"},
		{name: "half_up_on_even", amount: "2.5", digits: 0, want: "$3"},
		{name: "round_down", amount: "1.004", digits: 2, want: "$1.00"},
		{name: "pads_zeros", amount: "7", digits: 3, want: "$7.000"},
		{name: "no_grouping", amount: "1234567.891", digits: 2, want: "$1234567.89"},
		{name: "no_scientific", amount: "1E+7", digits: 0, want: "$10000000"},
		{name: "zero", amount: "0", digits: 2, want: "$0.00"},
		{name: "negative_digits_clamped", amount: "9.6", digits: -1, want: "$10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coin.Format(decimal.RequireFromString(tt.amount), tt.digits))
		})
	}
}

func TestCurrency_FormatDefaultAndDisplay(t *testing.T) {
	gem := NewCurrency("Gem", "Gems", "G", 1, true)

	assert.Equal(t, "G12.4", gem.FormatDefault(decimal.RequireFromString("12.35")))
	assert.Equal(t, "1.0 Gem", gem.Display(decimal.NewFromInt(1)))
	assert.Equal(t, "2.5 Gems", gem.Display(decimal.RequireFromString("2.5")))
}

func TestCurrency_Matches(t *testing.T) {
	coin := NewCurrency("Coin", "Coins", "$", 2, true)

	assert.True(t, coin.Matches(NewCurrency("coin", "", "", 0, false)))
	assert.False(t, coin.Matches(NewCurrency("Gem", "Gems", "G", 2, false)))
	assert.Equal(t, "Coins", coin.PluralName())
	assert.Equal(t, "$", coin.Symbol())
	assert.Equal(t, int32(2), coin.FractionDigits())
	assert.True(t, coin.IsDefault())
}
