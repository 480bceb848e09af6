package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount string
		code   string
		want   string
	}{
		{"1234.5", "USD", "$1,234.50"},
		{"-50", "usd", "-$50.00"},
		{"0", "USD", "$0.00"},
		{"0.005", "USD", "$0.01"},
		{"1000000", "USD", "$1,000,000.00"},
		{"12.3", "XYZ", "12.30 XYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.code+" "+tt.amount, func(t *testing.T) {
			t.Parallel()
			got := Format(decimal.RequireFromString(tt.amount), tt.code)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSigned(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+$10.00", Signed(decimal.NewFromInt(10), "USD"))
	assert.Equal(t, "-$10.00", Signed(decimal.NewFromInt(-10), "USD"))
	assert.Equal(t, "$0.00", Signed(decimal.Zero, "USD"))
}

func TestSupported(t *testing.T) {
	t.Parallel()

	assert.True(t, Supported("USD"))
	assert.True(t, Supported(" eur "))
	assert.False(t, Supported("XYZ"))
	assert.False(t, Supported(""))
}

func TestPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12.35%", Percent(12.345678))
	assert.Equal(t, "+5.00%", SignedPercent(5))
	assert.Equal(t, "-2.50%", SignedPercent(-2.5))
}
