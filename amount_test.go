package tally

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100", "100"},
		{"-12.50", "-12.5"},
		{"1,25,000.75", "125000.75"},
		{" +3 ", "3"},
		{"(123 * 3)", "369"},
		{"100 - 25", "75"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "%s: got %s", tt.in, got)
	}

	for _, bad := range []string{"", "abc", "12.3.4", "1..2", "1,2,3.4.5", ".5 * 2", "3 + 4.", "1/0"} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, bad)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "100.00", FormatAmount(decimal.NewFromInt(100)))
	assert.Equal(t, "-0.50", FormatAmount(decimal.RequireFromString("-0.5")))
	assert.Equal(t, "Yes", DeemedPositive(decimal.NewFromInt(-1)))
	assert.Equal(t, "No", DeemedPositive(decimal.Zero))
	assert.Equal(t, "No", DeemedPositive(decimal.NewFromInt(1)))
}
