package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound_HalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"8884.8787", "8884.88"},
		{"0.005", "0.01"},
		{"0.004", "0.00"},
		{"41.0958", "41.10"},
		{"1000", "1000"},
	}
	for _, tc := range cases {
		in := decimal.RequireFromString(tc.in)
		assert.True(t, Round(in).Equal(decimal.RequireFromString(tc.want)),
			"Round(%s) = %s, want %s", tc.in, Round(in), tc.want)
	}
}

func TestShare(t *testing.T) {
	got := Share(decimal.NewFromInt(10000), decimal.NewFromInt(80))
	assert.True(t, got.Equal(decimal.NewFromInt(8000)))
}

func TestFraction(t *testing.T) {
	got := Fraction(decimal.RequireFromString("12.5"))
	assert.True(t, got.Equal(decimal.RequireFromString("0.125")))
}

func TestNonNegative(t *testing.T) {
	assert.True(t, NonNegative(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, NonNegative(decimal.NewFromInt(5)).Equal(decimal.NewFromInt(5)))
}
