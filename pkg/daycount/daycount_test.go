package daycount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	for _, s := range []string{"30/360", "act/365", "ACT/360", "Act/Act"} {
		_, err := Parse(s)
		assert.NoError(t, err, s)
	}

	_, err := Parse("act/364")
	assert.Error(t, err)
}

func TestDays30360(t *testing.T) {
	// Full month is always 30 days.
	assert.Equal(t, 30, Days30360(d(2025, 1, 1), d(2025, 2, 1)))
	assert.Equal(t, 30, Days30360(d(2025, 2, 1), d(2025, 3, 1)))

	// End-of-month adjustments.
	assert.Equal(t, 30, Days30360(d(2025, 1, 31), d(2025, 3, 1)))
	assert.Equal(t, 360, Days30360(d(2025, 1, 15), d(2026, 1, 15)))
}

func TestYearFraction_Act365(t *testing.T) {
	frac := Act365.YearFraction(d(2025, 1, 1), d(2025, 2, 1))
	want := decimal.NewFromInt(31).Div(decimal.NewFromInt(365)).Round(10)
	assert.True(t, frac.Equal(want), "got %s want %s", frac, want)

	// Degenerate interval.
	assert.True(t, Act365.YearFraction(d(2025, 2, 1), d(2025, 2, 1)).IsZero())
	assert.True(t, Act365.YearFraction(d(2025, 2, 1), d(2025, 1, 1)).IsZero())
}

func TestYearFraction_Act360(t *testing.T) {
	frac := Act360.YearFraction(d(2025, 1, 1), d(2025, 1, 31))
	want := decimal.NewFromInt(30).Div(decimal.NewFromInt(360)).Round(10)
	assert.True(t, frac.Equal(want))
}

func TestYearFraction_ActAct_LeapSplit(t *testing.T) {
	// 2023-12-01 -> 2024-02-01 spans a leap-year boundary:
	// 31 days in 2023 (365) + 31 days in 2024 (366).
	frac := ActAct.YearFraction(d(2023, 12, 1), d(2024, 2, 1))
	want := decimal.NewFromInt(31).Div(decimal.NewFromInt(365)).
		Add(decimal.NewFromInt(31).Div(decimal.NewFromInt(366))).Round(10)
	assert.True(t, frac.Equal(want), "got %s want %s", frac, want)
}

func TestDaysInYear(t *testing.T) {
	assert.Equal(t, 360, Thirty360.DaysInYear(2025))
	assert.Equal(t, 360, Act360.DaysInYear(2025))
	assert.Equal(t, 365, Act365.DaysInYear(2024))
	assert.Equal(t, 366, ActAct.DaysInYear(2024))
	assert.Equal(t, 365, ActAct.DaysInYear(2025))
}

func TestInterest(t *testing.T) {
	// 100000 at 12% for 31 days ACT/365.
	got := Act365.Interest(decimal.NewFromInt(100_000), decimal.NewFromInt(12),
		d(2025, 1, 1), d(2025, 2, 1))
	want := decimal.RequireFromString("1019.18")
	assert.True(t, got.Equal(want), "got %s want %s", got, want)
}

func TestDailyInterest(t *testing.T) {
	got := Act365.DailyInterest(decimal.NewFromInt(100_000), decimal.NewFromInt(12), d(2025, 3, 10))
	want := decimal.RequireFromString("32.88") // 100000*0.12/365
	require.True(t, got.Equal(want), "got %s want %s", got, want)

	// ACT/ACT uses 366 in leap years.
	leap := ActAct.DailyInterest(decimal.NewFromInt(100_000), decimal.NewFromInt(12), d(2024, 3, 10))
	want = decimal.RequireFromString("32.79")
	assert.True(t, leap.Equal(want), "got %s want %s", leap, want)
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, IsLeapYear(2024))
	assert.True(t, IsLeapYear(2000))
	assert.False(t, IsLeapYear(1900))
	assert.False(t, IsLeapYear(2025))
}
