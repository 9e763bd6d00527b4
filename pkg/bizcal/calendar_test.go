package bizcal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestIsBusinessDay(t *testing.T) {
	cal := New(nil, []time.Time{d(2025, 1, 26)}) // Sunday + Republic Day

	assert.True(t, cal.IsBusinessDay(d(2025, 1, 24)))   // Friday
	assert.False(t, cal.IsBusinessDay(d(2025, 1, 25)))  // Saturday
	assert.False(t, cal.IsBusinessDay(d(2025, 1, 26)))  // Sunday + holiday
	assert.False(t, cal.IsBusinessDay(d(2025, 12, 27))) // Saturday
}

func TestAdjust_Following(t *testing.T) {
	cal := New(nil, nil)

	// Saturday 2025-02-01 -> Monday 2025-02-03.
	adj, err := cal.Adjust(d(2025, 2, 1), Following)
	require.NoError(t, err)
	assert.Equal(t, d(2025, 2, 3), adj)
}

func TestAdjust_Preceding(t *testing.T) {
	cal := New(nil, nil)

	adj, err := cal.Adjust(d(2025, 2, 2), Preceding) // Sunday -> Friday Jan 31
	require.NoError(t, err)
	assert.Equal(t, d(2025, 1, 31), adj)
}

func TestAdjust_ModifiedFollowing_MonthCross(t *testing.T) {
	cal := New(nil, nil)

	// Saturday 2025-05-31: following lands in June, so shift back to Friday.
	adj, err := cal.Adjust(d(2025, 5, 31), ModifiedFollowing)
	require.NoError(t, err)
	assert.Equal(t, d(2025, 5, 30), adj)

	// Mid-month Saturday shifts forward as usual.
	adj, err = cal.Adjust(d(2025, 5, 17), ModifiedFollowing)
	require.NoError(t, err)
	assert.Equal(t, d(2025, 5, 19), adj)
}

func TestAdjust_ModifiedPreceding_MonthCross(t *testing.T) {
	cal := New(nil, nil)

	// Sunday 2025-06-01: preceding lands in May, so shift forward to Monday.
	adj, err := cal.Adjust(d(2025, 6, 1), ModifiedPreceding)
	require.NoError(t, err)
	assert.Equal(t, d(2025, 6, 2), adj)
}

func TestAdjust_NoAdjustment(t *testing.T) {
	cal := New(nil, nil)

	adj, err := cal.Adjust(d(2025, 2, 1), NoAdjustment)
	require.NoError(t, err)
	assert.Equal(t, d(2025, 2, 1), adj)
}

func TestAdjust_HolidayRun(t *testing.T) {
	// Monday and Tuesday holidays after a weekend push to Wednesday.
	cal := New(nil, []time.Time{d(2025, 3, 3), d(2025, 3, 4)})

	adj, err := cal.Adjust(d(2025, 3, 1), Following)
	require.NoError(t, err)
	assert.Equal(t, d(2025, 3, 5), adj)
}

func TestAdjustAll(t *testing.T) {
	cal := New(nil, nil)

	dates := []time.Time{d(2025, 2, 1), d(2025, 3, 1), d(2025, 4, 1)}
	out, err := cal.AdjustAll(dates, Following)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{d(2025, 2, 3), d(2025, 3, 3), d(2025, 4, 1)}, out)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("modified_following")
	require.NoError(t, err)
	assert.Equal(t, ModifiedFollowing, m)

	_, err = ParseMode("sideways")
	assert.Error(t, err)
}
