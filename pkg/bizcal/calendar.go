// Package bizcal provides holiday calendars and business-day adjustment of
// payment due dates.
package bizcal

import (
	"fmt"
	"time"
)

// Mode is a business-day adjustment mode value object.
type Mode struct {
	value string
}

const (
	modeNone              = "no_adjustment"
	modeFollowing         = "following"
	modePreceding         = "preceding"
	modeModifiedFollowing = "modified_following"
	modeModifiedPreceding = "modified_preceding"
)

var (
	NoAdjustment      = Mode{value: modeNone}
	Following         = Mode{value: modeFollowing}
	Preceding         = Mode{value: modePreceding}
	ModifiedFollowing = Mode{value: modeModifiedFollowing}
	ModifiedPreceding = Mode{value: modeModifiedPreceding}
)

var validModes = map[string]Mode{
	modeNone:              NoAdjustment,
	modeFollowing:         Following,
	modePreceding:         Preceding,
	modeModifiedFollowing: ModifiedFollowing,
	modeModifiedPreceding: ModifiedPreceding,
}

// ParseMode creates a Mode from its wire representation.
func ParseMode(s string) (Mode, error) {
	m, ok := validModes[s]
	if !ok {
		return Mode{}, fmt.Errorf("unsupported business-day adjustment mode: %q", s)
	}
	return m, nil
}

// String returns the mode code.
func (m Mode) String() string { return m.value }

// IsZero reports whether the mode has not been initialised.
func (m Mode) IsZero() bool { return m.value == "" }

// maxSearchDays bounds the business-day search so a degenerate calendar
// cannot loop forever.
const maxSearchDays = 30

// Calendar is an immutable set of holidays plus a weekly-off mask.
type Calendar struct {
	holidays  map[string]struct{}
	weeklyOff [7]bool
}

// New builds a Calendar from weekly-off days and holiday dates.
// Passing no weekly-off days defaults to Saturday and Sunday.
func New(weeklyOff []time.Weekday, holidays []time.Time) *Calendar {
	c := &Calendar{holidays: make(map[string]struct{}, len(holidays))}

	if len(weeklyOff) == 0 {
		weeklyOff = []time.Weekday{time.Saturday, time.Sunday}
	}
	for _, wd := range weeklyOff {
		c.weeklyOff[wd] = true
	}
	for _, h := range holidays {
		c.holidays[dateKey(h)] = struct{}{}
	}
	return c
}

func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// IsBusinessDay reports whether d is neither a weekly off nor a holiday.
func (c *Calendar) IsBusinessDay(d time.Time) bool {
	if c.weeklyOff[d.Weekday()] {
		return false
	}
	_, holiday := c.holidays[dateKey(d)]
	return !holiday
}

// NextBusinessDay returns the first business day on or after d.
func (c *Calendar) NextBusinessDay(d time.Time) (time.Time, error) {
	cur := d
	for i := 0; i < maxSearchDays; i++ {
		if c.IsBusinessDay(cur) {
			return cur, nil
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return time.Time{}, fmt.Errorf("no business day within %d days after %s", maxSearchDays, dateKey(d))
}

// PreviousBusinessDay returns the first business day on or before d.
func (c *Calendar) PreviousBusinessDay(d time.Time) (time.Time, error) {
	cur := d
	for i := 0; i < maxSearchDays; i++ {
		if c.IsBusinessDay(cur) {
			return cur, nil
		}
		cur = cur.AddDate(0, 0, -1)
	}
	return time.Time{}, fmt.Errorf("no business day within %d days before %s", maxSearchDays, dateKey(d))
}

// Adjust shifts d to a business day per the mode. modified_following moves
// forward unless that crosses into the next month, in which case it moves
// backward; modified_preceding mirrors.
func (c *Calendar) Adjust(d time.Time, mode Mode) (time.Time, error) {
	if mode.IsZero() || mode == NoAdjustment || c.IsBusinessDay(d) {
		return d, nil
	}

	switch mode {
	case Following:
		return c.NextBusinessDay(d)
	case Preceding:
		return c.PreviousBusinessDay(d)
	case ModifiedFollowing:
		next, err := c.NextBusinessDay(d)
		if err != nil {
			return time.Time{}, err
		}
		if next.Month() != d.Month() {
			return c.PreviousBusinessDay(d)
		}
		return next, nil
	case ModifiedPreceding:
		prev, err := c.PreviousBusinessDay(d)
		if err != nil {
			return time.Time{}, err
		}
		if prev.Month() != d.Month() {
			return c.NextBusinessDay(d)
		}
		return prev, nil
	default:
		return time.Time{}, fmt.Errorf("unsupported adjustment mode: %q", mode)
	}
}

// AdjustAll adjusts a due-date sequence in order.
func (c *Calendar) AdjustAll(dates []time.Time, mode Mode) ([]time.Time, error) {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		adj, err := c.Adjust(d, mode)
		if err != nil {
			return nil, err
		}
		out[i] = adj
	}
	return out, nil
}
