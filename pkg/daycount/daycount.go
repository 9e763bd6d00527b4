// Package daycount implements day-count conventions for interest arithmetic.
//
// Supported conventions:
//   - 30/360 (US bond basis): 30-day months, 360-day year
//   - ACT/365 (actual/365 fixed)
//   - ACT/360 (money market)
//   - ACT/ACT (ISDA): actual days over actual days in each calendar year
package daycount

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// Convention is an immutable day-count convention value object.
type Convention struct {
	value string
}

const (
	conv30360  = "30/360"
	convAct365 = "ACT/365"
	convAct360 = "ACT/360"
	convActAct = "ACT/ACT"
)

var (
	Thirty360 = Convention{value: conv30360}
	Act365    = Convention{value: convAct365}
	Act360    = Convention{value: convAct360}
	ActAct    = Convention{value: convActAct}
)

var validConventions = map[string]Convention{
	conv30360:  Thirty360,
	convAct365: Act365,
	convAct360: Act360,
	convActAct: ActAct,
}

// Parse creates a Convention from its wire representation.
func Parse(s string) (Convention, error) {
	v, ok := validConventions[normalize(s)]
	if !ok {
		return Convention{}, fmt.Errorf("unsupported day-count convention: %q", s)
	}
	return v, nil
}

func normalize(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// String returns the convention code.
func (c Convention) String() string { return c.value }

// IsZero reports whether the convention has not been initialised.
func (c Convention) IsZero() bool { return c.value == "" }

// IsLeapYear reports whether year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns the denominator year length for the convention.
func (c Convention) DaysInYear(year int) int {
	switch c.value {
	case conv30360, convAct360:
		return 360
	case convActAct:
		if IsLeapYear(year) {
			return 366
		}
		return 365
	default:
		return 365
	}
}

// ActualDays returns the calendar-day difference end - start.
func ActualDays(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// Days30360 counts days under the 30/360 US convention.
// A start day of 31 becomes 30; an end day of 31 becomes 30 when the
// (adjusted) start day is 30 or more.
func Days30360(start, end time.Time) int {
	d1, m1, y1 := start.Day(), int(start.Month()), start.Year()
	d2, m2, y2 := end.Day(), int(end.Month()), end.Year()

	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 && d1 >= 30 {
		d2 = 30
	}

	return 360*(y2-y1) + 30*(m2-m1) + (d2 - d1)
}

// YearFraction returns the non-negative year fraction between start and end.
func (c Convention) YearFraction(start, end time.Time) decimal.Decimal {
	if !start.Before(end) {
		return decimal.Zero
	}

	switch c.value {
	case conv30360:
		return money.RoundRate(decimal.NewFromInt(int64(Days30360(start, end))).
			Div(decimal.NewFromInt(360)))
	case convAct360:
		return money.RoundRate(decimal.NewFromInt(int64(ActualDays(start, end))).
			Div(decimal.NewFromInt(360)))
	case convActAct:
		return actActFraction(start, end)
	default: // ACT/365
		return money.RoundRate(decimal.NewFromInt(int64(ActualDays(start, end))).
			Div(decimal.NewFromInt(365)))
	}
}

// actActFraction prorates the interval across calendar-year boundaries per
// ISDA: each sub-interval divides by 366 in leap years, 365 otherwise.
func actActFraction(start, end time.Time) decimal.Decimal {
	if start.Year() == end.Year() {
		yearDays := 365
		if IsLeapYear(start.Year()) {
			yearDays = 366
		}
		return money.RoundRate(decimal.NewFromInt(int64(ActualDays(start, end))).
			Div(decimal.NewFromInt(int64(yearDays))))
	}

	fraction := decimal.Zero
	for year := start.Year(); year <= end.Year(); year++ {
		yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		nextYear := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)

		subStart := yearStart
		if start.After(yearStart) {
			subStart = start
		}
		subEnd := nextYear
		if end.Before(nextYear) {
			subEnd = end
		}
		if !subStart.Before(subEnd) {
			continue
		}

		yearDays := int64(365)
		if IsLeapYear(year) {
			yearDays = 366
		}
		fraction = fraction.Add(
			decimal.NewFromInt(int64(ActualDays(subStart, subEnd))).
				Div(decimal.NewFromInt(yearDays)))
	}
	return money.RoundRate(fraction)
}

// Interest computes period interest for a principal at an annual percentage
// rate between start and end, rounded to the cent.
func (c Convention) Interest(principal, annualPct decimal.Decimal, start, end time.Time) decimal.Decimal {
	frac := c.YearFraction(start, end)
	return money.Round(principal.Mul(money.Fraction(annualPct)).Mul(frac))
}

// DailyInterest computes one day of interest for a principal at an annual
// percentage rate on the given date. The day fraction is 1 over the
// convention's year length for the date's year.
func (c Convention) DailyInterest(principal, annualPct decimal.Decimal, on time.Time) decimal.Decimal {
	yearDays := decimal.NewFromInt(int64(c.DaysInYear(on.Year())))
	return money.Round(principal.Mul(money.Fraction(annualPct)).Div(yearDays))
}
