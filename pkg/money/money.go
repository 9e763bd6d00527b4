// Package money provides fixed-point monetary and rate arithmetic helpers.
//
// All monetary amounts in the engine are shopspring decimals rounded half-up
// to two decimal places; rates carry ten decimal places. Binary floating
// point is never used for monetary accumulation.
package money

import (
	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places kept on monetary amounts.
const CentPlaces = 2

// RatePlaces is the number of decimal places kept on rates.
const RatePlaces = 10

var (
	// Hundred is used for percent <-> fraction conversions.
	Hundred = decimal.NewFromInt(100)
)

// Round rounds a monetary amount half-up to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// RoundRate rounds a rate to ten decimal places.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RatePlaces)
}

// Fraction converts a percentage (12.5 meaning 12.5%) to a decimal fraction.
func Fraction(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(Hundred)
}

// Share applies a percentage share to an amount and rounds to the cent.
func Share(amount, sharePct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(sharePct).Div(Hundred))
}

// ClampFloor returns d, raised to floor when it falls below it.
func ClampFloor(d, floor decimal.Decimal) decimal.Decimal {
	if d.LessThan(floor) {
		return floor
	}
	return d
}

// NonNegative returns d, or zero when d is negative.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
