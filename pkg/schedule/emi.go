package schedule

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// PeriodicRate converts an annual percentage rate into the per-period decimal
// fraction, kept at rate precision.
func PeriodicRate(annualPct decimal.Decimal, periodsPerYear int) decimal.Decimal {
	return money.RoundRate(money.Fraction(annualPct).Div(decimal.NewFromInt(int64(periodsPerYear))))
}

// EMI computes the equated installment for an amortizing loan:
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// where r is the periodic rate. A zero rate yields the even split P/n.
// The result is rounded half-up to the cent.
func EMI(principal, annualPct decimal.Decimal, periods, periodsPerYear int) decimal.Decimal {
	if annualPct.IsZero() {
		return money.Round(principal.Div(decimal.NewFromInt(int64(periods))))
	}

	r := PeriodicRate(annualPct, periodsPerYear)
	factor := decimal.NewFromInt(1).Add(r).Pow(decimal.NewFromInt(int64(periods)))
	emi := principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))
	return money.Round(emi)
}

// PeriodsForEMI solves for the number of periods needed to amortize an
// outstanding balance with a fixed installment:
//
//	n = ceil( log(EMI / (EMI - P*r)) / log(1 + r) )
//
// Used by reduce-tenure prepayments. Returns at least 1. When the installment
// does not even cover one period's interest, the current period count is
// returned unchanged.
func PeriodsForEMI(emi, outstanding, annualPct decimal.Decimal, periodsPerYear, current int) int {
	if emi.LessThanOrEqual(decimal.Zero) {
		return current
	}
	if annualPct.IsZero() {
		n := int(math.Ceil(outstanding.Div(emi).InexactFloat64()))
		if n < 1 {
			n = 1
		}
		return n
	}

	r := PeriodicRate(annualPct, periodsPerYear).InexactFloat64()
	denominator := emi.InexactFloat64() - outstanding.InexactFloat64()*r
	if denominator <= 0 {
		return current
	}

	n := int(math.Ceil(math.Log(emi.InexactFloat64()/denominator) / math.Log(1+r)))
	if n < 1 {
		n = 1
	}
	return n
}
