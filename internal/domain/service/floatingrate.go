package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// BenchmarkSource resolves a benchmark rate for a date. Implementations
// return the latest publication on or before the date; found is false when
// no such publication exists.
type BenchmarkSource interface {
	RateOn(ctx context.Context, benchmarkID uuid.UUID, asOf time.Time) (rate decimal.Decimal, found bool, err error)
}

// EffectiveRate resolves the annual percentage rate in force on a date.
// Fixed specs return the fixed rate. Floating specs resolve
// max(floor, min(cap, benchmark + spread)) using the latest publication on or
// before asOf; a missing benchmark surfaces BenchmarkUnavailable.
func EffectiveRate(ctx context.Context, spec model.RateSpec, asOf time.Time, src BenchmarkSource) (decimal.Decimal, error) {
	if !spec.Type.IsFloating() {
		return spec.FixedPct, nil
	}

	benchmark, found, err := src.RateOn(ctx, spec.BenchmarkID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, apperr.New(apperr.KindBenchmarkUnavailable,
			"no benchmark publication on or before %s", asOf.Format("2006-01-02")).
			WithEntity(spec.BenchmarkID.String()).
			WithHint("load the benchmark rate history for the period")
	}

	rate := benchmark.Add(spec.SpreadPct)
	if spec.CapPct != nil && rate.GreaterThan(*spec.CapPct) {
		rate = *spec.CapPct
	}
	if spec.FloorPct != nil && rate.LessThan(*spec.FloorPct) {
		rate = *spec.FloorPct
	}
	return money.RoundRate(rate), nil
}

// RateResetDue reports whether a floating account has a reset scheduled on or
// before the date.
func RateResetDue(spec model.RateSpec, asOf time.Time) bool {
	return spec.Type.IsFloating() && spec.NextResetDate != nil && !asOf.Before(*spec.NextResetDate)
}

// ApplyRateReset resolves the new effective rate, stamps it on the account
// and advances the next reset date by the reset frequency.
func ApplyRateReset(ctx context.Context, acct *model.LoanAccount, resetDate time.Time, src BenchmarkSource) (old, applied decimal.Decimal, err error) {
	old = acct.CurrentRatePct

	rate, err := EffectiveRate(ctx, acct.Rate, resetDate, src)
	if err != nil {
		return old, decimal.Zero, err
	}

	acct.CurrentRatePct = rate
	if !acct.Rate.ResetFrequency.IsZero() {
		next := acct.Rate.ResetFrequency.AddPeriods(resetDate, 1)
		acct.Rate.NextResetDate = &next
	}
	return old, rate, nil
}
