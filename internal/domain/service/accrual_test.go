package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/daycount"
)

func TestBuildDailyAccrual(t *testing.T) {
	acct := activeAccount("100000")

	accrual := BuildDailyAccrual(acct, d(2025, 3, 10), dec("12"), decimal.Zero)

	// 100000 * 12% / 365 = 32.88
	assert.True(t, accrual.Accrued.Equal(dec("32.88")), "accrued %s", accrual.Accrued)
	assert.True(t, accrual.Cumulative.Equal(dec("32.88")))
	assert.Equal(t, valueobject.AccrualAccrued, accrual.Status)
	assert.Equal(t, 365, accrual.DaysInYear)

	next := BuildDailyAccrual(acct, d(2025, 3, 11), dec("12"), accrual.Cumulative)
	assert.True(t, next.Cumulative.Equal(dec("65.76")))
}

func TestBuildDailyAccrual_ZeroPrincipal(t *testing.T) {
	acct := activeAccount("100000")
	acct.PrincipalOutstanding = decimal.Zero

	accrual := BuildDailyAccrual(acct, d(2025, 3, 10), dec("12"), dec("10"))
	assert.True(t, accrual.Accrued.IsZero())
	assert.True(t, accrual.Cumulative.Equal(dec("10")))
}

func TestBuildDailyAccrual_ActActLeap(t *testing.T) {
	acct := activeAccount("100000")
	acct.DayCount = daycount.ActAct

	accrual := BuildDailyAccrual(acct, d(2024, 3, 10), dec("12"), decimal.Zero)
	assert.Equal(t, 366, accrual.DaysInYear)
	assert.True(t, accrual.Accrued.Equal(dec("32.79")), "accrued %s", accrual.Accrued)
}

// stubBenchmark serves a fixed rate table keyed by date string.
type stubBenchmark struct {
	rates map[string]decimal.Decimal
}

func (s stubBenchmark) RateOn(_ context.Context, _ uuid.UUID, asOf time.Time) (decimal.Decimal, bool, error) {
	// Latest publication on or before asOf.
	var (
		best      decimal.Decimal
		bestFound bool
		bestDate  time.Time
	)
	for raw, rate := range s.rates {
		pub, _ := time.Parse(time.DateOnly, raw)
		if pub.After(asOf) {
			continue
		}
		if !bestFound || pub.After(bestDate) {
			best, bestFound, bestDate = rate, true, pub
		}
	}
	return best, bestFound, nil
}

func floatingSpec(spread, floor, cap string) model.RateSpec {
	spec := model.RateSpec{
		Type:        valueobject.RateTypeFloating,
		BenchmarkID: uuid.New(),
		SpreadPct:   dec(spread),
	}
	if floor != "" {
		f := dec(floor)
		spec.FloorPct = &f
	}
	if cap != "" {
		c := dec(cap)
		spec.CapPct = &c
	}
	return spec
}

func TestEffectiveRate_Floating(t *testing.T) {
	src := stubBenchmark{rates: map[string]decimal.Decimal{
		"2025-01-01": dec("6.5"),
		"2025-04-01": dec("7.0"),
	}}

	t.Run("benchmark plus spread", func(t *testing.T) {
		rate, err := EffectiveRate(context.Background(), floatingSpec("2.5", "", ""), d(2025, 2, 1), src)
		require.NoError(t, err)
		assert.True(t, rate.Equal(dec("9")), "rate %s", rate)
	})

	t.Run("non-publication date uses latest prior", func(t *testing.T) {
		rate, err := EffectiveRate(context.Background(), floatingSpec("2.5", "", ""), d(2025, 4, 15), src)
		require.NoError(t, err)
		assert.True(t, rate.Equal(dec("9.5")))
	})

	t.Run("cap clamps", func(t *testing.T) {
		rate, err := EffectiveRate(context.Background(), floatingSpec("2.5", "", "8.75"), d(2025, 4, 15), src)
		require.NoError(t, err)
		assert.True(t, rate.Equal(dec("8.75")))
	})

	t.Run("floor clamps", func(t *testing.T) {
		rate, err := EffectiveRate(context.Background(), floatingSpec("2.5", "9.25", ""), d(2025, 2, 1), src)
		require.NoError(t, err)
		assert.True(t, rate.Equal(dec("9.25")))
	})

	t.Run("missing benchmark", func(t *testing.T) {
		_, err := EffectiveRate(context.Background(), floatingSpec("2.5", "", ""), d(2024, 6, 1), src)
		assert.True(t, apperr.IsKind(err, apperr.KindBenchmarkUnavailable))
	})
}

func TestEffectiveRate_Fixed(t *testing.T) {
	spec := model.RateSpec{Type: valueobject.RateTypeFixed, FixedPct: dec("11.25")}
	rate, err := EffectiveRate(context.Background(), spec, d(2025, 2, 1), nil)
	require.NoError(t, err)
	assert.True(t, rate.Equal(dec("11.25")))
}

func TestApplyRateReset(t *testing.T) {
	src := stubBenchmark{rates: map[string]decimal.Decimal{"2025-01-01": dec("6.5")}}

	acct := activeAccount("100000")
	acct.Rate = floatingSpec("2.5", "", "")
	acct.Rate.ResetFrequency = acct.Frequency
	reset := d(2025, 2, 1)
	acct.Rate.NextResetDate = &reset

	assert.True(t, RateResetDue(acct.Rate, d(2025, 2, 1)))
	assert.False(t, RateResetDue(acct.Rate, d(2025, 1, 31)))

	old, applied, err := ApplyRateReset(context.Background(), acct, reset, src)
	require.NoError(t, err)
	assert.True(t, old.Equal(dec("12")))
	assert.True(t, applied.Equal(dec("9")))
	assert.True(t, acct.CurrentRatePct.Equal(dec("9")))
	require.NotNil(t, acct.Rate.NextResetDate)
	assert.Equal(t, d(2025, 3, 1), *acct.Rate.NextResetDate)
}
