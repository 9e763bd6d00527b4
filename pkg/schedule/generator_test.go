package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitrathi14/LOS-LMS/pkg/bizcal"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sumPrincipal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.PrincipalDue)
	}
	return total
}

func assertLinked(t *testing.T, lines []Line) {
	t.Helper()
	for i := range lines {
		assert.True(t, lines[i].TotalDue.Equal(lines[i].PrincipalDue.Add(lines[i].InterestDue).Add(lines[i].FeesDue)),
			"row %d total mismatch", i+1)
		if i > 0 {
			assert.True(t, lines[i].Opening.Equal(lines[i-1].Closing),
				"row %d opening %s != prior closing %s", i+1, lines[i].Opening, lines[i-1].Closing)
		}
	}
	assert.True(t, lines[len(lines)-1].Closing.IsZero(), "final closing must be zero")
}

func emiSpec() Spec {
	return Spec{
		Principal:     decimal.NewFromInt(100_000),
		AnnualRatePct: decimal.NewFromInt(12),
		Periods:       12,
		Frequency:     Monthly,
		Type:          TypeEMI,
		Start:         d(2025, 1, 1),
	}
}

func TestGenerate_EMI(t *testing.T) {
	lines, err := Generate(emiSpec())
	require.NoError(t, err)
	require.Len(t, lines, 12)

	first := lines[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, d(2025, 2, 1), first.DueDate)
	assert.True(t, first.Opening.Equal(decimal.NewFromInt(100_000)))
	assert.True(t, first.InterestDue.Equal(dec("1000")), "interest %s", first.InterestDue)
	assert.True(t, first.PrincipalDue.Equal(dec("7884.88")), "principal %s", first.PrincipalDue)
	assert.True(t, first.Closing.Equal(dec("92115.12")), "closing %s", first.Closing)
	assert.True(t, first.TotalDue.Equal(dec("8884.88")))

	assert.True(t, sumPrincipal(lines).Equal(decimal.NewFromInt(100_000)))
	assertLinked(t, lines)
}

func TestGenerate_EMI_Deterministic(t *testing.T) {
	a, err := Generate(emiSpec())
	require.NoError(t, err)
	b, err := Generate(emiSpec())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_ZeroRate(t *testing.T) {
	spec := emiSpec()
	spec.Principal = decimal.NewFromInt(12_000)
	spec.AnnualRatePct = decimal.Zero

	lines, err := Generate(spec)
	require.NoError(t, err)
	for _, ln := range lines {
		assert.True(t, ln.InterestDue.IsZero())
		assert.True(t, ln.PrincipalDue.Equal(decimal.NewFromInt(1000)))
	}
	assertLinked(t, lines)
}

func TestGenerate_SinglePeriod(t *testing.T) {
	spec := emiSpec()
	spec.Periods = 1

	lines, err := Generate(spec)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].PrincipalDue.Equal(decimal.NewFromInt(100_000)))
	assert.True(t, lines[0].InterestDue.Equal(dec("1000")))
	assert.True(t, lines[0].TotalDue.Equal(dec("101000")))
	assertLinked(t, lines)
}

func TestGenerate_InterestOnly(t *testing.T) {
	spec := emiSpec()
	spec.Type = TypeInterestOnly

	lines, err := Generate(spec)
	require.NoError(t, err)
	for i, ln := range lines {
		assert.True(t, ln.InterestDue.Equal(dec("1000")))
		if i < len(lines)-1 {
			assert.True(t, ln.PrincipalDue.IsZero())
		}
	}
	assert.True(t, lines[11].PrincipalDue.Equal(decimal.NewFromInt(100_000)))
	assertLinked(t, lines)
}

func TestGenerate_Bullet(t *testing.T) {
	spec := emiSpec()
	spec.Type = TypeBullet

	lines, err := Generate(spec)
	require.NoError(t, err)
	for _, ln := range lines[:11] {
		assert.True(t, ln.TotalDue.IsZero())
	}
	last := lines[11]
	assert.True(t, last.PrincipalDue.Equal(decimal.NewFromInt(100_000)))
	assert.True(t, last.InterestDue.Equal(dec("12000")))
	assertLinked(t, lines)
}

func TestGenerate_Balloon(t *testing.T) {
	spec := emiSpec()
	spec.Type = TypeBalloon
	spec.BalloonFraction = dec("0.4")

	lines, err := Generate(spec)
	require.NoError(t, err)
	assertLinked(t, lines)

	// Final installment repays at least the balloon portion of principal.
	last := lines[11]
	assert.True(t, last.PrincipalDue.GreaterThanOrEqual(decimal.NewFromInt(40_000)),
		"final principal %s", last.PrincipalDue)
	assert.True(t, sumPrincipal(lines).Equal(decimal.NewFromInt(100_000)))
}

func TestGenerate_StepUp(t *testing.T) {
	spec := emiSpec()
	spec.Type = TypeStepUp
	spec.StepPercent = decimal.NewFromInt(10)
	spec.StepEveryPeriods = 6
	spec.Periods = 24

	lines, err := Generate(spec)
	require.NoError(t, err)
	assertLinked(t, lines)
	assert.True(t, sumPrincipal(lines).Equal(decimal.NewFromInt(100_000)))

	// Installments after the first boundary exceed the opening segment's.
	assert.True(t, lines[6].TotalDue.GreaterThan(lines[0].TotalDue))
}

func TestGenerate_Moratorium_Capitalize(t *testing.T) {
	spec := emiSpec()
	spec.Type = TypeMoratorium
	spec.MoratoriumPeriods = 3
	spec.MoratoriumTreatment = MoratoriumCapitalize

	lines, err := Generate(spec)
	require.NoError(t, err)
	require.Len(t, lines, 12)

	for _, ln := range lines[:3] {
		assert.True(t, ln.Moratorium)
		assert.True(t, ln.TotalDue.IsZero())
	}
	// Interest capitalised over three periods raises the amortized balance.
	assert.True(t, lines[3].Opening.GreaterThan(decimal.NewFromInt(100_000)))
	assert.True(t, sumPrincipal(lines).Equal(lines[3].Opening))
	assertLinked(t, lines)
}

func TestGenerate_Moratorium_Accrue(t *testing.T) {
	spec := emiSpec()
	spec.Type = TypeMoratorium
	spec.MoratoriumPeriods = 2
	spec.MoratoriumTreatment = MoratoriumAccrue

	lines, err := Generate(spec)
	require.NoError(t, err)

	// Two periods of accrued interest collected with installment 3.
	assert.True(t, lines[2].InterestDue.Equal(dec("3000")), "interest %s", lines[2].InterestDue)
	assert.True(t, sumPrincipal(lines).Equal(decimal.NewFromInt(100_000)))
	assertLinked(t, lines)
}

func TestGenerate_BusinessDayAdjustment(t *testing.T) {
	spec := emiSpec()
	spec.Calendar = bizcal.New(nil, nil)
	spec.AdjustMode = bizcal.Following

	lines, err := Generate(spec)
	require.NoError(t, err)

	// 2025-02-01 is a Saturday; due date shifts to Monday.
	assert.Equal(t, d(2025, 2, 3), lines[0].DueDate)
	// Period boundaries stay on the raw dates.
	assert.Equal(t, d(2025, 2, 1), lines[0].PeriodEnd)
}

func TestGenerate_InvalidInputs(t *testing.T) {
	cases := map[string]func(*Spec){
		"zero principal":     func(s *Spec) { s.Principal = decimal.Zero },
		"negative principal": func(s *Spec) { s.Principal = decimal.NewFromInt(-1) },
		"zero periods":       func(s *Spec) { s.Periods = 0 },
		"negative rate":      func(s *Spec) { s.AnnualRatePct = decimal.NewFromInt(-1) },
		"unknown frequency":  func(s *Spec) { s.Frequency = Frequency{} },
		"unknown type":       func(s *Spec) { s.Type = Type{} },
		"balloon fraction 0": func(s *Spec) { s.Type = TypeBalloon; s.BalloonFraction = decimal.Zero },
		"balloon fraction 1": func(s *Spec) { s.Type = TypeBalloon; s.BalloonFraction = decimal.NewFromInt(1) },
		"moratorium too long": func(s *Spec) {
			s.Type = TypeMoratorium
			s.MoratoriumPeriods = 12
			s.MoratoriumTreatment = MoratoriumWaive
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			spec := emiSpec()
			mutate(&spec)
			_, err := Generate(spec)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAddMonths_EndOfMonth(t *testing.T) {
	assert.Equal(t, d(2025, 2, 28), AddMonths(d(2025, 1, 31), 1))
	assert.Equal(t, d(2024, 2, 29), AddMonths(d(2024, 1, 31), 1))
	assert.Equal(t, d(2025, 4, 30), AddMonths(d(2025, 1, 31), 3))
	assert.Equal(t, d(2024, 12, 15), AddMonths(d(2025, 1, 15), -1))
}

func TestPeriodsForEMI(t *testing.T) {
	// 100000 at 12%/12 periods: the standard EMI amortizes in 12 periods.
	emi := EMI(decimal.NewFromInt(100_000), decimal.NewFromInt(12), 12, 12)
	n := PeriodsForEMI(emi, decimal.NewFromInt(100_000), decimal.NewFromInt(12), 12, 12)
	assert.Equal(t, 12, n)

	// Halving the outstanding shortens the tenure.
	n = PeriodsForEMI(emi, decimal.NewFromInt(50_000), decimal.NewFromInt(12), 12, 12)
	assert.Less(t, n, 12)
	assert.GreaterOrEqual(t, n, 1)

	// Zero-rate: straight division.
	n = PeriodsForEMI(decimal.NewFromInt(1000), decimal.NewFromInt(12_000), decimal.Zero, 12, 24)
	assert.Equal(t, 12, n)
}
