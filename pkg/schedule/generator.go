// Package schedule generates amortization schedules for every supported
// repayment structure: EMI, interest-only, bullet, step-up/down, balloon and
// moratorium. Interest per installment uses the periodic rate
// r = annual / periods-per-year; day-count conventions drive the daily
// accrual engine, not schedule rows.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/pkg/bizcal"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// ErrInvalidInput marks schedule parameter validation failures.
var ErrInvalidInput = errors.New("invalid schedule input")

// Type is a schedule structure value object. The variant set is closed.
type Type struct {
	value string
}

var (
	TypeEMI          = Type{value: "emi"}
	TypeInterestOnly = Type{value: "interest_only"}
	TypeBullet       = Type{value: "bullet"}
	TypeStepUp       = Type{value: "step_up"}
	TypeStepDown     = Type{value: "step_down"}
	TypeBalloon      = Type{value: "balloon"}
	TypeMoratorium   = Type{value: "moratorium"}
)

var validTypes = map[string]Type{
	"emi":           TypeEMI,
	"interest_only": TypeInterestOnly,
	"bullet":        TypeBullet,
	"step_up":       TypeStepUp,
	"step_down":     TypeStepDown,
	"balloon":       TypeBalloon,
	"moratorium":    TypeMoratorium,
}

// ParseType creates a schedule Type from its wire representation.
func ParseType(s string) (Type, error) {
	t, ok := validTypes[s]
	if !ok {
		return Type{}, fmt.Errorf("unsupported schedule type: %q", s)
	}
	return t, nil
}

// String returns the type code.
func (t Type) String() string { return t.value }

// IsZero reports whether the type has not been initialised.
func (t Type) IsZero() bool { return t.value == "" }

// MoratoriumTreatment selects how interest accrued during a moratorium is
// handled.
type MoratoriumTreatment struct {
	value string
}

var (
	// MoratoriumCapitalize adds accrued interest to principal before the
	// repayment phase starts.
	MoratoriumCapitalize = MoratoriumTreatment{value: "capitalize"}
	// MoratoriumAccrue collects the accrued interest with the first
	// post-moratorium installment.
	MoratoriumAccrue = MoratoriumTreatment{value: "accrue"}
	// MoratoriumWaive forgives moratorium-period interest entirely.
	MoratoriumWaive = MoratoriumTreatment{value: "waive"}
)

var validTreatments = map[string]MoratoriumTreatment{
	"capitalize": MoratoriumCapitalize,
	"accrue":     MoratoriumAccrue,
	"waive":      MoratoriumWaive,
}

// ParseMoratoriumTreatment creates a treatment from its wire representation.
func ParseMoratoriumTreatment(s string) (MoratoriumTreatment, error) {
	t, ok := validTreatments[s]
	if !ok {
		return MoratoriumTreatment{}, fmt.Errorf("unsupported moratorium treatment: %q", s)
	}
	return t, nil
}

// String returns the treatment code.
func (t MoratoriumTreatment) String() string { return t.value }

// Spec holds every input the generator needs. L1/L2 stay free of persistence:
// the calendar is passed by value.
type Spec struct {
	Principal     decimal.Decimal
	AnnualRatePct decimal.Decimal
	Periods       int
	Frequency     Frequency
	Type          Type

	// Start is the disbursement date; installment i falls due Start advanced
	// by i periods, before business-day adjustment.
	Start time.Time

	Calendar   *bizcal.Calendar
	AdjustMode bizcal.Mode

	// Step-up/step-down parameters.
	StepPercent      decimal.Decimal
	StepEveryPeriods int

	// Balloon: fraction of principal left for the final installment, in (0,1).
	BalloonFraction decimal.Decimal

	// Moratorium parameters.
	MoratoriumPeriods   int
	MoratoriumTreatment MoratoriumTreatment
}

// Line is one generated installment.
type Line struct {
	Number       int
	DueDate      time.Time
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Opening      decimal.Decimal
	PrincipalDue decimal.Decimal
	InterestDue  decimal.Decimal
	FeesDue      decimal.Decimal
	TotalDue     decimal.Decimal
	Closing      decimal.Decimal
	Moratorium   bool
}

func (s Spec) validate() error {
	if s.Principal.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: principal must be positive", ErrInvalidInput)
	}
	if s.Periods <= 0 {
		return fmt.Errorf("%w: tenure must be at least one period", ErrInvalidInput)
	}
	if s.AnnualRatePct.IsNegative() {
		return fmt.Errorf("%w: rate must not be negative", ErrInvalidInput)
	}
	if s.Frequency.IsZero() {
		return fmt.Errorf("%w: unknown repayment frequency", ErrInvalidInput)
	}
	if s.Type.IsZero() {
		return fmt.Errorf("%w: unknown schedule type", ErrInvalidInput)
	}
	switch s.Type {
	case TypeBalloon:
		one := decimal.NewFromInt(1)
		if s.BalloonFraction.LessThanOrEqual(decimal.Zero) || s.BalloonFraction.GreaterThanOrEqual(one) {
			return fmt.Errorf("%w: balloon fraction must be in (0,1)", ErrInvalidInput)
		}
	case TypeStepUp, TypeStepDown:
		if s.StepEveryPeriods <= 0 {
			return fmt.Errorf("%w: step frequency must be positive", ErrInvalidInput)
		}
		if s.StepPercent.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: step percent must be positive", ErrInvalidInput)
		}
	case TypeMoratorium:
		if s.MoratoriumPeriods <= 0 || s.MoratoriumPeriods >= s.Periods {
			return fmt.Errorf("%w: moratorium periods must be in [1, tenure)", ErrInvalidInput)
		}
		if s.MoratoriumTreatment == (MoratoriumTreatment{}) {
			return fmt.Errorf("%w: moratorium treatment is required", ErrInvalidInput)
		}
	}
	return nil
}

// Generate produces the installment sequence for the spec. It is
// referentially transparent: identical inputs and calendar produce identical
// output.
func Generate(spec Spec) ([]Line, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	rawDue := spec.Frequency.DueDates(spec.Start, spec.Periods)
	due := rawDue
	if spec.Calendar != nil && !spec.AdjustMode.IsZero() && spec.AdjustMode != bizcal.NoAdjustment {
		adjusted, err := spec.Calendar.AdjustAll(rawDue, spec.AdjustMode)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		due = adjusted
	}

	switch spec.Type {
	case TypeInterestOnly:
		return generateInterestOnly(spec, rawDue, due), nil
	case TypeBullet:
		return generateBullet(spec, rawDue, due), nil
	case TypeStepUp, TypeStepDown:
		return generateStepped(spec, rawDue, due), nil
	case TypeBalloon:
		return generateBalloon(spec, rawDue, due), nil
	case TypeMoratorium:
		return generateMoratorium(spec, rawDue, due), nil
	default:
		return generateEMI(spec, rawDue, due), nil
	}
}

// TotalInterest sums interest across a generated schedule.
func TotalInterest(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, ln := range lines {
		total = total.Add(ln.InterestDue)
	}
	return money.Round(total)
}

func appendLine(lines []Line, n int, rawStart, rawEnd, dueDate time.Time,
	opening, principal, interest decimal.Decimal, moratorium bool) []Line {
	return append(lines, Line{
		Number:       n,
		DueDate:      dueDate,
		PeriodStart:  rawStart,
		PeriodEnd:    rawEnd,
		Opening:      opening,
		PrincipalDue: principal,
		InterestDue:  interest,
		FeesDue:      decimal.Zero,
		TotalDue:     money.Round(principal.Add(interest)),
		Closing:      money.Round(opening.Sub(principal)),
		Moratorium:   moratorium,
	})
}

func generateEMI(spec Spec, rawDue, due []time.Time) []Line {
	n := spec.Periods
	r := PeriodicRate(spec.AnnualRatePct, spec.Frequency.PeriodsPerYear())
	emi := EMI(spec.Principal, spec.AnnualRatePct, n, spec.Frequency.PeriodsPerYear())

	lines := make([]Line, 0, n)
	balance := spec.Principal
	periodStart := spec.Start

	for i := 1; i <= n; i++ {
		interest := money.Round(balance.Mul(r))
		principal := emi.Sub(interest)
		if i == n || principal.GreaterThan(balance) {
			principal = balance
		}
		principal = money.NonNegative(principal)

		lines = appendLine(lines, i, periodStart, rawDue[i-1], due[i-1], balance, principal, interest, false)
		balance = balance.Sub(principal)
		periodStart = rawDue[i-1]
	}
	return lines
}

func generateInterestOnly(spec Spec, rawDue, due []time.Time) []Line {
	n := spec.Periods
	r := PeriodicRate(spec.AnnualRatePct, spec.Frequency.PeriodsPerYear())

	lines := make([]Line, 0, n)
	balance := spec.Principal
	periodStart := spec.Start

	for i := 1; i <= n; i++ {
		interest := money.Round(balance.Mul(r))
		principal := decimal.Zero
		if i == n {
			principal = balance
		}
		lines = appendLine(lines, i, periodStart, rawDue[i-1], due[i-1], balance, principal, interest, false)
		balance = balance.Sub(principal)
		periodStart = rawDue[i-1]
	}
	return lines
}

func generateBullet(spec Spec, rawDue, due []time.Time) []Line {
	n := spec.Periods
	r := PeriodicRate(spec.AnnualRatePct, spec.Frequency.PeriodsPerYear())

	lines := make([]Line, 0, n)
	balance := spec.Principal
	accrued := decimal.Zero
	periodStart := spec.Start

	for i := 1; i <= n; i++ {
		accrued = accrued.Add(money.Round(balance.Mul(r)))

		principal, interest := decimal.Zero, decimal.Zero
		if i == n {
			principal, interest = balance, accrued
		}
		lines = appendLine(lines, i, periodStart, rawDue[i-1], due[i-1], balance, principal, interest, false)
		balance = balance.Sub(principal)
		periodStart = rawDue[i-1]
	}
	return lines
}

// generateStepped recomputes the annuity installment on the remaining balance
// and remaining periods at every step boundary and applies the cumulative
// step multiplier. The final installment carries the residual.
func generateStepped(spec Spec, rawDue, due []time.Time) []Line {
	n := spec.Periods
	ppy := spec.Frequency.PeriodsPerYear()
	r := PeriodicRate(spec.AnnualRatePct, ppy)

	one := decimal.NewFromInt(1)
	stepFactor := one.Add(money.Fraction(spec.StepPercent))
	if spec.Type == TypeStepDown {
		stepFactor = one.Sub(money.Fraction(spec.StepPercent))
	}

	lines := make([]Line, 0, n)
	balance := spec.Principal
	periodStart := spec.Start
	step := 0
	emi := EMI(balance, spec.AnnualRatePct, n, ppy)

	for i := 1; i <= n; i++ {
		if i > 1 && (i-1)%spec.StepEveryPeriods == 0 {
			step++
			emi = money.Round(
				EMI(balance, spec.AnnualRatePct, n-i+1, ppy).
					Mul(stepFactor.Pow(decimal.NewFromInt(int64(step)))))
		}

		interest := money.Round(balance.Mul(r))
		principal := emi.Sub(interest)
		if i == n || principal.GreaterThan(balance) {
			principal = balance
		}
		principal = money.NonNegative(principal)

		lines = appendLine(lines, i, periodStart, rawDue[i-1], due[i-1], balance, principal, interest, false)
		balance = balance.Sub(principal)
		periodStart = rawDue[i-1]
	}
	return lines
}

func generateBalloon(spec Spec, rawDue, due []time.Time) []Line {
	n := spec.Periods
	ppy := spec.Frequency.PeriodsPerYear()
	r := PeriodicRate(spec.AnnualRatePct, ppy)

	balloon := money.Round(spec.Principal.Mul(spec.BalloonFraction))
	amortized := spec.Principal.Sub(balloon)
	emi := EMI(amortized, spec.AnnualRatePct, n, ppy)

	lines := make([]Line, 0, n)
	balance := spec.Principal
	periodStart := spec.Start

	for i := 1; i <= n; i++ {
		interest := money.Round(balance.Mul(r))

		var principal decimal.Decimal
		if i == n {
			principal = balance
		} else {
			principal = money.NonNegative(emi.Sub(interest))
			if floor := balance.Sub(balloon); principal.GreaterThan(floor) {
				principal = money.NonNegative(floor)
			}
		}

		lines = appendLine(lines, i, periodStart, rawDue[i-1], due[i-1], balance, principal, interest, false)
		balance = balance.Sub(principal)
		periodStart = rawDue[i-1]
	}
	return lines
}

func generateMoratorium(spec Spec, rawDue, due []time.Time) []Line {
	n := spec.Periods
	k := spec.MoratoriumPeriods
	ppy := spec.Frequency.PeriodsPerYear()
	r := PeriodicRate(spec.AnnualRatePct, ppy)

	lines := make([]Line, 0, n)
	balance := spec.Principal
	carried := decimal.Zero
	periodStart := spec.Start

	for i := 1; i <= k; i++ {
		interest := money.Round(balance.Mul(r))
		switch spec.MoratoriumTreatment {
		case MoratoriumCapitalize:
			lines = appendLine(lines, i, periodStart, rawDue[i-1], due[i-1], balance, decimal.Zero, decimal.Zero, true)
			balance = balance.Add(interest)
			// Opening of the next row reflects the capitalised balance.
			lines[len(lines)-1].Closing = balance
		case MoratoriumAccrue:
			carried = carried.Add(interest)
			lines = appendLine(lines, i, periodStart, rawDue[i-1], due[i-1], balance, decimal.Zero, decimal.Zero, true)
		default: // waive
			lines = appendLine(lines, i, periodStart, rawDue[i-1], due[i-1], balance, decimal.Zero, decimal.Zero, true)
		}
		periodStart = rawDue[i-1]
	}

	remaining := n - k
	emi := EMI(balance, spec.AnnualRatePct, remaining, ppy)

	for i := k + 1; i <= n; i++ {
		interest := money.Round(balance.Mul(r))
		if i == k+1 && carried.IsPositive() {
			interest = interest.Add(carried)
		}

		principal := emi.Sub(money.Round(balance.Mul(r)))
		if i == n || principal.GreaterThan(balance) {
			principal = balance
		}
		principal = money.NonNegative(principal)

		lines = appendLine(lines, i, periodStart, rawDue[i-1], due[i-1], balance, principal, interest, false)
		balance = balance.Sub(principal)
		periodStart = rawDue[i-1]
	}
	return lines
}
