package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/bizcal"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
	"github.com/harshitrathi14/LOS-LMS/pkg/schedule"
)

// PayoffBreakdown itemizes the amount needed to fully discharge an account.
type PayoffBreakdown struct {
	Principal       decimal.Decimal
	AccruedInterest decimal.Decimal
	Fees            decimal.Decimal
	OverdueTotal    decimal.Decimal
	Penalty         decimal.Decimal
	Total           decimal.Decimal
}

// Payoff computes the full-discharge amount as of a date. The penalty is
// penaltyRate% of the prepaid principal unless waived.
func Payoff(acct *model.LoanAccount, installments []*model.Installment, asOf time.Time, waivePenalty bool) PayoffBreakdown {
	overdue := decimal.Zero
	for _, inst := range installments {
		if inst.Status.IsOpen() && inst.DueDate.Before(asOf) {
			overdue = overdue.Add(inst.TotalRemaining())
		}
	}

	penalty := decimal.Zero
	if !waivePenalty {
		penalty = money.Share(acct.PrincipalOutstanding, acct.PrepaymentPenaltyPct)
	}

	b := PayoffBreakdown{
		Principal:       acct.PrincipalOutstanding,
		AccruedInterest: acct.CumulativeAccrued,
		Fees:            acct.FeesOutstanding,
		OverdueTotal:    money.Round(overdue),
		Penalty:         penalty,
	}
	b.Total = money.Round(b.Principal.Add(b.AccruedInterest).Add(b.Fees).Add(b.OverdueTotal).Add(b.Penalty))
	return b
}

// PrepaymentImpact compares the schedule before and after a proposed
// prepayment. It is a pure function: calling it any number of times changes
// no state.
type PrepaymentImpact struct {
	Action           valueobject.PrepaymentAction
	Penalty          decimal.Decimal
	PrincipalReduced decimal.Decimal

	OldEMI    decimal.Decimal
	NewEMI    decimal.Decimal
	OldTenure int
	NewTenure int

	InterestSaved decimal.Decimal
	Payoff        PayoffBreakdown
}

// Impact analyses a proposed prepayment without touching state.
func Impact(acct *model.LoanAccount, installments []*model.Installment, amount decimal.Decimal, action valueobject.PrepaymentAction, asOf time.Time) (PrepaymentImpact, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return PrepaymentImpact{}, apperr.New(apperr.KindInvalidInput, "prepayment amount must be positive")
	}
	if action.IsZero() {
		return PrepaymentImpact{}, apperr.New(apperr.KindInvalidInput, "prepayment action is required")
	}
	if !acct.IsOpen() {
		return PrepaymentImpact{}, apperr.New(apperr.KindConflictingState,
			"account is not active").WithEntity(acct.ID.String())
	}

	open := openPending(installments)
	oldTenure := len(open)
	oldEMI := decimal.Zero
	oldInterest := decimal.Zero
	if len(open) > 0 {
		oldEMI = open[0].TotalDue
	}
	for _, inst := range open {
		oldInterest = oldInterest.Add(inst.InterestRemaining())
	}

	penalty := money.Share(amount, acct.PrepaymentPenaltyPct)
	impact := PrepaymentImpact{
		Action:    action,
		Penalty:   penalty,
		OldEMI:    oldEMI,
		OldTenure: oldTenure,
		Payoff:    Payoff(acct, installments, asOf, false),
	}

	if action == valueobject.PrepaymentForeclosure {
		impact.PrincipalReduced = acct.PrincipalOutstanding
		impact.NewTenure = 0
		impact.InterestSaved = money.Round(oldInterest)
		return impact, nil
	}

	reduced := amount.Sub(penalty)
	if reduced.GreaterThanOrEqual(acct.PrincipalOutstanding) {
		return PrepaymentImpact{}, apperr.New(apperr.KindInvalidInput,
			"prepayment %s would clear the account; use foreclosure", amount).
			WithHint("resubmit with action=foreclosure")
	}
	impact.PrincipalReduced = reduced
	newOutstanding := acct.PrincipalOutstanding.Sub(reduced)

	ppy := acct.Frequency.PeriodsPerYear()
	switch action {
	case valueobject.PrepaymentReduceEMI:
		impact.NewTenure = oldTenure
		if oldTenure > 0 {
			impact.NewEMI = schedule.EMI(newOutstanding, acct.CurrentRatePct, oldTenure, ppy)
		}
		impact.InterestSaved = money.Round(oldInterest.Sub(
			annuityInterest(newOutstanding, impact.NewEMI, oldTenure)))
	case valueobject.PrepaymentReduceTenure:
		impact.NewEMI = oldEMI
		impact.NewTenure = schedule.PeriodsForEMI(oldEMI, newOutstanding, acct.CurrentRatePct, ppy, oldTenure)
		// Amortize row by row: the last installment only clears the residual
		// balance, so NewTenure*EMI would overstate the remaining interest.
		r := schedule.PeriodicRate(acct.CurrentRatePct, ppy)
		newInterest, balance := decimal.Zero, newOutstanding
		for i := 0; i < impact.NewTenure && balance.IsPositive(); i++ {
			interest := money.Round(balance.Mul(r))
			newInterest = newInterest.Add(interest)
			balance = balance.Sub(decimal.Min(balance, money.NonNegative(oldEMI.Sub(interest))))
		}
		impact.InterestSaved = money.Round(oldInterest.Sub(newInterest))
	default:
		return PrepaymentImpact{}, apperr.New(apperr.KindInvalidInput, "unsupported action %q", action)
	}
	return impact, nil
}

// PrepaymentPlan is the state mutation an applied prepayment produces.
type PrepaymentPlan struct {
	Record        model.Prepayment
	NewLines      []schedule.Line
	CancelNumbers []int
	FirstNumber   int
	Foreclose     bool
}

// PlanPrepayment converts an impact analysis into a concrete schedule
// mutation. Foreclosure cancels every open row and closes the account; the
// partial actions regenerate the pending tail.
func PlanPrepayment(acct *model.LoanAccount, installments []*model.Installment, amount decimal.Decimal, action valueobject.PrepaymentAction, paidAt time.Time, cal *bizcal.Calendar, processedBy string) (PrepaymentPlan, error) {
	impact, err := Impact(acct, installments, amount, action, paidAt)
	if err != nil {
		return PrepaymentPlan{}, err
	}

	record := model.Prepayment{
		ID:               uuid.New(),
		LoanAccountID:    acct.ID,
		Action:           action,
		PrepaidAt:        paidAt,
		Amount:           amount,
		PenaltyAmount:    impact.Penalty,
		PrincipalReduced: impact.PrincipalReduced,
		OldOutstanding:   acct.PrincipalOutstanding,
		OldTenure:        impact.OldTenure,
		NewTenure:        impact.NewTenure,
		InterestSaved:    impact.InterestSaved,
		ProcessedBy:      processedBy,
	}
	if impact.OldTenure > 0 {
		oldEMI := impact.OldEMI
		record.OldEMI = &oldEMI
	}

	plan := PrepaymentPlan{Record: record}

	if action == valueobject.PrepaymentForeclosure {
		plan.Foreclose = true
		plan.Record.IsForeclosure = true
		plan.Record.NewOutstanding = decimal.Zero
		for _, inst := range installments {
			if inst.Status.IsOpen() {
				plan.CancelNumbers = append(plan.CancelNumbers, inst.Number)
			}
		}
		return plan, nil
	}

	newOutstanding := acct.PrincipalOutstanding.Sub(impact.PrincipalReduced)
	plan.Record.NewOutstanding = newOutstanding
	newEMI := impact.NewEMI
	plan.Record.NewEMI = &newEMI

	open := openPending(installments)
	if len(open) == 0 {
		return PrepaymentPlan{}, apperr.New(apperr.KindConflictingState,
			"no pending installments to regenerate").WithEntity(acct.ID.String())
	}
	first := open[0].Number
	for _, inst := range open {
		plan.CancelNumbers = append(plan.CancelNumbers, inst.Number)
	}
	plan.FirstNumber = first

	lines, err := schedule.Generate(schedule.Spec{
		Principal:     newOutstanding,
		AnnualRatePct: acct.CurrentRatePct,
		Periods:       impact.NewTenure,
		Frequency:     acct.Frequency,
		Type:          schedule.TypeEMI,
		Start:         paidAt,
		Calendar:      cal,
		AdjustMode:    acct.AdjustMode,
	})
	if err != nil {
		return PrepaymentPlan{}, apperr.Wrap(apperr.KindInvalidInput, err, "regenerate schedule")
	}
	plan.NewLines = lines
	return plan, nil
}

// openPending returns pending rows in due-date order. Partially-paid rows
// stay as boundary rows and are not regenerated.
func openPending(installments []*model.Installment) []*model.Installment {
	var out []*model.Installment
	for _, inst := range installments {
		if inst.Status.Equal(valueobject.InstallmentPending) {
			out = append(out, inst)
		}
	}
	return out
}

// annuityInterest is the total interest paid amortizing a balance with a
// fixed installment over n periods: n*EMI - P, floored at zero.
func annuityInterest(principal, emi decimal.Decimal, periods int) decimal.Decimal {
	if periods <= 0 || emi.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	total := emi.Mul(decimal.NewFromInt(int64(periods))).Sub(principal)
	return money.NonNegative(total)
}
