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

// RestructureRequest is the approved modification to apply.
type RestructureRequest struct {
	Type          valueobject.RestructureType
	EffectiveDate time.Time

	NewRatePct       *decimal.Decimal
	NewTenurePeriods *int

	PrincipalWaived decimal.Decimal
	InterestWaived  decimal.Decimal
	FeesWaived      decimal.Decimal

	Reason      string
	RequestedBy string
	ApprovedBy  string
}

// RestructurePlan is the forward-only schedule mutation to persist: pending
// rows from the effective date onward are cancelled and replaced by the
// regenerated lines; paid and partially-paid rows are untouched.
type RestructurePlan struct {
	Event         model.RestructureEvent
	NewLines      []schedule.Line
	CancelNumbers []int
	FirstNumber   int
	NewRatePct    decimal.Decimal
	NewTenure     int
}

// PlanRestructure computes the schedule mutation for an approved restructure.
// Only the forward tail is regenerated; the amortized principal is the
// principal still due on the cancelled rows minus any haircut.
func PlanRestructure(acct *model.LoanAccount, installments []*model.Installment, req RestructureRequest, cal *bizcal.Calendar) (RestructurePlan, error) {
	if req.Type.IsZero() {
		return RestructurePlan{}, apperr.New(apperr.KindInvalidInput, "restructure type is required")
	}
	if acct.IsWrittenOff {
		return RestructurePlan{}, apperr.New(apperr.KindConflictingState,
			"cannot restructure a written-off account").WithEntity(acct.ID.String())
	}
	if !acct.IsOpen() {
		return RestructurePlan{}, apperr.New(apperr.KindConflictingState,
			"account is not active").WithEntity(acct.ID.String())
	}
	if req.PrincipalWaived.IsNegative() || req.InterestWaived.IsNegative() || req.FeesWaived.IsNegative() {
		return RestructurePlan{}, apperr.New(apperr.KindInvalidInput, "waived amounts must not be negative")
	}

	// Forward tail: pending rows due on or after the effective date. Paid
	// and partially-paid rows are preserved; rows cancelled by earlier
	// reshapes do not count against the tenure.
	var cancel []int
	preserved := 0
	forwardPrincipal := decimal.Zero
	for _, inst := range installments {
		if inst.Status.Equal(valueobject.InstallmentPending) && !inst.DueDate.Before(req.EffectiveDate) {
			cancel = append(cancel, inst.Number)
			forwardPrincipal = forwardPrincipal.Add(inst.PrincipalRemaining())
			continue
		}
		if inst.Status.IsOpen() || inst.Status.Equal(valueobject.InstallmentPaid) {
			preserved++
		}
	}
	if len(cancel) == 0 {
		return RestructurePlan{}, apperr.New(apperr.KindConflictingState,
			"no pending installments on or after the effective date").WithEntity(acct.ID.String())
	}

	newRate := acct.CurrentRatePct
	if req.NewRatePct != nil {
		if req.NewRatePct.IsNegative() {
			return RestructurePlan{}, apperr.New(apperr.KindInvalidInput, "rate must not be negative")
		}
		newRate = *req.NewRatePct
	}

	newTenure := acct.TenurePeriods
	if req.NewTenurePeriods != nil {
		newTenure = *req.NewTenurePeriods
	}
	regenPeriods := newTenure - preserved
	if regenPeriods <= 0 {
		return RestructurePlan{}, apperr.New(apperr.KindInvalidInput,
			"new tenure %d leaves no room for %d preserved installments", newTenure, preserved)
	}

	regenPrincipal := forwardPrincipal.Sub(req.PrincipalWaived)
	if regenPrincipal.LessThanOrEqual(decimal.Zero) {
		return RestructurePlan{}, apperr.New(apperr.KindInvalidInput,
			"principal waiver %s exceeds forward principal %s", req.PrincipalWaived, forwardPrincipal)
	}

	lines, err := schedule.Generate(schedule.Spec{
		Principal:     regenPrincipal,
		AnnualRatePct: newRate,
		Periods:       regenPeriods,
		Frequency:     acct.Frequency,
		Type:          schedule.TypeEMI,
		Start:         req.EffectiveDate,
		Calendar:      cal,
		AdjustMode:    acct.AdjustMode,
	})
	if err != nil {
		return RestructurePlan{}, apperr.Wrap(apperr.KindInvalidInput, err, "regenerate schedule")
	}

	oldEMI := currentEMI(installments)
	newEMI := lines[0].TotalDue

	event := model.RestructureEvent{
		ID:              uuid.New(),
		LoanAccountID:   acct.ID,
		Type:            req.Type,
		EffectiveDate:   req.EffectiveDate,
		OldPrincipal:    acct.PrincipalOutstanding,
		OldRatePct:      acct.CurrentRatePct,
		OldTenure:       acct.TenurePeriods,
		OldEMI:          oldEMI,
		NewPrincipal:    money.Round(acct.PrincipalOutstanding.Sub(req.PrincipalWaived)),
		NewRatePct:      newRate,
		NewTenure:       newTenure,
		NewEMI:          &newEMI,
		PrincipalWaived: req.PrincipalWaived,
		InterestWaived:  req.InterestWaived,
		FeesWaived:      req.FeesWaived,
		Reason:          req.Reason,
		RequestedBy:     req.RequestedBy,
		ApprovedBy:      req.ApprovedBy,
		Status:          "applied",
	}

	first := cancel[0]
	for _, n := range cancel {
		if n < first {
			first = n
		}
	}

	return RestructurePlan{
		Event:         event,
		NewLines:      lines,
		CancelNumbers: cancel,
		FirstNumber:   first,
		NewRatePct:    newRate,
		NewTenure:     newTenure,
	}, nil
}

// ApplyRestructure mutates the account per the plan. The restructure flag is
// set unconditionally, which forces ECL stage >= 2 at the next staging run.
func ApplyRestructure(acct *model.LoanAccount, plan RestructurePlan) {
	acct.PrincipalOutstanding = money.NonNegative(acct.PrincipalOutstanding.Sub(plan.Event.PrincipalWaived))
	acct.InterestOutstanding = money.NonNegative(acct.InterestOutstanding.Sub(plan.Event.InterestWaived))
	acct.FeesOutstanding = money.NonNegative(acct.FeesOutstanding.Sub(plan.Event.FeesWaived))
	acct.CurrentRatePct = plan.NewRatePct
	if !acct.Rate.Type.IsFloating() {
		acct.Rate.FixedPct = plan.NewRatePct
	}
	acct.TenurePeriods = plan.NewTenure
	acct.IsRestructured = true
}

// currentEMI returns the total due of the first open installment.
func currentEMI(installments []*model.Installment) *decimal.Decimal {
	for _, inst := range installments {
		if inst.Status.IsOpen() {
			emi := inst.TotalDue
			return &emi
		}
	}
	return nil
}
