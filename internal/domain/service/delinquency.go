package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// SMABoundaries are the configurable upper bounds of the SMA buckets.
type SMABoundaries struct {
	SMA0 int
	SMA1 int
	SMA2 int
}

// DefaultSMABoundaries is the regulatory 30/60/90 layout.
func DefaultSMABoundaries() SMABoundaries {
	return SMABoundaries{SMA0: 30, SMA1: 60, SMA2: 90}
}

// DelinquencyEngine computes DPD, buckets and the sticky NPA state machine.
// The boundaries and NPA trigger are configuration, not constants.
type DelinquencyEngine struct {
	boundaries SMABoundaries
	npaTrigger int
}

// NewDelinquencyEngine builds an engine; zero values fall back to defaults.
func NewDelinquencyEngine(boundaries SMABoundaries, npaTriggerDPD int) *DelinquencyEngine {
	if boundaries.SMA2 == 0 {
		boundaries = DefaultSMABoundaries()
	}
	if npaTriggerDPD <= 0 {
		npaTriggerDPD = 90
	}
	return &DelinquencyEngine{boundaries: boundaries, npaTrigger: npaTriggerDPD}
}

// DPD returns the whole-day count from the oldest unpaid due date to asOf,
// and that due date. The oldest unpaid installment is the earliest open row
// whose total paid is less than its total due. No unpaid row means DPD 0.
func (e *DelinquencyEngine) DPD(installments []*model.Installment, asOf time.Time) (int, *time.Time) {
	for _, inst := range installments {
		if !inst.Status.IsOpen() || !inst.TotalRemaining().IsPositive() {
			continue
		}
		if inst.DueDate.Before(asOf) {
			dpd := int(asOf.Sub(inst.DueDate).Hours() / 24)
			due := inst.DueDate
			return dpd, &due
		}
		// Earliest unpaid row is not yet due.
		return 0, nil
	}
	return 0, nil
}

// Bucket maps a DPD to its delinquency bucket.
func (e *DelinquencyEngine) Bucket(dpd int) valueobject.Bucket {
	switch {
	case dpd <= 0:
		return valueobject.BucketCurrent
	case dpd <= e.boundaries.SMA0:
		return valueobject.BucketSMA0
	case dpd <= e.boundaries.SMA1:
		return valueobject.BucketSMA1
	case dpd <= e.boundaries.SMA2:
		return valueobject.BucketSMA2
	case dpd <= 365:
		return valueobject.BucketNPASubstandard
	case dpd <= 1095:
		return valueobject.BucketNPADoubtful
	default:
		return valueobject.BucketNPALoss
	}
}

// NPAState is the outcome of one evaluation of the sticky state machine.
type NPAState struct {
	IsNPA    bool
	NPADate  *time.Time
	Category valueobject.NPACategory
	Entered  bool
	Exited   bool
}

// EvaluateNPA applies the sticky rule: an account enters NPA at the trigger
// DPD and stays NPA until DPD cures fully back to zero. Partial payments
// never reset the flag.
func (e *DelinquencyEngine) EvaluateNPA(dpd int, asOf time.Time, wasNPA bool, npaDate *time.Time) NPAState {
	if dpd < 0 {
		dpd = 0
	}

	state := NPAState{IsNPA: wasNPA, NPADate: npaDate}

	switch {
	case dpd >= e.npaTrigger:
		if !state.IsNPA {
			state.Entered = true
			d := asOf
			state.NPADate = &d
		} else if state.NPADate == nil {
			d := asOf
			state.NPADate = &d
		}
		state.IsNPA = true
	case state.IsNPA && dpd > 0:
		// Sticky: still impaired until full cure.
		if state.NPADate == nil {
			d := asOf
			state.NPADate = &d
		}
	default:
		if state.IsNPA && dpd == 0 {
			state.Exited = true
		}
		state.IsNPA = false
		state.NPADate = nil
	}

	if state.IsNPA && state.NPADate != nil {
		age := int(asOf.Sub(*state.NPADate).Hours() / 24)
		switch {
		case age < 365:
			state.Category = valueobject.NPACategorySubstandard
		case age < 1095:
			state.Category = valueobject.NPACategoryDoubtful
		default:
			state.Category = valueobject.NPACategoryLoss
		}
	}

	return state
}

// Snapshot computes the full delinquency snapshot for an account on a date.
func (e *DelinquencyEngine) Snapshot(acct *model.LoanAccount, installments []*model.Installment, asOf time.Time) model.DelinquencySnapshot {
	dpd, oldest := e.DPD(installments, asOf)

	overdueP, overdueI, overdueF := decimal.Zero, decimal.Zero, decimal.Zero
	missed := 0
	for _, inst := range installments {
		if !inst.Status.IsOpen() || !inst.DueDate.Before(asOf) || !inst.TotalRemaining().IsPositive() {
			continue
		}
		overdueP = overdueP.Add(inst.PrincipalRemaining())
		overdueI = overdueI.Add(inst.InterestRemaining())
		overdueF = overdueF.Add(inst.FeesRemaining())
		missed++
	}

	npa := e.EvaluateNPA(dpd, asOf, acct.IsNPA, acct.NPADate)

	return model.DelinquencySnapshot{
		LoanAccountID:        acct.ID,
		SnapshotDate:         asOf,
		DPD:                  dpd,
		Bucket:               e.Bucket(dpd),
		IsNPA:                npa.IsNPA,
		NPACategory:          npa.Category,
		OverduePrincipal:     money.Round(overdueP),
		OverdueInterest:      money.Round(overdueI),
		OverdueFees:          money.Round(overdueF),
		TotalOverdue:         money.Round(overdueP.Add(overdueI).Add(overdueF)),
		PrincipalOutstanding: acct.PrincipalOutstanding,
		MissedInstallments:   missed,
		OldestDueDate:        oldest,
	}
}

// ApplyDelinquency writes the computed state onto the account and returns the
// NPA transition.
func (e *DelinquencyEngine) ApplyDelinquency(acct *model.LoanAccount, installments []*model.Installment, asOf time.Time) NPAState {
	dpd, _ := e.DPD(installments, asOf)
	state := e.EvaluateNPA(dpd, asOf, acct.IsNPA, acct.NPADate)

	acct.DPD = dpd
	acct.Bucket = e.Bucket(dpd)
	acct.IsNPA = state.IsNPA
	acct.NPADate = state.NPADate
	acct.NPACategory = state.Category
	return state
}
