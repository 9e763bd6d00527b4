// Package service implements the computation cores of the loan engine.
// Everything here is free of persistence: inputs arrive by value (or as
// already-loaded aggregates) and outputs are plain values the application
// layer persists inside its transaction.
package service

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

// Component is one of the three due components of an installment.
type Component int

const (
	ComponentFees Component = iota
	ComponentInterest
	ComponentPrincipal
)

// WaterfallPolicy yields the component allocation order for an installment.
// The default is fees, then interest, then principal; a product may carry an
// alternative order.
type WaterfallPolicy interface {
	Order(inst *model.Installment) []Component
}

// FeesInterestPrincipal is the default waterfall.
type FeesInterestPrincipal struct{}

// Order returns fees, interest, principal.
func (FeesInterestPrincipal) Order(*model.Installment) []Component {
	return []Component{ComponentFees, ComponentInterest, ComponentPrincipal}
}

// AllocationResult is the outcome of pushing a payment through the waterfall.
type AllocationResult struct {
	Allocations []model.PaymentAllocation
	Unallocated decimal.Decimal
}

// Allocate walks the open installments oldest first and allocates the amount
// through the policy's component order, capped at each component's remaining
// due. Installments are mutated in place (paid amounts and status). The
// function is deterministic and never produces negative component balances.
func Allocate(paymentID uuid.UUID, installments []*model.Installment, amount decimal.Decimal, policy WaterfallPolicy) AllocationResult {
	if policy == nil {
		policy = FeesInterestPrincipal{}
	}

	sort.SliceStable(installments, func(i, j int) bool {
		if installments[i].DueDate.Equal(installments[j].DueDate) {
			return installments[i].Number < installments[j].Number
		}
		return installments[i].DueDate.Before(installments[j].DueDate)
	})

	remaining := amount
	var allocations []model.PaymentAllocation

	for _, inst := range installments {
		if !remaining.IsPositive() {
			break
		}
		if !inst.Status.IsOpen() {
			continue
		}

		alloc := model.PaymentAllocation{
			ID:                uuid.New(),
			PaymentID:         paymentID,
			InstallmentID:     inst.ID,
			InstallmentNumber: inst.Number,
		}

		for _, component := range policy.Order(inst) {
			if !remaining.IsPositive() {
				break
			}
			switch component {
			case ComponentFees:
				take := decimal.Min(remaining, inst.FeesRemaining())
				inst.FeesPaid = inst.FeesPaid.Add(take)
				alloc.FeesAllocated = alloc.FeesAllocated.Add(take)
				remaining = remaining.Sub(take)
			case ComponentInterest:
				take := decimal.Min(remaining, inst.InterestRemaining())
				inst.InterestPaid = inst.InterestPaid.Add(take)
				alloc.InterestAllocated = alloc.InterestAllocated.Add(take)
				remaining = remaining.Sub(take)
			case ComponentPrincipal:
				take := decimal.Min(remaining, inst.PrincipalRemaining())
				inst.PrincipalPaid = inst.PrincipalPaid.Add(take)
				alloc.PrincipalAllocated = alloc.PrincipalAllocated.Add(take)
				remaining = remaining.Sub(take)
			}
		}

		if inst.IsSettled() {
			inst.Status = valueobject.InstallmentPaid
		} else if alloc.Total().IsPositive() {
			inst.Status = valueobject.InstallmentPartiallyPaid
		}

		if alloc.Total().IsPositive() {
			allocations = append(allocations, alloc)
		}
	}

	return AllocationResult{Allocations: allocations, Unallocated: remaining}
}

// OutstandingTotals recomputes the account-level outstanding components and
// the next due row from the schedule.
type OutstandingTotals struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Fees      decimal.Decimal

	NextDue *model.Installment
}

// RecomputeOutstanding folds the schedule into component outstanding totals
// and finds the earliest row with an unpaid remainder.
func RecomputeOutstanding(installments []*model.Installment) OutstandingTotals {
	totals := OutstandingTotals{
		Principal: decimal.Zero,
		Interest:  decimal.Zero,
		Fees:      decimal.Zero,
	}

	for _, inst := range installments {
		if !inst.Status.IsOpen() {
			continue
		}
		totals.Principal = totals.Principal.Add(inst.PrincipalRemaining())
		totals.Interest = totals.Interest.Add(inst.InterestRemaining())
		totals.Fees = totals.Fees.Add(inst.FeesRemaining())

		if totals.NextDue == nil && inst.TotalRemaining().IsPositive() {
			totals.NextDue = inst
		}
	}
	return totals
}
