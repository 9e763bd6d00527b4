package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// residualTolerance forgives sub-cent residue when checking a natural close.
var residualTolerance = decimal.RequireFromString("0.01")

// CloseNormal closes an account whose outstanding has reached zero
// naturally.
func CloseNormal(acct *model.LoanAccount, installments []*model.Installment, on time.Time) error {
	if !acct.IsOpen() {
		return apperr.New(apperr.KindConflictingState, "account is not active").WithEntity(acct.ID.String())
	}
	if acct.PrincipalOutstanding.GreaterThan(residualTolerance) ||
		acct.InterestOutstanding.GreaterThan(residualTolerance) {
		return apperr.New(apperr.KindConflictingState,
			"outstanding principal %s / interest %s prevents normal closure",
			acct.PrincipalOutstanding, acct.InterestOutstanding).
			WithHint("use settlement, foreclosure or write-off")
	}
	for _, inst := range installments {
		if inst.Status.IsOpen() && inst.TotalRemaining().GreaterThan(residualTolerance) {
			return apperr.New(apperr.KindConflictingState,
				"installment %d is still unpaid", inst.Number)
		}
	}

	markClosed(acct, valueobject.ClosureNormal, on)
	return nil
}

// CloseSettlement accepts a negotiated amount as full discharge; the
// residual is waived. The settlement must be below the total outstanding.
func CloseSettlement(acct *model.LoanAccount, amount decimal.Decimal, on time.Time) error {
	if !acct.IsOpen() {
		return apperr.New(apperr.KindConflictingState, "account is not active").WithEntity(acct.ID.String())
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperr.New(apperr.KindInvalidInput, "settlement amount must be positive")
	}
	total := acct.TotalOutstanding()
	if amount.GreaterThanOrEqual(total) {
		return apperr.New(apperr.KindInvalidInput,
			"settlement %s covers the outstanding %s; use normal closure", amount, total)
	}

	settled := amount
	acct.SettlementAmt = &settled
	markClosed(acct, valueobject.ClosureSettlement, on)
	return nil
}

// markClosed applies the terminal close state.
func markClosed(acct *model.LoanAccount, closureType valueobject.ClosureType, on time.Time) {
	acct.Status = valueobject.LoanStatusClosed
	acct.ClosureType = closureType
	closed := on
	acct.ClosureDate = &closed
	acct.PrincipalOutstanding = decimal.Zero
	acct.InterestOutstanding = decimal.Zero
	acct.FeesOutstanding = decimal.Zero
}

// WriteOffComponents selects what a partial write-off removes. Zero values
// write off the full outstanding component.
type WriteOffComponents struct {
	Principal *decimal.Decimal
	Interest  *decimal.Decimal
	Fees      *decimal.Decimal
}

// PlanWriteOff builds the write-off record and applies the terminal state to
// the account. Writing off forces ECL stage 3 at the next staging run.
func PlanWriteOff(acct *model.LoanAccount, components WriteOffComponents, reason, approvedBy string, on time.Time) (model.WriteOff, error) {
	if acct.IsWrittenOff {
		return model.WriteOff{}, apperr.New(apperr.KindConflictingState,
			"account is already written off").WithEntity(acct.ID.String())
	}
	if acct.Status.Equal(valueobject.LoanStatusClosed) {
		return model.WriteOff{}, apperr.New(apperr.KindConflictingState,
			"cannot write off a closed account").WithEntity(acct.ID.String())
	}

	principal := acct.PrincipalOutstanding
	interest := acct.InterestOutstanding
	fees := acct.FeesOutstanding
	partial := false

	if components.Principal != nil {
		if components.Principal.GreaterThan(principal) {
			return model.WriteOff{}, apperr.New(apperr.KindInvalidInput,
				"principal write-off %s exceeds outstanding %s", components.Principal, principal)
		}
		principal = *components.Principal
		partial = true
	}
	if components.Interest != nil {
		interest = decimal.Min(*components.Interest, interest)
		partial = true
	}
	if components.Fees != nil {
		fees = decimal.Min(*components.Fees, fees)
		partial = true
	}

	total := principal.Add(interest).Add(fees)
	if !total.IsPositive() {
		return model.WriteOff{}, apperr.New(apperr.KindInvalidInput, "nothing to write off")
	}

	wo := model.WriteOff{
		ID:                  uuid.New(),
		LoanAccountID:       acct.ID,
		WriteOffDate:        on,
		PrincipalWrittenOff: principal,
		InterestWrittenOff:  interest,
		FeesWrittenOff:      fees,
		TotalWrittenOff:     money.Round(total),
		DPDAtWriteOff:       acct.DPD,
		NPACategory:         acct.NPACategory,
		Partial:             partial,
		Reason:              reason,
		ApprovedBy:          approvedBy,
		RecoveredPrincipal:  decimal.Zero,
		RecoveredInterest:   decimal.Zero,
		RecoveredFees:       decimal.Zero,
		TotalRecovered:      decimal.Zero,
		RecoveryStatus:      "pending",
	}

	acct.PrincipalOutstanding = money.NonNegative(acct.PrincipalOutstanding.Sub(principal))
	acct.InterestOutstanding = money.NonNegative(acct.InterestOutstanding.Sub(interest))
	acct.FeesOutstanding = money.NonNegative(acct.FeesOutstanding.Sub(fees))
	acct.IsWrittenOff = true
	if !partial || !acct.TotalOutstanding().IsPositive() {
		acct.Status = valueobject.LoanStatusWrittenOff
		acct.ClosureType = valueobject.ClosureWriteOff
		closed := on
		acct.ClosureDate = &closed
	}
	return wo, nil
}

// ApplyWriteOffRecovery allocates a recovery fees -> interest -> principal
// against the written-off components and advances the write-off's running
// totals.
func ApplyWriteOffRecovery(wo *model.WriteOff, amount decimal.Decimal, source, notes string, paymentID *uuid.UUID, on time.Time) (model.WriteOffRecovery, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return model.WriteOffRecovery{}, apperr.New(apperr.KindInvalidInput, "recovery amount must be positive")
	}

	remaining := amount

	fees := decimal.Min(remaining, money.NonNegative(wo.FeesWrittenOff.Sub(wo.RecoveredFees)))
	remaining = remaining.Sub(fees)

	interest := decimal.Min(remaining, money.NonNegative(wo.InterestWrittenOff.Sub(wo.RecoveredInterest)))
	remaining = remaining.Sub(interest)

	principal := decimal.Min(remaining, money.NonNegative(wo.PrincipalWrittenOff.Sub(wo.RecoveredPrincipal)))

	recovery := model.WriteOffRecovery{
		ID:                 uuid.New(),
		WriteOffID:         wo.ID,
		PaymentID:          paymentID,
		RecoveryDate:       on,
		Amount:             amount,
		PrincipalRecovered: principal,
		InterestRecovered:  interest,
		FeesRecovered:      fees,
		Source:             source,
		Notes:              notes,
	}

	wo.RecoveredPrincipal = wo.RecoveredPrincipal.Add(principal)
	wo.RecoveredInterest = wo.RecoveredInterest.Add(interest)
	wo.RecoveredFees = wo.RecoveredFees.Add(fees)
	wo.TotalRecovered = wo.TotalRecovered.Add(principal).Add(interest).Add(fees)
	last := on
	wo.LastRecoveryDate = &last

	switch {
	case wo.TotalRecovered.GreaterThanOrEqual(wo.TotalWrittenOff):
		wo.RecoveryStatus = "complete"
	case wo.TotalRecovered.IsPositive():
		wo.RecoveryStatus = "partial"
	}

	return recovery, nil
}
