package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

func TestCloseNormal(t *testing.T) {
	acct, rows := accountWithSchedule(t)
	payRows(acct, rows, 12)
	acct.PrincipalOutstanding = decimal.Zero
	acct.InterestOutstanding = decimal.Zero

	require.NoError(t, CloseNormal(acct, rows, d(2026, 1, 1)))
	assert.True(t, acct.Status.Equal(valueobject.LoanStatusClosed))
	assert.Equal(t, valueobject.ClosureNormal, acct.ClosureType)
	require.NotNil(t, acct.ClosureDate)
}

func TestCloseNormal_RejectsOutstanding(t *testing.T) {
	acct, rows := accountWithSchedule(t)

	err := CloseNormal(acct, rows, d(2025, 6, 1))
	assert.True(t, apperr.IsKind(err, apperr.KindConflictingState))
}

func TestCloseSettlement(t *testing.T) {
	acct, _ := accountWithSchedule(t)
	acct.InterestOutstanding = dec("5000")

	require.NoError(t, CloseSettlement(acct, dec("60000"), d(2025, 6, 1)))
	assert.True(t, acct.Status.Equal(valueobject.LoanStatusClosed))
	assert.Equal(t, valueobject.ClosureSettlement, acct.ClosureType)
	require.NotNil(t, acct.SettlementAmt)
	assert.True(t, acct.SettlementAmt.Equal(dec("60000")))
	assert.True(t, acct.TotalOutstanding().IsZero(), "residual is waived")
}

func TestCloseSettlement_MustBeBelowOutstanding(t *testing.T) {
	acct, _ := accountWithSchedule(t)

	err := CloseSettlement(acct, dec("150000"), d(2025, 6, 1))
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}

func TestPlanWriteOff_Full(t *testing.T) {
	acct, _ := accountWithSchedule(t)
	acct.InterestOutstanding = dec("5000")
	acct.FeesOutstanding = dec("200")
	acct.DPD = 200
	acct.NPACategory = valueobject.NPACategorySubstandard

	wo, err := PlanWriteOff(acct, WriteOffComponents{}, "unrecoverable", "credit-head", d(2025, 9, 1))
	require.NoError(t, err)

	assert.True(t, wo.TotalWrittenOff.Equal(dec("105200")))
	assert.Equal(t, 200, wo.DPDAtWriteOff)
	assert.Equal(t, valueobject.NPACategorySubstandard, wo.NPACategory)
	assert.False(t, wo.Partial)
	assert.True(t, acct.IsWrittenOff)
	assert.True(t, acct.Status.Equal(valueobject.LoanStatusWrittenOff))
	assert.True(t, acct.TotalOutstanding().IsZero())

	// A second write-off is rejected.
	_, err = PlanWriteOff(acct, WriteOffComponents{}, "again", "x", d(2025, 9, 2))
	assert.True(t, apperr.IsKind(err, apperr.KindConflictingState))
}

func TestPlanWriteOff_Partial(t *testing.T) {
	acct, _ := accountWithSchedule(t)
	partialPrincipal := dec("40000")

	wo, err := PlanWriteOff(acct, WriteOffComponents{Principal: &partialPrincipal}, "partial", "credit-head", d(2025, 9, 1))
	require.NoError(t, err)

	assert.True(t, wo.Partial)
	assert.True(t, acct.PrincipalOutstanding.Equal(dec("60000")))
	assert.True(t, acct.IsWrittenOff)
	// The account keeps servicing the remainder.
	assert.True(t, acct.Status.Equal(valueobject.LoanStatusActive))
}

func TestApplyWriteOffRecovery_Allocation(t *testing.T) {
	acct, _ := accountWithSchedule(t)
	acct.InterestOutstanding = dec("5000")
	acct.FeesOutstanding = dec("200")

	wo, err := PlanWriteOff(acct, WriteOffComponents{}, "unrecoverable", "credit-head", d(2025, 9, 1))
	require.NoError(t, err)

	// Fees first, then interest, then principal.
	rec, err := ApplyWriteOffRecovery(&wo, dec("6000"), "borrower", "", nil, d(2025, 11, 1))
	require.NoError(t, err)
	assert.True(t, rec.FeesRecovered.Equal(dec("200")))
	assert.True(t, rec.InterestRecovered.Equal(dec("5000")))
	assert.True(t, rec.PrincipalRecovered.Equal(dec("800")))
	assert.Equal(t, "partial", wo.RecoveryStatus)

	// Recovering the remainder completes the write-off.
	_, err = ApplyWriteOffRecovery(&wo, dec("99200"), "collateral", "", nil, d(2026, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, "complete", wo.RecoveryStatus)
	assert.True(t, wo.TotalRecovered.Equal(wo.TotalWrittenOff))
}
