package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

func arrangement(limit string) *model.FLDGArrangement {
	l := dec(limit)
	return &model.FLDGArrangement{
		ID:              uuid.New(),
		Code:            "FLDG-01",
		Type:            valueobject.FLDGFirstLoss,
		EffectiveLimit:  l,
		CoversPrincipal: true,
		CoversInterest:  true,
		CoversFees:      false,
		TriggerDPD:      90,
		ReplenishFirst:  true,
		CurrentBalance:  l,
		TotalUtilized:   decimal.Zero,
		TotalRecovered:  decimal.Zero,
		EffectiveDate:   d(2025, 1, 1),
	}
}

func writtenOffAccount() *model.LoanAccount {
	acct := activeAccount("100000")
	acct.InterestOutstanding = dec("5000")
	acct.FeesOutstanding = dec("200")
	acct.IsWrittenOff = true
	acct.DPD = 200
	return acct
}

func TestComputeClaim_CoverageAndShare(t *testing.T) {
	arr := arrangement("500000")
	acct := writtenOffAccount()

	claim, err := ComputeClaim(arr, acct, dec("80"))
	require.NoError(t, err)

	// 0.8 * (100000 + 5000); fees are not covered.
	assert.True(t, claim.Principal.Equal(dec("80000")))
	assert.True(t, claim.Interest.Equal(dec("4000")))
	assert.True(t, claim.Fees.IsZero())
	assert.True(t, claim.Total.Equal(dec("84000")), "claim %s", claim.Total)
	assert.Equal(t, valueobject.FLDGTriggerWriteOff, claim.Trigger)
}

func TestComputeClaim_NotTriggered(t *testing.T) {
	arr := arrangement("500000")
	acct := activeAccount("100000")
	acct.DPD = 30

	_, err := ComputeClaim(arr, acct, dec("80"))
	assert.True(t, apperr.IsKind(err, apperr.KindConflictingState))
}

func TestComputeClaim_SecondLossThreshold(t *testing.T) {
	arr := arrangement("500000")
	arr.Type = valueobject.FLDGSecondLoss
	arr.FirstLossThreshold = dec("100000")
	acct := writtenOffAccount()

	_, err := ComputeClaim(arr, acct, dec("80"))
	assert.True(t, apperr.IsKind(err, apperr.KindConflictingState),
		"claim below the first-loss threshold must be rejected")

	arr.FirstLossThreshold = dec("50000")
	claim, err := ComputeClaim(arr, acct, dec("80"))
	require.NoError(t, err)
	assert.True(t, claim.Total.Equal(dec("34000")), "claim %s", claim.Total)
}

func TestApplyClaim_AndRecovery(t *testing.T) {
	arr := arrangement("500000")
	acct := writtenOffAccount()

	claim, err := ComputeClaim(arr, acct, dec("80"))
	require.NoError(t, err)

	util, err := ApplyClaim(arr, acct, claim, nil, d(2025, 7, 1), "risk-ops")
	require.NoError(t, err)

	assert.True(t, util.TotalApproved.Equal(dec("84000")))
	assert.True(t, util.BalanceBefore.Equal(dec("500000")))
	assert.True(t, util.BalanceAfter.Equal(dec("416000")))
	assert.True(t, arr.CurrentBalance.Equal(dec("416000")))
	assert.True(t, arr.TotalUtilized.Equal(dec("84000")))

	// Recovery of 50000 all principal: the lender-share portion (80%)
	// replenishes the pool, the rest flows to the lender.
	recovery, err := ApplyFLDGRecovery(arr, &util, dec("50000"), decimal.Zero, "borrower", d(2025, 9, 1))
	require.NoError(t, err)
	assert.True(t, recovery.ReturnedToPool.Equal(dec("40000")), "to pool %s", recovery.ReturnedToPool)
	assert.True(t, recovery.ExcessToLender.Equal(dec("10000")))
	assert.True(t, arr.CurrentBalance.Equal(dec("456000")))

	// A further 40000 replenishes its share within the remaining headroom.
	second, err := ApplyFLDGRecovery(arr, &util, dec("40000"), decimal.Zero, "borrower", d(2025, 10, 1))
	require.NoError(t, err)
	assert.True(t, second.ReturnedToPool.Equal(dec("32000")), "to pool %s", second.ReturnedToPool)
	assert.True(t, second.ExcessToLender.Equal(dec("8000")))
	assert.True(t, arr.CurrentBalance.Equal(dec("488000")))

	// Balance invariant holds throughout.
	want := arr.EffectiveLimit.Sub(arr.TotalUtilized).Add(arr.TotalRecovered)
	assert.True(t, arr.CurrentBalance.Equal(want))
}

func TestApplyClaim_CapsAtBalance(t *testing.T) {
	arr := arrangement("50000")
	acct := writtenOffAccount()

	claim, err := ComputeClaim(arr, acct, dec("80"))
	require.NoError(t, err)

	util, err := ApplyClaim(arr, acct, claim, nil, d(2025, 7, 1), "risk-ops")
	require.NoError(t, err)
	assert.True(t, util.TotalApproved.Equal(dec("50000")), "partial approval at the balance")
	assert.True(t, arr.CurrentBalance.IsZero())
}

func TestApplyClaim_Exhausted(t *testing.T) {
	arr := arrangement("500000")
	arr.CurrentBalance = decimal.Zero
	acct := writtenOffAccount()

	claim := FLDGClaim{Total: dec("1000"), Trigger: valueobject.FLDGTriggerWriteOff}
	_, err := ApplyClaim(arr, acct, claim, nil, d(2025, 7, 1), "risk-ops")
	assert.True(t, apperr.IsKind(err, apperr.KindFLDGExhausted))
}

func TestEffectiveFLDGLimit(t *testing.T) {
	pct := dec("5")
	cap := dec("400000")
	arr := arrangement("0")
	arr.PercentOfPortfolio = &pct
	arr.AbsoluteCap = &cap

	// 5% of 10M = 500000 > cap.
	limit := EffectiveFLDGLimit(arr, dec("10000000"))
	assert.True(t, limit.Equal(dec("400000")))

	// 5% of 2M = 100000 < cap.
	limit = EffectiveFLDGLimit(arr, dec("2000000"))
	assert.True(t, limit.Equal(dec("100000")))
}
