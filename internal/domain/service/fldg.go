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

// FLDGClaim is a computed claim before it is applied to the pool.
type FLDGClaim struct {
	Principal      decimal.Decimal
	Interest       decimal.Decimal
	Fees           decimal.Decimal
	Total          decimal.Decimal
	LenderSharePct decimal.Decimal
	Trigger        valueobject.FLDGTrigger
}

// EffectiveFLDGLimit computes min(portfolio * percent, absolute cap).
func EffectiveFLDGLimit(arr *model.FLDGArrangement, portfolioOutstanding decimal.Decimal) decimal.Decimal {
	var limits []decimal.Decimal
	if arr.PercentOfPortfolio != nil {
		limits = append(limits, money.Share(portfolioOutstanding, *arr.PercentOfPortfolio))
	}
	if arr.AbsoluteCap != nil {
		limits = append(limits, *arr.AbsoluteCap)
	}
	if len(limits) == 0 {
		return decimal.Zero
	}
	min := limits[0]
	for _, l := range limits[1:] {
		if l.LessThan(min) {
			min = l
		}
	}
	return min
}

// ClaimTrigger decides whether the account's state triggers a claim under
// the arrangement: crossing the trigger DPD, NPA classification, or
// write-off.
func ClaimTrigger(arr *model.FLDGArrangement, acct *model.LoanAccount) (valueobject.FLDGTrigger, bool) {
	switch {
	case acct.IsWrittenOff:
		return valueobject.FLDGTriggerWriteOff, true
	case acct.IsNPA:
		return valueobject.FLDGTriggerNPA, true
	case acct.DPD >= arr.TriggerDPD:
		return valueobject.FLDGTriggerDPD, true
	default:
		return "", false
	}
}

// ComputeClaim sizes a claim: each covered component times the lender share,
// with the second-loss threshold deducted where applicable. The claim is not
// yet capped at the pool balance.
func ComputeClaim(arr *model.FLDGArrangement, acct *model.LoanAccount, lenderSharePct decimal.Decimal) (FLDGClaim, error) {
	trigger, ok := ClaimTrigger(arr, acct)
	if !ok {
		return FLDGClaim{}, apperr.New(apperr.KindConflictingState,
			"account has not crossed DPD %d, is not NPA and is not written off", arr.TriggerDPD).
			WithEntity(acct.ID.String())
	}

	claim := FLDGClaim{Trigger: trigger, LenderSharePct: lenderSharePct}
	if arr.CoversPrincipal {
		claim.Principal = money.Share(acct.PrincipalOutstanding, lenderSharePct)
	}
	if arr.CoversInterest {
		claim.Interest = money.Share(acct.InterestOutstanding, lenderSharePct)
	}
	if arr.CoversFees {
		claim.Fees = money.Share(acct.FeesOutstanding, lenderSharePct)
	}
	claim.Total = claim.Principal.Add(claim.Interest).Add(claim.Fees)

	if arr.Type == valueobject.FLDGSecondLoss {
		if claim.Total.LessThanOrEqual(arr.FirstLossThreshold) {
			return FLDGClaim{}, apperr.New(apperr.KindConflictingState,
				"claim %s does not exceed the first-loss threshold %s", claim.Total, arr.FirstLossThreshold)
		}
		claim.Total = claim.Total.Sub(arr.FirstLossThreshold)
	}

	if !claim.Total.IsPositive() {
		return FLDGClaim{}, apperr.New(apperr.KindInvalidInput, "claim amount is zero").
			WithEntity(acct.ID.String())
	}
	return claim, nil
}

// ApplyClaim approves a claim against the pool, capping at the current
// balance, and mutates the arrangement's running totals. A zero balance
// surfaces FLDGExhausted.
func ApplyClaim(arr *model.FLDGArrangement, acct *model.LoanAccount, claim FLDGClaim, writeOffID *uuid.UUID, on time.Time, approvedBy string) (model.FLDGUtilization, error) {
	if !arr.CurrentBalance.IsPositive() {
		return model.FLDGUtilization{}, apperr.New(apperr.KindFLDGExhausted,
			"arrangement balance is exhausted").WithEntity(arr.ID.String()).
			WithHint("request a top-up from the originator")
	}

	approved := decimal.Min(claim.Total, arr.CurrentBalance)
	before := arr.CurrentBalance

	arr.CurrentBalance = before.Sub(approved)
	arr.TotalUtilized = arr.TotalUtilized.Add(approved)

	util := model.FLDGUtilization{
		ID:               uuid.New(),
		ArrangementID:    arr.ID,
		LoanAccountID:    acct.ID,
		WriteOffID:       writeOffID,
		UtilizationDate:  on,
		Trigger:          claim.Trigger,
		DPDAtClaim:       acct.DPD,
		PrincipalClaimed: claim.Principal,
		InterestClaimed:  claim.Interest,
		FeesClaimed:      claim.Fees,
		TotalClaimed:     claim.Total,
		LenderSharePct:   claim.LenderSharePct,
		TotalApproved:    approved,
		ApprovedBy:       approvedBy,
		BalanceBefore:    before,
		BalanceAfter:     arr.CurrentBalance,
		RecoveredToPool:  decimal.Zero,
		Status:           "approved",
	}
	return util, nil
}

// ApplyFLDGRecovery routes a recovery: the pool is replenished first with
// the lender-share portion of the recovered amount, capped at the
// utilization's approved amount; the remainder flows to the lender.
// Arrangement and utilization running totals are mutated.
func ApplyFLDGRecovery(arr *model.FLDGArrangement, util *model.FLDGUtilization, principal, interest decimal.Decimal, source string, on time.Time) (model.FLDGRecovery, error) {
	if principal.IsNegative() || interest.IsNegative() {
		return model.FLDGRecovery{}, apperr.New(apperr.KindInvalidInput, "recovery components must not be negative")
	}
	total := principal.Add(interest)
	if !total.IsPositive() {
		return model.FLDGRecovery{}, apperr.New(apperr.KindInvalidInput, "recovery amount must be positive")
	}

	share := util.LenderSharePct
	if !share.IsPositive() {
		share = decimal.NewFromInt(100)
	}

	headroom := money.NonNegative(util.TotalApproved.Sub(util.RecoveredToPool))
	toPool := decimal.Min(money.Share(total, share), headroom)
	if !arr.ReplenishFirst {
		toPool = decimal.Zero
	}
	excess := total.Sub(toPool)

	arr.CurrentBalance = arr.CurrentBalance.Add(toPool)
	arr.TotalRecovered = arr.TotalRecovered.Add(toPool)
	util.RecoveredToPool = util.RecoveredToPool.Add(toPool)
	if util.RecoveredToPool.GreaterThanOrEqual(util.TotalApproved) {
		util.Status = "recovered"
	}

	if arr.CurrentBalance.GreaterThan(arr.EffectiveLimit) {
		return model.FLDGRecovery{}, apperr.New(apperr.KindFatal,
			"pool balance %s exceeds effective limit %s", arr.CurrentBalance, arr.EffectiveLimit).
			WithEntity(arr.ID.String())
	}

	return model.FLDGRecovery{
		ID:                 uuid.New(),
		UtilizationID:      util.ID,
		RecoveryDate:       on,
		PrincipalRecovered: principal,
		InterestRecovered:  interest,
		TotalRecovered:     total,
		ReturnedToPool:     toPool,
		ExcessToLender:     excess,
		Source:             source,
	}, nil
}
