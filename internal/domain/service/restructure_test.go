package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

// payRows settles the first n rows and reduces the account outstanding.
func payRows(acct *model.LoanAccount, rows []*model.Installment, n int) {
	for _, row := range rows[:n] {
		row.PrincipalPaid = row.PrincipalDue
		row.InterestPaid = row.InterestDue
		row.Status = valueobject.InstallmentPaid
		acct.PrincipalOutstanding = acct.PrincipalOutstanding.Sub(row.PrincipalDue)
	}
}

func TestPlanRestructure_TenureExtension(t *testing.T) {
	acct, rows := accountWithSchedule(t)
	payRows(acct, rows, 4)

	newTenure := 20
	plan, err := PlanRestructure(acct, rows, RestructureRequest{
		Type:             valueobject.RestructureTenureExtension,
		EffectiveDate:    d(2025, 5, 2),
		NewTenurePeriods: &newTenure,
		Reason:           "cashflow stress",
		RequestedBy:      "rm-17",
		ApprovedBy:       "credit-head",
	}, nil)
	require.NoError(t, err)

	// Rows 1-4 are untouched; 5..12 cancelled; 16 new rows take their place.
	assert.Equal(t, []int{5, 6, 7, 8, 9, 10, 11, 12}, plan.CancelNumbers)
	assert.Equal(t, 5, plan.FirstNumber)
	assert.Len(t, plan.NewLines, 16)

	// The regenerated tail amortizes exactly the forward principal.
	total := decimal.Zero
	for _, ln := range plan.NewLines {
		total = total.Add(ln.PrincipalDue)
	}
	forward := decimal.Zero
	for _, row := range rows[4:] {
		forward = forward.Add(row.PrincipalRemaining())
	}
	assert.True(t, total.Equal(forward), "regenerated %s, forward %s", total, forward)

	// Event captures before/after terms.
	assert.Equal(t, 12, plan.Event.OldTenure)
	assert.Equal(t, 20, plan.Event.NewTenure)
	assert.Equal(t, "credit-head", plan.Event.ApprovedBy)

	// Applying sets the flag unconditionally.
	ApplyRestructure(acct, plan)
	assert.True(t, acct.IsRestructured)
	assert.Equal(t, 20, acct.TenurePeriods)
}

func TestPlanRestructure_RateReduction(t *testing.T) {
	acct, rows := accountWithSchedule(t)

	newRate := dec("9")
	plan, err := PlanRestructure(acct, rows, RestructureRequest{
		Type:          valueobject.RestructureRateReduction,
		EffectiveDate: d(2025, 1, 2),
		NewRatePct:    &newRate,
	}, nil)
	require.NoError(t, err)

	assert.True(t, plan.NewRatePct.Equal(dec("9")))
	// Lower rate, same tenure: the installment drops.
	oldEMI := rows[0].TotalDue
	assert.True(t, plan.NewLines[0].TotalDue.LessThan(oldEMI))

	ApplyRestructure(acct, plan)
	assert.True(t, acct.CurrentRatePct.Equal(dec("9")))
}

func TestPlanRestructure_PrincipalHaircut(t *testing.T) {
	acct, rows := accountWithSchedule(t)

	plan, err := PlanRestructure(acct, rows, RestructureRequest{
		Type:            valueobject.RestructurePrincipalHaircut,
		EffectiveDate:   d(2025, 1, 2),
		PrincipalWaived: dec("20000"),
	}, nil)
	require.NoError(t, err)

	total := decimal.Zero
	for _, ln := range plan.NewLines {
		total = total.Add(ln.PrincipalDue)
	}
	assert.True(t, total.Equal(dec("80000")), "haircut principal %s", total)

	ApplyRestructure(acct, plan)
	assert.True(t, acct.PrincipalOutstanding.Equal(dec("80000")))
}

func TestPlanRestructure_Rejections(t *testing.T) {
	t.Run("written off", func(t *testing.T) {
		acct, rows := accountWithSchedule(t)
		acct.IsWrittenOff = true
		_, err := PlanRestructure(acct, rows, RestructureRequest{
			Type:          valueobject.RestructureTenureExtension,
			EffectiveDate: d(2025, 1, 2),
		}, nil)
		assert.True(t, apperr.IsKind(err, apperr.KindConflictingState))
	})

	t.Run("nothing forward", func(t *testing.T) {
		acct, rows := accountWithSchedule(t)
		payRows(acct, rows, 12)
		_, err := PlanRestructure(acct, rows, RestructureRequest{
			Type:          valueobject.RestructureTenureExtension,
			EffectiveDate: d(2026, 6, 1),
		}, nil)
		assert.True(t, apperr.IsKind(err, apperr.KindConflictingState))
	})

	t.Run("tenure below preserved rows", func(t *testing.T) {
		acct, rows := accountWithSchedule(t)
		payRows(acct, rows, 6)
		tooShort := 5
		_, err := PlanRestructure(acct, rows, RestructureRequest{
			Type:             valueobject.RestructureTenureExtension,
			EffectiveDate:    d(2025, 7, 2),
			NewTenurePeriods: &tooShort,
		}, nil)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	})
}

func TestRestructureThenStage2(t *testing.T) {
	acct, rows := accountWithSchedule(t)
	acct.DPD = 10

	stage, _ := StageFor(acct, model.DefaultECLConfig())
	assert.Equal(t, 1, stage)

	extended := 20
	plan, err := PlanRestructure(acct, rows, RestructureRequest{
		Type:             valueobject.RestructureTenureExtension,
		EffectiveDate:    d(2025, 1, 2),
		NewTenurePeriods: &extended,
	}, nil)
	require.NoError(t, err)
	ApplyRestructure(acct, plan)

	stage, reason := StageFor(acct, model.DefaultECLConfig())
	assert.Equal(t, 2, stage, "restructure forces ECL stage >= 2 regardless of DPD")
	assert.Equal(t, "restructure", reason)
}
