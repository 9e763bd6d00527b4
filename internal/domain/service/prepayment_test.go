package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/bizcal"
	"github.com/harshitrathi14/LOS-LMS/pkg/schedule"
)

// accountWithSchedule builds an account plus its generated pending schedule.
func accountWithSchedule(t *testing.T) (*model.LoanAccount, []*model.Installment) {
	t.Helper()
	acct := activeAccount("100000")

	lines, err := schedule.Generate(schedule.Spec{
		Principal:     acct.PrincipalDisbursed,
		AnnualRatePct: acct.CurrentRatePct,
		Periods:       acct.TenurePeriods,
		Frequency:     acct.Frequency,
		Type:          acct.ScheduleType,
		Start:         acct.DisbursementDate,
	})
	require.NoError(t, err)

	rows := model.InstallmentsFromLines(acct.ID, lines, 1)
	out := make([]*model.Installment, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return acct, out
}

func TestPayoff(t *testing.T) {
	acct, rows := accountWithSchedule(t)
	acct.CumulativeAccrued = dec("450")
	acct.FeesOutstanding = dec("100")
	acct.PrepaymentPenaltyPct = dec("2")

	// First installment overdue in full.
	payoff := Payoff(acct, rows, d(2025, 2, 15), false)

	assert.True(t, payoff.Principal.Equal(dec("100000")))
	assert.True(t, payoff.AccruedInterest.Equal(dec("450")))
	assert.True(t, payoff.Fees.Equal(dec("100")))
	assert.True(t, payoff.OverdueTotal.Equal(dec("8884.88")))
	assert.True(t, payoff.Penalty.Equal(dec("2000")))
	assert.True(t, payoff.Total.Equal(dec("111434.88")), "total %s", payoff.Total)

	waived := Payoff(acct, rows, d(2025, 2, 15), true)
	assert.True(t, waived.Penalty.IsZero())
}

func TestImpact_Pure(t *testing.T) {
	acct, rows := accountWithSchedule(t)
	acct.PrepaymentPenaltyPct = dec("2")

	first, err := Impact(acct, rows, dec("20000"), valueobject.PrepaymentReduceEMI, d(2025, 1, 15))
	require.NoError(t, err)
	second, err := Impact(acct, rows, dec("20000"), valueobject.PrepaymentReduceEMI, d(2025, 1, 15))
	require.NoError(t, err)

	assert.Equal(t, first, second, "impact analysis must be referentially transparent")
	assert.True(t, acct.PrincipalOutstanding.Equal(dec("100000")), "impact must not mutate the account")
	for _, row := range rows {
		assert.True(t, row.PrincipalPaid.IsZero(), "impact must not mutate the schedule")
	}
}

func TestImpact_ReduceEMI(t *testing.T) {
	acct, rows := accountWithSchedule(t)

	impact, err := Impact(acct, rows, dec("20000"), valueobject.PrepaymentReduceEMI, d(2025, 1, 15))
	require.NoError(t, err)

	assert.Equal(t, 12, impact.OldTenure)
	assert.Equal(t, 12, impact.NewTenure, "reduce_emi keeps the tenure")
	assert.True(t, impact.NewEMI.LessThan(impact.OldEMI))
	assert.True(t, impact.InterestSaved.IsPositive())
}

func TestImpact_ReduceTenure(t *testing.T) {
	acct, rows := accountWithSchedule(t)

	impact, err := Impact(acct, rows, dec("20000"), valueobject.PrepaymentReduceTenure, d(2025, 1, 15))
	require.NoError(t, err)

	assert.True(t, impact.NewEMI.Equal(impact.OldEMI), "reduce_tenure keeps the installment")
	assert.Less(t, impact.NewTenure, impact.OldTenure)
	assert.True(t, impact.InterestSaved.IsPositive())
}

func TestImpact_Validation(t *testing.T) {
	acct, rows := accountWithSchedule(t)

	_, err := Impact(acct, rows, dec("0"), valueobject.PrepaymentReduceEMI, d(2025, 1, 15))
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	// A partial prepayment covering the whole outstanding must be a
	// foreclosure instead.
	_, err = Impact(acct, rows, dec("150000"), valueobject.PrepaymentReduceEMI, d(2025, 1, 15))
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))

	closed := activeAccount("100000")
	closed.Status = valueobject.LoanStatusClosed
	_, err = Impact(closed, nil, dec("1000"), valueobject.PrepaymentReduceEMI, d(2025, 1, 15))
	assert.True(t, apperr.IsKind(err, apperr.KindConflictingState))
}

func TestPlanPrepayment_ReduceEMI(t *testing.T) {
	acct, rows := accountWithSchedule(t)
	cal := bizcal.New(nil, nil)

	plan, err := PlanPrepayment(acct, rows, dec("20000"), valueobject.PrepaymentReduceEMI, d(2025, 1, 15), cal, "ops")
	require.NoError(t, err)

	assert.False(t, plan.Foreclose)
	assert.Len(t, plan.CancelNumbers, 12)
	assert.Len(t, plan.NewLines, 12)
	assert.Equal(t, 1, plan.FirstNumber)
	assert.True(t, plan.Record.NewOutstanding.Equal(dec("80000")))

	// The regenerated tail amortizes the reduced outstanding exactly.
	total := dec("0")
	for _, ln := range plan.NewLines {
		total = total.Add(ln.PrincipalDue)
	}
	assert.True(t, total.Equal(dec("80000")), "regenerated principal %s", total)
}

func TestPlanPrepayment_Foreclosure(t *testing.T) {
	acct, rows := accountWithSchedule(t)

	plan, err := PlanPrepayment(acct, rows, dec("101000"), valueobject.PrepaymentForeclosure, d(2025, 1, 15), nil, "ops")
	require.NoError(t, err)

	assert.True(t, plan.Foreclose)
	assert.True(t, plan.Record.IsForeclosure)
	assert.Empty(t, plan.NewLines)
	assert.Len(t, plan.CancelNumbers, 12)
	assert.True(t, plan.Record.NewOutstanding.IsZero())
}

func TestPlanPrepayment_PreservesPaidRows(t *testing.T) {
	acct, rows := accountWithSchedule(t)

	// First three installments already paid.
	for _, row := range rows[:3] {
		row.PrincipalPaid = row.PrincipalDue
		row.InterestPaid = row.InterestDue
		row.Status = valueobject.InstallmentPaid
		acct.PrincipalOutstanding = acct.PrincipalOutstanding.Sub(row.PrincipalDue)
	}

	plan, err := PlanPrepayment(acct, rows, dec("10000"), valueobject.PrepaymentReduceEMI, d(2025, 4, 15), nil, "ops")
	require.NoError(t, err)

	assert.Len(t, plan.CancelNumbers, 9, "only pending rows are regenerated")
	assert.Equal(t, 4, plan.FirstNumber)
	for _, n := range plan.CancelNumbers {
		assert.Greater(t, n, 3)
	}
}
