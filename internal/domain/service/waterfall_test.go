package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

func TestAllocate_WaterfallWithFees(t *testing.T) {
	// One pending installment: principal 5000, interest 500, fees 100.
	row := inst(1, d(2025, 2, 1), "5000", "500", "100")
	installments := []*model.Installment{row}

	result := Allocate(uuid.New(), installments, dec("4000"), nil)

	require.Len(t, result.Allocations, 1)
	alloc := result.Allocations[0]
	assert.True(t, alloc.FeesAllocated.Equal(dec("100")), "fees %s", alloc.FeesAllocated)
	assert.True(t, alloc.InterestAllocated.Equal(dec("500")), "interest %s", alloc.InterestAllocated)
	assert.True(t, alloc.PrincipalAllocated.Equal(dec("3400")), "principal %s", alloc.PrincipalAllocated)
	assert.True(t, result.Unallocated.IsZero())
	assert.True(t, row.Status.Equal(valueobject.InstallmentPartiallyPaid))

	// Second payment clears the remainder.
	second := Allocate(uuid.New(), installments, dec("1600"), nil)
	require.Len(t, second.Allocations, 1)
	assert.True(t, second.Allocations[0].PrincipalAllocated.Equal(dec("1600")))
	assert.True(t, second.Unallocated.IsZero())
	assert.True(t, row.Status.Equal(valueobject.InstallmentPaid))
}

func TestAllocate_ExactPaymentClearsRow(t *testing.T) {
	row := inst(1, d(2025, 2, 1), "5000", "500", "100")

	result := Allocate(uuid.New(), []*model.Installment{row}, dec("5600"), nil)

	assert.True(t, result.Unallocated.IsZero())
	assert.True(t, row.Status.Equal(valueobject.InstallmentPaid))
}

func TestAllocate_OverpaymentByOnePaisa(t *testing.T) {
	row := inst(1, d(2025, 2, 1), "5000", "500", "0")

	result := Allocate(uuid.New(), []*model.Installment{row}, dec("5500.01"), nil)

	assert.True(t, result.Unallocated.Equal(dec("0.01")), "unallocated %s", result.Unallocated)
	assert.True(t, row.Status.Equal(valueobject.InstallmentPaid))
}

func TestAllocate_OldestFirst(t *testing.T) {
	older := inst(1, d(2025, 1, 1), "1000", "100", "0")
	newer := inst(2, d(2025, 2, 1), "1000", "100", "0")

	// Pass out of order; the allocator sorts by due date.
	result := Allocate(uuid.New(), []*model.Installment{newer, older}, dec("1100"), nil)

	require.Len(t, result.Allocations, 1)
	assert.Equal(t, 1, result.Allocations[0].InstallmentNumber)
	assert.True(t, older.Status.Equal(valueobject.InstallmentPaid))
	assert.True(t, newer.Status.Equal(valueobject.InstallmentPending))
}

func TestAllocate_SkipsClosedRows(t *testing.T) {
	paid := inst(1, d(2025, 1, 1), "1000", "100", "0")
	paid.Status = valueobject.InstallmentPaid
	cancelled := inst(2, d(2025, 2, 1), "1000", "100", "0")
	cancelled.Status = valueobject.InstallmentCancelled
	open := inst(3, d(2025, 3, 1), "1000", "100", "0")

	result := Allocate(uuid.New(), []*model.Installment{paid, cancelled, open}, dec("500"), nil)

	require.Len(t, result.Allocations, 1)
	assert.Equal(t, 3, result.Allocations[0].InstallmentNumber)
}

// principalFirst inverts the default order.
type principalFirst struct{}

func (principalFirst) Order(*model.Installment) []Component {
	return []Component{ComponentPrincipal, ComponentInterest, ComponentFees}
}

func TestAllocate_AlternativePolicy(t *testing.T) {
	row := inst(1, d(2025, 2, 1), "5000", "500", "100")

	result := Allocate(uuid.New(), []*model.Installment{row}, dec("4000"), principalFirst{})

	require.Len(t, result.Allocations, 1)
	assert.True(t, result.Allocations[0].PrincipalAllocated.Equal(dec("4000")))
	assert.True(t, result.Allocations[0].InterestAllocated.IsZero())
}

func TestAllocate_Conservation(t *testing.T) {
	rows := []*model.Installment{
		inst(1, d(2025, 1, 1), "900", "90", "10"),
		inst(2, d(2025, 2, 1), "900", "80", "10"),
		inst(3, d(2025, 3, 1), "900", "70", "10"),
	}
	amount := dec("2345.67")

	result := Allocate(uuid.New(), rows, amount, nil)

	total := result.Unallocated
	for _, a := range result.Allocations {
		total = total.Add(a.Total())
	}
	assert.True(t, total.Equal(amount), "allocations + unallocated = %s, want %s", total, amount)

	for _, row := range rows {
		assert.False(t, row.PrincipalRemaining().IsNegative())
		assert.False(t, row.InterestRemaining().IsNegative())
		assert.False(t, row.FeesRemaining().IsNegative())
	}
}

func TestRecomputeOutstanding(t *testing.T) {
	first := inst(1, d(2025, 1, 1), "1000", "100", "0")
	first.PrincipalPaid = dec("400")
	second := inst(2, d(2025, 2, 1), "1000", "90", "0")

	totals := RecomputeOutstanding([]*model.Installment{first, second})

	assert.True(t, totals.Principal.Equal(dec("1600")))
	assert.True(t, totals.Interest.Equal(dec("190")))
	require.NotNil(t, totals.NextDue)
	assert.Equal(t, 1, totals.NextDue.Number)
}

func TestSumAllocations(t *testing.T) {
	p, i, f := model.SumAllocations([]model.PaymentAllocation{
		{PrincipalAllocated: dec("100"), InterestAllocated: dec("10"), FeesAllocated: dec("1")},
		{PrincipalAllocated: dec("200"), InterestAllocated: dec("20"), FeesAllocated: dec("2")},
	})
	assert.True(t, p.Equal(dec("300")))
	assert.True(t, i.Equal(dec("30")))
	assert.True(t, f.Equal(dec("3")))
}
