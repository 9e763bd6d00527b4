package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/daycount"
	"github.com/harshitrathi14/LOS-LMS/pkg/schedule"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// inst builds an open installment with the given dues.
func inst(number int, due time.Time, principal, interest, fees string) *model.Installment {
	p, i, f := dec(principal), dec(interest), dec(fees)
	return &model.Installment{
		ID:             uuid.New(),
		LoanAccountID:  uuid.New(),
		Number:         number,
		DueDate:        due,
		PeriodStart:    due.AddDate(0, -1, 0),
		PeriodEnd:      due,
		OpeningBalance: p,
		PrincipalDue:   p,
		InterestDue:    i,
		FeesDue:        f,
		TotalDue:       p.Add(i).Add(f),
		ClosingBalance: decimal.Zero,
		PrincipalPaid:  decimal.Zero,
		InterestPaid:   decimal.Zero,
		FeesPaid:       decimal.Zero,
		Status:         valueobject.InstallmentPending,
	}
}

// activeAccount builds a plain fixed-rate EMI account.
func activeAccount(principal string) *model.LoanAccount {
	p := dec(principal)
	return &model.LoanAccount{
		ID:                   uuid.New(),
		AccountNumber:        "LN-0001",
		PrincipalDisbursed:   p,
		PrincipalOutstanding: p,
		InterestOutstanding:  decimal.Zero,
		FeesOutstanding:      decimal.Zero,
		CurrentRatePct:       dec("12"),
		Rate: model.RateSpec{
			Type:     valueobject.RateTypeFixed,
			FixedPct: dec("12"),
		},
		TenurePeriods:     12,
		Frequency:         schedule.Monthly,
		ScheduleType:      schedule.TypeEMI,
		DayCount:          daycount.Act365,
		DisbursementDate:  d(2025, 1, 1),
		FirstDueDate:      d(2025, 2, 1),
		Status:            valueobject.LoanStatusActive,
		ECLStage:          1,
		ECLProvision:      decimal.Zero,
		CumulativeAccrued: decimal.Zero,
	}
}
