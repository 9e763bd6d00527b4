package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// BuildDailyAccrual computes one day of interest for an account at the
// resolved effective rate and chains the cumulative total.
//
//	daily = principal_outstanding * rate * day-fraction(d, d+1, convention)
//
// A non-positive principal yields a zero accrual row so the (account, date)
// uniqueness invariant still holds for the day.
func BuildDailyAccrual(acct *model.LoanAccount, accrualDate time.Time, ratePct decimal.Decimal, prevCumulative decimal.Decimal) model.InterestAccrual {
	principal := acct.PrincipalOutstanding

	accrued := decimal.Zero
	if principal.IsPositive() {
		accrued = acct.DayCount.DailyInterest(principal, ratePct, accrualDate)
	}

	accrual := model.InterestAccrual{
		ID:               uuid.New(),
		LoanAccountID:    acct.ID,
		AccrualDate:      accrualDate,
		OpeningPrincipal: principal,
		RatePct:          ratePct,
		DayCount:         acct.DayCount,
		DaysInYear:       acct.DayCount.DaysInYear(accrualDate.Year()),
		Accrued:          accrued,
		Cumulative:       money.Round(prevCumulative.Add(accrued)),
		Status:           valueobject.AccrualAccrued,
	}

	if acct.Rate.Type.IsFloating() {
		spread := acct.Rate.SpreadPct
		accrual.SpreadPct = &spread
		benchmark := ratePct.Sub(spread)
		accrual.BenchmarkPct = &benchmark
	}
	return accrual
}
