package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/daycount"
)

// InterestAccrual is one day of interest accrual for an account. At most one
// non-reversed row exists per (account, date).
type InterestAccrual struct {
	ID            uuid.UUID
	LoanAccountID uuid.UUID
	AccrualDate   time.Time

	OpeningPrincipal decimal.Decimal
	RatePct          decimal.Decimal
	BenchmarkPct     *decimal.Decimal
	SpreadPct        *decimal.Decimal
	DayCount         daycount.Convention
	DaysInYear       int

	Accrued    decimal.Decimal
	Cumulative decimal.Decimal

	Status valueobject.AccrualStatus
}

// DelinquencySnapshot is the daily delinquency state of an account.
type DelinquencySnapshot struct {
	ID            uuid.UUID
	LoanAccountID uuid.UUID
	SnapshotDate  time.Time

	DPD         int
	Bucket      valueobject.Bucket
	IsNPA       bool
	NPACategory valueobject.NPACategory

	OverduePrincipal     decimal.Decimal
	OverdueInterest      decimal.Decimal
	OverdueFees          decimal.Decimal
	TotalOverdue         decimal.Decimal
	PrincipalOutstanding decimal.Decimal

	MissedInstallments int
	OldestDueDate      *time.Time
}

// BenchmarkRatePoint is one publication of a benchmark rate.
type BenchmarkRatePoint struct {
	ID            uuid.UUID
	BenchmarkID   uuid.UUID
	EffectiveDate time.Time
	RatePct       decimal.Decimal
}
