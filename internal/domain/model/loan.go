// Package model holds the persistent entities of the loan engine. Entities
// are created by deterministic functions of prior state and an input event;
// only status fields and running totals listed in the data model are mutated
// in place.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/bizcal"
	"github.com/harshitrathi14/LOS-LMS/pkg/daycount"
	"github.com/harshitrathi14/LOS-LMS/pkg/schedule"
)

// RateSpec captures the provenance of an account's effective rate: a fixed
// rate, or floating benchmark + spread bounded by floor/cap.
type RateSpec struct {
	Type        valueobject.RateType
	FixedPct    decimal.Decimal
	BenchmarkID uuid.UUID
	SpreadPct   decimal.Decimal
	FloorPct    *decimal.Decimal
	CapPct      *decimal.Decimal

	ResetFrequency schedule.Frequency
	NextResetDate  *time.Time
}

// LoanAccount is the aggregate root.
type LoanAccount struct {
	ID            uuid.UUID
	AccountNumber string
	ProductID     uuid.UUID
	BorrowerID    uuid.UUID

	PrincipalDisbursed   decimal.Decimal
	PrincipalOutstanding decimal.Decimal
	InterestOutstanding  decimal.Decimal
	FeesOutstanding      decimal.Decimal

	CurrentRatePct decimal.Decimal
	Rate           RateSpec

	TenurePeriods int
	Frequency     schedule.Frequency
	ScheduleType  schedule.Type
	DayCount      daycount.Convention
	CalendarID    uuid.UUID
	AdjustMode    bizcal.Mode

	DisbursementDate time.Time
	FirstDueDate     time.Time

	Status valueobject.LoanStatus

	DPD         int
	Bucket      valueobject.Bucket
	IsNPA       bool
	NPADate     *time.Time
	NPACategory valueobject.NPACategory

	IsRestructured bool
	IsWrittenOff   bool
	SICRFlag       bool
	Secured        bool

	ECLStage      int
	ECLProvision  decimal.Decimal
	ECLStagedAt   *time.Time
	SettlementAmt *decimal.Decimal

	ClosureDate *time.Time
	ClosureType valueobject.ClosureType

	CumulativeAccrued decimal.Decimal
	LastAccrualDate   *time.Time

	NextDueDate   *time.Time
	NextDueAmount *decimal.Decimal

	PrepaymentPenaltyPct decimal.Decimal

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the account still services payments.
func (a *LoanAccount) IsOpen() bool {
	return a.Status.Equal(valueobject.LoanStatusActive)
}

// TotalOutstanding sums the three outstanding components.
func (a *LoanAccount) TotalOutstanding() decimal.Decimal {
	return a.PrincipalOutstanding.Add(a.InterestOutstanding).Add(a.FeesOutstanding)
}

// ScheduleSpec assembles the generator input from the account's terms. The
// caller supplies the resolved calendar and, for regeneration, overrides the
// principal, tenure and start date.
func (a *LoanAccount) ScheduleSpec(cal *bizcal.Calendar) schedule.Spec {
	return schedule.Spec{
		Principal:     a.PrincipalDisbursed,
		AnnualRatePct: a.CurrentRatePct,
		Periods:       a.TenurePeriods,
		Frequency:     a.Frequency,
		Type:          a.ScheduleType,
		Start:         a.DisbursementDate,
		Calendar:      cal,
		AdjustMode:    a.AdjustMode,
	}
}
