package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

// FLDGArrangement is a first/second-loss default guarantee pool.
// Invariant: CurrentBalance = EffectiveLimit - TotalUtilized + TotalRecovered,
// bounded by [0, EffectiveLimit].
type FLDGArrangement struct {
	ID           uuid.UUID
	Code         string
	OriginatorID uuid.UUID
	LenderID     uuid.UUID
	Type         valueobject.FLDGType

	PercentOfPortfolio *decimal.Decimal
	AbsoluteCap        *decimal.Decimal
	EffectiveLimit     decimal.Decimal

	CoversPrincipal bool
	CoversInterest  bool
	CoversFees      bool

	TriggerDPD         int
	FirstLossThreshold decimal.Decimal

	// ReplenishFirst routes partial recoveries to the pool before any excess
	// flows to the lender.
	ReplenishFirst bool

	CurrentBalance decimal.Decimal
	TotalUtilized  decimal.Decimal
	TotalRecovered decimal.Decimal

	EffectiveDate time.Time
}

// FLDGUtilization is an immutable claim event against an arrangement.
type FLDGUtilization struct {
	ID            uuid.UUID
	ArrangementID uuid.UUID
	LoanAccountID uuid.UUID
	WriteOffID    *uuid.UUID

	UtilizationDate time.Time
	Trigger         valueobject.FLDGTrigger
	DPDAtClaim      int

	PrincipalClaimed decimal.Decimal
	InterestClaimed  decimal.Decimal
	FeesClaimed      decimal.Decimal
	TotalClaimed     decimal.Decimal
	LenderSharePct   decimal.Decimal

	TotalApproved decimal.Decimal
	ApprovedBy    string

	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal

	RecoveredToPool decimal.Decimal
	Status          string
}

// FLDGRecovery is an immutable recovery event against a utilization. The
// lender-share portion of the recovered amount replenishes the pool, capped
// at what remains of the utilization's approved amount; the rest flows to the
// lender. When the arrangement does not replenish first, all of it flows to
// the lender.
type FLDGRecovery struct {
	ID            uuid.UUID
	UtilizationID uuid.UUID
	RecoveryDate  time.Time

	PrincipalRecovered decimal.Decimal
	InterestRecovered  decimal.Decimal
	TotalRecovered     decimal.Decimal

	ReturnedToPool decimal.Decimal
	ExcessToLender decimal.Decimal

	Source string
}
