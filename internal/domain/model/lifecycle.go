package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

// RestructureEvent captures a schedule-reshaping contract modification with
// enough before/after state to reconstruct the mutation.
type RestructureEvent struct {
	ID            uuid.UUID
	LoanAccountID uuid.UUID
	Type          valueobject.RestructureType
	EffectiveDate time.Time

	OldPrincipal decimal.Decimal
	OldRatePct   decimal.Decimal
	OldTenure    int
	OldEMI       *decimal.Decimal

	NewPrincipal decimal.Decimal
	NewRatePct   decimal.Decimal
	NewTenure    int
	NewEMI       *decimal.Decimal

	PrincipalWaived decimal.Decimal
	InterestWaived  decimal.Decimal
	FeesWaived      decimal.Decimal

	Reason      string
	RequestedBy string
	ApprovedBy  string
	Status      string
	CreatedAt   time.Time
}

// Prepayment is an immutable partial- or full-prepayment event.
type Prepayment struct {
	ID            uuid.UUID
	LoanAccountID uuid.UUID
	PaymentID     *uuid.UUID
	Action        valueobject.PrepaymentAction
	PrepaidAt     time.Time

	Amount           decimal.Decimal
	PenaltyAmount    decimal.Decimal
	PenaltyWaived    decimal.Decimal
	PrincipalReduced decimal.Decimal

	OldOutstanding decimal.Decimal
	NewOutstanding decimal.Decimal
	OldEMI         *decimal.Decimal
	NewEMI         *decimal.Decimal
	OldTenure      int
	NewTenure      int

	InterestSaved decimal.Decimal
	IsForeclosure bool
	ProcessedBy   string
}

// WriteOff records the written-off components and the account's risk state
// at write-off. Recovery totals are the only mutable fields.
type WriteOff struct {
	ID            uuid.UUID
	LoanAccountID uuid.UUID
	WriteOffDate  time.Time

	PrincipalWrittenOff decimal.Decimal
	InterestWrittenOff  decimal.Decimal
	FeesWrittenOff      decimal.Decimal
	TotalWrittenOff     decimal.Decimal

	DPDAtWriteOff int
	NPACategory   valueobject.NPACategory
	Partial       bool
	Reason        string
	ApprovedBy    string

	RecoveredPrincipal decimal.Decimal
	RecoveredInterest  decimal.Decimal
	RecoveredFees      decimal.Decimal
	TotalRecovered     decimal.Decimal
	RecoveryStatus     string
	LastRecoveryDate   *time.Time
}

// WriteOffRecovery is an immutable recovery event against a write-off.
// Components allocate fees, then interest, then principal.
type WriteOffRecovery struct {
	ID         uuid.UUID
	WriteOffID uuid.UUID
	PaymentID  *uuid.UUID

	RecoveryDate time.Time
	Amount       decimal.Decimal

	PrincipalRecovered decimal.Decimal
	InterestRecovered  decimal.Decimal
	FeesRecovered      decimal.Decimal

	Source string
	Notes  string
}
