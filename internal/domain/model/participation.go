package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

// LoanParticipation is one partner's pro-rata ownership of an account's cash
// flows. Across the account's active participations, share percents sum to
// 100.00 within a 0.01 tolerance.
type LoanParticipation struct {
	ID            uuid.UUID
	LoanAccountID uuid.UUID
	PartnerID     uuid.UUID
	PartnerName   string

	SharePercent    decimal.Decimal
	YieldRatePct    *decimal.Decimal
	FeeSharePercent *decimal.Decimal

	FLDGArrangementID     *uuid.UUID
	ServicerArrangementID *uuid.UUID

	PrincipalDisbursed decimal.Decimal
	PrincipalCollected decimal.Decimal
	InterestCollected  decimal.Decimal
	FeesCollected      decimal.Decimal

	Active    bool
	CreatedAt time.Time
}

// PartnerLedgerEntry is one posting on a participation's running ledger.
// entry_n.RunningBalance = entry_{n-1}.RunningBalance + SignedAmount.
type PartnerLedgerEntry struct {
	ID              uuid.UUID
	ParticipationID uuid.UUID
	EntryType       valueobject.LedgerEntryType
	EntryDate       time.Time
	SignedAmount    decimal.Decimal
	RunningBalance  decimal.Decimal
	PaymentID       *uuid.UUID
	Description     string
}

// ServicerArrangement defines servicer-fee and excess-spread withholding for
// a serviced portfolio. FeeBase is explicit because the fee may be charged on
// total outstanding or only on the lender's share.
type ServicerArrangement struct {
	ID         uuid.UUID
	Code       string
	ServicerID uuid.UUID
	LenderID   uuid.UUID

	FeeRatePct     decimal.Decimal
	FeeBase        valueobject.ServicerFeeBase
	LenderYieldPct decimal.Decimal

	WithholdOnCollection bool
	EffectiveDate        time.Time
}
