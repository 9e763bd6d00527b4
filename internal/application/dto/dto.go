// Package dto defines the request and response shapes of the service
// surface. The transport maps wire formats onto these; the core never sees
// raw strings for closed variants.
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyPaymentRequest applies an inbound amount through the waterfall.
type ApplyPaymentRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	PaidAt      time.Time
	Channel     string
	ExternalRef string
}

// AllocationDTO is one installment's share of a payment.
type AllocationDTO struct {
	InstallmentNumber int             `json:"installment_number"`
	Principal         decimal.Decimal `json:"principal"`
	Interest          decimal.Decimal `json:"interest"`
	Fees              decimal.Decimal `json:"fees"`
}

// ApplyPaymentResponse reports the allocation outcome.
type ApplyPaymentResponse struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	Allocations []AllocationDTO `json:"allocations"`
	Unallocated decimal.Decimal `json:"unallocated"`
	NewDPD      int             `json:"new_dpd"`
	Replayed    bool            `json:"replayed"`
}

// RestructureRequest carries an approved restructure.
type RestructureRequest struct {
	AccountID       uuid.UUID
	Type            string
	EffectiveDate   time.Time
	NewRatePct      *decimal.Decimal
	NewTenure       *int
	PrincipalWaived decimal.Decimal
	InterestWaived  decimal.Decimal
	FeesWaived      decimal.Decimal
	Reason          string
	RequestedBy     string
	ApprovedBy      string
}

// PrepaymentRequest is a prepayment application or impact query.
type PrepaymentRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Action      string
	PaidAt      time.Time
	ProcessedBy string
}

// WriteOffRequest writes off outstanding components.
type WriteOffRequest struct {
	AccountID  uuid.UUID
	Principal  *decimal.Decimal
	Interest   *decimal.Decimal
	Fees       *decimal.Decimal
	Reason     string
	ApprovedBy string
}

// RecoveryRequest records a recovery against a write-off or an FLDG
// utilization.
type RecoveryRequest struct {
	ReferenceID uuid.UUID // write-off id or utilization id
	Principal   decimal.Decimal
	Interest    decimal.Decimal
	Source      string
	Notes       string
	On          time.Time
}
