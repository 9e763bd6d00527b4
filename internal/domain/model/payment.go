package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment records an inbound amount. Allocations consume the amount; the
// remainder stays on Unallocated and is never negative.
type Payment struct {
	ID            uuid.UUID
	LoanAccountID uuid.UUID
	Amount        decimal.Decimal
	Unallocated   decimal.Decimal
	Channel       string
	ExternalRef   string
	PaidAt        time.Time
	CreatedAt     time.Time
}

// PaymentAllocation attaches a payment to exactly one schedule row with the
// three component amounts.
type PaymentAllocation struct {
	ID                 uuid.UUID
	PaymentID          uuid.UUID
	InstallmentID      uuid.UUID
	InstallmentNumber  int
	PrincipalAllocated decimal.Decimal
	InterestAllocated  decimal.Decimal
	FeesAllocated      decimal.Decimal
}

// Total sums the component allocations.
func (a PaymentAllocation) Total() decimal.Decimal {
	return a.PrincipalAllocated.Add(a.InterestAllocated).Add(a.FeesAllocated)
}

// SumAllocations totals a set of allocations by component.
func SumAllocations(allocations []PaymentAllocation) (principal, interest, fees decimal.Decimal) {
	principal, interest, fees = decimal.Zero, decimal.Zero, decimal.Zero
	for _, a := range allocations {
		principal = principal.Add(a.PrincipalAllocated)
		interest = interest.Add(a.InterestAllocated)
		fees = fees.Add(a.FeesAllocated)
	}
	return principal, interest, fees
}
