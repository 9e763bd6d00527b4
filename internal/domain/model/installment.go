package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
	"github.com/harshitrathi14/LOS-LMS/pkg/schedule"
)

// Installment is one repayment-schedule row. Rows whose status is paid are
// immutable.
type Installment struct {
	ID            uuid.UUID
	LoanAccountID uuid.UUID
	Number        int

	DueDate     time.Time
	PeriodStart time.Time
	PeriodEnd   time.Time

	OpeningBalance decimal.Decimal
	PrincipalDue   decimal.Decimal
	InterestDue    decimal.Decimal
	FeesDue        decimal.Decimal
	TotalDue       decimal.Decimal
	ClosingBalance decimal.Decimal

	PrincipalPaid decimal.Decimal
	InterestPaid  decimal.Decimal
	FeesPaid      decimal.Decimal

	Moratorium bool
	Status     valueobject.InstallmentStatus
}

// PrincipalRemaining returns the unpaid principal component, never negative.
func (i *Installment) PrincipalRemaining() decimal.Decimal {
	return money.NonNegative(i.PrincipalDue.Sub(i.PrincipalPaid))
}

// InterestRemaining returns the unpaid interest component, never negative.
func (i *Installment) InterestRemaining() decimal.Decimal {
	return money.NonNegative(i.InterestDue.Sub(i.InterestPaid))
}

// FeesRemaining returns the unpaid fees component, never negative.
func (i *Installment) FeesRemaining() decimal.Decimal {
	return money.NonNegative(i.FeesDue.Sub(i.FeesPaid))
}

// TotalRemaining returns the total unpaid amount across components.
func (i *Installment) TotalRemaining() decimal.Decimal {
	return i.PrincipalRemaining().Add(i.InterestRemaining()).Add(i.FeesRemaining())
}

// IsSettled reports whether every component is fully paid.
func (i *Installment) IsSettled() bool {
	return i.TotalRemaining().IsZero()
}

// InstallmentsFromLines converts generated schedule lines into persistable
// rows, numbering from firstNumber.
func InstallmentsFromLines(accountID uuid.UUID, lines []schedule.Line, firstNumber int) []Installment {
	out := make([]Installment, 0, len(lines))
	for i, ln := range lines {
		out = append(out, Installment{
			ID:             uuid.New(),
			LoanAccountID:  accountID,
			Number:         firstNumber + i,
			DueDate:        ln.DueDate,
			PeriodStart:    ln.PeriodStart,
			PeriodEnd:      ln.PeriodEnd,
			OpeningBalance: ln.Opening,
			PrincipalDue:   ln.PrincipalDue,
			InterestDue:    ln.InterestDue,
			FeesDue:        ln.FeesDue,
			TotalDue:       ln.TotalDue,
			ClosingBalance: ln.Closing,
			PrincipalPaid:  decimal.Zero,
			InterestPaid:   decimal.Zero,
			FeesPaid:       decimal.Zero,
			Moratorium:     ln.Moratorium,
			Status:         valueobject.InstallmentPending,
		})
	}
	return out
}
