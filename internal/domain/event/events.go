// Package event defines the concrete domain events emitted by the loan
// engine. Events are published to the broker only after the owning
// transaction commits.
package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/pkg/events"
)

const aggregateLoanAccount = "loan_account"

// PaymentApplied signals a payment allocated through the waterfall.
type PaymentApplied struct {
	events.Base
}

// NewPaymentApplied builds the event.
func NewPaymentApplied(accountID, paymentID uuid.UUID, amount, unallocated decimal.Decimal, newDPD int, at time.Time) PaymentApplied {
	return PaymentApplied{Base: events.NewBase("lms.payment_applied", accountID, aggregateLoanAccount, at, map[string]any{
		"payment_id":  paymentID.String(),
		"amount":      amount.String(),
		"unallocated": unallocated.String(),
		"dpd":         newDPD,
	})}
}

// NPAStatusChanged signals entry into or exit from NPA classification.
type NPAStatusChanged struct {
	events.Base
}

// NewNPAStatusChanged builds the event.
func NewNPAStatusChanged(accountID uuid.UUID, isNPA bool, category string, dpd int, at time.Time) NPAStatusChanged {
	return NPAStatusChanged{Base: events.NewBase("lms.npa_status_changed", accountID, aggregateLoanAccount, at, map[string]any{
		"is_npa":   isNPA,
		"category": category,
		"dpd":      dpd,
	})}
}

// LoanRestructured signals an applied restructure.
type LoanRestructured struct {
	events.Base
}

// NewLoanRestructured builds the event.
func NewLoanRestructured(accountID, restructureID uuid.UUID, restructureType string, at time.Time) LoanRestructured {
	return LoanRestructured{Base: events.NewBase("lms.loan_restructured", accountID, aggregateLoanAccount, at, map[string]any{
		"restructure_id": restructureID.String(),
		"type":           restructureType,
	})}
}

// PrepaymentApplied signals a partial prepayment or foreclosure.
type PrepaymentApplied struct {
	events.Base
}

// NewPrepaymentApplied builds the event.
func NewPrepaymentApplied(accountID, prepaymentID uuid.UUID, action string, amount decimal.Decimal, foreclosure bool, at time.Time) PrepaymentApplied {
	return PrepaymentApplied{Base: events.NewBase("lms.prepayment_applied", accountID, aggregateLoanAccount, at, map[string]any{
		"prepayment_id": prepaymentID.String(),
		"action":        action,
		"amount":        amount.String(),
		"foreclosure":   foreclosure,
	})}
}

// LoanClosed signals a terminal closure.
type LoanClosed struct {
	events.Base
}

// NewLoanClosed builds the event.
func NewLoanClosed(accountID uuid.UUID, closureType string, at time.Time) LoanClosed {
	return LoanClosed{Base: events.NewBase("lms.loan_closed", accountID, aggregateLoanAccount, at, map[string]any{
		"closure_type": closureType,
	})}
}

// LoanWrittenOff signals a write-off.
type LoanWrittenOff struct {
	events.Base
}

// NewLoanWrittenOff builds the event.
func NewLoanWrittenOff(accountID, writeOffID uuid.UUID, total decimal.Decimal, at time.Time) LoanWrittenOff {
	return LoanWrittenOff{Base: events.NewBase("lms.loan_written_off", accountID, aggregateLoanAccount, at, map[string]any{
		"write_off_id": writeOffID.String(),
		"total":        total.String(),
	})}
}

// FLDGClaimed signals an approved FLDG utilization.
type FLDGClaimed struct {
	events.Base
}

// NewFLDGClaimed builds the event.
func NewFLDGClaimed(accountID, utilizationID uuid.UUID, approved decimal.Decimal, at time.Time) FLDGClaimed {
	return FLDGClaimed{Base: events.NewBase("lms.fldg_claimed", accountID, aggregateLoanAccount, at, map[string]any{
		"utilization_id": utilizationID.String(),
		"approved":       approved.String(),
	})}
}
