package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// CollectionComponents are the collected amounts being split.
type CollectionComponents struct {
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Fees      decimal.Decimal
}

// Total sums the three components.
func (c CollectionComponents) Total() decimal.Decimal {
	return c.Principal.Add(c.Interest).Add(c.Fees)
}

// LedgerPosting is one computed partner-ledger amount; the application layer
// turns postings into PartnerLedgerEntry rows with running balances.
type LedgerPosting struct {
	ParticipationID uuid.UUID
	PartnerID       uuid.UUID
	EntryType       valueobject.LedgerEntryType
	Amount          decimal.Decimal
	Description     string
}

// SplitInput carries everything the splitter needs, by value.
type SplitInput struct {
	Components     CollectionComponents
	Participations []model.LoanParticipation

	// Servicer is optional; when present, servicer fee and excess spread are
	// withheld from the lender's interest share and credited to the servicer.
	Servicer *model.ServicerArrangement

	BorrowerRatePct      decimal.Decimal
	OutstandingPrincipal decimal.Decimal
	PeriodDays           int

	EntryDate time.Time
}

// shareTolerance bounds the allowed deviation of Σ share_percent from 100.
var shareTolerance = decimal.RequireFromString("0.01")

// ValidateShares checks that active participation shares sum to 100.00
// within tolerance.
func ValidateShares(participations []model.LoanParticipation) error {
	total := decimal.Zero
	for _, p := range participations {
		if !p.Active {
			continue
		}
		total = total.Add(p.SharePercent)
	}
	if total.Sub(decimal.NewFromInt(100)).Abs().GreaterThan(shareTolerance) {
		return apperr.New(apperr.KindInvalidInput,
			"participation shares sum to %s, want 100.00", total)
	}
	return nil
}

// ServicerFee computes the withholding base*rate*days/365 on the configured
// fee base.
func ServicerFee(arr *model.ServicerArrangement, outstanding, lenderSharePct decimal.Decimal, days int) decimal.Decimal {
	base := outstanding
	if arr.FeeBase == valueobject.FeeBaseLenderShare {
		base = money.Share(outstanding, lenderSharePct)
	}
	fee := base.Mul(money.Fraction(arr.FeeRatePct)).
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(365))
	return money.Round(fee)
}

// ExcessSpread computes the lender-yield withholding on the lender's interest
// share: interest * (borrower - yield) / borrower. A yield at or above the
// borrower rate withholds nothing.
func ExcessSpread(lenderInterest, borrowerRatePct, lenderYieldPct decimal.Decimal) decimal.Decimal {
	if !borrowerRatePct.IsPositive() {
		return decimal.Zero
	}
	excess := borrowerRatePct.Sub(lenderYieldPct)
	if !excess.IsPositive() {
		return decimal.Zero
	}
	return money.Round(lenderInterest.Mul(excess).Div(borrowerRatePct))
}

// SplitCollection splits collected components across participations by share
// percent, withholding servicer fee and excess spread from the lender's
// interest and crediting them to the servicer. The last partner absorbs the
// rounding residual on each component so the postings conserve the collected
// cash.
func SplitCollection(in SplitInput) ([]LedgerPosting, error) {
	active := make([]model.LoanParticipation, 0, len(in.Participations))
	for _, p := range in.Participations {
		if p.Active {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "no active participations")
	}
	if err := ValidateShares(active); err != nil {
		return nil, err
	}

	principalShares := splitByShare(in.Components.Principal, active, false)
	interestShares := splitByShare(in.Components.Interest, active, false)
	feeShares := splitByShare(in.Components.Fees, active, true)

	var postings []LedgerPosting
	for i, p := range active {
		if principalShares[i].IsPositive() {
			postings = append(postings, LedgerPosting{
				ParticipationID: p.ID,
				PartnerID:       p.PartnerID,
				EntryType:       valueobject.LedgerPrincipalCollection,
				Amount:          principalShares[i],
				Description:     "principal collection share",
			})
		}

		interest := interestShares[i]
		if in.Servicer != nil && p.PartnerID == in.Servicer.LenderID && interest.IsPositive() {
			fee := ServicerFee(in.Servicer, in.OutstandingPrincipal, p.SharePercent, in.PeriodDays)
			spread := ExcessSpread(interest, in.BorrowerRatePct, in.Servicer.LenderYieldPct)
			withheld := fee.Add(spread)
			if withheld.GreaterThan(interest) {
				withheld = interest
			}
			interest = interest.Sub(withheld)

			if withheld.IsPositive() {
				postings = append(postings, LedgerPosting{
					ParticipationID: servicerParticipation(active, in.Servicer.ServicerID, p).ID,
					PartnerID:       in.Servicer.ServicerID,
					EntryType:       valueobject.LedgerServicerIncome,
					Amount:          withheld,
					Description:     "servicer fee and excess spread withheld",
				})
			}
		}
		if interest.IsPositive() {
			postings = append(postings, LedgerPosting{
				ParticipationID: p.ID,
				PartnerID:       p.PartnerID,
				EntryType:       valueobject.LedgerInterestCollection,
				Amount:          interest,
				Description:     "interest collection share",
			})
		}

		if feeShares[i].IsPositive() {
			postings = append(postings, LedgerPosting{
				ParticipationID: p.ID,
				PartnerID:       p.PartnerID,
				EntryType:       valueobject.LedgerFeeCollection,
				Amount:          feeShares[i],
				Description:     "fee collection share",
			})
		}
	}
	return postings, nil
}

// DisbursementPostings builds the partner-ledger debit entries recorded when
// a participated loan is disbursed.
func DisbursementPostings(principal decimal.Decimal, participations []model.LoanParticipation) []LedgerPosting {
	var postings []LedgerPosting
	for _, p := range participations {
		if !p.Active {
			continue
		}
		postings = append(postings, LedgerPosting{
			ParticipationID: p.ID,
			PartnerID:       p.PartnerID,
			EntryType:       valueobject.LedgerDisbursement,
			Amount:          money.Share(principal, p.SharePercent).Neg(),
			Description:     "disbursement share",
		})
	}
	return postings
}

// splitByShare splits an amount pro rata; the last participation takes the
// residual. Fee splits honour the fee-share override when present.
func splitByShare(amount decimal.Decimal, participations []model.LoanParticipation, feeSplit bool) []decimal.Decimal {
	out := make([]decimal.Decimal, len(participations))
	if !amount.IsPositive() {
		for i := range out {
			out[i] = decimal.Zero
		}
		return out
	}

	allocated := decimal.Zero
	for i, p := range participations {
		pct := p.SharePercent
		if feeSplit && p.FeeSharePercent != nil {
			pct = *p.FeeSharePercent
		}
		share := money.Share(amount, pct)
		if i == len(participations)-1 {
			share = amount.Sub(allocated)
		}
		out[i] = share
		allocated = allocated.Add(share)
	}
	return out
}

// servicerParticipation locates the servicer's own participation; when the
// servicer does not participate, the posting stays on the lender's
// participation with the servicer as partner.
func servicerParticipation(participations []model.LoanParticipation, servicerID uuid.UUID, fallback model.LoanParticipation) model.LoanParticipation {
	for _, p := range participations {
		if p.PartnerID == servicerID {
			return p
		}
	}
	return fallback
}
