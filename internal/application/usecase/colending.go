package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/service"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// SplitCollectionUseCase splits an applied payment's collected components
// across the account's co-lending participations and posts the partner
// ledger entries, including servicer fee and excess-spread withholding.
type SplitCollectionUseCase struct {
	store  port.Store
	locker port.AccountLocker
}

// NewSplitCollectionUseCase wires dependencies.
func NewSplitCollectionUseCase(store port.Store, locker port.AccountLocker) *SplitCollectionUseCase {
	return &SplitCollectionUseCase{store: store, locker: locker}
}

// Execute splits the collection inside one transaction.
func (uc *SplitCollectionUseCase) Execute(ctx context.Context, accountID, paymentID uuid.UUID) ([]model.PartnerLedgerEntry, error) {
	release, err := uc.locker.Acquire(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	var entries []model.PartnerLedgerEntry

	err = uc.store.InTx(ctx, func(ctx context.Context, s port.Store) error {
		acct, err := s.Loans().Get(ctx, accountID)
		if err != nil {
			return err
		}
		payment, err := s.Payments().Get(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.LoanAccountID != accountID {
			return apperr.New(apperr.KindInvalidInput, "payment does not belong to the account").
				WithEntity(paymentID.String())
		}
		allocations, err := s.Payments().AllocationsForPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		participations, err := s.Participations().ListByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if len(participations) == 0 {
			return apperr.New(apperr.KindNotFound, "account has no co-lending participations").
				WithEntity(accountID.String())
		}

		var servicer *model.ServicerArrangement
		for _, p := range participations {
			if p.ServicerArrangementID != nil {
				servicer, err = s.Participations().ServicerArrangement(ctx, *p.ServicerArrangementID)
				if err != nil {
					return err
				}
				break
			}
		}

		principal, interest, fees := model.SumAllocations(allocations)
		postings, err := service.SplitCollection(service.SplitInput{
			Components: service.CollectionComponents{
				Principal: principal,
				Interest:  interest,
				Fees:      fees,
			},
			Participations:       participations,
			Servicer:             servicer,
			BorrowerRatePct:      acct.CurrentRatePct,
			OutstandingPrincipal: acct.PrincipalOutstanding,
			PeriodDays:           acct.Frequency.ApproxDays(),
			EntryDate:            payment.PaidAt,
		})
		if err != nil {
			return err
		}

		entries, err = uc.postLedger(ctx, s, postings, payment)
		if err != nil {
			return err
		}

		// Conservation: postings must account for every collected rupee.
		posted := decimal.Zero
		for _, e := range entries {
			posted = posted.Add(e.SignedAmount)
		}
		collected := principal.Add(interest).Add(fees)
		if !posted.Equal(collected) {
			return apperr.New(apperr.KindFatal,
				"partner postings %s != collected %s", posted, collected).
				WithEntity(paymentID.String())
		}

		return uc.updateCollectedTotals(ctx, s, participations, postings)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// postLedger materializes postings as ledger entries with running balances.
func (uc *SplitCollectionUseCase) postLedger(ctx context.Context, s port.Store, postings []service.LedgerPosting, payment *model.Payment) ([]model.PartnerLedgerEntry, error) {
	balances := make(map[uuid.UUID]decimal.Decimal)
	entries := make([]model.PartnerLedgerEntry, 0, len(postings))

	for _, posting := range postings {
		balance, ok := balances[posting.ParticipationID]
		if !ok {
			var err error
			balance, err = s.Participations().LastLedgerBalance(ctx, posting.ParticipationID)
			if err != nil {
				return nil, err
			}
		}
		balance = money.Round(balance.Add(posting.Amount))
		balances[posting.ParticipationID] = balance

		paymentID := payment.ID
		entries = append(entries, model.PartnerLedgerEntry{
			ID:              uuid.New(),
			ParticipationID: posting.ParticipationID,
			EntryType:       posting.EntryType,
			EntryDate:       payment.PaidAt,
			SignedAmount:    posting.Amount,
			RunningBalance:  balance,
			PaymentID:       &paymentID,
			Description:     posting.Description,
		})
	}

	if err := s.Participations().InsertLedgerEntries(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// updateCollectedTotals advances the cumulative collected counters on each
// participation.
func (uc *SplitCollectionUseCase) updateCollectedTotals(ctx context.Context, s port.Store, participations []model.LoanParticipation, postings []service.LedgerPosting) error {
	byID := make(map[uuid.UUID]*model.LoanParticipation, len(participations))
	for i := range participations {
		byID[participations[i].ID] = &participations[i]
	}

	for _, posting := range postings {
		p, ok := byID[posting.ParticipationID]
		if !ok {
			continue
		}
		switch posting.EntryType {
		case valueobject.LedgerPrincipalCollection:
			p.PrincipalCollected = p.PrincipalCollected.Add(posting.Amount)
		case valueobject.LedgerInterestCollection:
			p.InterestCollected = p.InterestCollected.Add(posting.Amount)
		case valueobject.LedgerFeeCollection:
			p.FeesCollected = p.FeesCollected.Add(posting.Amount)
		}
	}

	for i := range participations {
		if err := s.Participations().Save(ctx, &participations[i]); err != nil {
			return err
		}
	}
	return nil
}
