package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/application/dto"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/event"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/service"
)

// FLDGClaimUseCase claims against a guarantee pool when a covered account
// crosses the trigger DPD, turns NPA or is written off.
type FLDGClaimUseCase struct {
	store     port.Store
	locker    port.AccountLocker
	publisher port.EventPublisher
}

// NewFLDGClaimUseCase wires dependencies.
func NewFLDGClaimUseCase(store port.Store, locker port.AccountLocker, publisher port.EventPublisher) *FLDGClaimUseCase {
	return &FLDGClaimUseCase{store: store, locker: locker, publisher: publisher}
}

// Execute raises and approves the claim inside one transaction.
func (uc *FLDGClaimUseCase) Execute(ctx context.Context, accountID, arrangementID uuid.UUID, approvedBy string, on time.Time) (model.FLDGUtilization, error) {
	release, err := uc.locker.Acquire(ctx, accountID)
	if err != nil {
		return model.FLDGUtilization{}, err
	}
	defer release()

	var (
		util model.FLDGUtilization
		evts []eventToPublish
	)

	err = uc.store.InTx(ctx, func(ctx context.Context, s port.Store) error {
		acct, err := s.Loans().Get(ctx, accountID)
		if err != nil {
			return err
		}
		arr, err := s.FLDG().GetArrangement(ctx, arrangementID)
		if err != nil {
			return err
		}

		claimed, err := s.FLDG().HasUtilization(ctx, arrangementID, accountID)
		if err != nil {
			return err
		}
		if claimed {
			return apperr.New(apperr.KindConflictingState, "FLDG already utilized for this account").
				WithEntity(accountID.String())
		}

		lenderShare := decimal.NewFromInt(100)
		participations, err := s.Participations().ListByAccount(ctx, accountID)
		if err != nil {
			return err
		}
		for _, p := range participations {
			if p.FLDGArrangementID != nil && *p.FLDGArrangementID == arrangementID {
				lenderShare = p.SharePercent
				break
			}
		}

		claim, err := service.ComputeClaim(arr, acct, lenderShare)
		if err != nil {
			return err
		}
		util, err = service.ApplyClaim(arr, acct, claim, nil, on, approvedBy)
		if err != nil {
			return err
		}

		if err := s.FLDG().InsertUtilization(ctx, util); err != nil {
			return err
		}
		if err := s.FLDG().SaveArrangement(ctx, arr); err != nil {
			return err
		}

		evts = append(evts, eventToPublish{e: event.NewFLDGClaimed(accountID, util.ID, util.TotalApproved, on)})
		return nil
	})
	if err != nil {
		return model.FLDGUtilization{}, err
	}

	publishAll(ctx, uc.publisher, evts)
	return util, nil
}

// FLDGRecoveryUseCase records a recovery against a utilization: the pool is
// replenished first; the excess flows to the lender.
type FLDGRecoveryUseCase struct {
	store port.Store
}

// NewFLDGRecoveryUseCase wires dependencies.
func NewFLDGRecoveryUseCase(store port.Store) *FLDGRecoveryUseCase {
	return &FLDGRecoveryUseCase{store: store}
}

// Execute records the recovery inside one transaction.
func (uc *FLDGRecoveryUseCase) Execute(ctx context.Context, req dto.RecoveryRequest) (model.FLDGRecovery, error) {
	var recovery model.FLDGRecovery

	err := uc.store.InTx(ctx, func(ctx context.Context, s port.Store) error {
		util, err := s.FLDG().GetUtilization(ctx, req.ReferenceID)
		if err != nil {
			return err
		}
		arr, err := s.FLDG().GetArrangement(ctx, util.ArrangementID)
		if err != nil {
			return err
		}

		recovery, err = service.ApplyFLDGRecovery(arr, util, req.Principal, req.Interest, req.Source, req.On)
		if err != nil {
			return err
		}

		if err := s.FLDG().InsertRecovery(ctx, recovery); err != nil {
			return err
		}
		if err := s.FLDG().SaveUtilization(ctx, util); err != nil {
			return err
		}
		return s.FLDG().SaveArrangement(ctx, arr)
	})
	if err != nil {
		return model.FLDGRecovery{}, err
	}
	return recovery, nil
}
