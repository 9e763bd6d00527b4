package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/event"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/service"
)

// RefreshDelinquencyUseCase recomputes DPD, bucket and the sticky NPA state
// for one account and writes the daily snapshot.
type RefreshDelinquencyUseCase struct {
	store     port.Store
	locker    port.AccountLocker
	publisher port.EventPublisher
	delinq    *service.DelinquencyEngine
}

// NewRefreshDelinquencyUseCase wires dependencies.
func NewRefreshDelinquencyUseCase(store port.Store, locker port.AccountLocker, publisher port.EventPublisher, delinq *service.DelinquencyEngine) *RefreshDelinquencyUseCase {
	return &RefreshDelinquencyUseCase{store: store, locker: locker, publisher: publisher, delinq: delinq}
}

// Execute refreshes delinquency state as of the date.
func (uc *RefreshDelinquencyUseCase) Execute(ctx context.Context, accountID uuid.UUID, asOf time.Time) (model.DelinquencySnapshot, error) {
	release, err := uc.locker.Acquire(ctx, accountID)
	if err != nil {
		return model.DelinquencySnapshot{}, err
	}
	defer release()

	var (
		snapshot model.DelinquencySnapshot
		evts     []eventToPublish
	)

	err = uc.store.InTx(ctx, func(ctx context.Context, s port.Store) error {
		acct, err := s.Loans().Get(ctx, accountID)
		if err != nil {
			return err
		}
		installments, err := s.Schedules().ListByAccount(ctx, accountID)
		if err != nil {
			return err
		}

		snapshot = uc.delinq.Snapshot(acct, installments, asOf)
		snapshot.ID = uuid.New()

		wasNPA := acct.IsNPA
		state := uc.delinq.ApplyDelinquency(acct, installments, asOf)

		if err := s.Delinquency().Upsert(ctx, snapshot); err != nil {
			return err
		}
		if err := s.Loans().Save(ctx, acct); err != nil {
			return err
		}

		if wasNPA != state.IsNPA {
			evts = append(evts, eventToPublish{
				e: event.NewNPAStatusChanged(acct.ID, state.IsNPA, string(state.Category), acct.DPD, asOf),
			})
		}
		return nil
	})
	if err != nil {
		return model.DelinquencySnapshot{}, err
	}

	publishAll(ctx, uc.publisher, evts)
	return snapshot, nil
}

// RunDelinquencyBatchUseCase refreshes the whole active book.
type RunDelinquencyBatchUseCase struct {
	store   port.Store
	refresh *RefreshDelinquencyUseCase
	workers int
}

// NewRunDelinquencyBatchUseCase wires dependencies.
func NewRunDelinquencyBatchUseCase(store port.Store, refresh *RefreshDelinquencyUseCase, workers int) *RunDelinquencyBatchUseCase {
	return &RunDelinquencyBatchUseCase{store: store, refresh: refresh, workers: workers}
}

// Execute runs the daily delinquency refresh across active accounts.
func (uc *RunDelinquencyBatchUseCase) Execute(ctx context.Context, asOf time.Time) (BatchResult, error) {
	ids, err := uc.store.Loans().ActiveIDs(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	result := runAccountBatch(ctx, ids, uc.workers, func(ctx context.Context, id uuid.UUID) error {
		_, err := uc.refresh.Execute(ctx, id, asOf)
		return err
	})
	return result, nil
}
