package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/service"
	"github.com/harshitrathi14/LOS-LMS/pkg/bizcal"
	"github.com/harshitrathi14/LOS-LMS/pkg/schedule"
)

// GenerateScheduleUseCase produces the installment sequence for an account's
// configuration without persisting anything.
type GenerateScheduleUseCase struct {
	store port.Store
}

// NewGenerateScheduleUseCase wires dependencies.
func NewGenerateScheduleUseCase(store port.Store) *GenerateScheduleUseCase {
	return &GenerateScheduleUseCase{store: store}
}

// Execute generates the schedule. Pure over account config.
func (uc *GenerateScheduleUseCase) Execute(ctx context.Context, accountID uuid.UUID) ([]schedule.Line, error) {
	acct, err := uc.store.Loans().Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	cal, err := resolveCalendar(ctx, uc.store, acct)
	if err != nil {
		return nil, err
	}

	lines, err := schedule.Generate(acct.ScheduleSpec(cal))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err, "generate schedule").
			WithEntity(accountID.String())
	}
	return lines, nil
}

// PersistScheduleUseCase generates and persists the schedule; it is an error
// when one already exists.
type PersistScheduleUseCase struct {
	store  port.Store
	locker port.AccountLocker
}

// NewPersistScheduleUseCase wires dependencies.
func NewPersistScheduleUseCase(store port.Store, locker port.AccountLocker) *PersistScheduleUseCase {
	return &PersistScheduleUseCase{store: store, locker: locker}
}

// Execute persists the generated schedule and stamps the first due row on
// the account.
func (uc *PersistScheduleUseCase) Execute(ctx context.Context, accountID uuid.UUID) ([]model.Installment, error) {
	release, err := uc.locker.Acquire(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	var rows []model.Installment
	err = uc.store.InTx(ctx, func(ctx context.Context, s port.Store) error {
		acct, err := s.Loans().Get(ctx, accountID)
		if err != nil {
			return err
		}

		exists, err := s.Schedules().Exists(ctx, accountID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.New(apperr.KindConflictingState, "schedule already exists").
				WithEntity(accountID.String()).
				WithHint("restructure or prepay to reshape an existing schedule")
		}

		cal, err := resolveCalendar(ctx, s, acct)
		if err != nil {
			return err
		}
		lines, err := schedule.Generate(acct.ScheduleSpec(cal))
		if err != nil {
			return apperr.Wrap(apperr.KindInvalidInput, err, "generate schedule").
				WithEntity(accountID.String())
		}

		rows = model.InstallmentsFromLines(accountID, lines, 1)
		if err := s.Schedules().InsertAll(ctx, rows); err != nil {
			return err
		}

		ptrs := make([]*model.Installment, len(rows))
		for i := range rows {
			ptrs[i] = &rows[i]
		}
		totals := service.RecomputeOutstanding(ptrs)
		acct.InterestOutstanding = totals.Interest
		acct.FeesOutstanding = totals.Fees
		setNextDue(acct, totals)
		return s.Loans().Save(ctx, acct)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// resolveCalendar loads the account's holiday calendar; accounts without one
// fall back to weekend-only adjustment.
func resolveCalendar(ctx context.Context, s port.Store, acct *model.LoanAccount) (*bizcal.Calendar, error) {
	if acct.CalendarID == uuid.Nil {
		return bizcal.New(nil, nil), nil
	}
	return s.RefData().Calendar(ctx, acct.CalendarID)
}
