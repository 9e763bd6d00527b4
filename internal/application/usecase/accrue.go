package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/service"
)

// AccrueUseCase accrues daily interest for one account up to the as-of
// date, catching up any missed days since the last accrual. Idempotent per
// (account, date).
type AccrueUseCase struct {
	store  port.Store
	locker port.AccountLocker
}

// NewAccrueUseCase wires dependencies.
func NewAccrueUseCase(store port.Store, locker port.AccountLocker) *AccrueUseCase {
	return &AccrueUseCase{store: store, locker: locker}
}

// benchmarkSource adapts the reference-data repository to the floating-rate
// resolver.
type benchmarkSource struct {
	refdata port.RefDataRepository
}

// RateOn returns the latest benchmark publication on or before asOf.
func (b benchmarkSource) RateOn(ctx context.Context, benchmarkID uuid.UUID, asOf time.Time) (decimal.Decimal, bool, error) {
	return b.refdata.BenchmarkRateOn(ctx, benchmarkID, asOf)
}

// Execute accrues every missing day through asOf and returns the final row.
func (uc *AccrueUseCase) Execute(ctx context.Context, accountID uuid.UUID, asOf time.Time) (model.InterestAccrual, error) {
	release, err := uc.locker.Acquire(ctx, accountID)
	if err != nil {
		return model.InterestAccrual{}, err
	}
	defer release()

	var last model.InterestAccrual
	err = uc.store.InTx(ctx, func(ctx context.Context, s port.Store) error {
		acct, err := s.Loans().Get(ctx, accountID)
		if err != nil {
			return err
		}
		if !acct.IsOpen() {
			return apperr.New(apperr.KindConflictingState, "account is not active").
				WithEntity(accountID.String())
		}
		if asOf.Before(acct.DisbursementDate) {
			return apperr.New(apperr.KindInvalidInput,
				"as-of date precedes disbursement %s", acct.DisbursementDate.Format("2006-01-02"))
		}

		start := acct.DisbursementDate
		if acct.LastAccrualDate != nil {
			start = acct.LastAccrualDate.AddDate(0, 0, 1)
		}

		src := benchmarkSource{refdata: s.RefData()}
		cumulative := acct.CumulativeAccrued
		wrote := false

		for day := start; !day.After(asOf); day = day.AddDate(0, 0, 1) {
			if ctx.Err() != nil {
				return apperr.Wrap(apperr.KindTransient, ctx.Err(), "accrual cancelled")
			}

			// Uniqueness: at most one non-reversed accrual per (account, date).
			if existing, err := s.Accruals().ForDate(ctx, accountID, day); err != nil {
				return err
			} else if existing != nil {
				last = *existing
				cumulative = existing.Cumulative
				continue
			}

			if service.RateResetDue(acct.Rate, day) {
				if _, _, err := service.ApplyRateReset(ctx, acct, day, src); err != nil {
					return err
				}
			}

			rate := acct.CurrentRatePct
			if acct.Rate.Type.IsFloating() {
				resolved, err := service.EffectiveRate(ctx, acct.Rate, day, src)
				if err != nil {
					return err
				}
				rate = resolved
			}

			accrual := service.BuildDailyAccrual(acct, day, rate, cumulative)
			if err := s.Accruals().Insert(ctx, accrual); err != nil {
				return err
			}
			cumulative = accrual.Cumulative
			last = accrual
			wrote = true
		}

		if wrote {
			acct.CumulativeAccrued = cumulative
			lastDate := last.AccrualDate
			acct.LastAccrualDate = &lastDate
			return s.Loans().Save(ctx, acct)
		}

		// Already accrued through asOf: surface the latest row.
		if last.ID == uuid.Nil {
			if latest, err := s.Accruals().Latest(ctx, accountID); err != nil {
				return err
			} else if latest != nil {
				last = *latest
			}
		}
		return nil
	})
	if err != nil {
		return model.InterestAccrual{}, err
	}
	return last, nil
}

// RunAccrualBatchUseCase fans the daily accrual out over the active book.
type RunAccrualBatchUseCase struct {
	store   port.Store
	accrue  *AccrueUseCase
	workers int
}

// NewRunAccrualBatchUseCase wires dependencies.
func NewRunAccrualBatchUseCase(store port.Store, accrue *AccrueUseCase, workers int) *RunAccrualBatchUseCase {
	return &RunAccrualBatchUseCase{store: store, accrue: accrue, workers: workers}
}

// Execute accrues every active account for the date. One account's failure
// does not abort the batch.
func (uc *RunAccrualBatchUseCase) Execute(ctx context.Context, asOf time.Time) (BatchResult, error) {
	ids, err := uc.store.Loans().ActiveIDs(ctx)
	if err != nil {
		return BatchResult{}, err
	}
	result := runAccountBatch(ctx, ids, uc.workers, func(ctx context.Context, id uuid.UUID) error {
		_, err := uc.accrue.Execute(ctx, id, asOf)
		return err
	})
	return result, nil
}
