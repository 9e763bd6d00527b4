package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/application/dto"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/event"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/service"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

// PrepaymentImpactUseCase analyses a proposed prepayment without changing
// state. Calling it any number of times returns identical values.
type PrepaymentImpactUseCase struct {
	store port.Store
}

// NewPrepaymentImpactUseCase wires dependencies.
func NewPrepaymentImpactUseCase(store port.Store) *PrepaymentImpactUseCase {
	return &PrepaymentImpactUseCase{store: store}
}

// Execute returns the impact analysis.
func (uc *PrepaymentImpactUseCase) Execute(ctx context.Context, req dto.PrepaymentRequest) (service.PrepaymentImpact, error) {
	action, err := valueobject.NewPrepaymentAction(req.Action)
	if err != nil {
		return service.PrepaymentImpact{}, apperr.Wrap(apperr.KindInvalidInput, err, "parse action")
	}

	acct, err := uc.store.Loans().Get(ctx, req.AccountID)
	if err != nil {
		return service.PrepaymentImpact{}, err
	}
	installments, err := uc.store.Schedules().ListByAccount(ctx, req.AccountID)
	if err != nil {
		return service.PrepaymentImpact{}, err
	}
	return service.Impact(acct, installments, req.Amount, action, req.PaidAt)
}

// ApplyPrepaymentUseCase applies a prepayment: reduce-EMI and reduce-tenure
// regenerate the pending tail; foreclosure discharges and closes the
// account.
type ApplyPrepaymentUseCase struct {
	store     port.Store
	locker    port.AccountLocker
	publisher port.EventPublisher
}

// NewApplyPrepaymentUseCase wires dependencies.
func NewApplyPrepaymentUseCase(store port.Store, locker port.AccountLocker, publisher port.EventPublisher) *ApplyPrepaymentUseCase {
	return &ApplyPrepaymentUseCase{store: store, locker: locker, publisher: publisher}
}

// Execute applies the prepayment inside one transaction.
func (uc *ApplyPrepaymentUseCase) Execute(ctx context.Context, req dto.PrepaymentRequest) (model.Prepayment, error) {
	action, err := valueobject.NewPrepaymentAction(req.Action)
	if err != nil {
		return model.Prepayment{}, apperr.Wrap(apperr.KindInvalidInput, err, "parse action")
	}

	release, err := uc.locker.Acquire(ctx, req.AccountID)
	if err != nil {
		return model.Prepayment{}, err
	}
	defer release()

	var (
		record model.Prepayment
		evts   []eventToPublish
	)

	err = uc.store.InTx(ctx, func(ctx context.Context, s port.Store) error {
		acct, err := s.Loans().Get(ctx, req.AccountID)
		if err != nil {
			return err
		}
		installments, err := s.Schedules().ListByAccount(ctx, req.AccountID)
		if err != nil {
			return err
		}
		cal, err := resolveCalendar(ctx, s, acct)
		if err != nil {
			return err
		}

		plan, err := service.PlanPrepayment(acct, installments, req.Amount, action, req.PaidAt, cal, req.ProcessedBy)
		if err != nil {
			return err
		}

		if len(plan.CancelNumbers) > 0 {
			if err := s.Schedules().CancelNumbers(ctx, acct.ID, plan.CancelNumbers); err != nil {
				return err
			}
		}

		if plan.Foreclose {
			acct.PrincipalOutstanding = decimal.Zero
			acct.InterestOutstanding = decimal.Zero
			acct.FeesOutstanding = decimal.Zero
			acct.Status = valueobject.LoanStatusClosed
			acct.ClosureType = valueobject.ClosureForeclosure
			closed := req.PaidAt
			acct.ClosureDate = &closed
			acct.NextDueDate = nil
			acct.NextDueAmount = nil
		} else {
			rows := model.InstallmentsFromLines(acct.ID, plan.NewLines, plan.FirstNumber)
			if err := s.Schedules().InsertAll(ctx, rows); err != nil {
				return err
			}
			acct.PrincipalOutstanding = plan.Record.NewOutstanding
			acct.TenurePeriods = plan.Record.NewTenure + countPreserved(installments, plan.CancelNumbers)
			if len(rows) > 0 {
				due := rows[0].DueDate
				amount := rows[0].TotalDue
				acct.NextDueDate = &due
				acct.NextDueAmount = &amount
			}
		}

		if err := s.Lifecycle().InsertPrepayment(ctx, plan.Record); err != nil {
			return err
		}
		if err := s.Loans().Save(ctx, acct); err != nil {
			return err
		}

		record = plan.Record
		evts = append(evts, eventToPublish{
			e: event.NewPrepaymentApplied(acct.ID, record.ID, action.String(), req.Amount, plan.Foreclose, req.PaidAt),
		})
		if plan.Foreclose {
			evts = append(evts, eventToPublish{
				e: event.NewLoanClosed(acct.ID, string(valueobject.ClosureForeclosure), req.PaidAt),
			})
		}
		return nil
	})
	if err != nil {
		return model.Prepayment{}, err
	}

	publishAll(ctx, uc.publisher, evts)
	return record, nil
}

// countPreserved counts installments that survived the regeneration.
func countPreserved(installments []*model.Installment, cancelled []int) int {
	dropped := make(map[int]struct{}, len(cancelled))
	for _, n := range cancelled {
		dropped[n] = struct{}{}
	}
	kept := 0
	for _, inst := range installments {
		if _, gone := dropped[inst.Number]; gone {
			continue
		}
		if inst.Status.IsOpen() || inst.Status.Equal(valueobject.InstallmentPaid) {
			kept++
		}
	}
	return kept
}
