package usecase

import (
	"context"

	"github.com/harshitrathi14/LOS-LMS/internal/application/dto"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/event"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/service"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

// RestructureUseCase applies an approved restructure: the forward tail of
// the schedule is regenerated under the new terms, already-paid rows are
// untouched, and the restructure flag is set unconditionally.
type RestructureUseCase struct {
	store     port.Store
	locker    port.AccountLocker
	publisher port.EventPublisher
}

// NewRestructureUseCase wires dependencies.
func NewRestructureUseCase(store port.Store, locker port.AccountLocker, publisher port.EventPublisher) *RestructureUseCase {
	return &RestructureUseCase{store: store, locker: locker, publisher: publisher}
}

// Execute applies the restructure inside one transaction.
func (uc *RestructureUseCase) Execute(ctx context.Context, req dto.RestructureRequest) (model.RestructureEvent, error) {
	restructureType, err := valueobject.NewRestructureType(req.Type)
	if err != nil {
		return model.RestructureEvent{}, apperr.Wrap(apperr.KindInvalidInput, err, "parse restructure type")
	}

	release, err := uc.locker.Acquire(ctx, req.AccountID)
	if err != nil {
		return model.RestructureEvent{}, err
	}
	defer release()

	var (
		applied model.RestructureEvent
		evts    []eventToPublish
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

		plan, err := service.PlanRestructure(acct, installments, service.RestructureRequest{
			Type:             restructureType,
			EffectiveDate:    req.EffectiveDate,
			NewRatePct:       req.NewRatePct,
			NewTenurePeriods: req.NewTenure,
			PrincipalWaived:  req.PrincipalWaived,
			InterestWaived:   req.InterestWaived,
			FeesWaived:       req.FeesWaived,
			Reason:           req.Reason,
			RequestedBy:      req.RequestedBy,
			ApprovedBy:       req.ApprovedBy,
		}, cal)
		if err != nil {
			return err
		}

		if err := s.Schedules().CancelNumbers(ctx, acct.ID, plan.CancelNumbers); err != nil {
			return err
		}
		rows := model.InstallmentsFromLines(acct.ID, plan.NewLines, plan.FirstNumber)
		if err := s.Schedules().InsertAll(ctx, rows); err != nil {
			return err
		}

		service.ApplyRestructure(acct, plan)
		if err := s.Lifecycle().InsertRestructure(ctx, plan.Event); err != nil {
			return err
		}
		if err := s.Loans().Save(ctx, acct); err != nil {
			return err
		}

		applied = plan.Event
		evts = append(evts, eventToPublish{
			e: event.NewLoanRestructured(acct.ID, plan.Event.ID, plan.Event.Type.String(), req.EffectiveDate),
		})
		return nil
	})
	if err != nil {
		return model.RestructureEvent{}, err
	}

	publishAll(ctx, uc.publisher, evts)
	return applied, nil
}
