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
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

// CloseAccountUseCase closes an account normally or through a negotiated
// settlement.
type CloseAccountUseCase struct {
	store     port.Store
	locker    port.AccountLocker
	publisher port.EventPublisher
}

// NewCloseAccountUseCase wires dependencies.
func NewCloseAccountUseCase(store port.Store, locker port.AccountLocker, publisher port.EventPublisher) *CloseAccountUseCase {
	return &CloseAccountUseCase{store: store, locker: locker, publisher: publisher}
}

// Execute closes the account. amount is required for settlement closures.
func (uc *CloseAccountUseCase) Execute(ctx context.Context, accountID uuid.UUID, closureType valueobject.ClosureType, amount *decimal.Decimal, on time.Time) (*model.LoanAccount, error) {
	release, err := uc.locker.Acquire(ctx, accountID)
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		closed *model.LoanAccount
		evts   []eventToPublish
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

		switch closureType {
		case valueobject.ClosureNormal:
			if err := service.CloseNormal(acct, installments, on); err != nil {
				return err
			}
		case valueobject.ClosureSettlement:
			if amount == nil {
				return apperr.New(apperr.KindInvalidInput, "settlement closure requires an amount")
			}
			if err := service.CloseSettlement(acct, *amount, on); err != nil {
				return err
			}
			if err := cancelOpenRows(ctx, s, acct.ID, installments); err != nil {
				return err
			}
		default:
			return apperr.New(apperr.KindInvalidInput, "unsupported closure type %q", closureType).
				WithHint("use apply_prepayment for foreclosure and write_off for write-offs")
		}

		if err := s.Loans().Save(ctx, acct); err != nil {
			return err
		}
		closed = acct
		evts = append(evts, eventToPublish{e: event.NewLoanClosed(acct.ID, string(closureType), on)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishAll(ctx, uc.publisher, evts)
	return closed, nil
}

// WriteOffUseCase writes off outstanding components and pins the terminal
// risk state.
type WriteOffUseCase struct {
	store     port.Store
	locker    port.AccountLocker
	publisher port.EventPublisher
}

// NewWriteOffUseCase wires dependencies.
func NewWriteOffUseCase(store port.Store, locker port.AccountLocker, publisher port.EventPublisher) *WriteOffUseCase {
	return &WriteOffUseCase{store: store, locker: locker, publisher: publisher}
}

// Execute writes off the account's components.
func (uc *WriteOffUseCase) Execute(ctx context.Context, req dto.WriteOffRequest, on time.Time) (model.WriteOff, error) {
	release, err := uc.locker.Acquire(ctx, req.AccountID)
	if err != nil {
		return model.WriteOff{}, err
	}
	defer release()

	var (
		wo   model.WriteOff
		evts []eventToPublish
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

		wo, err = service.PlanWriteOff(acct, service.WriteOffComponents{
			Principal: req.Principal,
			Interest:  req.Interest,
			Fees:      req.Fees,
		}, req.Reason, req.ApprovedBy, on)
		if err != nil {
			return err
		}

		if !wo.Partial {
			if err := cancelOpenRows(ctx, s, acct.ID, installments); err != nil {
				return err
			}
		}
		if err := s.Lifecycle().InsertWriteOff(ctx, wo); err != nil {
			return err
		}
		if err := s.Loans().Save(ctx, acct); err != nil {
			return err
		}

		evts = append(evts, eventToPublish{e: event.NewLoanWrittenOff(acct.ID, wo.ID, wo.TotalWrittenOff, on)})
		return nil
	})
	if err != nil {
		return model.WriteOff{}, err
	}

	publishAll(ctx, uc.publisher, evts)
	return wo, nil
}

// RecordWriteOffRecoveryUseCase logs a recovery against a write-off. In
// co-lending, a recovery replenishes the FLDG pool before any excess flows
// to the lender.
type RecordWriteOffRecoveryUseCase struct {
	store  port.Store
	locker port.AccountLocker
}

// NewRecordWriteOffRecoveryUseCase wires dependencies.
func NewRecordWriteOffRecoveryUseCase(store port.Store, locker port.AccountLocker) *RecordWriteOffRecoveryUseCase {
	return &RecordWriteOffRecoveryUseCase{store: store, locker: locker}
}

// Execute records the recovery.
func (uc *RecordWriteOffRecoveryUseCase) Execute(ctx context.Context, req dto.RecoveryRequest) (model.WriteOffRecovery, error) {
	var recovery model.WriteOffRecovery

	err := uc.store.InTx(ctx, func(ctx context.Context, s port.Store) error {
		wo, err := s.Lifecycle().GetWriteOff(ctx, req.ReferenceID)
		if err != nil {
			return err
		}

		release, err := uc.locker.Acquire(ctx, wo.LoanAccountID)
		if err != nil {
			return err
		}
		defer release()

		amount := req.Principal.Add(req.Interest)
		recovery, err = service.ApplyWriteOffRecovery(wo, amount, req.Source, req.Notes, nil, req.On)
		if err != nil {
			return err
		}
		if err := s.Lifecycle().InsertWriteOffRecovery(ctx, recovery); err != nil {
			return err
		}
		if err := s.Lifecycle().SaveWriteOff(ctx, wo); err != nil {
			return err
		}

		// FLDG-covered write-offs replenish the pool first.
		util, err := s.FLDG().UtilizationForWriteOff(ctx, wo.ID)
		if err != nil {
			return err
		}
		if util != nil {
			arr, err := s.FLDG().GetArrangement(ctx, util.ArrangementID)
			if err != nil {
				return err
			}
			fldgRec, err := service.ApplyFLDGRecovery(arr, util,
				recovery.PrincipalRecovered, recovery.InterestRecovered, req.Source, req.On)
			if err != nil {
				return err
			}
			if err := s.FLDG().InsertRecovery(ctx, fldgRec); err != nil {
				return err
			}
			if err := s.FLDG().SaveUtilization(ctx, util); err != nil {
				return err
			}
			if err := s.FLDG().SaveArrangement(ctx, arr); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.WriteOffRecovery{}, err
	}
	return recovery, nil
}

// cancelOpenRows cancels every open schedule row ahead of a terminal state.
func cancelOpenRows(ctx context.Context, s port.Store, accountID uuid.UUID, installments []*model.Installment) error {
	var numbers []int
	for _, inst := range installments {
		if inst.Status.IsOpen() {
			numbers = append(numbers, inst.Number)
		}
	}
	if len(numbers) == 0 {
		return nil
	}
	return s.Schedules().CancelNumbers(ctx, accountID, numbers)
}
