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
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// ApplyPaymentUseCase pushes a received amount through the waterfall.
// Idempotent by external reference: a resubmitted reference returns the
// prior outcome without double-allocating.
type ApplyPaymentUseCase struct {
	store     port.Store
	locker    port.AccountLocker
	publisher port.EventPublisher
	policy    service.WaterfallPolicy
	delinq    *service.DelinquencyEngine
}

// NewApplyPaymentUseCase wires dependencies.
func NewApplyPaymentUseCase(store port.Store, locker port.AccountLocker, publisher port.EventPublisher, policy service.WaterfallPolicy, delinq *service.DelinquencyEngine) *ApplyPaymentUseCase {
	return &ApplyPaymentUseCase{store: store, locker: locker, publisher: publisher, policy: policy, delinq: delinq}
}

// Execute applies the payment inside one transaction under the account lock.
func (uc *ApplyPaymentUseCase) Execute(ctx context.Context, req dto.ApplyPaymentRequest) (dto.ApplyPaymentResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return dto.ApplyPaymentResponse{}, apperr.New(apperr.KindInvalidInput, "payment amount must be positive")
	}
	if req.ExternalRef == "" {
		return dto.ApplyPaymentResponse{}, apperr.New(apperr.KindInvalidInput, "external reference is required")
	}

	release, err := uc.locker.Acquire(ctx, req.AccountID)
	if err != nil {
		return dto.ApplyPaymentResponse{}, err
	}
	defer release()

	var (
		resp dto.ApplyPaymentResponse
		evts []eventToPublish
	)

	err = uc.store.InTx(ctx, func(ctx context.Context, s port.Store) error {
		acct, err := s.Loans().Get(ctx, req.AccountID)
		if err != nil {
			return err
		}

		// Idempotency replay: return the prior result, change nothing.
		if prior, err := s.Payments().FindByExternalRef(ctx, req.AccountID, req.ExternalRef); err != nil {
			return err
		} else if prior != nil {
			allocations, err := s.Payments().AllocationsForPayment(ctx, prior.ID)
			if err != nil {
				return err
			}
			resp = buildPaymentResponse(prior.ID, allocations, prior.Unallocated, acct.DPD)
			resp.Replayed = true
			return nil
		}

		if !acct.IsOpen() {
			return apperr.New(apperr.KindConflictingState, "account is not open for payments").
				WithEntity(acct.ID.String()).
				WithHint("record recoveries through the write-off recovery operation")
		}

		installments, err := s.Schedules().ListByAccount(ctx, req.AccountID)
		if err != nil {
			return err
		}

		payment := &model.Payment{
			ID:            uuid.New(),
			LoanAccountID: req.AccountID,
			Amount:        req.Amount,
			Channel:       req.Channel,
			ExternalRef:   req.ExternalRef,
			PaidAt:        req.PaidAt,
			CreatedAt:     time.Now().UTC(),
		}

		result := service.Allocate(payment.ID, installments, req.Amount, uc.policy)
		payment.Unallocated = result.Unallocated

		if err := s.Payments().Insert(ctx, payment); err != nil {
			return err
		}
		if err := s.Payments().InsertAllocations(ctx, result.Allocations); err != nil {
			return err
		}
		for _, inst := range installments {
			if err := s.Schedules().Update(ctx, inst); err != nil {
				return err
			}
		}

		if err := reconcileAllocations(payment, result.Allocations); err != nil {
			return err
		}

		totals := service.RecomputeOutstanding(installments)
		acct.PrincipalOutstanding = money.Round(totals.Principal)
		acct.InterestOutstanding = money.Round(totals.Interest)
		acct.FeesOutstanding = money.Round(totals.Fees)
		setNextDue(acct, totals)

		// Interest collected: accruals up to the payment date are posted.
		if _, interest, _ := model.SumAllocations(result.Allocations); interest.IsPositive() {
			if err := s.Accruals().MarkPosted(ctx, acct.ID, req.PaidAt); err != nil {
				return err
			}
		}

		wasNPA := acct.IsNPA
		state := uc.delinq.ApplyDelinquency(acct, installments, req.PaidAt)

		if acct.TotalOutstanding().IsZero() {
			if err := service.CloseNormal(acct, installments, req.PaidAt); err == nil {
				evts = append(evts, eventToPublish{e: event.NewLoanClosed(acct.ID, string(acct.ClosureType), req.PaidAt)})
			}
		}

		if err := s.Loans().Save(ctx, acct); err != nil {
			return err
		}

		resp = buildPaymentResponse(payment.ID, result.Allocations, result.Unallocated, acct.DPD)

		evts = append(evts, eventToPublish{e: event.NewPaymentApplied(acct.ID, payment.ID, req.Amount, result.Unallocated, acct.DPD, req.PaidAt)})
		if wasNPA != state.IsNPA {
			evts = append(evts, eventToPublish{e: event.NewNPAStatusChanged(acct.ID, state.IsNPA, string(state.Category), acct.DPD, req.PaidAt)})
		}
		return nil
	})
	if err != nil {
		return dto.ApplyPaymentResponse{}, err
	}

	publishAll(ctx, uc.publisher, evts)
	return resp, nil
}

// reconcileAllocations enforces conservation: component allocations plus the
// unallocated remainder must equal the payment amount exactly.
func reconcileAllocations(payment *model.Payment, allocations []model.PaymentAllocation) error {
	total := payment.Unallocated
	for _, a := range allocations {
		total = total.Add(a.Total())
	}
	if !total.Equal(payment.Amount) {
		return apperr.New(apperr.KindFatal,
			"allocations %s + unallocated %s != amount %s", total.Sub(payment.Unallocated), payment.Unallocated, payment.Amount).
			WithEntity(payment.ID.String())
	}
	if payment.Unallocated.IsNegative() {
		return apperr.New(apperr.KindFatal, "negative unallocated remainder").WithEntity(payment.ID.String())
	}
	return nil
}

func buildPaymentResponse(paymentID uuid.UUID, allocations []model.PaymentAllocation, unallocated decimal.Decimal, dpd int) dto.ApplyPaymentResponse {
	out := dto.ApplyPaymentResponse{
		PaymentID:   paymentID,
		Unallocated: unallocated,
		NewDPD:      dpd,
	}
	for _, a := range allocations {
		out.Allocations = append(out.Allocations, dto.AllocationDTO{
			InstallmentNumber: a.InstallmentNumber,
			Principal:         a.PrincipalAllocated,
			Interest:          a.InterestAllocated,
			Fees:              a.FeesAllocated,
		})
	}
	return out
}

func setNextDue(acct *model.LoanAccount, totals service.OutstandingTotals) {
	if totals.NextDue == nil {
		acct.NextDueDate = nil
		acct.NextDueAmount = nil
		return
	}
	due := totals.NextDue.DueDate
	amount := totals.NextDue.TotalRemaining()
	acct.NextDueDate = &due
	acct.NextDueAmount = &amount
}
