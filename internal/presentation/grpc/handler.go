package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/harshitrathi14/LOS-LMS/internal/application/dto"
	"github.com/harshitrathi14/LOS-LMS/internal/application/usecase"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/observability"
	"github.com/harshitrathi14/LOS-LMS/pkg/schedule"
)

// Handler exposes the loan engine operations over gRPC.
type Handler struct {
	UnimplementedLoanEngineServer

	engine  *usecase.Engine
	metrics *observability.EngineMetrics
	logger  *slog.Logger
}

// NewHandler wires the use-case engine.
func NewHandler(engine *usecase.Engine, metrics *observability.EngineMetrics, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, metrics: metrics, logger: logger}
}

// GenerateSchedule computes the schedule without persisting it.
func (h *Handler) GenerateSchedule(ctx context.Context, req *AccountRequest) (*ScheduleResponse, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return nil, err
	}
	lines, err := h.engine.GenerateSchedule.Execute(ctx, accountID)
	if err != nil {
		return nil, toStatus(err)
	}
	return scheduleResponse(req.AccountID, lines), nil
}

// PersistSchedule generates and persists the schedule.
func (h *Handler) PersistSchedule(ctx context.Context, req *AccountRequest) (*ScheduleResponse, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return nil, err
	}
	rows, err := h.engine.PersistSchedule.Execute(ctx, accountID)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &ScheduleResponse{AccountID: req.AccountID}
	for _, r := range rows {
		resp.Lines = append(resp.Lines, ScheduleLine{
			Number:    r.Number,
			DueDate:   r.DueDate.Format(time.DateOnly),
			Opening:   r.OpeningBalance,
			Principal: r.PrincipalDue,
			Interest:  r.InterestDue,
			Fees:      r.FeesDue,
			Total:     r.TotalDue,
			Closing:   r.ClosingBalance,
		})
	}
	return resp, nil
}

// ApplyPayment pushes a payment through the waterfall.
func (h *Handler) ApplyPayment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return nil, err
	}
	result, err := h.engine.ApplyPayment.Execute(ctx, dto.ApplyPaymentRequest{
		AccountID:   accountID,
		Amount:      req.Amount,
		PaidAt:      req.PaidAt,
		Channel:     req.Channel,
		ExternalRef: req.ExternalRef,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	if h.metrics != nil {
		h.metrics.PaymentsApplied.Add(ctx, 1)
	}

	resp := &PaymentResponse{
		PaymentID:   result.PaymentID.String(),
		Unallocated: result.Unallocated,
		NewDPD:      result.NewDPD,
		Replayed:    result.Replayed,
	}
	for _, a := range result.Allocations {
		resp.Allocations = append(resp.Allocations, AllocationLine{
			InstallmentNumber: a.InstallmentNumber,
			Principal:         a.Principal,
			Interest:          a.Interest,
			Fees:              a.Fees,
		})
	}
	return resp, nil
}

// Accrue runs daily accrual for one account.
func (h *Handler) Accrue(ctx context.Context, req *AsOfRequest) (*JSONResponse, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return nil, err
	}
	asOf, err := parseDate(req.AsOfDate)
	if err != nil {
		return nil, err
	}
	accrual, err := h.engine.Accrue.Execute(ctx, accountID, asOf)
	if err != nil {
		return nil, toStatus(err)
	}
	if h.metrics != nil {
		h.metrics.AccrualsWritten.Add(ctx, 1)
	}
	return &JSONResponse{Result: accrual}, nil
}

// RunAccrualBatch accrues the active book.
func (h *Handler) RunAccrualBatch(ctx context.Context, req *BatchRequest) (*JSONResponse, error) {
	asOf, err := parseDate(req.AsOfDate)
	if err != nil {
		return nil, err
	}
	result, err := h.engine.AccrualBatch.Execute(ctx, asOf)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: result}, nil
}

// RefreshDelinquency recomputes DPD/bucket/NPA for one account.
func (h *Handler) RefreshDelinquency(ctx context.Context, req *AsOfRequest) (*JSONResponse, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return nil, err
	}
	asOf, err := parseDate(req.AsOfDate)
	if err != nil {
		return nil, err
	}
	snapshot, err := h.engine.Delinquency.Execute(ctx, accountID, asOf)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: snapshot}, nil
}

// Restructure applies an approved restructure.
func (h *Handler) Restructure(ctx context.Context, req *RestructureMessage) (*JSONResponse, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return nil, err
	}
	effective, err := parseDate(req.EffectiveDate)
	if err != nil {
		return nil, err
	}
	applied, err := h.engine.Restructure.Execute(ctx, dto.RestructureRequest{
		AccountID:       accountID,
		Type:            req.Type,
		EffectiveDate:   effective,
		NewRatePct:      req.NewRate,
		NewTenure:       req.NewTenure,
		PrincipalWaived: req.PrincipalWaived,
		InterestWaived:  req.InterestWaived,
		FeesWaived:      req.FeesWaived,
		Reason:          req.Reason,
		RequestedBy:     req.RequestedBy,
		ApprovedBy:      req.ApprovedBy,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: applied}, nil
}

// PrepaymentImpact analyses a prepayment without state changes.
func (h *Handler) PrepaymentImpact(ctx context.Context, req *PrepaymentMessage) (*JSONResponse, error) {
	dtoReq, err := prepaymentDTO(req)
	if err != nil {
		return nil, err
	}
	impact, err := h.engine.Impact.Execute(ctx, dtoReq)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: impact}, nil
}

// ApplyPrepayment applies a prepayment; foreclosure closes the account.
func (h *Handler) ApplyPrepayment(ctx context.Context, req *PrepaymentMessage) (*JSONResponse, error) {
	dtoReq, err := prepaymentDTO(req)
	if err != nil {
		return nil, err
	}
	record, err := h.engine.Prepayment.Execute(ctx, dtoReq)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: record}, nil
}

// CloseAccount closes an account normally or through settlement.
func (h *Handler) CloseAccount(ctx context.Context, req *CloseAccountMessage) (*JSONResponse, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return nil, err
	}
	asOf, err := parseDate(req.AsOfDate)
	if err != nil {
		return nil, err
	}
	acct, err := h.engine.CloseAccount.Execute(ctx, accountID, valueobject.ClosureType(req.ClosureType), req.Amount, asOf)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: map[string]string{
		"account_id": acct.ID.String(),
		"status":     acct.Status.String(),
		"closure":    string(acct.ClosureType),
	}}, nil
}

// WriteOff writes off outstanding components.
func (h *Handler) WriteOff(ctx context.Context, req *WriteOffMessage) (*JSONResponse, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return nil, err
	}
	asOf, err := parseDate(req.AsOfDate)
	if err != nil {
		return nil, err
	}
	wo, err := h.engine.WriteOff.Execute(ctx, dto.WriteOffRequest{
		AccountID:  accountID,
		Principal:  req.Principal,
		Interest:   req.Interest,
		Fees:       req.Fees,
		Reason:     req.Reason,
		ApprovedBy: req.ApprovedBy,
	}, asOf)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: wo}, nil
}

// RecordWriteOffRecovery records a recovery against a write-off.
func (h *Handler) RecordWriteOffRecovery(ctx context.Context, req *RecoveryMessage) (*JSONResponse, error) {
	dtoReq, err := recoveryDTO(req)
	if err != nil {
		return nil, err
	}
	recovery, err := h.engine.WriteOffRecovery.Execute(ctx, dtoReq)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: recovery}, nil
}

// SplitCollection splits an applied payment across co-lending partners.
func (h *Handler) SplitCollection(ctx context.Context, req *SplitCollectionMessage) (*JSONResponse, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return nil, err
	}
	paymentID, err := parseID(req.PaymentID)
	if err != nil {
		return nil, err
	}
	entries, err := h.engine.SplitCollection.Execute(ctx, accountID, paymentID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: entries}, nil
}

// FLDGClaim raises a guarantee claim for a defaulted account.
func (h *Handler) FLDGClaim(ctx context.Context, req *FLDGClaimMessage) (*JSONResponse, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return nil, err
	}
	arrangementID, err := parseID(req.ArrangementID)
	if err != nil {
		return nil, err
	}
	asOf, err := parseDate(req.AsOfDate)
	if err != nil {
		return nil, err
	}
	util, err := h.engine.FLDGClaim.Execute(ctx, accountID, arrangementID, req.ApprovedBy, asOf)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: util}, nil
}

// FLDGRecovery records a recovery against a utilization.
func (h *Handler) FLDGRecovery(ctx context.Context, req *RecoveryMessage) (*JSONResponse, error) {
	dtoReq, err := recoveryDTO(req)
	if err != nil {
		return nil, err
	}
	recovery, err := h.engine.FLDGRecovery.Execute(ctx, dtoReq)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: recovery}, nil
}

// RunMonthlyECL stages and provisions the active book.
func (h *Handler) RunMonthlyECL(ctx context.Context, req *BatchRequest) (*JSONResponse, error) {
	asOf, err := parseDate(req.AsOfDate)
	if err != nil {
		return nil, err
	}
	batch, summary, err := h.engine.MonthlyECL.Execute(ctx, asOf)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: map[string]any{"batch": batch, "summary": summary}}, nil
}

// RunEOD orchestrates the day-end pipeline.
func (h *Handler) RunEOD(ctx context.Context, req *BatchRequest) (*JSONResponse, error) {
	asOf, err := parseDate(req.AsOfDate)
	if err != nil {
		return nil, err
	}
	result, err := h.engine.EOD.Execute(ctx, asOf)
	if err != nil {
		return nil, toStatus(err)
	}
	return &JSONResponse{Result: result}, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func scheduleResponse(accountID string, lines []schedule.Line) *ScheduleResponse {
	resp := &ScheduleResponse{AccountID: accountID}
	for _, ln := range lines {
		resp.Lines = append(resp.Lines, ScheduleLine{
			Number:    ln.Number,
			DueDate:   ln.DueDate.Format(time.DateOnly),
			Opening:   ln.Opening,
			Principal: ln.PrincipalDue,
			Interest:  ln.InterestDue,
			Fees:      ln.FeesDue,
			Total:     ln.TotalDue,
			Closing:   ln.Closing,
		})
	}
	return resp
}

func prepaymentDTO(req *PrepaymentMessage) (dto.PrepaymentRequest, error) {
	accountID, err := parseID(req.AccountID)
	if err != nil {
		return dto.PrepaymentRequest{}, err
	}
	return dto.PrepaymentRequest{
		AccountID:   accountID,
		Amount:      req.Amount,
		Action:      req.Action,
		PaidAt:      req.PaidAt,
		ProcessedBy: req.ProcessedBy,
	}, nil
}

func recoveryDTO(req *RecoveryMessage) (dto.RecoveryRequest, error) {
	referenceID, err := parseID(req.ReferenceID)
	if err != nil {
		return dto.RecoveryRequest{}, err
	}
	on, err := parseDate(req.AsOfDate)
	if err != nil {
		return dto.RecoveryRequest{}, err
	}
	return dto.RecoveryRequest{
		ReferenceID: referenceID,
		Principal:   req.Principal,
		Interest:    req.Interest,
		Source:      req.Source,
		Notes:       req.Notes,
		On:          on,
	}, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid id %q", raw)
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "invalid date %q, want YYYY-MM-DD", raw)
	}
	return d, nil
}

// toStatus maps the engine error taxonomy onto gRPC codes, carrying the
// remediation hint in the message.
func toStatus(err error) error {
	var appErr *apperr.Error
	msg := err.Error()

	code := codes.Internal
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		code = codes.InvalidArgument
	case apperr.KindNotFound:
		code = codes.NotFound
	case apperr.KindConflictingState, apperr.KindFLDGExhausted:
		code = codes.FailedPrecondition
	case apperr.KindBenchmarkUnavailable:
		code = codes.FailedPrecondition
	case apperr.KindTransient:
		code = codes.Unavailable
	case apperr.KindFatal:
		code = codes.DataLoss
	}

	if errors.As(err, &appErr) && appErr.Hint != "" {
		msg += " (hint: " + appErr.Hint + ")"
	}
	return status.Error(code, msg)
}
