package grpc

// proto.go defines the gRPC server interface for the loan engine service.
// This file is a stand-in for buf-generated code; once `buf generate` runs,
// replace it with the generated package.

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

// AccountRequest addresses one account.
type AccountRequest struct {
	AccountID string `json:"account_id"`
}

// AsOfRequest addresses one account on a date.
type AsOfRequest struct {
	AccountID string `json:"account_id"`
	AsOfDate  string `json:"as_of_date"` // YYYY-MM-DD
}

// BatchRequest runs a batch for a date.
type BatchRequest struct {
	AsOfDate string `json:"as_of_date"`
}

// ScheduleLine is one installment in a response.
type ScheduleLine struct {
	Number    int             `json:"number"`
	DueDate   string          `json:"due_date"`
	Opening   decimal.Decimal `json:"opening_balance"`
	Principal decimal.Decimal `json:"principal_due"`
	Interest  decimal.Decimal `json:"interest_due"`
	Fees      decimal.Decimal `json:"fees_due"`
	Total     decimal.Decimal `json:"total_due"`
	Closing   decimal.Decimal `json:"closing_balance"`
}

// ScheduleResponse returns a generated or persisted schedule.
type ScheduleResponse struct {
	AccountID string         `json:"account_id"`
	Lines     []ScheduleLine `json:"lines"`
}

// PaymentRequest applies a payment.
type PaymentRequest struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaidAt      time.Time       `json:"paid_at"`
	Channel     string          `json:"channel"`
	ExternalRef string          `json:"external_ref"`
}

// PaymentResponse reports the allocation outcome.
type PaymentResponse struct {
	PaymentID   string           `json:"payment_id"`
	Allocations []AllocationLine `json:"allocations"`
	Unallocated decimal.Decimal  `json:"unallocated"`
	NewDPD      int              `json:"new_dpd"`
	Replayed    bool             `json:"replayed"`
}

// AllocationLine is one installment's share of a payment.
type AllocationLine struct {
	InstallmentNumber int             `json:"installment_number"`
	Principal         decimal.Decimal `json:"principal"`
	Interest          decimal.Decimal `json:"interest"`
	Fees              decimal.Decimal `json:"fees"`
}

// RestructureMessage carries an approved restructure.
type RestructureMessage struct {
	AccountID       string           `json:"account_id"`
	Type            string           `json:"type"`
	EffectiveDate   string           `json:"effective_date"`
	NewRate         *decimal.Decimal `json:"new_rate,omitempty"`
	NewTenure       *int             `json:"new_tenure,omitempty"`
	PrincipalWaived decimal.Decimal  `json:"principal_waived"`
	InterestWaived  decimal.Decimal  `json:"interest_waived"`
	FeesWaived      decimal.Decimal  `json:"fees_waived"`
	Reason          string           `json:"reason"`
	RequestedBy     string           `json:"requested_by"`
	ApprovedBy      string           `json:"approved_by"`
}

// PrepaymentMessage requests a prepayment impact or application.
type PrepaymentMessage struct {
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Action      string          `json:"action"`
	PaidAt      time.Time       `json:"paid_at"`
	ProcessedBy string          `json:"processed_by"`
}

// CloseAccountMessage closes an account.
type CloseAccountMessage struct {
	AccountID   string           `json:"account_id"`
	ClosureType string           `json:"closure_type"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	AsOfDate    string           `json:"as_of_date"`
}

// WriteOffMessage writes off components.
type WriteOffMessage struct {
	AccountID  string           `json:"account_id"`
	Principal  *decimal.Decimal `json:"principal,omitempty"`
	Interest   *decimal.Decimal `json:"interest,omitempty"`
	Fees       *decimal.Decimal `json:"fees,omitempty"`
	Reason     string           `json:"reason"`
	ApprovedBy string           `json:"approved_by"`
	AsOfDate   string           `json:"as_of_date"`
}

// RecoveryMessage records a recovery.
type RecoveryMessage struct {
	ReferenceID string          `json:"reference_id"`
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	Source      string          `json:"source"`
	Notes       string          `json:"notes"`
	AsOfDate    string          `json:"as_of_date"`
}

// SplitCollectionMessage splits an applied payment across partners.
type SplitCollectionMessage struct {
	AccountID string `json:"account_id"`
	PaymentID string `json:"payment_id"`
}

// FLDGClaimMessage raises a guarantee claim.
type FLDGClaimMessage struct {
	AccountID     string `json:"account_id"`
	ArrangementID string `json:"arrangement_id"`
	ApprovedBy    string `json:"approved_by"`
	AsOfDate      string `json:"as_of_date"`
}

// JSONResponse wraps an arbitrary result document.
type JSONResponse struct {
	Result any `json:"result"`
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// LoanEngineServer is the server API for the LoanEngine service.
type LoanEngineServer interface {
	GenerateSchedule(context.Context, *AccountRequest) (*ScheduleResponse, error)
	PersistSchedule(context.Context, *AccountRequest) (*ScheduleResponse, error)
	ApplyPayment(context.Context, *PaymentRequest) (*PaymentResponse, error)
	Accrue(context.Context, *AsOfRequest) (*JSONResponse, error)
	RunAccrualBatch(context.Context, *BatchRequest) (*JSONResponse, error)
	RefreshDelinquency(context.Context, *AsOfRequest) (*JSONResponse, error)
	Restructure(context.Context, *RestructureMessage) (*JSONResponse, error)
	PrepaymentImpact(context.Context, *PrepaymentMessage) (*JSONResponse, error)
	ApplyPrepayment(context.Context, *PrepaymentMessage) (*JSONResponse, error)
	CloseAccount(context.Context, *CloseAccountMessage) (*JSONResponse, error)
	WriteOff(context.Context, *WriteOffMessage) (*JSONResponse, error)
	RecordWriteOffRecovery(context.Context, *RecoveryMessage) (*JSONResponse, error)
	SplitCollection(context.Context, *SplitCollectionMessage) (*JSONResponse, error)
	FLDGClaim(context.Context, *FLDGClaimMessage) (*JSONResponse, error)
	FLDGRecovery(context.Context, *RecoveryMessage) (*JSONResponse, error)
	RunMonthlyECL(context.Context, *BatchRequest) (*JSONResponse, error)
	RunEOD(context.Context, *BatchRequest) (*JSONResponse, error)
	mustEmbedUnimplementedLoanEngineServer()
}

// UnimplementedLoanEngineServer provides forward-compatible defaults.
type UnimplementedLoanEngineServer struct{}

func (UnimplementedLoanEngineServer) GenerateSchedule(context.Context, *AccountRequest) (*ScheduleResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GenerateSchedule not implemented")
}
func (UnimplementedLoanEngineServer) PersistSchedule(context.Context, *AccountRequest) (*ScheduleResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PersistSchedule not implemented")
}
func (UnimplementedLoanEngineServer) ApplyPayment(context.Context, *PaymentRequest) (*PaymentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ApplyPayment not implemented")
}
func (UnimplementedLoanEngineServer) Accrue(context.Context, *AsOfRequest) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Accrue not implemented")
}
func (UnimplementedLoanEngineServer) RunAccrualBatch(context.Context, *BatchRequest) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RunAccrualBatch not implemented")
}
func (UnimplementedLoanEngineServer) RefreshDelinquency(context.Context, *AsOfRequest) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RefreshDelinquency not implemented")
}
func (UnimplementedLoanEngineServer) Restructure(context.Context, *RestructureMessage) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Restructure not implemented")
}
func (UnimplementedLoanEngineServer) PrepaymentImpact(context.Context, *PrepaymentMessage) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PrepaymentImpact not implemented")
}
func (UnimplementedLoanEngineServer) ApplyPrepayment(context.Context, *PrepaymentMessage) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ApplyPrepayment not implemented")
}
func (UnimplementedLoanEngineServer) CloseAccount(context.Context, *CloseAccountMessage) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CloseAccount not implemented")
}
func (UnimplementedLoanEngineServer) WriteOff(context.Context, *WriteOffMessage) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method WriteOff not implemented")
}
func (UnimplementedLoanEngineServer) RecordWriteOffRecovery(context.Context, *RecoveryMessage) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RecordWriteOffRecovery not implemented")
}
func (UnimplementedLoanEngineServer) SplitCollection(context.Context, *SplitCollectionMessage) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SplitCollection not implemented")
}
func (UnimplementedLoanEngineServer) FLDGClaim(context.Context, *FLDGClaimMessage) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method FLDGClaim not implemented")
}
func (UnimplementedLoanEngineServer) FLDGRecovery(context.Context, *RecoveryMessage) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method FLDGRecovery not implemented")
}
func (UnimplementedLoanEngineServer) RunMonthlyECL(context.Context, *BatchRequest) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RunMonthlyECL not implemented")
}
func (UnimplementedLoanEngineServer) RunEOD(context.Context, *BatchRequest) (*JSONResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RunEOD not implemented")
}
func (UnimplementedLoanEngineServer) mustEmbedUnimplementedLoanEngineServer() {}

const serviceName = "lms.v1.LoanEngine"

// RegisterLoanEngineServer registers the service implementation.
func RegisterLoanEngineServer(s *grpclib.Server, srv LoanEngineServer) {
	s.RegisterService(&loanEngineServiceDesc, srv)
}

// unary builds a generated-style unary handler for one method.
func unary[Req any, Resp any](method string, call func(LoanEngineServer, context.Context, *Req) (*Resp, error)) grpclib.MethodDesc {
	return grpclib.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LoanEngineServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(LoanEngineServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var loanEngineServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LoanEngineServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("GenerateSchedule", LoanEngineServer.GenerateSchedule),
		unary("PersistSchedule", LoanEngineServer.PersistSchedule),
		unary("ApplyPayment", LoanEngineServer.ApplyPayment),
		unary("Accrue", LoanEngineServer.Accrue),
		unary("RunAccrualBatch", LoanEngineServer.RunAccrualBatch),
		unary("RefreshDelinquency", LoanEngineServer.RefreshDelinquency),
		unary("Restructure", LoanEngineServer.Restructure),
		unary("PrepaymentImpact", LoanEngineServer.PrepaymentImpact),
		unary("ApplyPrepayment", LoanEngineServer.ApplyPrepayment),
		unary("CloseAccount", LoanEngineServer.CloseAccount),
		unary("WriteOff", LoanEngineServer.WriteOff),
		unary("RecordWriteOffRecovery", LoanEngineServer.RecordWriteOffRecovery),
		unary("SplitCollection", LoanEngineServer.SplitCollection),
		unary("FLDGClaim", LoanEngineServer.FLDGClaim),
		unary("FLDGRecovery", LoanEngineServer.FLDGRecovery),
		unary("RunMonthlyECL", LoanEngineServer.RunMonthlyECL),
		unary("RunEOD", LoanEngineServer.RunEOD),
	},
	Streams: []grpclib.StreamDesc{},
}
