package usecase

import (
	"log/slog"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/service"
)

// Options carries the engine configuration the use cases need.
type Options struct {
	WorkerPoolSize int
	NPATriggerDPD  int
	SMABoundaries  service.SMABoundaries
	ECLConfig      model.ECLConfig
	Waterfall      service.WaterfallPolicy
}

// Engine bundles every unit of work behind one wiring point.
type Engine struct {
	GenerateSchedule *GenerateScheduleUseCase
	PersistSchedule  *PersistScheduleUseCase
	ApplyPayment     *ApplyPaymentUseCase
	Accrue           *AccrueUseCase
	AccrualBatch     *RunAccrualBatchUseCase
	Delinquency      *RefreshDelinquencyUseCase
	DelinquencyBatch *RunDelinquencyBatchUseCase
	Restructure      *RestructureUseCase
	Impact           *PrepaymentImpactUseCase
	Prepayment       *ApplyPrepaymentUseCase
	CloseAccount     *CloseAccountUseCase
	WriteOff         *WriteOffUseCase
	WriteOffRecovery *RecordWriteOffRecoveryUseCase
	SplitCollection  *SplitCollectionUseCase
	FLDGClaim        *FLDGClaimUseCase
	FLDGRecovery     *FLDGRecoveryUseCase
	MonthlyECL       *RunMonthlyECLUseCase
	EOD              *RunEODUseCase
}

// NewEngine wires the full set of use cases.
func NewEngine(store port.Store, locker port.AccountLocker, publisher port.EventPublisher, opts Options, logger *slog.Logger) *Engine {
	if opts.Waterfall == nil {
		opts.Waterfall = service.FeesInterestPrincipal{}
	}
	delinq := service.NewDelinquencyEngine(opts.SMABoundaries, opts.NPATriggerDPD)

	e := &Engine{
		GenerateSchedule: NewGenerateScheduleUseCase(store),
		PersistSchedule:  NewPersistScheduleUseCase(store, locker),
		ApplyPayment:     NewApplyPaymentUseCase(store, locker, publisher, opts.Waterfall, delinq),
		Accrue:           NewAccrueUseCase(store, locker),
		Delinquency:      NewRefreshDelinquencyUseCase(store, locker, publisher, delinq),
		Restructure:      NewRestructureUseCase(store, locker, publisher),
		Impact:           NewPrepaymentImpactUseCase(store),
		Prepayment:       NewApplyPrepaymentUseCase(store, locker, publisher),
		CloseAccount:     NewCloseAccountUseCase(store, locker, publisher),
		WriteOff:         NewWriteOffUseCase(store, locker, publisher),
		WriteOffRecovery: NewRecordWriteOffRecoveryUseCase(store, locker),
		SplitCollection:  NewSplitCollectionUseCase(store, locker),
		FLDGClaim:        NewFLDGClaimUseCase(store, locker, publisher),
		FLDGRecovery:     NewFLDGRecoveryUseCase(store),
		MonthlyECL:       NewRunMonthlyECLUseCase(store, locker, opts.ECLConfig, opts.WorkerPoolSize),
	}
	e.AccrualBatch = NewRunAccrualBatchUseCase(store, e.Accrue, opts.WorkerPoolSize)
	e.DelinquencyBatch = NewRunDelinquencyBatchUseCase(store, e.Delinquency, opts.WorkerPoolSize)
	e.EOD = NewRunEODUseCase(e.AccrualBatch, e.DelinquencyBatch, e.MonthlyECL, logger)
	return e
}
