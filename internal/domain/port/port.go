// Package port declares the interfaces the application layer depends on.
// Infrastructure supplies the pgx-backed implementations; tests supply
// in-memory fakes.
package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/pkg/bizcal"
	"github.com/harshitrathi14/LOS-LMS/pkg/events"
)

// LoanRepository persists loan aggregates.
type LoanRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.LoanAccount, error)
	Save(ctx context.Context, acct *model.LoanAccount) error
	// ActiveIDs lists accounts the batch orchestrators must visit.
	ActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ScheduleRepository persists repayment-schedule rows.
type ScheduleRepository interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*model.Installment, error)
	InsertAll(ctx context.Context, rows []model.Installment) error
	Update(ctx context.Context, row *model.Installment) error
	// CancelNumbers marks the given installment numbers cancelled ahead of a
	// forward regeneration.
	CancelNumbers(ctx context.Context, accountID uuid.UUID, numbers []int) error
	Exists(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// PaymentRepository persists payments and their allocations.
type PaymentRepository interface {
	Insert(ctx context.Context, p *model.Payment) error
	InsertAllocations(ctx context.Context, allocations []model.PaymentAllocation) error
	Get(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	// FindByExternalRef returns nil when the reference is unseen.
	FindByExternalRef(ctx context.Context, accountID uuid.UUID, externalRef string) (*model.Payment, error)
	AllocationsForPayment(ctx context.Context, paymentID uuid.UUID) ([]model.PaymentAllocation, error)
}

// AccrualRepository persists daily interest accruals.
type AccrualRepository interface {
	Latest(ctx context.Context, accountID uuid.UUID) (*model.InterestAccrual, error)
	ForDate(ctx context.Context, accountID uuid.UUID, date time.Time) (*model.InterestAccrual, error)
	Insert(ctx context.Context, accrual model.InterestAccrual) error
	// MarkPosted flips accrued rows to posted up to and including the date.
	MarkPosted(ctx context.Context, accountID uuid.UUID, upTo time.Time) error
}

// DelinquencyRepository persists daily delinquency snapshots.
type DelinquencyRepository interface {
	Upsert(ctx context.Context, snapshot model.DelinquencySnapshot) error
}

// ParticipationRepository persists co-lending participations and the partner
// ledger.
type ParticipationRepository interface {
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]model.LoanParticipation, error)
	Save(ctx context.Context, p *model.LoanParticipation) error
	LastLedgerBalance(ctx context.Context, participationID uuid.UUID) (decimal.Decimal, error)
	InsertLedgerEntries(ctx context.Context, entries []model.PartnerLedgerEntry) error
	ServicerArrangement(ctx context.Context, id uuid.UUID) (*model.ServicerArrangement, error)
}

// FLDGRepository persists guarantee arrangements and their event records.
type FLDGRepository interface {
	GetArrangement(ctx context.Context, id uuid.UUID) (*model.FLDGArrangement, error)
	SaveArrangement(ctx context.Context, arr *model.FLDGArrangement) error
	HasUtilization(ctx context.Context, arrangementID, accountID uuid.UUID) (bool, error)
	InsertUtilization(ctx context.Context, util model.FLDGUtilization) error
	GetUtilization(ctx context.Context, id uuid.UUID) (*model.FLDGUtilization, error)
	SaveUtilization(ctx context.Context, util *model.FLDGUtilization) error
	// UtilizationForWriteOff returns nil when the write-off is not FLDG-covered.
	UtilizationForWriteOff(ctx context.Context, writeOffID uuid.UUID) (*model.FLDGUtilization, error)
	InsertRecovery(ctx context.Context, rec model.FLDGRecovery) error
}

// ECLRepository persists staging, provisions and portfolio summaries.
type ECLRepository interface {
	SaveStaging(ctx context.Context, staging model.ECLStaging) error
	InsertProvision(ctx context.Context, provision model.ECLProvision) error
	InsertSummary(ctx context.Context, summary model.ECLPortfolioSummary) error
}

// LifecycleRepository persists restructure, prepayment and write-off events.
type LifecycleRepository interface {
	InsertRestructure(ctx context.Context, event model.RestructureEvent) error
	InsertPrepayment(ctx context.Context, prepayment model.Prepayment) error
	InsertWriteOff(ctx context.Context, writeOff model.WriteOff) error
	GetWriteOff(ctx context.Context, id uuid.UUID) (*model.WriteOff, error)
	SaveWriteOff(ctx context.Context, writeOff *model.WriteOff) error
	InsertWriteOffRecovery(ctx context.Context, recovery model.WriteOffRecovery) error
}

// RefDataRepository serves the read-mostly reference data: holiday calendars
// and benchmark rate history. Implementations cache per process.
type RefDataRepository interface {
	Calendar(ctx context.Context, id uuid.UUID) (*bizcal.Calendar, error)
	// BenchmarkRateOn returns the latest publication on or before asOf;
	// found is false when the history has no such point.
	BenchmarkRateOn(ctx context.Context, benchmarkID uuid.UUID, asOf time.Time) (rate decimal.Decimal, found bool, err error)
}

// Store bundles the repositories with the transactional contract: InTx runs
// fn inside one database transaction and rolls everything back on error.
type Store interface {
	Loans() LoanRepository
	Schedules() ScheduleRepository
	Payments() PaymentRepository
	Accruals() AccrualRepository
	Delinquency() DelinquencyRepository
	Participations() ParticipationRepository
	FLDG() FLDGRepository
	ECL() ECLRepository
	Lifecycle() LifecycleRepository
	RefData() RefDataRepository

	InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}

// EventPublisher publishes domain events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// AccountLocker serializes units of work per account while operations on
// distinct accounts proceed in parallel. The release function must run on
// every exit path.
type AccountLocker interface {
	Acquire(ctx context.Context, accountID uuid.UUID) (release func(), err error)
}
