// Package postgres implements the repository ports over pgx. Every unit of
// work runs through Store.InTx: one transaction per account operation, and
// batches never wrap more than one account in a transaction.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	pkgpostgres "github.com/harshitrathi14/LOS-LMS/pkg/postgres"
)

// Store bundles the repositories over one Querier (pool or transaction).
type Store struct {
	pool *pgxpool.Pool
	q    pkgpostgres.Querier
	ref  *refDataCache
}

// NewStore creates the pool-backed store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool, ref: newRefDataCache()}
}

// InTx runs fn inside one database transaction. A nested call reuses the
// surrounding transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, st port.Store) error) error {
	if s.pool == nil {
		return fn(ctx, s)
	}
	err := pkgpostgres.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Store{q: tx, ref: s.ref})
	})
	return classify(err)
}

// Loans returns the loan repository.
func (s *Store) Loans() port.LoanRepository { return &LoanRepo{q: s.q} }

// Schedules returns the schedule repository.
func (s *Store) Schedules() port.ScheduleRepository { return &ScheduleRepo{q: s.q} }

// Payments returns the payment repository.
func (s *Store) Payments() port.PaymentRepository { return &PaymentRepo{q: s.q} }

// Accruals returns the accrual repository.
func (s *Store) Accruals() port.AccrualRepository { return &AccrualRepo{q: s.q} }

// Delinquency returns the snapshot repository.
func (s *Store) Delinquency() port.DelinquencyRepository { return &DelinquencyRepo{q: s.q} }

// Participations returns the co-lending repository.
func (s *Store) Participations() port.ParticipationRepository { return &ParticipationRepo{q: s.q} }

// FLDG returns the guarantee repository.
func (s *Store) FLDG() port.FLDGRepository { return &FLDGRepo{q: s.q} }

// ECL returns the provisioning repository.
func (s *Store) ECL() port.ECLRepository { return &ECLRepo{q: s.q} }

// Lifecycle returns the lifecycle-event repository.
func (s *Store) Lifecycle() port.LifecycleRepository { return &LifecycleRepo{q: s.q} }

// RefData returns the cached reference-data repository.
func (s *Store) RefData() port.RefDataRepository { return &RefDataRepo{q: s.q, cache: s.ref} }

// classify maps driver errors onto the engine taxonomy so batch
// orchestrators can retry transient failures.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 40: rollback (serialization/deadlock) is retryable.
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "40" {
			return apperr.Wrap(apperr.KindTransient, err, "retryable database failure")
		}
	}
	return err
}
