package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	pkgpostgres "github.com/harshitrathi14/LOS-LMS/pkg/postgres"
)

// PaymentRepo persists payments and their allocations.
type PaymentRepo struct {
	q pkgpostgres.Querier
}

// Insert writes a payment. The unique index on external_ref backstops the
// idempotency check under concurrency.
func (r *PaymentRepo) Insert(ctx context.Context, p *model.Payment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO payments (id, loan_account_id, amount, unallocated, channel, external_ref, paid_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.LoanAccountID, p.Amount, p.Unallocated, p.Channel, p.ExternalRef, p.PaidAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// InsertAllocations writes the per-installment allocation records.
func (r *PaymentRepo) InsertAllocations(ctx context.Context, allocations []model.PaymentAllocation) error {
	for _, a := range allocations {
		_, err := r.q.Exec(ctx, `
			INSERT INTO payment_allocations
				(id, payment_id, installment_id, installment_number, principal_allocated, interest_allocated, fees_allocated)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			a.ID, a.PaymentID, a.InstallmentID, a.InstallmentNumber,
			a.PrincipalAllocated, a.InterestAllocated, a.FeesAllocated,
		)
		if err != nil {
			return fmt.Errorf("insert allocation: %w", err)
		}
	}
	return nil
}

// Get loads a payment by id.
func (r *PaymentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	p, err := r.scanOne(ctx, `
		SELECT id, loan_account_id, amount, unallocated, channel, external_ref, paid_at, created_at
		FROM payments WHERE id = $1`, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "payment not found").WithEntity(id.String())
	}
	return p, err
}

// FindByExternalRef returns nil when the reference has not been seen.
func (r *PaymentRepo) FindByExternalRef(ctx context.Context, accountID uuid.UUID, externalRef string) (*model.Payment, error) {
	p, err := r.scanOne(ctx, `
		SELECT id, loan_account_id, amount, unallocated, channel, external_ref, paid_at, created_at
		FROM payments WHERE loan_account_id = $1 AND external_ref = $2`, accountID, externalRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// AllocationsForPayment lists a payment's allocations.
func (r *PaymentRepo) AllocationsForPayment(ctx context.Context, paymentID uuid.UUID) ([]model.PaymentAllocation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, payment_id, installment_id, installment_number, principal_allocated, interest_allocated, fees_allocated
		FROM payment_allocations
		WHERE payment_id = $1
		ORDER BY installment_number`, paymentID)
	if err != nil {
		return nil, fmt.Errorf("query allocations: %w", err)
	}
	defer rows.Close()

	var out []model.PaymentAllocation
	for rows.Next() {
		var a model.PaymentAllocation
		if err := rows.Scan(&a.ID, &a.PaymentID, &a.InstallmentID, &a.InstallmentNumber,
			&a.PrincipalAllocated, &a.InterestAllocated, &a.FeesAllocated); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PaymentRepo) scanOne(ctx context.Context, query string, args ...any) (*model.Payment, error) {
	var p model.Payment
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.LoanAccountID, &p.Amount, &p.Unallocated, &p.Channel, &p.ExternalRef, &p.PaidAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
