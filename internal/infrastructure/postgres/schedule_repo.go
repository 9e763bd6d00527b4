package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	pkgpostgres "github.com/harshitrathi14/LOS-LMS/pkg/postgres"
)

// ScheduleRepo persists repayment-schedule rows.
type ScheduleRepo struct {
	q pkgpostgres.Querier
}

const installmentColumns = `
	id, loan_account_id, installment_number, due_date, period_start, period_end,
	opening_balance, principal_due, interest_due, fees_due, total_due, closing_balance,
	principal_paid, interest_paid, fees_paid, moratorium, status`

// ListByAccount loads the schedule ordered by due date then number.
func (r *ScheduleRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*model.Installment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT`+installmentColumns+`
		FROM repayment_schedule
		WHERE loan_account_id = $1
		ORDER BY due_date, installment_number`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query schedule: %w", err)
	}
	defer rows.Close()

	var out []*model.Installment
	for rows.Next() {
		var (
			inst   model.Installment
			status string
		)
		if err := rows.Scan(
			&inst.ID, &inst.LoanAccountID, &inst.Number, &inst.DueDate, &inst.PeriodStart, &inst.PeriodEnd,
			&inst.OpeningBalance, &inst.PrincipalDue, &inst.InterestDue, &inst.FeesDue, &inst.TotalDue, &inst.ClosingBalance,
			&inst.PrincipalPaid, &inst.InterestPaid, &inst.FeesPaid, &inst.Moratorium, &status,
		); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		if inst.Status, err = valueobject.NewInstallmentStatus(status); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		out = append(out, &inst)
	}
	return out, rows.Err()
}

// InsertAll writes new schedule rows.
func (r *ScheduleRepo) InsertAll(ctx context.Context, installments []model.Installment) error {
	for _, inst := range installments {
		_, err := r.q.Exec(ctx, `
			INSERT INTO repayment_schedule (`+installmentColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			inst.ID, inst.LoanAccountID, inst.Number, inst.DueDate, inst.PeriodStart, inst.PeriodEnd,
			inst.OpeningBalance, inst.PrincipalDue, inst.InterestDue, inst.FeesDue, inst.TotalDue, inst.ClosingBalance,
			inst.PrincipalPaid, inst.InterestPaid, inst.FeesPaid, inst.Moratorium, inst.Status.String(),
		)
		if err != nil {
			return fmt.Errorf("insert installment %d: %w", inst.Number, err)
		}
	}
	return nil
}

// Update persists paid amounts and status. Paid rows are immutable so their
// dues are never rewritten.
func (r *ScheduleRepo) Update(ctx context.Context, inst *model.Installment) error {
	_, err := r.q.Exec(ctx, `
		UPDATE repayment_schedule
		SET principal_paid = $3, interest_paid = $4, fees_paid = $5, status = $6
		WHERE loan_account_id = $1 AND installment_number = $2`,
		inst.LoanAccountID, inst.Number,
		inst.PrincipalPaid, inst.InterestPaid, inst.FeesPaid, inst.Status.String(),
	)
	if err != nil {
		return fmt.Errorf("update installment %d: %w", inst.Number, err)
	}
	return nil
}

// CancelNumbers marks rows cancelled ahead of a forward regeneration.
func (r *ScheduleRepo) CancelNumbers(ctx context.Context, accountID uuid.UUID, numbers []int) error {
	if len(numbers) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx, `
		UPDATE repayment_schedule
		SET status = 'cancelled'
		WHERE loan_account_id = $1 AND installment_number = ANY($2)
		  AND status IN ('pending', 'partially_paid')`,
		accountID, numbers,
	)
	if err != nil {
		return fmt.Errorf("cancel installments: %w", err)
	}
	return nil
}

// Exists reports whether any schedule rows exist for the account.
func (r *ScheduleRepo) Exists(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM repayment_schedule WHERE loan_account_id = $1)`,
		accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check schedule existence: %w", err)
	}
	return exists, nil
}
