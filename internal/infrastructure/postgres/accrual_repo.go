package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/daycount"
	pkgpostgres "github.com/harshitrathi14/LOS-LMS/pkg/postgres"
)

// AccrualRepo persists daily interest accruals.
type AccrualRepo struct {
	q pkgpostgres.Querier
}

const accrualColumns = `
	id, loan_account_id, accrual_date, opening_principal, rate, benchmark_rate, spread,
	day_count, days_in_year, accrued, cumulative, status`

// Latest returns the most recent accrual row, or nil.
func (r *AccrualRepo) Latest(ctx context.Context, accountID uuid.UUID) (*model.InterestAccrual, error) {
	accrual, err := r.scanOne(ctx, `
		SELECT`+accrualColumns+`
		FROM interest_accruals
		WHERE loan_account_id = $1 AND status <> 'reversed'
		ORDER BY accrual_date DESC
		LIMIT 1`, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return accrual, err
}

// ForDate returns the non-reversed accrual for the date, or nil.
func (r *AccrualRepo) ForDate(ctx context.Context, accountID uuid.UUID, date time.Time) (*model.InterestAccrual, error) {
	accrual, err := r.scanOne(ctx, `
		SELECT`+accrualColumns+`
		FROM interest_accruals
		WHERE loan_account_id = $1 AND accrual_date = $2 AND status <> 'reversed'`,
		accountID, date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return accrual, err
}

// Insert writes an accrual row.
func (r *AccrualRepo) Insert(ctx context.Context, a model.InterestAccrual) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO interest_accruals (`+accrualColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.LoanAccountID, a.AccrualDate, a.OpeningPrincipal, a.RatePct, a.BenchmarkPct, a.SpreadPct,
		a.DayCount.String(), a.DaysInYear, a.Accrued, a.Cumulative, string(a.Status),
	)
	if err != nil {
		return fmt.Errorf("insert accrual: %w", err)
	}
	return nil
}

// MarkPosted flips accrued rows to posted through the date.
func (r *AccrualRepo) MarkPosted(ctx context.Context, accountID uuid.UUID, upTo time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE interest_accruals
		SET status = 'posted'
		WHERE loan_account_id = $1 AND accrual_date <= $2 AND status = 'accrued'`,
		accountID, upTo)
	if err != nil {
		return fmt.Errorf("mark accruals posted: %w", err)
	}
	return nil
}

func (r *AccrualRepo) scanOne(ctx context.Context, query string, args ...any) (*model.InterestAccrual, error) {
	var (
		a          model.InterestAccrual
		convention string
		status     string
	)
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.LoanAccountID, &a.AccrualDate, &a.OpeningPrincipal, &a.RatePct, &a.BenchmarkPct, &a.SpreadPct,
		&convention, &a.DaysInYear, &a.Accrued, &a.Cumulative, &status,
	)
	if err != nil {
		return nil, err
	}
	if a.DayCount, err = daycount.Parse(convention); err != nil {
		return nil, fmt.Errorf("scan accrual: %w", err)
	}
	a.Status = valueobject.AccrualStatus(status)
	return &a, nil
}

// DelinquencyRepo persists daily snapshots.
type DelinquencyRepo struct {
	q pkgpostgres.Querier
}

// Upsert writes the snapshot for (account, date), replacing a same-day run.
func (r *DelinquencyRepo) Upsert(ctx context.Context, s model.DelinquencySnapshot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO delinquency_snapshots
			(id, loan_account_id, snapshot_date, dpd, bucket, is_npa, npa_category,
			 overdue_principal, overdue_interest, overdue_fees, total_overdue,
			 principal_outstanding, missed_installments, oldest_due_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (loan_account_id, snapshot_date) DO UPDATE SET
			dpd                   = EXCLUDED.dpd,
			bucket                = EXCLUDED.bucket,
			is_npa                = EXCLUDED.is_npa,
			npa_category          = EXCLUDED.npa_category,
			overdue_principal     = EXCLUDED.overdue_principal,
			overdue_interest      = EXCLUDED.overdue_interest,
			overdue_fees          = EXCLUDED.overdue_fees,
			total_overdue         = EXCLUDED.total_overdue,
			principal_outstanding = EXCLUDED.principal_outstanding,
			missed_installments   = EXCLUDED.missed_installments,
			oldest_due_date       = EXCLUDED.oldest_due_date`,
		s.ID, s.LoanAccountID, s.SnapshotDate, s.DPD, string(s.Bucket), s.IsNPA, string(s.NPACategory),
		s.OverduePrincipal, s.OverdueInterest, s.OverdueFees, s.TotalOverdue,
		s.PrincipalOutstanding, s.MissedInstallments, s.OldestDueDate,
	)
	if err != nil {
		return fmt.Errorf("upsert delinquency snapshot: %w", err)
	}
	return nil
}
