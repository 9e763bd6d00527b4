package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	"github.com/harshitrathi14/LOS-LMS/pkg/bizcal"
	"github.com/harshitrathi14/LOS-LMS/pkg/daycount"
	pkgpostgres "github.com/harshitrathi14/LOS-LMS/pkg/postgres"
	"github.com/harshitrathi14/LOS-LMS/pkg/schedule"
)

// LoanRepo persists the loan aggregate root.
type LoanRepo struct {
	q pkgpostgres.Querier
}

const loanColumns = `
	id, account_number, product_id, borrower_id,
	principal_disbursed, principal_outstanding, interest_outstanding, fees_outstanding,
	current_rate, rate_type, fixed_rate, benchmark_id, spread, floor_rate, cap_rate,
	rate_reset_frequency, next_rate_reset_date,
	tenure_periods, repayment_frequency, schedule_type, day_count, calendar_id, adjust_mode,
	disbursement_date, first_due_date, status,
	dpd, bucket, is_npa, npa_date, npa_category,
	is_restructured, is_written_off, sicr_flag, secured,
	ecl_stage, ecl_provision, ecl_staged_at, settlement_amount,
	closure_date, closure_type,
	cumulative_accrued, last_accrual_date,
	next_due_date, next_due_amount, prepayment_penalty_rate,
	version, created_at, updated_at`

// Get loads an account by id.
func (r *LoanRepo) Get(ctx context.Context, id uuid.UUID) (*model.LoanAccount, error) {
	row := r.q.QueryRow(ctx, `SELECT`+loanColumns+` FROM loan_accounts WHERE id = $1`, id)
	acct, err := scanLoan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "loan account not found").WithEntity(id.String())
	}
	return acct, err
}

// Save upserts the account with optimistic locking on version.
func (r *LoanRepo) Save(ctx context.Context, a *model.LoanAccount) error {
	var (
		benchmarkID *uuid.UUID
		calendarID  *uuid.UUID
	)
	if a.Rate.BenchmarkID != uuid.Nil {
		benchmarkID = &a.Rate.BenchmarkID
	}
	if a.CalendarID != uuid.Nil {
		calendarID = &a.CalendarID
	}

	resetFreq := ""
	if !a.Rate.ResetFrequency.IsZero() {
		resetFreq = a.Rate.ResetFrequency.String()
	}
	closureType := ""
	if a.ClosureType != "" {
		closureType = string(a.ClosureType)
	}

	tag, err := r.q.Exec(ctx, `
		INSERT INTO loan_accounts (`+loanColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
		        $21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,
		        $39,$40,$41,$42,$43,$44,$45,$46,$47,now(),now())
		ON CONFLICT (id) DO UPDATE SET
			principal_outstanding   = EXCLUDED.principal_outstanding,
			interest_outstanding    = EXCLUDED.interest_outstanding,
			fees_outstanding        = EXCLUDED.fees_outstanding,
			current_rate            = EXCLUDED.current_rate,
			fixed_rate              = EXCLUDED.fixed_rate,
			next_rate_reset_date    = EXCLUDED.next_rate_reset_date,
			tenure_periods          = EXCLUDED.tenure_periods,
			status                  = EXCLUDED.status,
			dpd                     = EXCLUDED.dpd,
			bucket                  = EXCLUDED.bucket,
			is_npa                  = EXCLUDED.is_npa,
			npa_date                = EXCLUDED.npa_date,
			npa_category            = EXCLUDED.npa_category,
			is_restructured         = EXCLUDED.is_restructured,
			is_written_off          = EXCLUDED.is_written_off,
			sicr_flag               = EXCLUDED.sicr_flag,
			ecl_stage               = EXCLUDED.ecl_stage,
			ecl_provision           = EXCLUDED.ecl_provision,
			ecl_staged_at           = EXCLUDED.ecl_staged_at,
			settlement_amount       = EXCLUDED.settlement_amount,
			closure_date            = EXCLUDED.closure_date,
			closure_type            = EXCLUDED.closure_type,
			cumulative_accrued      = EXCLUDED.cumulative_accrued,
			last_accrual_date       = EXCLUDED.last_accrual_date,
			next_due_date           = EXCLUDED.next_due_date,
			next_due_amount         = EXCLUDED.next_due_amount,
			version                 = loan_accounts.version + 1,
			updated_at              = now()
		WHERE loan_accounts.version = $47`,
		a.ID, a.AccountNumber, a.ProductID, a.BorrowerID,
		a.PrincipalDisbursed, a.PrincipalOutstanding, a.InterestOutstanding, a.FeesOutstanding,
		a.CurrentRatePct, a.Rate.Type.String(), a.Rate.FixedPct, benchmarkID, a.Rate.SpreadPct, a.Rate.FloorPct, a.Rate.CapPct,
		resetFreq, a.Rate.NextResetDate,
		a.TenurePeriods, a.Frequency.String(), a.ScheduleType.String(), a.DayCount.String(), calendarID, a.AdjustMode.String(),
		a.DisbursementDate, a.FirstDueDate, a.Status.String(),
		a.DPD, string(a.Bucket), a.IsNPA, a.NPADate, string(a.NPACategory),
		a.IsRestructured, a.IsWrittenOff, a.SICRFlag, a.Secured,
		a.ECLStage, a.ECLProvision, a.ECLStagedAt, a.SettlementAmt,
		a.ClosureDate, closureType,
		a.CumulativeAccrued, a.LastAccrualDate,
		a.NextDueDate, a.NextDueAmount, a.PrepaymentPenaltyPct,
		a.Version,
	)
	if err != nil {
		return fmt.Errorf("save loan account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindTransient, "optimistic locking conflict").WithEntity(a.ID.String())
	}
	a.Version++
	return nil
}

// ActiveIDs lists the active book for batch fan-out.
func (r *LoanRepo) ActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM loan_accounts WHERE status = 'active' ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query active accounts: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanLoan(row pgx.Row) (*model.LoanAccount, error) {
	var (
		a                                  model.LoanAccount
		rateType, frequency, scheduleType  string
		dayCount, adjustMode, status       string
		bucket, npaCategory, closureType   string
		resetFrequency                     string
		benchmarkID, calendarID            *uuid.UUID
	)

	err := row.Scan(
		&a.ID, &a.AccountNumber, &a.ProductID, &a.BorrowerID,
		&a.PrincipalDisbursed, &a.PrincipalOutstanding, &a.InterestOutstanding, &a.FeesOutstanding,
		&a.CurrentRatePct, &rateType, &a.Rate.FixedPct, &benchmarkID, &a.Rate.SpreadPct, &a.Rate.FloorPct, &a.Rate.CapPct,
		&resetFrequency, &a.Rate.NextResetDate,
		&a.TenurePeriods, &frequency, &scheduleType, &dayCount, &calendarID, &adjustMode,
		&a.DisbursementDate, &a.FirstDueDate, &status,
		&a.DPD, &bucket, &a.IsNPA, &a.NPADate, &npaCategory,
		&a.IsRestructured, &a.IsWrittenOff, &a.SICRFlag, &a.Secured,
		&a.ECLStage, &a.ECLProvision, &a.ECLStagedAt, &a.SettlementAmt,
		&a.ClosureDate, &closureType,
		&a.CumulativeAccrued, &a.LastAccrualDate,
		&a.NextDueDate, &a.NextDueAmount, &a.PrepaymentPenaltyPct,
		&a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.Rate.Type, err = valueobject.NewRateType(rateType); err != nil {
		return nil, fmt.Errorf("scan loan: %w", err)
	}
	if a.Frequency, err = schedule.ParseFrequency(frequency); err != nil {
		return nil, fmt.Errorf("scan loan: %w", err)
	}
	if a.ScheduleType, err = schedule.ParseType(scheduleType); err != nil {
		return nil, fmt.Errorf("scan loan: %w", err)
	}
	if a.DayCount, err = daycount.Parse(dayCount); err != nil {
		return nil, fmt.Errorf("scan loan: %w", err)
	}
	if a.AdjustMode, err = bizcal.ParseMode(adjustMode); err != nil {
		return nil, fmt.Errorf("scan loan: %w", err)
	}
	if a.Status, err = valueobject.NewLoanStatus(status); err != nil {
		return nil, fmt.Errorf("scan loan: %w", err)
	}
	if resetFrequency != "" {
		if a.Rate.ResetFrequency, err = schedule.ParseFrequency(resetFrequency); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
	}
	if benchmarkID != nil {
		a.Rate.BenchmarkID = *benchmarkID
	}
	if calendarID != nil {
		a.CalendarID = *calendarID
	}
	a.Bucket = valueobject.Bucket(bucket)
	a.NPACategory = valueobject.NPACategory(npaCategory)
	a.ClosureType = valueobject.ClosureType(closureType)
	return &a, nil
}
