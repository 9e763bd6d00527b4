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
	pkgpostgres "github.com/harshitrathi14/LOS-LMS/pkg/postgres"
)

// LifecycleRepo persists restructure, prepayment and write-off events.
type LifecycleRepo struct {
	q pkgpostgres.Querier
}

// InsertRestructure writes the event record.
func (r *LifecycleRepo) InsertRestructure(ctx context.Context, e model.RestructureEvent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO restructure_events
			(id, loan_account_id, restructure_type, effective_date,
			 old_principal, old_rate, old_tenure, old_emi,
			 new_principal, new_rate, new_tenure, new_emi,
			 principal_waived, interest_waived, fees_waived,
			 reason, requested_by, approved_by, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,now())`,
		e.ID, e.LoanAccountID, e.Type.String(), e.EffectiveDate,
		e.OldPrincipal, e.OldRatePct, e.OldTenure, e.OldEMI,
		e.NewPrincipal, e.NewRatePct, e.NewTenure, e.NewEMI,
		e.PrincipalWaived, e.InterestWaived, e.FeesWaived,
		e.Reason, e.RequestedBy, e.ApprovedBy, e.Status,
	)
	if err != nil {
		return fmt.Errorf("insert restructure event: %w", err)
	}
	return nil
}

// InsertPrepayment writes the prepayment record.
func (r *LifecycleRepo) InsertPrepayment(ctx context.Context, p model.Prepayment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO prepayments
			(id, loan_account_id, payment_id, action, prepaid_at,
			 amount, penalty_amount, penalty_waived, principal_reduced,
			 old_outstanding, new_outstanding, old_emi, new_emi, old_tenure, new_tenure,
			 interest_saved, is_foreclosure, processed_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		p.ID, p.LoanAccountID, p.PaymentID, p.Action.String(), p.PrepaidAt,
		p.Amount, p.PenaltyAmount, p.PenaltyWaived, p.PrincipalReduced,
		p.OldOutstanding, p.NewOutstanding, p.OldEMI, p.NewEMI, p.OldTenure, p.NewTenure,
		p.InterestSaved, p.IsForeclosure, p.ProcessedBy,
	)
	if err != nil {
		return fmt.Errorf("insert prepayment: %w", err)
	}
	return nil
}

const writeOffColumns = `
	id, loan_account_id, write_off_date,
	principal_written_off, interest_written_off, fees_written_off, total_written_off,
	dpd_at_write_off, npa_category, partial, reason, approved_by,
	recovered_principal, recovered_interest, recovered_fees, total_recovered,
	recovery_status, last_recovery_date`

// InsertWriteOff writes the write-off record.
func (r *LifecycleRepo) InsertWriteOff(ctx context.Context, w model.WriteOff) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO write_offs (`+writeOffColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		w.ID, w.LoanAccountID, w.WriteOffDate,
		w.PrincipalWrittenOff, w.InterestWrittenOff, w.FeesWrittenOff, w.TotalWrittenOff,
		w.DPDAtWriteOff, string(w.NPACategory), w.Partial, w.Reason, w.ApprovedBy,
		w.RecoveredPrincipal, w.RecoveredInterest, w.RecoveredFees, w.TotalRecovered,
		w.RecoveryStatus, w.LastRecoveryDate,
	)
	if err != nil {
		return fmt.Errorf("insert write-off: %w", err)
	}
	return nil
}

// GetWriteOff loads a write-off by id.
func (r *LifecycleRepo) GetWriteOff(ctx context.Context, id uuid.UUID) (*model.WriteOff, error) {
	var (
		w           model.WriteOff
		npaCategory string
	)
	err := r.q.QueryRow(ctx, `SELECT`+writeOffColumns+` FROM write_offs WHERE id = $1`, id).Scan(
		&w.ID, &w.LoanAccountID, &w.WriteOffDate,
		&w.PrincipalWrittenOff, &w.InterestWrittenOff, &w.FeesWrittenOff, &w.TotalWrittenOff,
		&w.DPDAtWriteOff, &npaCategory, &w.Partial, &w.Reason, &w.ApprovedBy,
		&w.RecoveredPrincipal, &w.RecoveredInterest, &w.RecoveredFees, &w.TotalRecovered,
		&w.RecoveryStatus, &w.LastRecoveryDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "write-off not found").WithEntity(id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query write-off: %w", err)
	}
	w.NPACategory = valueobject.NPACategory(npaCategory)
	return &w, nil
}

// SaveWriteOff persists recovery progress.
func (r *LifecycleRepo) SaveWriteOff(ctx context.Context, w *model.WriteOff) error {
	_, err := r.q.Exec(ctx, `
		UPDATE write_offs
		SET recovered_principal = $2, recovered_interest = $3, recovered_fees = $4,
		    total_recovered = $5, recovery_status = $6, last_recovery_date = $7
		WHERE id = $1`,
		w.ID, w.RecoveredPrincipal, w.RecoveredInterest, w.RecoveredFees,
		w.TotalRecovered, w.RecoveryStatus, w.LastRecoveryDate,
	)
	if err != nil {
		return fmt.Errorf("save write-off: %w", err)
	}
	return nil
}

// InsertWriteOffRecovery writes a recovery event.
func (r *LifecycleRepo) InsertWriteOffRecovery(ctx context.Context, rec model.WriteOffRecovery) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO write_off_recoveries
			(id, write_off_id, payment_id, recovery_date, amount,
			 principal_recovered, interest_recovered, fees_recovered, source, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.WriteOffID, rec.PaymentID, rec.RecoveryDate, rec.Amount,
		rec.PrincipalRecovered, rec.InterestRecovered, rec.FeesRecovered, rec.Source, rec.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert write-off recovery: %w", err)
	}
	return nil
}
