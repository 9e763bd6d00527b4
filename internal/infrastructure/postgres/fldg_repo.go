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

// FLDGRepo persists guarantee arrangements, utilizations and recoveries.
type FLDGRepo struct {
	q pkgpostgres.Querier
}

// GetArrangement loads an arrangement.
func (r *FLDGRepo) GetArrangement(ctx context.Context, id uuid.UUID) (*model.FLDGArrangement, error) {
	var (
		arr      model.FLDGArrangement
		fldgType string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, code, originator_id, lender_id, fldg_type,
		       percent_of_portfolio, absolute_cap, effective_limit,
		       covers_principal, covers_interest, covers_fees,
		       trigger_dpd, first_loss_threshold, replenish_first,
		       current_balance, total_utilized, total_recovered, effective_date
		FROM fldg_arrangements WHERE id = $1`, id).Scan(
		&arr.ID, &arr.Code, &arr.OriginatorID, &arr.LenderID, &fldgType,
		&arr.PercentOfPortfolio, &arr.AbsoluteCap, &arr.EffectiveLimit,
		&arr.CoversPrincipal, &arr.CoversInterest, &arr.CoversFees,
		&arr.TriggerDPD, &arr.FirstLossThreshold, &arr.ReplenishFirst,
		&arr.CurrentBalance, &arr.TotalUtilized, &arr.TotalRecovered, &arr.EffectiveDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "FLDG arrangement not found").WithEntity(id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query fldg arrangement: %w", err)
	}
	arr.Type = valueobject.FLDGType(fldgType)
	return &arr, nil
}

// SaveArrangement persists the running balances.
func (r *FLDGRepo) SaveArrangement(ctx context.Context, arr *model.FLDGArrangement) error {
	_, err := r.q.Exec(ctx, `
		UPDATE fldg_arrangements
		SET current_balance = $2, total_utilized = $3, total_recovered = $4
		WHERE id = $1`,
		arr.ID, arr.CurrentBalance, arr.TotalUtilized, arr.TotalRecovered,
	)
	if err != nil {
		return fmt.Errorf("save fldg arrangement: %w", err)
	}
	return nil
}

// HasUtilization reports whether the account already claimed under the
// arrangement.
func (r *FLDGRepo) HasUtilization(ctx context.Context, arrangementID, accountID uuid.UUID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM fldg_utilizations
			WHERE arrangement_id = $1 AND loan_account_id = $2 AND status <> 'rejected'
		)`, arrangementID, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check fldg utilization: %w", err)
	}
	return exists, nil
}

const utilizationColumns = `
	id, arrangement_id, loan_account_id, write_off_id, utilization_date, trigger_reason, dpd_at_claim,
	principal_claimed, interest_claimed, fees_claimed, total_claimed, lender_share,
	total_approved, approved_by, balance_before, balance_after, recovered_to_pool, status`

// InsertUtilization writes a claim event.
func (r *FLDGRepo) InsertUtilization(ctx context.Context, u model.FLDGUtilization) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO fldg_utilizations (`+utilizationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		u.ID, u.ArrangementID, u.LoanAccountID, u.WriteOffID, u.UtilizationDate, string(u.Trigger), u.DPDAtClaim,
		u.PrincipalClaimed, u.InterestClaimed, u.FeesClaimed, u.TotalClaimed, u.LenderSharePct,
		u.TotalApproved, u.ApprovedBy, u.BalanceBefore, u.BalanceAfter, u.RecoveredToPool, u.Status,
	)
	if err != nil {
		return fmt.Errorf("insert fldg utilization: %w", err)
	}
	return nil
}

// GetUtilization loads a utilization by id.
func (r *FLDGRepo) GetUtilization(ctx context.Context, id uuid.UUID) (*model.FLDGUtilization, error) {
	u, err := r.scanUtilization(ctx, `SELECT`+utilizationColumns+` FROM fldg_utilizations WHERE id = $1`, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "FLDG utilization not found").WithEntity(id.String())
	}
	return u, err
}

// UtilizationForWriteOff returns nil when the write-off is not FLDG-covered.
func (r *FLDGRepo) UtilizationForWriteOff(ctx context.Context, writeOffID uuid.UUID) (*model.FLDGUtilization, error) {
	u, err := r.scanUtilization(ctx,
		`SELECT`+utilizationColumns+` FROM fldg_utilizations WHERE write_off_id = $1`, writeOffID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// SaveUtilization persists recovery progress.
func (r *FLDGRepo) SaveUtilization(ctx context.Context, u *model.FLDGUtilization) error {
	_, err := r.q.Exec(ctx, `
		UPDATE fldg_utilizations
		SET recovered_to_pool = $2, status = $3
		WHERE id = $1`,
		u.ID, u.RecoveredToPool, u.Status,
	)
	if err != nil {
		return fmt.Errorf("save fldg utilization: %w", err)
	}
	return nil
}

// InsertRecovery writes a recovery event.
func (r *FLDGRepo) InsertRecovery(ctx context.Context, rec model.FLDGRecovery) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO fldg_recoveries
			(id, utilization_id, recovery_date, principal_recovered, interest_recovered,
			 total_recovered, returned_to_pool, excess_to_lender, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.UtilizationID, rec.RecoveryDate, rec.PrincipalRecovered, rec.InterestRecovered,
		rec.TotalRecovered, rec.ReturnedToPool, rec.ExcessToLender, rec.Source,
	)
	if err != nil {
		return fmt.Errorf("insert fldg recovery: %w", err)
	}
	return nil
}

func (r *FLDGRepo) scanUtilization(ctx context.Context, query string, args ...any) (*model.FLDGUtilization, error) {
	var (
		u       model.FLDGUtilization
		trigger string
	)
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.ArrangementID, &u.LoanAccountID, &u.WriteOffID, &u.UtilizationDate, &trigger, &u.DPDAtClaim,
		&u.PrincipalClaimed, &u.InterestClaimed, &u.FeesClaimed, &u.TotalClaimed, &u.LenderSharePct,
		&u.TotalApproved, &u.ApprovedBy, &u.BalanceBefore, &u.BalanceAfter, &u.RecoveredToPool, &u.Status,
	)
	if err != nil {
		return nil, err
	}
	u.Trigger = valueobject.FLDGTrigger(trigger)
	return &u, nil
}
