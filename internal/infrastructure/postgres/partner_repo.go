package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/apperr"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
	pkgpostgres "github.com/harshitrathi14/LOS-LMS/pkg/postgres"
)

// ParticipationRepo persists co-lending participations, the partner ledger
// and servicer arrangements.
type ParticipationRepo struct {
	q pkgpostgres.Querier
}

// ListByAccount loads the account's participations.
func (r *ParticipationRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]model.LoanParticipation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, loan_account_id, partner_id, partner_name, share_percent, yield_rate, fee_share_percent,
		       fldg_arrangement_id, servicer_arrangement_id,
		       principal_disbursed, principal_collected, interest_collected, fees_collected,
		       active, created_at
		FROM loan_participations
		WHERE loan_account_id = $1
		ORDER BY share_percent DESC, partner_name`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query participations: %w", err)
	}
	defer rows.Close()

	var out []model.LoanParticipation
	for rows.Next() {
		var p model.LoanParticipation
		if err := rows.Scan(
			&p.ID, &p.LoanAccountID, &p.PartnerID, &p.PartnerName, &p.SharePercent, &p.YieldRatePct, &p.FeeSharePercent,
			&p.FLDGArrangementID, &p.ServicerArrangementID,
			&p.PrincipalDisbursed, &p.PrincipalCollected, &p.InterestCollected, &p.FeesCollected,
			&p.Active, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Save updates a participation's running totals.
func (r *ParticipationRepo) Save(ctx context.Context, p *model.LoanParticipation) error {
	_, err := r.q.Exec(ctx, `
		UPDATE loan_participations
		SET principal_disbursed = $2, principal_collected = $3, interest_collected = $4,
		    fees_collected = $5, active = $6
		WHERE id = $1`,
		p.ID, p.PrincipalDisbursed, p.PrincipalCollected, p.InterestCollected, p.FeesCollected, p.Active,
	)
	if err != nil {
		return fmt.Errorf("save participation: %w", err)
	}
	return nil
}

// LastLedgerBalance returns the running balance of the latest ledger entry,
// or zero.
func (r *ParticipationRepo) LastLedgerBalance(ctx context.Context, participationID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT running_balance FROM partner_ledger_entries
		WHERE participation_id = $1
		ORDER BY entry_date DESC, created_at DESC
		LIMIT 1`, participationID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query ledger balance: %w", err)
	}
	return balance, nil
}

// InsertLedgerEntries appends ledger postings.
func (r *ParticipationRepo) InsertLedgerEntries(ctx context.Context, entries []model.PartnerLedgerEntry) error {
	for _, e := range entries {
		_, err := r.q.Exec(ctx, `
			INSERT INTO partner_ledger_entries
				(id, participation_id, entry_type, entry_date, signed_amount, running_balance, payment_id, description, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())`,
			e.ID, e.ParticipationID, string(e.EntryType), e.EntryDate, e.SignedAmount, e.RunningBalance, e.PaymentID, e.Description,
		)
		if err != nil {
			return fmt.Errorf("insert ledger entry: %w", err)
		}
	}
	return nil
}

// ServicerArrangement loads a servicer arrangement.
func (r *ParticipationRepo) ServicerArrangement(ctx context.Context, id uuid.UUID) (*model.ServicerArrangement, error) {
	var (
		arr     model.ServicerArrangement
		feeBase string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, code, servicer_id, lender_id, fee_rate, fee_base, lender_yield, withhold_on_collection, effective_date
		FROM servicer_arrangements WHERE id = $1`, id).Scan(
		&arr.ID, &arr.Code, &arr.ServicerID, &arr.LenderID, &arr.FeeRatePct, &feeBase,
		&arr.LenderYieldPct, &arr.WithholdOnCollection, &arr.EffectiveDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "servicer arrangement not found").WithEntity(id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query servicer arrangement: %w", err)
	}
	arr.FeeBase = valueobject.ServicerFeeBase(feeBase)
	return &arr, nil
}
