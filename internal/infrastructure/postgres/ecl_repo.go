package postgres

import (
	"context"
	"fmt"

	pkgpostgres "github.com/harshitrathi14/LOS-LMS/pkg/postgres"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
)

// ECLRepo persists staging decisions, provisions and portfolio summaries.
type ECLRepo struct {
	q pkgpostgres.Querier
}

// SaveStaging upserts the account's staging record, keeping the previous
// stage and transition reason.
func (r *ECLRepo) SaveStaging(ctx context.Context, s model.ECLStaging) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ecl_stagings
			(id, loan_account_id, stage, previous_stage, reason, effective_date,
			 pd, lgd, ead, dpd_at_staging, is_restructured, is_npa, is_written_off)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (loan_account_id) DO UPDATE SET
			stage           = EXCLUDED.stage,
			previous_stage  = EXCLUDED.previous_stage,
			reason          = EXCLUDED.reason,
			effective_date  = EXCLUDED.effective_date,
			pd              = EXCLUDED.pd,
			lgd             = EXCLUDED.lgd,
			ead             = EXCLUDED.ead,
			dpd_at_staging  = EXCLUDED.dpd_at_staging,
			is_restructured = EXCLUDED.is_restructured,
			is_npa          = EXCLUDED.is_npa,
			is_written_off  = EXCLUDED.is_written_off`,
		s.ID, s.LoanAccountID, s.Stage, s.PreviousStage, s.Reason, s.EffectiveDate,
		s.PDPct, s.LGDPct, s.EAD, s.DPDAtStaging, s.IsRestructured, s.IsNPA, s.IsWrittenOff,
	)
	if err != nil {
		return fmt.Errorf("save ecl staging: %w", err)
	}
	return nil
}

// InsertProvision writes a month-end provision row.
func (r *ECLRepo) InsertProvision(ctx context.Context, p model.ECLProvision) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ecl_provisions
			(id, loan_account_id, provision_date, stage, ead, pd, lgd,
			 ecl_amount, opening_provision, charge, release, closing_provision)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.LoanAccountID, p.ProvisionDate, p.Stage, p.EAD, p.PDPct, p.LGDPct,
		p.ECLAmount, p.OpeningProvision, p.Charge, p.Release, p.ClosingProvision,
	)
	if err != nil {
		return fmt.Errorf("insert ecl provision: %w", err)
	}
	return nil
}

// InsertSummary writes the month-end portfolio roll-up, one row per stage
// plus the total line flattened into the summary table.
func (r *ECLRepo) InsertSummary(ctx context.Context, s model.ECLPortfolioSummary) error {
	stage := func(n int) model.ECLStageSummary {
		for _, st := range s.Stages {
			if st.Stage == n {
				return st
			}
		}
		return model.ECLStageSummary{Stage: n}
	}
	s1, s2, s3 := stage(1), stage(2), stage(3)

	_, err := r.q.Exec(ctx, `
		INSERT INTO ecl_portfolio_summaries
			(id, summary_date, total_loans, total_exposure, total_provision,
			 stage1_loans, stage1_exposure, stage1_provision,
			 stage2_loans, stage2_exposure, stage2_provision,
			 stage3_loans, stage3_exposure, stage3_provision,
			 upgrades, downgrades)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (summary_date) DO UPDATE SET
			total_loans      = EXCLUDED.total_loans,
			total_exposure   = EXCLUDED.total_exposure,
			total_provision  = EXCLUDED.total_provision,
			stage1_loans     = EXCLUDED.stage1_loans,
			stage1_exposure  = EXCLUDED.stage1_exposure,
			stage1_provision = EXCLUDED.stage1_provision,
			stage2_loans     = EXCLUDED.stage2_loans,
			stage2_exposure  = EXCLUDED.stage2_exposure,
			stage2_provision = EXCLUDED.stage2_provision,
			stage3_loans     = EXCLUDED.stage3_loans,
			stage3_exposure  = EXCLUDED.stage3_exposure,
			stage3_provision = EXCLUDED.stage3_provision,
			upgrades         = EXCLUDED.upgrades,
			downgrades       = EXCLUDED.downgrades`,
		s.ID, s.SummaryDate, s.TotalLoans, s.TotalExposure, s.TotalProvision,
		s1.Loans, s1.Exposure, s1.Provision,
		s2.Loans, s2.Exposure, s2.Provision,
		s3.Loans, s3.Exposure, s3.Provision,
		s.Upgrades, s.Downgrades,
	)
	if err != nil {
		return fmt.Errorf("insert ecl summary: %w", err)
	}
	return nil
}
