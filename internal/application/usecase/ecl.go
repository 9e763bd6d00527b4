package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/port"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/service"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// RunMonthlyECLUseCase stages every active account under the IFRS 9 rules,
// writes provision rows and produces the portfolio summary.
type RunMonthlyECLUseCase struct {
	store   port.Store
	locker  port.AccountLocker
	cfg     model.ECLConfig
	workers int
}

// NewRunMonthlyECLUseCase wires dependencies.
func NewRunMonthlyECLUseCase(store port.Store, locker port.AccountLocker, cfg model.ECLConfig, workers int) *RunMonthlyECLUseCase {
	return &RunMonthlyECLUseCase{store: store, locker: locker, cfg: cfg, workers: workers}
}

// Execute runs the month-end batch: one transaction per account, then a
// summary row aggregated from the per-account results.
func (uc *RunMonthlyECLUseCase) Execute(ctx context.Context, asOf time.Time) (BatchResult, model.ECLPortfolioSummary, error) {
	ids, err := uc.store.Loans().ActiveIDs(ctx)
	if err != nil {
		return BatchResult{}, model.ECLPortfolioSummary{}, err
	}

	var (
		mu      sync.Mutex
		results []service.ECLResult
	)

	batch := runAccountBatch(ctx, ids, uc.workers, func(ctx context.Context, id uuid.UUID) error {
		release, err := uc.locker.Acquire(ctx, id)
		if err != nil {
			return err
		}
		defer release()

		var result service.ECLResult
		err = uc.store.InTx(ctx, func(ctx context.Context, s port.Store) error {
			acct, err := s.Loans().Get(ctx, id)
			if err != nil {
				return err
			}

			result = service.StageAndProvision(acct, uc.cfg, asOf)
			if result.StageMoved {
				if err := s.ECL().SaveStaging(ctx, result.Staging); err != nil {
					return err
				}
			}
			if err := s.ECL().InsertProvision(ctx, result.Provision); err != nil {
				return err
			}
			return s.Loans().Save(ctx, acct)
		})
		if err != nil {
			return err
		}

		mu.Lock()
		results = append(results, result)
		mu.Unlock()
		return nil
	})

	summary := buildPortfolioSummary(asOf, results)
	if err := uc.store.ECL().InsertSummary(ctx, summary); err != nil {
		return batch, summary, err
	}
	return batch, summary, nil
}

// buildPortfolioSummary rolls per-account results up by stage.
func buildPortfolioSummary(asOf time.Time, results []service.ECLResult) model.ECLPortfolioSummary {
	summary := model.ECLPortfolioSummary{
		ID:             uuid.New(),
		SummaryDate:    asOf,
		TotalExposure:  decimal.Zero,
		TotalProvision: decimal.Zero,
	}

	byStage := map[int]*model.ECLStageSummary{
		1: {Stage: 1, Exposure: decimal.Zero, Provision: decimal.Zero},
		2: {Stage: 2, Exposure: decimal.Zero, Provision: decimal.Zero},
		3: {Stage: 3, Exposure: decimal.Zero, Provision: decimal.Zero},
	}

	for _, r := range results {
		stage := byStage[r.Provision.Stage]
		stage.Loans++
		stage.Exposure = stage.Exposure.Add(r.Provision.EAD)
		stage.Provision = stage.Provision.Add(r.Provision.ClosingProvision)

		summary.TotalLoans++
		summary.TotalExposure = summary.TotalExposure.Add(r.Provision.EAD)
		summary.TotalProvision = summary.TotalProvision.Add(r.Provision.ClosingProvision)

		if r.StageMoved {
			if r.Staging.Stage > r.Staging.PreviousStage {
				summary.Downgrades++
			} else {
				summary.Upgrades++
			}
		}
	}

	summary.TotalExposure = money.Round(summary.TotalExposure)
	summary.TotalProvision = money.Round(summary.TotalProvision)
	for _, stage := range []int{1, 2, 3} {
		s := byStage[stage]
		s.Exposure = money.Round(s.Exposure)
		s.Provision = money.Round(s.Provision)
		summary.Stages = append(summary.Stages, *s)
	}
	return summary
}
