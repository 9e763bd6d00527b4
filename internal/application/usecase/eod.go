package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
)

// EODResult is the aggregate outcome of one end-of-day run.
type EODResult struct {
	AsOf        time.Time    `json:"as_of"`
	Accrual     BatchResult  `json:"accrual"`
	Delinquency BatchResult  `json:"delinquency"`
	ECL         *BatchResult `json:"ecl,omitempty"`
	Aggregate   BatchResult  `json:"aggregate"`

	ECLSummary *model.ECLPortfolioSummary `json:"ecl_summary,omitempty"`
}

// RunEODUseCase orchestrates accrual, then delinquency, then, on month-end,
// the ECL batch, over the full active book. Batches check cancellation
// between accounts and return partial results.
type RunEODUseCase struct {
	accrual     *RunAccrualBatchUseCase
	delinquency *RunDelinquencyBatchUseCase
	ecl         *RunMonthlyECLUseCase
	logger      *slog.Logger
}

// NewRunEODUseCase wires dependencies.
func NewRunEODUseCase(accrual *RunAccrualBatchUseCase, delinquency *RunDelinquencyBatchUseCase, ecl *RunMonthlyECLUseCase, logger *slog.Logger) *RunEODUseCase {
	return &RunEODUseCase{accrual: accrual, delinquency: delinquency, ecl: ecl, logger: logger}
}

// IsMonthEnd reports whether the date is the last day of its month.
func IsMonthEnd(d time.Time) bool {
	return d.AddDate(0, 0, 1).Month() != d.Month()
}

// Execute runs the day-end pipeline for the date.
func (uc *RunEODUseCase) Execute(ctx context.Context, asOf time.Time) (EODResult, error) {
	result := EODResult{AsOf: asOf}

	accrual, err := uc.accrual.Execute(ctx, asOf)
	if err != nil {
		return result, err
	}
	result.Accrual = accrual
	result.Aggregate.Merge(accrual)
	uc.logger.Info("eod accrual batch done",
		"as_of", asOf.Format("2006-01-02"),
		"processed", accrual.Processed, "failed", len(accrual.Failed))

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	delinquency, err := uc.delinquency.Execute(ctx, asOf)
	if err != nil {
		return result, err
	}
	result.Delinquency = delinquency
	result.Aggregate.Merge(delinquency)
	uc.logger.Info("eod delinquency batch done",
		"as_of", asOf.Format("2006-01-02"),
		"processed", delinquency.Processed, "failed", len(delinquency.Failed))

	if IsMonthEnd(asOf) {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		eclBatch, summary, err := uc.ecl.Execute(ctx, asOf)
		if err != nil {
			return result, err
		}
		result.ECL = &eclBatch
		result.ECLSummary = &summary
		result.Aggregate.Merge(eclBatch)
		uc.logger.Info("eod ecl batch done",
			"as_of", asOf.Format("2006-01-02"),
			"processed", eclBatch.Processed, "failed", len(eclBatch.Failed),
			"provision", summary.TotalProvision.String())
	}

	return result, nil
}
