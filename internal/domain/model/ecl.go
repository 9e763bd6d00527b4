package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ECLConfig carries the staging boundaries and risk parameters for the
// IFRS 9 provision run. PD/LGD values are percentages.
type ECLConfig struct {
	Stage1MaxDPD int // beyond this -> stage 2
	Stage2MaxDPD int // beyond this -> stage 3

	PDStage1Pct     decimal.Decimal // 12-month PD
	PDStage2Pct     decimal.Decimal // lifetime PD
	PDStage3Pct     decimal.Decimal // 100 by convention
	LGDSecuredPct   decimal.Decimal
	LGDUnsecuredPct decimal.Decimal

	RestructureToStage2 bool
	NPAToStage3         bool
	WriteOffToStage3    bool
}

// DefaultECLConfig mirrors the standard regulatory parameterisation.
func DefaultECLConfig() ECLConfig {
	return ECLConfig{
		Stage1MaxDPD:        30,
		Stage2MaxDPD:        90,
		PDStage1Pct:         decimal.RequireFromString("0.5"),
		PDStage2Pct:         decimal.RequireFromString("5"),
		PDStage3Pct:         decimal.NewFromInt(100),
		LGDSecuredPct:       decimal.NewFromInt(45),
		LGDUnsecuredPct:     decimal.NewFromInt(65),
		RestructureToStage2: true,
		NPAToStage3:         true,
		WriteOffToStage3:    true,
	}
}

// ECLStaging records an account's current stage with the previous stage and
// the transition reason.
type ECLStaging struct {
	ID            uuid.UUID
	LoanAccountID uuid.UUID

	Stage         int
	PreviousStage int
	Reason        string
	EffectiveDate time.Time

	PDPct  decimal.Decimal
	LGDPct decimal.Decimal
	EAD    decimal.Decimal

	DPDAtStaging   int
	IsRestructured bool
	IsNPA          bool
	IsWrittenOff   bool
}

// ECLProvision is one month-end provision row.
type ECLProvision struct {
	ID            uuid.UUID
	LoanAccountID uuid.UUID
	ProvisionDate time.Time

	Stage  int
	EAD    decimal.Decimal
	PDPct  decimal.Decimal
	LGDPct decimal.Decimal

	ECLAmount        decimal.Decimal
	OpeningProvision decimal.Decimal
	Charge           decimal.Decimal
	Release          decimal.Decimal
	ClosingProvision decimal.Decimal
}

// ECLStageSummary aggregates one stage in the portfolio summary.
type ECLStageSummary struct {
	Stage     int
	Loans     int
	Exposure  decimal.Decimal
	Provision decimal.Decimal
}

// ECLPortfolioSummary is the month-end roll-up across the active book.
type ECLPortfolioSummary struct {
	ID          uuid.UUID
	SummaryDate time.Time

	TotalLoans     int
	TotalExposure  decimal.Decimal
	TotalProvision decimal.Decimal
	Stages         []ECLStageSummary

	Upgrades   int
	Downgrades int
}
