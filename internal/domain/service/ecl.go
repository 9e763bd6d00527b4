package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/pkg/money"
)

// StageFor assigns the ECL stage. Priority, first match wins:
// write-off -> 3, NPA -> 3, DPD beyond stage-2 bound -> 3,
// restructured -> 2, DPD beyond stage-1 bound -> 2, SICR -> 2, else 1.
func StageFor(acct *model.LoanAccount, cfg model.ECLConfig) (int, string) {
	switch {
	case acct.IsWrittenOff && cfg.WriteOffToStage3:
		return 3, "write_off"
	case acct.IsNPA && cfg.NPAToStage3:
		return 3, "npa"
	case acct.DPD > cfg.Stage2MaxDPD:
		return 3, "dpd"
	case acct.IsRestructured && cfg.RestructureToStage2:
		return 2, "restructure"
	case acct.DPD > cfg.Stage1MaxDPD:
		return 2, "dpd"
	case acct.SICRFlag:
		return 2, "sicr"
	default:
		return 1, "performing"
	}
}

// RiskParams resolves PD and LGD percentages for a stage: the 12-month PD
// for stage 1, lifetime for stage 2, 100% for stage 3; LGD per
// secured/unsecured.
func RiskParams(acct *model.LoanAccount, cfg model.ECLConfig, stage int) (pd, lgd decimal.Decimal) {
	switch stage {
	case 3:
		pd = cfg.PDStage3Pct
	case 2:
		pd = cfg.PDStage2Pct
	default:
		pd = cfg.PDStage1Pct
	}
	lgd = cfg.LGDUnsecuredPct
	if acct.Secured {
		lgd = cfg.LGDSecuredPct
	}
	return pd, lgd
}

// ExposureAtDefault is the principal outstanding plus any committed undrawn
// amount, which is zero for the term loans serviced here.
func ExposureAtDefault(acct *model.LoanAccount) decimal.Decimal {
	return acct.PrincipalOutstanding
}

// ComputeECL is EAD x PD x LGD rounded to the cent.
func ComputeECL(ead, pdPct, lgdPct decimal.Decimal) decimal.Decimal {
	return money.Round(ead.Mul(money.Fraction(pdPct)).Mul(money.Fraction(lgdPct)))
}

// ECLResult bundles a staging decision and its provision row.
type ECLResult struct {
	Staging    model.ECLStaging
	Provision  model.ECLProvision
	StageMoved bool
}

// StageAndProvision runs the full month-end calculation for one account:
// stage assignment, EAD/PD/LGD resolution, provision charge or release
// against the opening provision, and the account-level stage/provision
// update.
func StageAndProvision(acct *model.LoanAccount, cfg model.ECLConfig, asOf time.Time) ECLResult {
	stage, reason := StageFor(acct, cfg)
	pd, lgd := RiskParams(acct, cfg, stage)
	ead := ExposureAtDefault(acct)
	ecl := ComputeECL(ead, pd, lgd)

	opening := acct.ECLProvision
	charge := money.NonNegative(ecl.Sub(opening))
	release := money.NonNegative(opening.Sub(ecl))

	previousStage := acct.ECLStage
	if previousStage == 0 {
		previousStage = 1
	}

	result := ECLResult{
		Staging: model.ECLStaging{
			ID:             uuid.New(),
			LoanAccountID:  acct.ID,
			Stage:          stage,
			PreviousStage:  previousStage,
			Reason:         reason,
			EffectiveDate:  asOf,
			PDPct:          pd,
			LGDPct:         lgd,
			EAD:            ead,
			DPDAtStaging:   acct.DPD,
			IsRestructured: acct.IsRestructured,
			IsNPA:          acct.IsNPA,
			IsWrittenOff:   acct.IsWrittenOff,
		},
		Provision: model.ECLProvision{
			ID:               uuid.New(),
			LoanAccountID:    acct.ID,
			ProvisionDate:    asOf,
			Stage:            stage,
			EAD:              ead,
			PDPct:            pd,
			LGDPct:           lgd,
			ECLAmount:        ecl,
			OpeningProvision: opening,
			Charge:           charge,
			Release:          release,
			ClosingProvision: ecl,
		},
		StageMoved: previousStage != stage,
	}

	acct.ECLStage = stage
	acct.ECLProvision = ecl
	staged := asOf
	acct.ECLStagedAt = &staged
	return result
}
