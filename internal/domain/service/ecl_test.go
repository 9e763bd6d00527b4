package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
)

func TestStageFor_Priority(t *testing.T) {
	cfg := model.DefaultECLConfig()

	cases := []struct {
		name   string
		mutate func(*model.LoanAccount)
		stage  int
		reason string
	}{
		{"performing", func(a *model.LoanAccount) {}, 1, "performing"},
		{"dpd over 30", func(a *model.LoanAccount) { a.DPD = 31 }, 2, "dpd"},
		{"sicr flag", func(a *model.LoanAccount) { a.SICRFlag = true }, 2, "sicr"},
		{"restructured", func(a *model.LoanAccount) { a.IsRestructured = true }, 2, "restructure"},
		{"dpd over 90", func(a *model.LoanAccount) { a.DPD = 91 }, 3, "dpd"},
		{"npa", func(a *model.LoanAccount) { a.IsNPA = true }, 3, "npa"},
		{"written off", func(a *model.LoanAccount) { a.IsWrittenOff = true }, 3, "write_off"},
		// Write-off outranks every other condition.
		{"written off while restructured", func(a *model.LoanAccount) {
			a.IsWrittenOff = true
			a.IsRestructured = true
			a.DPD = 10
		}, 3, "write_off"},
		// A restructured account stays stage >= 2 regardless of DPD.
		{"restructured current", func(a *model.LoanAccount) {
			a.IsRestructured = true
			a.DPD = 0
		}, 2, "restructure"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			acct := activeAccount("100000")
			tc.mutate(acct)
			stage, reason := StageFor(acct, cfg)
			assert.Equal(t, tc.stage, stage)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestComputeECL(t *testing.T) {
	// 100000 * 0.5% * 65% = 325.00
	got := ComputeECL(dec("100000"), dec("0.5"), dec("65"))
	assert.True(t, got.Equal(dec("325")), "ecl %s", got)

	// Stage 3: PD 100%.
	got = ComputeECL(dec("100000"), dec("100"), dec("65"))
	assert.True(t, got.Equal(dec("65000")))
}

func TestRiskParams(t *testing.T) {
	cfg := model.DefaultECLConfig()
	acct := activeAccount("100000")

	pd, lgd := RiskParams(acct, cfg, 1)
	assert.True(t, pd.Equal(dec("0.5")))
	assert.True(t, lgd.Equal(dec("65")))

	pd, _ = RiskParams(acct, cfg, 2)
	assert.True(t, pd.Equal(dec("5")))

	pd, _ = RiskParams(acct, cfg, 3)
	assert.True(t, pd.Equal(dec("100")))

	acct.Secured = true
	_, lgd = RiskParams(acct, cfg, 1)
	assert.True(t, lgd.Equal(dec("45")))
}

func TestStageAndProvision_ChargeAndRelease(t *testing.T) {
	cfg := model.DefaultECLConfig()
	acct := activeAccount("100000")

	first := StageAndProvision(acct, cfg, d(2025, 1, 31))
	assert.Equal(t, 1, first.Provision.Stage)
	assert.True(t, first.Provision.ECLAmount.Equal(dec("325")))
	assert.True(t, first.Provision.Charge.Equal(dec("325")))
	assert.True(t, first.Provision.Release.IsZero())
	assert.False(t, first.StageMoved)
	assert.Equal(t, 1, acct.ECLStage)

	// Restructure forces stage 2 next month-end; provision is charged up.
	acct.IsRestructured = true
	second := StageAndProvision(acct, cfg, d(2025, 2, 28))
	assert.Equal(t, 2, second.Provision.Stage)
	assert.True(t, second.StageMoved)
	assert.Equal(t, 1, second.Staging.PreviousStage)
	assert.Equal(t, "restructure", second.Staging.Reason)
	// 100000 * 5% * 65% = 3250, opening 325.
	assert.True(t, second.Provision.ECLAmount.Equal(dec("3250")))
	assert.True(t, second.Provision.Charge.Equal(dec("2925")))
	assert.Equal(t, 2, acct.ECLStage)

	// Curing the outstanding releases provision; the restructure flag keeps
	// the account at stage 2.
	acct.PrincipalOutstanding = dec("50000")
	third := StageAndProvision(acct, cfg, d(2025, 3, 31))
	assert.Equal(t, 2, third.Provision.Stage)
	assert.True(t, third.Provision.ECLAmount.Equal(dec("1625")))
	assert.True(t, third.Provision.Release.Equal(dec("1625")))
}

func TestStageAndProvision_TerminalFlags(t *testing.T) {
	cfg := model.DefaultECLConfig()

	writtenOff := activeAccount("100000")
	writtenOff.IsWrittenOff = true
	result := StageAndProvision(writtenOff, cfg, d(2025, 1, 31))
	assert.Equal(t, 3, result.Provision.Stage, "written-off accounts must be stage 3")

	npa := activeAccount("100000")
	npa.IsNPA = true
	result = StageAndProvision(npa, cfg, d(2025, 1, 31))
	assert.Equal(t, 3, result.Provision.Stage)
}
