package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// Delinquency
// ---------------------------------------------------------------------------

// Bucket is a delinquency bucket label derived from DPD.
type Bucket string

const (
	BucketCurrent        Bucket = "current"
	BucketSMA0           Bucket = "sma-0"
	BucketSMA1           Bucket = "sma-1"
	BucketSMA2           Bucket = "sma-2"
	BucketNPASubstandard Bucket = "npa_substandard"
	BucketNPADoubtful    Bucket = "npa_doubtful"
	BucketNPALoss        Bucket = "npa_loss"
)

// NPACategory is the regulatory ageing category of an NPA account.
type NPACategory string

const (
	NPACategoryNone        NPACategory = ""
	NPACategorySubstandard NPACategory = "substandard"
	NPACategoryDoubtful    NPACategory = "doubtful"
	NPACategoryLoss        NPACategory = "loss"
)

// AccrualStatus is the posting state of a daily accrual row.
type AccrualStatus string

const (
	AccrualAccrued  AccrualStatus = "accrued"
	AccrualPosted   AccrualStatus = "posted"
	AccrualReversed AccrualStatus = "reversed"
)

// ---------------------------------------------------------------------------
// Restructure
// ---------------------------------------------------------------------------

// RestructureType selects which terms a restructure modifies.
type RestructureType struct {
	value string
}

var (
	RestructureRateReduction    = RestructureType{value: "rate_reduction"}
	RestructureTenureExtension  = RestructureType{value: "tenure_extension"}
	RestructurePrincipalHaircut = RestructureType{value: "principal_haircut"}
	RestructureEMIRescheduling  = RestructureType{value: "emi_rescheduling"}
	RestructureCombination      = RestructureType{value: "combination"}
)

var validRestructureTypes = map[string]RestructureType{
	"rate_reduction":    RestructureRateReduction,
	"tenure_extension":  RestructureTenureExtension,
	"principal_haircut": RestructurePrincipalHaircut,
	"emi_rescheduling":  RestructureEMIRescheduling,
	"combination":       RestructureCombination,
}

// NewRestructureType creates a RestructureType from a raw string.
func NewRestructureType(s string) (RestructureType, error) {
	v, ok := validRestructureTypes[s]
	if !ok {
		return RestructureType{}, fmt.Errorf("invalid restructure type: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (t RestructureType) String() string { return t.value }

// IsZero returns true if the type has not been initialised.
func (t RestructureType) IsZero() bool { return t.value == "" }

// ---------------------------------------------------------------------------
// Prepayment and closure
// ---------------------------------------------------------------------------

// PrepaymentAction selects how a prepayment reshapes the schedule.
type PrepaymentAction struct {
	value string
}

var (
	PrepaymentReduceEMI    = PrepaymentAction{value: "reduce_emi"}
	PrepaymentReduceTenure = PrepaymentAction{value: "reduce_tenure"}
	PrepaymentForeclosure  = PrepaymentAction{value: "foreclosure"}
)

var validPrepaymentActions = map[string]PrepaymentAction{
	"reduce_emi":    PrepaymentReduceEMI,
	"reduce_tenure": PrepaymentReduceTenure,
	"foreclosure":   PrepaymentForeclosure,
}

// NewPrepaymentAction creates a PrepaymentAction from a raw string.
func NewPrepaymentAction(s string) (PrepaymentAction, error) {
	v, ok := validPrepaymentActions[s]
	if !ok {
		return PrepaymentAction{}, fmt.Errorf("invalid prepayment action: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (a PrepaymentAction) String() string { return a.value }

// IsZero returns true if the action has not been initialised.
func (a PrepaymentAction) IsZero() bool { return a.value == "" }

// ClosureType records how an account reached its terminal state.
type ClosureType string

const (
	ClosureNormal      ClosureType = "normal"
	ClosureSettlement  ClosureType = "settlement"
	ClosureForeclosure ClosureType = "foreclosure"
	ClosureWriteOff    ClosureType = "write_off"
)

// ---------------------------------------------------------------------------
// FLDG
// ---------------------------------------------------------------------------

// FLDGType distinguishes first-loss from second-loss guarantees.
type FLDGType string

const (
	FLDGFirstLoss  FLDGType = "first_loss"
	FLDGSecondLoss FLDGType = "second_loss"
)

// FLDGTrigger records what event triggered a claim.
type FLDGTrigger string

const (
	FLDGTriggerDPD      FLDGTrigger = "dpd_threshold"
	FLDGTriggerNPA      FLDGTrigger = "npa"
	FLDGTriggerWriteOff FLDGTrigger = "write_off"
)

// ---------------------------------------------------------------------------
// Partner ledger
// ---------------------------------------------------------------------------

// LedgerEntryType labels a partner-ledger posting.
type LedgerEntryType string

const (
	LedgerDisbursement        LedgerEntryType = "disbursement"
	LedgerPrincipalCollection LedgerEntryType = "principal_collection"
	LedgerInterestCollection  LedgerEntryType = "interest_collection"
	LedgerFeeCollection       LedgerEntryType = "fee_collection"
	LedgerServicerIncome      LedgerEntryType = "servicer_income"
	LedgerFLDGRecovery        LedgerEntryType = "fldg_recovery_excess"
)

// ServicerFeeBase makes the servicer-fee base explicit on the arrangement.
type ServicerFeeBase string

const (
	FeeBaseOutstandingPrincipal ServicerFeeBase = "outstanding_principal"
	FeeBaseLenderShare          ServicerFeeBase = "lender_share_outstanding"
)
