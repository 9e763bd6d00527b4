package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshitrathi14/LOS-LMS/internal/domain/model"
	"github.com/harshitrathi14/LOS-LMS/internal/domain/valueobject"
)

func participation(partnerID uuid.UUID, name, share string) model.LoanParticipation {
	return model.LoanParticipation{
		ID:           uuid.New(),
		PartnerID:    partnerID,
		PartnerName:  name,
		SharePercent: dec(share),
		Active:       true,
	}
}

func TestSplitCollection_EightyTwenty(t *testing.T) {
	lenderID := uuid.New()
	originatorID := uuid.New()

	lender := participation(lenderID, "Lender", "80")
	originator := participation(originatorID, "Originator", "20")

	servicer := &model.ServicerArrangement{
		ID:         uuid.New(),
		ServicerID: originatorID,
		LenderID:   lenderID,
		FeeRatePct: dec("0.5"),
		FeeBase:    valueobject.FeeBaseOutstandingPrincipal,
		// Yield equals the borrower rate: no excess spread withheld.
		LenderYieldPct: dec("18"),
	}

	postings, err := SplitCollection(SplitInput{
		Components: CollectionComponents{
			Principal: dec("10000"),
			Interest:  dec("1200"),
			Fees:      decimal.Zero,
		},
		Participations:       []model.LoanParticipation{lender, originator},
		Servicer:             servicer,
		BorrowerRatePct:      dec("18"),
		OutstandingPrincipal: dec("100000"),
		PeriodDays:           30,
		EntryDate:            d(2025, 3, 1),
	})
	require.NoError(t, err)

	byKey := map[string]decimal.Decimal{}
	total := decimal.Zero
	for _, p := range postings {
		byKey[p.PartnerID.String()+"/"+string(p.EntryType)] = p.Amount
		total = total.Add(p.Amount)
	}

	// Principal split 80/20.
	assert.True(t, byKey[lenderID.String()+"/principal_collection"].Equal(dec("8000")))
	assert.True(t, byKey[originatorID.String()+"/principal_collection"].Equal(dec("2000")))

	// Servicer fee 100000 * 0.5% * 30/365 = 41.10 withheld from the lender's
	// interest and credited to the servicer.
	assert.True(t, byKey[lenderID.String()+"/interest_collection"].Equal(dec("918.90")),
		"lender interest %s", byKey[lenderID.String()+"/interest_collection"])
	assert.True(t, byKey[originatorID.String()+"/interest_collection"].Equal(dec("240")))
	assert.True(t, byKey[originatorID.String()+"/servicer_income"].Equal(dec("41.10")))

	// Conservation of collected cash.
	assert.True(t, total.Equal(dec("11200")), "total postings %s", total)
}

func TestSplitCollection_ExcessSpread(t *testing.T) {
	lenderID := uuid.New()
	originatorID := uuid.New()

	servicer := &model.ServicerArrangement{
		ID:             uuid.New(),
		ServicerID:     originatorID,
		LenderID:       lenderID,
		FeeRatePct:     decimal.Zero,
		FeeBase:        valueobject.FeeBaseOutstandingPrincipal,
		LenderYieldPct: dec("12"), // borrower pays 18: a third of interest is excess
	}

	postings, err := SplitCollection(SplitInput{
		Components:           CollectionComponents{Principal: decimal.Zero, Interest: dec("900"), Fees: decimal.Zero},
		Participations:       []model.LoanParticipation{participation(lenderID, "Lender", "100")},
		Servicer:             servicer,
		BorrowerRatePct:      dec("18"),
		OutstandingPrincipal: dec("100000"),
		PeriodDays:           30,
		EntryDate:            d(2025, 3, 1),
	})
	require.NoError(t, err)

	var lenderInterest, servicerIncome decimal.Decimal
	for _, p := range postings {
		switch p.EntryType {
		case valueobject.LedgerInterestCollection:
			lenderInterest = p.Amount
		case valueobject.LedgerServicerIncome:
			servicerIncome = p.Amount
		}
	}

	// 900 * (18-12)/18 = 300 withheld.
	assert.True(t, servicerIncome.Equal(dec("300")), "withheld %s", servicerIncome)
	assert.True(t, lenderInterest.Equal(dec("600")), "net to lender %s", lenderInterest)
}

func TestSplitCollection_SharesMustSumToHundred(t *testing.T) {
	_, err := SplitCollection(SplitInput{
		Components:     CollectionComponents{Principal: dec("100")},
		Participations: []model.LoanParticipation{participation(uuid.New(), "A", "70")},
		EntryDate:      d(2025, 3, 1),
	})
	assert.Error(t, err)
}

func TestSplitCollection_LastPartnerAbsorbsResidual(t *testing.T) {
	a := participation(uuid.New(), "A", "33.3333")
	b := participation(uuid.New(), "B", "33.3333")
	c := participation(uuid.New(), "C", "33.3334")

	postings, err := SplitCollection(SplitInput{
		Components:     CollectionComponents{Principal: dec("100")},
		Participations: []model.LoanParticipation{a, b, c},
		EntryDate:      d(2025, 3, 1),
	})
	require.NoError(t, err)

	total := decimal.Zero
	for _, p := range postings {
		total = total.Add(p.Amount)
	}
	assert.True(t, total.Equal(dec("100")), "total %s", total)
}

func TestServicerFee_LenderShareBase(t *testing.T) {
	arr := &model.ServicerArrangement{
		FeeRatePct: dec("0.5"),
		FeeBase:    valueobject.FeeBaseLenderShare,
	}
	fee := ServicerFee(arr, dec("100000"), dec("80"), 30)
	// 80000 * 0.5% * 30/365 = 32.88
	assert.True(t, fee.Equal(dec("32.88")), "fee %s", fee)
}

func TestExcessSpread_Boundaries(t *testing.T) {
	assert.True(t, ExcessSpread(dec("1000"), decimal.Zero, dec("10")).IsZero())
	assert.True(t, ExcessSpread(dec("1000"), dec("12"), dec("12")).IsZero())
	assert.True(t, ExcessSpread(dec("1000"), dec("12"), dec("15")).IsZero())
}

func TestDisbursementPostings(t *testing.T) {
	a := participation(uuid.New(), "A", "80")
	b := participation(uuid.New(), "B", "20")

	postings := DisbursementPostings(dec("500000"), []model.LoanParticipation{a, b})
	require.Len(t, postings, 2)
	assert.True(t, postings[0].Amount.Equal(dec("-400000")))
	assert.True(t, postings[1].Amount.Equal(dec("-100000")))
}
