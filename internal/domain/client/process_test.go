package client

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func financingWith(sources ...FundingSource) Financing {
	var f Financing
	for _, s := range sources {
		t := SourceTerms{Applies: true, Amount: decimal.NewFromInt(10000000)}
		switch s {
		case SourceDownPayment:
			f.DownPayment = t
		case SourceCredit:
			f.Credit = t
		case SourceHousingSubsidy:
			f.HousingSubsidy = t
		case SourceCompensationSubsidy:
			f.CompensationSubsidy = t
		}
	}
	return f
}

func TestNewProcess_OnlyApplicableSteps(t *testing.T) {
	p := NewProcess(financingWith(SourceDownPayment))

	assert.Contains(t, p, StepPromiseSent)
	assert.Contains(t, p, StepSalesInvoice)
	assert.NotContains(t, p, StepCreditDisbursement)
	assert.NotContains(t, p, StepAppraisalDone)

	withCredit := NewProcess(financingWith(SourceDownPayment, SourceCredit))
	assert.Contains(t, withCredit, StepCreditDisbursementRequest)
	assert.Contains(t, withCredit, StepCreditDisbursement)
	assert.Len(t, withCredit[StepCreditDisbursement].Evidence, 1)
}

func TestDisbursementMap(t *testing.T) {
	_, ok := DisbursementStepsFor(SourceDownPayment)
	assert.False(t, ok)

	m, ok := DisbursementStepsFor(SourceCredit)
	require.True(t, ok)
	assert.Equal(t, StepCreditDisbursementRequest, m.RequestStep)
	assert.Equal(t, StepCreditDisbursement, m.DisbursementStep)

	source, ok := SourceForDisbursementStep(StepHousingSubsidyDisbursement)
	require.True(t, ok)
	assert.Equal(t, SourceHousingSubsidy, source)

	for _, s := range AllFundingSources() {
		if m, ok := DisbursementStepsFor(s); ok {
			def, found := LookupStep(m.DisbursementStep)
			require.True(t, found)
			assert.True(t, def.PaymentDriven, s)
		}
	}
}

func TestProcess_SyncKeepsTouchedSteps(t *testing.T) {
	p := NewProcess(financingWith(SourceDownPayment, SourceCredit))
	p[StepAppraisalDocsSent].complete(time.Now(), "ok", "ana")

	added, removed := p.Sync(financingWith(SourceDownPayment, SourceHousingSubsidy))

	assert.Contains(t, added, StepHousingSubsidyRequest)
	assert.Contains(t, added, StepHousingSubsidyDisbursement)
	assert.Contains(t, removed, StepCreditDisbursement)
	assert.NotContains(t, removed, StepAppraisalDocsSent)
	assert.Contains(t, p, StepAppraisalDocsSent)
}

func TestFinancing_AgreedIsZeroWhenNotApplicable(t *testing.T) {
	f := Financing{Credit: SourceTerms{Applies: false, Amount: decimal.NewFromInt(5)}}
	assert.True(t, f.Agreed(SourceCredit).IsZero())
	assert.True(t, f.Normalized().Credit.Amount.IsZero())

	assert.Error(t, Financing{}.Validate())
	assert.Error(t, Financing{Credit: SourceTerms{Applies: true}}.Validate())
	assert.NoError(t, financingWith(SourceCredit).Validate())
	assert.True(t, financingWith(SourceCredit, SourceDownPayment).Total().Equal(decimal.NewFromInt(20000000)))
}
