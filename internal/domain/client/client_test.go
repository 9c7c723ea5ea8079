package client

import (
	"testing"
	"time"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, sources ...FundingSource) *Client {
	t.Helper()
	c, err := NewClient(PersonalData{
		FirstName:      "Ana",
		LastName:       "Gómez",
		DocumentNumber: "1020304050",
	}, uuid.New(), uuid.New(), financingWith(sources...))
	require.NoError(t, err)
	return c
}

func evidenceFor(key StepKey) map[string]string {
	def, _ := LookupStep(key)
	out := make(map[string]string)
	for _, slot := range def.Evidence {
		out[slot.ID] = "https://files.example/" + slot.ID
	}
	return out
}

func completeInOrder(t *testing.T, c *Client, keys ...StepKey) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, c.CompleteStep(k, time.Now(), evidenceFor(k), "ana"), k)
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(PersonalData{FirstName: "Ana"}, uuid.New(), uuid.New(), financingWith(SourceDownPayment))
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInput))

	c := newTestClient(t, SourceDownPayment, SourceCredit)
	assert.Equal(t, StatusActive, c.Status)
	assert.Equal(t, "Ana Gómez", c.DisplayName())
	assert.Contains(t, c.Process, StepCreditDisbursement)
}

func TestClient_RequestStepPrerequisite(t *testing.T) {
	c := newTestClient(t, SourceDownPayment, SourceCredit)

	assert.NoError(t, c.EnsureRequestStepCompleted(SourceDownPayment))

	err := c.EnsureRequestStepCompleted(SourceCredit)
	assert.True(t, shared.IsDomainError(err, CodeRequestPending))

	c.Process[StepCreditDisbursementRequest].Completed = true
	assert.NoError(t, c.EnsureRequestStepCompleted(SourceCredit))
}

func TestClient_DisbursementStepLifecycle(t *testing.T) {
	c := newTestClient(t, SourceDownPayment, SourceCredit)
	paidOn := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	step, ok := c.CompleteDisbursementStep(SourceCredit, paidOn, "https://files.example/r.pdf", "Abono #1", "ana")
	require.True(t, ok)
	assert.Equal(t, StepCreditDisbursement, step)

	state := c.Process[StepCreditDisbursement]
	assert.True(t, state.Completed)
	assert.Equal(t, paidOn, *state.Date)
	assert.Equal(t, "https://files.example/r.pdf", state.Evidence["desembolsoCreditoSoporte"].URL)
	assert.Len(t, state.Activity, 1)

	_, ok = c.ReopenDisbursementStep(SourceCredit, "Abono anulado", "ana")
	require.True(t, ok)
	assert.False(t, state.Completed)
	assert.Nil(t, state.Date)
	assert.Equal(t, "https://files.example/r.pdf", state.Evidence["desembolsoCreditoSoporte"].URL)
	assert.Len(t, state.Activity, 2)

	_, ok = c.CompleteDisbursementStep(SourceDownPayment, paidOn, "", "", "ana")
	assert.False(t, ok)
}

func TestClient_CompleteStep(t *testing.T) {
	c := newTestClient(t, SourceDownPayment, SourceCredit)

	t.Run("requires evidence", func(t *testing.T) {
		err := c.CompleteStep(StepPromiseSent, time.Now(), nil, "ana")
		assert.True(t, shared.IsDomainError(err, CodeMissingEvidence))
	})

	t.Run("enforces order", func(t *testing.T) {
		err := c.CompleteStep(StepPromiseReceived, time.Now(), evidenceFor(StepPromiseReceived), "ana")
		assert.True(t, shared.IsDomainError(err, CodeStepOrder))
	})

	t.Run("rejects payment driven steps", func(t *testing.T) {
		err := c.CompleteStep(StepCreditDisbursement, time.Now(), evidenceFor(StepCreditDisbursement), "ana")
		assert.True(t, shared.IsDomainError(err, CodePaymentDrivenStep))
	})

	t.Run("rejects steps that do not apply", func(t *testing.T) {
		err := c.CompleteStep(StepHousingSubsidyRequest, time.Now(), evidenceFor(StepHousingSubsidyRequest), "ana")
		assert.True(t, shared.IsDomainError(err, CodeStepNotApplicable))
	})

	t.Run("completes in order", func(t *testing.T) {
		completeInOrder(t, c, StepPromiseSent, StepPromiseReceived)
		assert.True(t, c.Process.IsCompleted(StepPromiseReceived))
		assert.Equal(t, StepPromiseReceived, DeriveClientStatus(c).Step)
	})
}

func TestClient_TerminalStepWaitsForDisbursements(t *testing.T) {
	c := newTestClient(t, SourceDownPayment, SourceCredit)
	completeInOrder(t, c,
		StepPromiseSent, StepPromiseReceived, StepAppraisalDocsSent, StepAppraisalDone,
		StepDeedSent, StepDeedReceived, StepRatificationLetter, StepRegistrationSlip,
		StepCreditDisbursementRequest,
	)

	err := c.CompleteStep(StepSalesInvoice, time.Now(), evidenceFor(StepSalesInvoice), "ana")
	assert.True(t, shared.IsDomainError(err, CodeStepOrder))

	c.CompleteDisbursementStep(SourceCredit, time.Now(), "", "Abono #1", "ana")
	require.NoError(t, c.CompleteStep(StepSalesInvoice, time.Now(), evidenceFor(StepSalesInvoice), "ana"))
	assert.True(t, c.IsProcessClosed())
}

func TestClient_ReopenStep(t *testing.T) {
	c := newTestClient(t, SourceDownPayment, SourceCredit)
	completeInOrder(t, c, StepPromiseSent)

	assert.True(t, shared.IsDomainError(c.ReopenStep(StepPromiseSent, "", "ana", false), shared.CodeInvalidInput))
	assert.True(t, shared.IsDomainError(c.ReopenStep(StepDeedSent, "error", "ana", false), shared.CodeInvalidState))

	require.NoError(t, c.ReopenStep(StepPromiseSent, "documento ilegible", "ana", false))
	state := c.Process[StepPromiseSent]
	assert.False(t, state.Completed)
	assert.NotEmpty(t, state.Evidence["promesaEnviadaDoc"].URL)

	c.CompleteDisbursementStep(SourceCredit, time.Now(), "", "Abono #1", "ana")
	err := c.ReopenStep(StepCreditDisbursement, "error", "ana", true)
	assert.True(t, shared.IsDomainError(err, CodeActiveDisbursement))
}

func TestClient_Renunciation(t *testing.T) {
	c := newTestClient(t, SourceDownPayment)
	r, err := NewRenunciation(c, *c.HouseID, "Mz. A Casa 1", decimal.NewFromInt(1000), decimal.NewFromInt(200), "cambio de ciudad", "ana")
	require.NoError(t, err)
	assert.True(t, r.Refund.Equal(decimal.NewFromInt(800)))

	require.NoError(t, c.StartRenunciation(r.ID))
	assert.True(t, shared.IsDomainError(c.EnsureCanReceivePayments(), CodeRenunciationPending))
	assert.Equal(t, "Renuncia pendiente", DeriveClientStatus(c).Label)
	err = c.CompleteStep(StepPromiseSent, time.Now(), evidenceFor(StepPromiseSent), "ana")
	assert.True(t, shared.IsDomainError(err, CodeRenunciationPending))
	assert.False(t, c.Process.IsCompleted(StepPromiseSent))

	assert.True(t, shared.IsDomainError(r.Close("", "ana"), CodeMissingEvidence))
	require.NoError(t, r.Close("https://files.example/devolucion.pdf", "ana"))
	assert.Equal(t, RenunciationClosed, r.Status)

	c.CompleteRenunciation()
	assert.Equal(t, StatusRenounced, c.Status)
	assert.Nil(t, c.HouseID)
	assert.True(t, shared.IsDomainError(c.EnsureCanReceivePayments(), CodeClientInactive))

	_, err = NewRenunciation(c, uuid.New(), "", decimal.NewFromInt(100), decimal.NewFromInt(200), "x", "ana")
	assert.Error(t, err)
}
