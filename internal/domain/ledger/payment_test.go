package ledger

import (
	"testing"
	"time"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() PaymentInput {
	return PaymentInput{
		ClientID: uuid.New(),
		HouseID:  uuid.New(),
		Source:   client.SourceDownPayment,
		Amount:   decimal.NewFromInt(20000000),
		PaidOn:   time.Date(2024, 5, 10, 15, 4, 0, 0, time.UTC),
		Method:   "Transferencia",
		Actor:    "ana",
	}
}

func TestNewPayment(t *testing.T) {
	p, err := NewPayment(1, validInput())
	require.NoError(t, err)
	assert.Equal(t, PaymentActive, p.Status)
	assert.Equal(t, int64(1), p.Sequence)
	assert.Equal(t, 0, p.PaidOn.Hour())

	tests := []struct {
		name   string
		mutate func(*PaymentInput)
	}{
		{"unknown source", func(in *PaymentInput) { in.Source = "efectivo" }},
		{"zero amount", func(in *PaymentInput) { in.Amount = decimal.Zero }},
		{"sub-cent amount", func(in *PaymentInput) { in.Amount = decimal.RequireFromString("0.001") }},
		{"missing date", func(in *PaymentInput) { in.PaidOn = time.Time{} }},
		{"missing method", func(in *PaymentInput) { in.Method = " " }},
		{"missing house", func(in *PaymentInput) { in.HouseID = uuid.Nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := NewPayment(1, in)
			assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInput))
		})
	}
}

func TestPayment_VoidAndRestore(t *testing.T) {
	p, err := NewPayment(7, validInput())
	require.NoError(t, err)

	assert.True(t, shared.IsDomainError(p.Void(" ", "ana"), shared.CodeInvalidInput))
	require.NoError(t, p.Void("error", "ana"))
	assert.Equal(t, PaymentVoided, p.Status)
	assert.Equal(t, "error", p.VoidReason)
	assert.NotNil(t, p.VoidedAt)
	assert.True(t, shared.IsDomainError(p.Void("otra vez", "ana"), shared.CodeInvalidState))

	_, err = p.Edit(PaymentEdit{Amount: decimal.NewFromInt(1)})
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidState))

	require.NoError(t, p.RestoreVoid())
	assert.True(t, p.IsActive())
	assert.Empty(t, p.VoidReason)
	assert.Nil(t, p.VoidedAt)
	assert.True(t, shared.IsDomainError(p.RestoreVoid(), shared.CodeInvalidState))
}

func TestPayment_EditReturnsDelta(t *testing.T) {
	p, err := NewPayment(3, validInput())
	require.NoError(t, err)

	delta, err := p.Edit(PaymentEdit{Amount: decimal.NewFromInt(15000000), Notes: "ajuste"})
	require.NoError(t, err)
	assert.True(t, delta.Equal(decimal.NewFromInt(-5000000)))
	assert.Equal(t, "Transferencia", p.Method)
	assert.Equal(t, "ajuste", p.Notes)
}

func TestNewCondonation(t *testing.T) {
	in := validInput()
	in.Method = "Efectivo"
	p, err := NewCondonation(9, in, "")
	require.NoError(t, err)
	assert.True(t, p.IsCondonation)
	assert.Equal(t, CondonationMethod, p.Method)
	assert.Equal(t, "Cuota inicial", p.OriginalSource)
}

func TestCheckCeiling(t *testing.T) {
	agreed := decimal.NewFromInt(10000000)

	assert.NoError(t, CheckCeiling(client.SourceDownPayment, agreed, decimal.NewFromInt(9000000), decimal.NewFromInt(1000000)))

	err := CheckCeiling(client.SourceDownPayment, agreed, decimal.NewFromInt(9000000), decimal.NewFromInt(2000000))
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, CodeCeilingExceeded))
	assert.Contains(t, err.Error(), "Cuota inicial")

	err = CheckCeiling(client.SourceCredit, decimal.Zero, decimal.Zero, decimal.RequireFromString("0.01"))
	assert.True(t, shared.IsDomainError(err, CodeCeilingExceeded))
}
