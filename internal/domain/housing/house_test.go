package housing

import (
	"testing"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newTestHouse(t *testing.T) *House {
	t.Helper()
	h, err := NewHouse(uuid.New(), "A", "12", d(100000000), decimal.Zero)
	require.NoError(t, err)
	return h
}

func TestNewHouse(t *testing.T) {
	h, err := NewHouse(uuid.New(), "B", "3", d(120000000), d(20000000))
	require.NoError(t, err)
	assert.True(t, h.FinalPrice.Equal(d(100000000)))
	assert.True(t, h.Balance.Equal(d(100000000)))
	assert.True(t, h.TotalPaid.IsZero())
	assert.Equal(t, "Mz. B - Casa 3", h.Label())

	_, err = NewHouse(uuid.New(), "", "3", d(1), decimal.Zero)
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInput))

	_, err = NewHouse(uuid.New(), "B", "3", d(10), d(20))
	assert.Error(t, err)
}

func TestHouse_PaymentTotals(t *testing.T) {
	h := newTestHouse(t)

	require.NoError(t, h.ApplyPayment(d(20000000)))
	assert.True(t, h.TotalPaid.Equal(d(20000000)))
	assert.True(t, h.Balance.Equal(d(80000000)))

	require.NoError(t, h.AdjustPayment(d(-5000000)))
	assert.True(t, h.Balance.Equal(d(85000000)))

	require.NoError(t, h.RevertPayment(d(15000000)))
	assert.True(t, h.TotalPaid.IsZero())
	assert.True(t, h.Balance.Equal(h.FinalPrice))

	assert.True(t, shared.IsDomainError(h.ApplyPayment(d(100000001)), CodeBalanceExceeded))
	assert.True(t, shared.IsDomainError(h.RevertPayment(d(1)), shared.CodeInvalidState))
}

func TestHouse_UpdatePriceKeepsBalanceConsistent(t *testing.T) {
	h := newTestHouse(t)
	require.NoError(t, h.ApplyPayment(d(30000000)))

	require.NoError(t, h.UpdatePrice(d(90000000), decimal.Zero))
	assert.True(t, h.Balance.Equal(d(60000000)))

	err := h.UpdatePrice(d(20000000), decimal.Zero)
	assert.True(t, shared.IsDomainError(err, CodeBalanceExceeded))
	assert.True(t, h.FinalPrice.Equal(d(90000000)))
}

func TestHouse_AssignmentAndDeletion(t *testing.T) {
	h := newTestHouse(t)
	clientID := uuid.New()

	require.NoError(t, h.EnsureDeletable(0))
	require.NoError(t, h.AssignClient(clientID))
	assert.True(t, h.BelongsTo(clientID))
	assert.True(t, shared.IsDomainError(h.AssignClient(uuid.New()), CodeHouseAssigned))
	assert.True(t, shared.IsDomainError(h.EnsureDeletable(0), CodeHouseInUse))

	h.Release()
	assert.False(t, h.IsAssigned())
	assert.True(t, shared.IsDomainError(h.EnsureDeletable(1), CodeHouseInUse))
}

func TestProject(t *testing.T) {
	p, err := NewProject("  Altos del Río ", "Cali", "")
	require.NoError(t, err)
	assert.Equal(t, "Altos del Río", p.Name)
	assert.Error(t, p.Rename(" "))

	_, err = NewProject("", "", "")
	assert.Error(t, err)
}
