package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsClaimed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockIdempotencyStore) Close() error { return nil }

func TestIdempotentHandler_SkipsRedelivery(t *testing.T) {
	ctx := context.Background()
	e := newTestEvent("PaymentRegistered")
	key := "event:" + e.EventID().String()

	store := new(MockIdempotencyStore)
	store.On("Claim", ctx, key, time.Hour).Return(true, nil).Once()
	store.On("Claim", ctx, key, time.Hour).Return(false, nil).Once()

	inner := &recordingHandler{types: []string{"PaymentRegistered"}}
	h := NewIdempotentHandler(inner, store, shared.IdempotencyConfig{Enabled: true, TTL: time.Hour}, nil)

	require.NoError(t, h.Handle(ctx, e))
	require.NoError(t, h.Handle(ctx, e))

	assert.Len(t, inner.calls(), 1)
	assert.Equal(t, IdempotencyStats{Processed: 1, Duplicate: 1}, h.Stats())
	assert.Equal(t, []string{"PaymentRegistered"}, h.EventTypes())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_ReleasesKeyOnFailure(t *testing.T) {
	ctx := context.Background()
	e := newTestEvent("PaymentVoided")
	key := "event:" + e.EventID().String()

	store := new(MockIdempotencyStore)
	store.On("Claim", ctx, key, mock.Anything).Return(true, nil)
	store.On("Release", ctx, key).Return(nil).Once()

	inner := &recordingHandler{err: errors.New("audit table locked")}
	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), nil)

	assert.EqualError(t, h.Handle(ctx, e), "audit table locked")
	assert.Equal(t, int64(1), h.Stats().Failed)
	store.AssertExpectations(t)
}

func TestIdempotentHandler_StoreErrorStillHandles(t *testing.T) {
	ctx := context.Background()
	store := new(MockIdempotencyStore)
	store.On("Claim", ctx, mock.Anything, mock.Anything).Return(false, errors.New("redis timeout"))

	inner := &recordingHandler{}
	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), nil)

	require.NoError(t, h.Handle(ctx, newTestEvent("BalanceCondoned")))
	assert.Len(t, inner.calls(), 1)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := &recordingHandler{}
	h := NewIdempotentHandler(inner, store, shared.IdempotencyConfig{}, nil)

	e := newTestEvent("PaymentRegistered")
	require.NoError(t, h.Handle(context.Background(), e))
	require.NoError(t, h.Handle(context.Background(), e))
	assert.Len(t, inner.calls(), 2)
	store.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
}
