package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Claim(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	ok, err := store.Claim(ctx, "abono:req-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(ctx, "abono:req-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same key must lose")

	claimed, err := store.IsClaimed(ctx, "abono:req-1")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.IsClaimed(ctx, "abono:req-2")
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestInMemoryIdempotencyStore_ExpiryAndRelease(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ok, _ := store.Claim(ctx, "k", time.Minute)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	claimed, _ := store.IsClaimed(ctx, "k")
	assert.False(t, claimed, "expired key is free")
	ok, _ = store.Claim(ctx, "k", time.Minute)
	assert.True(t, ok)

	require.NoError(t, store.Release(ctx, "k"))
	ok, _ = store.Claim(ctx, "k", time.Minute)
	assert.True(t, ok, "released key can be claimed again")
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }
	for i := 0; i < 3; i++ {
		_, _ = store.Claim(ctx, fmt.Sprintf("short-%d", i), time.Second)
	}
	_, _ = store.Claim(ctx, "long", time.Hour)
	require.Equal(t, 4, store.Size())

	now = now.Add(time.Minute)
	store.sweep()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Close()

	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.Claim(context.Background(), "same", time.Hour); ok {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners)
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Millisecond)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
