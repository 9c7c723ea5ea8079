//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisIdempotencyStore(t *testing.T) {
	client := startRedis(t)
	store := NewRedisIdempotencyStoreWithClient(client, "test:")
	ctx := context.Background()

	ok, err := store.Claim(ctx, "abono:req-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(ctx, "abono:req-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, "test:abono:req-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, store.Release(ctx, "abono:req-1"))
	claimed, err := store.IsClaimed(ctx, "abono:req-1")
	require.NoError(t, err)
	assert.False(t, claimed)

	assert.NoError(t, store.Close())
	assert.NoError(t, client.Ping(ctx).Err(), "borrowed client stays open")
}
