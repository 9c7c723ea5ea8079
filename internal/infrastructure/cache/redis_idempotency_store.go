package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "constructora:idem:"

// RedisIdempotencyStore shares claimed keys across server instances.
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ownClient bool
}

// NewRedisIdempotencyStore connects to addr and pings it.
func NewRedisIdempotencyStore(ctx context.Context, opts *redis.Options) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: defaultKeyPrefix, ownClient: true}, nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client; Close leaves it open.
func NewRedisIdempotencyStoreWithClient(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// Claim uses SET NX so two instances cannot both win the same key.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

// IsClaimed implements shared.IdempotencyStore.
func (s *RedisIdempotencyStore) IsClaimed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	return n > 0, nil
}

// Release implements shared.IdempotencyStore.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Close implements shared.IdempotencyStore.
func (s *RedisIdempotencyStore) Close() error {
	if !s.ownClient {
		return nil
	}
	return s.client.Close()
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
