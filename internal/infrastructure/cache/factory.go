package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the store named by cfg.Backend. A redis backend
// that cannot be reached falls back to memory unless the app runs in production.
func NewIdempotencyStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if cfg.Idempotency.Backend != "redis" {
		return NewInMemoryIdempotencyStore(5 * time.Minute), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, &redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err == nil {
		logger.Info("using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
		return store, nil
	}
	if cfg.IsProduction() {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	return NewInMemoryIdempotencyStore(5 * time.Minute), nil
}
