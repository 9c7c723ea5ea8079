package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already claimed, either event
// IDs delivered to a handler or client-supplied request keys.
type IdempotencyStore interface {
	// Claim marks key as taken for ttl. Returns false if it was already taken.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsClaimed checks whether key is currently taken
	IsClaimed(ctx context.Context, key string) (bool, error)

	// Release frees a key so the same request can be retried
	Release(ctx context.Context, key string) error

	// Close releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL after which the same key can be claimed again
	TTL time.Duration
	// Enabled toggles the check
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
