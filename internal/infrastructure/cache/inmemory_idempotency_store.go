package cache

import (
	"context"
	"sync"
	"time"

	"github.com/constructora/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps claimed keys in process memory. Only safe
// when a single server instance handles requests.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	expiresAt map[string]time.Time
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore starts a store that sweeps expired keys every sweep.
func NewInMemoryIdempotencyStore(sweep time.Duration) *InMemoryIdempotencyStore {
	if sweep <= 0 {
		sweep = 5 * time.Minute
	}
	s := &InMemoryIdempotencyStore{
		expiresAt: make(map[string]time.Time),
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweepLoop(sweep)
	return s
}

// Claim implements shared.IdempotencyStore.
func (s *InMemoryIdempotencyStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.expiresAt[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expiresAt[key] = now.Add(ttl)
	return true, nil
}

// IsClaimed implements shared.IdempotencyStore.
func (s *InMemoryIdempotencyStore) IsClaimed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.expiresAt[key]
	return ok && s.now().Before(exp), nil
}

// Release implements shared.IdempotencyStore.
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expiresAt, key)
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) sweepLoop(every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, exp := range s.expiresAt {
		if !now.Before(exp) {
			delete(s.expiresAt, key)
		}
	}
}

// Size returns the number of tracked keys, expired ones included until swept.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expiresAt)
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
