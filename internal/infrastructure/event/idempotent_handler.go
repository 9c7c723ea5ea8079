package event

import (
	"context"
	"sync/atomic"

	"github.com/constructora/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const eventKeyPrefix = "event:"

// IdempotencyStats counts outcomes of an IdempotentHandler.
type IdempotencyStats struct {
	Processed int64 `json:"processed"`
	Duplicate int64 `json:"duplicate"`
	Failed    int64 `json:"failed"`
}

// IdempotentHandler drops redelivered events so each audit record and
// notification is written once per event id.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// NewIdempotentHandler wraps handler.
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, cfg shared.IdempotencyConfig, logger *zap.Logger) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotentHandler{handler: handler, store: store, config: cfg, logger: logger}
}

// EventTypes implements shared.EventHandler.
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle implements shared.EventHandler. A store error lets the event
// through: a duplicate audit line is preferable to a missing one.
func (h *IdempotentHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, e)
	}

	key := eventKeyPrefix + e.EventID().String()
	fresh, err := h.store.Claim(ctx, key, h.config.TTL)
	switch {
	case err != nil:
		h.logger.Warn("idempotency check failed, handling anyway",
			zap.String("event_id", e.EventID().String()), zap.Error(err))
	case !fresh:
		h.duplicate.Add(1)
		return nil
	}

	if err := h.handler.Handle(ctx, e); err != nil {
		h.failed.Add(1)
		// Let a redelivery retry the handler.
		if relErr := h.store.Release(ctx, key); relErr != nil {
			h.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
		}
		return err
	}
	h.processed.Add(1)
	return nil
}

// Stats returns a snapshot of the counters.
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		Processed: h.processed.Load(),
		Duplicate: h.duplicate.Load(),
		Failed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
