package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers events synchronously to subscribed handlers.
// Publishers call it after commit; a failing or panicking handler is logged
// and never reaches the publisher.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{registry: NewHandlerRegistry(), logger: logger}
	b.running.Store(true)
	return b
}

// Publish implements shared.EventPublisher. It always returns nil.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	for _, e := range events {
		for _, h := range b.registry.GetHandlers(e.EventType()) {
			if err := b.dispatch(ctx, h, e); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", e.EventType()),
					zap.String("event_id", e.EventID().String()),
					zap.String("aggregate_id", e.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers handler for eventTypes, or for handler.EventTypes()
// when none are given.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start resumes delivery.
func (b *InMemoryEventBus) Start(context.Context) error {
	b.running.Store(true)
	return nil
}

// Stop drops further events. Delivery is synchronous so nothing is in flight
// once Publish callers have returned.
func (b *InMemoryEventBus) Stop(context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "event."+e.EventType(),
		telemetry.WithSpanKind(trace.SpanKindConsumer),
		telemetry.WithAttribute("event.id", e.EventID().String()),
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
		if err != nil {
			telemetry.RecordError(span, err)
		}
		span.End()
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
