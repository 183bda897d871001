package event

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/dentalshop/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/dentalshop/backend/internal/infrastructure/event"

// ErrBusStopped is returned when publishing after Stop
var ErrBusStopped = errors.New("event bus stopped")

// subscription is one handler and the types it receives; nil types is
// every event
type subscription struct {
	handler shared.EventHandler
	types   []string
}

func (s subscription) wants(eventType string) bool {
	return s.types == nil || slices.Contains(s.types, eventType)
}

// InMemoryEventBus dispatches domain events to in-process handlers in
// subscription order. Publish runs them on the caller's goroutine; a
// failing or panicking handler is logged and never reaches the publisher.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	subs     []subscription
	logger   *zap.Logger
	tracer   trace.Tracer
	stopped  atomic.Bool
	inflight sync.WaitGroup
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{logger: logger, tracer: otel.Tracer(tracerName)}
}

// WithTracerProvider replaces the global provider for dispatch spans
func (b *InMemoryEventBus) WithTracerProvider(tp trace.TracerProvider) *InMemoryEventBus {
	b.tracer = tp.Tracer(tracerName)
	return b
}

func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		return ErrBusStopped
	}
	b.inflight.Add(1)
	defer b.inflight.Done()

	for _, event := range events {
		b.deliver(ctx, event)
	}
	return nil
}

func (b *InMemoryEventBus) deliver(ctx context.Context, event shared.DomainEvent) {
	ctx, span := b.tracer.Start(ctx, "event "+event.EventType(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("event.type", event.EventType()),
			attribute.String("event.id", event.EventID().String()),
			attribute.String("event.aggregate_id", event.AggregateID().String()),
		))
	defer span.End()

	failed := 0
	for _, handler := range b.handlersFor(event.EventType()) {
		if err := dispatch(ctx, handler, event); err != nil {
			failed++
			span.RecordError(err)
			b.logger.Error("Event handler failed",
				zap.String("event_type", event.EventType()),
				zap.Stringer("event_id", event.EventID()),
				zap.Stringer("aggregate_id", event.AggregateID()),
				zap.Error(err))
		}
	}
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d handler(s) failed", failed))
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []shared.EventHandler
	for _, s := range b.subs {
		if s.wants(eventType) {
			out = append(out, s.handler)
		}
	}
	return out
}

// Subscribe registers handler for eventTypes, falling back to the handler's
// own EventTypes. An empty list subscribes to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	sub := subscription{handler: handler}
	if len(eventTypes) > 0 {
		sub.types = slices.Clone(eventTypes)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	b.logger.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.handler == handler })
}

func (b *InMemoryEventBus) handlerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Start marks the bus as accepting events
func (b *InMemoryEventBus) Start(context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("Event bus started", zap.Int("handlers", b.handlerCount()))
	return nil
}

// Stop rejects new events and waits for in-flight deliveries or ctx expiry
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.stopped.Store(true)

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus stop: %w", ctx.Err())
	}
}

func dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
