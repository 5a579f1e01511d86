package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/tramites/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultQueueSize = 256

// delivery is one published event waiting for its handlers
type delivery struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus delivers domain events to in-process handlers.
//
// Stopped, Publish runs the handlers inline. Started, Publish enqueues and
// returns; a single worker drains the queue, so handlers observe events in
// publish order (status_changed before reviewer_assigned for an assign).
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	log       *zap.Logger
	queueSize int

	mu    sync.RWMutex
	queue chan delivery
	done  chan struct{}
}

func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryEventBus{registry: NewHandlerRegistry(), log: log, queueSize: defaultQueueSize}
}

// Publish never reports handler failures; they are logged. A full queue
// blocks the publisher until the worker catches up.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, e := range events {
		if b.queue == nil {
			b.deliver(ctx, e)
			continue
		}
		// Handlers outlive the request that published the event.
		b.queue <- delivery{ctx: context.WithoutCancel(ctx), event: e}
	}
	return nil
}

// Subscribe registers handler for eventTypes, or for the handler's own
// EventTypes when none are given.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.log.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start launches the delivery worker. Starting a running bus is a no-op.
func (b *InMemoryEventBus) Start(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.queue != nil {
		return nil
	}

	b.queue = make(chan delivery, b.queueSize)
	b.done = make(chan struct{})
	go b.drain(b.queue, b.done)

	b.log.Info("Event bus started", zap.Int("queue_size", b.queueSize))
	return nil
}

// Stop closes the queue and waits until queued events are delivered or ctx
// ends. Calling it again after a timeout resumes the wait.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if b.queue != nil {
		close(b.queue)
		b.queue = nil
	}
	done := b.done
	b.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		b.log.Info("Event bus stopped")
		return nil
	case <-ctx.Done():
		b.log.Warn("Event bus stopped with deliveries pending", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) drain(queue <-chan delivery, done chan<- struct{}) {
	defer close(done)
	for d := range queue {
		b.deliver(d.ctx, d.event)
	}
}

// deliver runs every handler for e; one failing or panicking handler does
// not keep the event from the rest.
func (b *InMemoryEventBus) deliver(ctx context.Context, e shared.DomainEvent) {
	for _, h := range b.registry.HandlersFor(e.EventType()) {
		if err := invoke(ctx, h, e); err != nil {
			b.log.Error("Event handler failed",
				zap.String("event_type", e.EventType()),
				zap.Stringer("event_id", e.EventID()),
				zap.Stringer("tenant_id", e.TenantID()),
				zap.Error(err))
		}
	}
}

func invoke(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
