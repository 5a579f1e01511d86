package testutil

import (
	"context"
	"sync"

	"github.com/tramites/backend/internal/domain/shared"
)

// EventRecorder subscribes to a fixed set of event types and keeps what it
// receives in delivery order.
type EventRecorder struct {
	types []string

	mu       sync.Mutex
	received []shared.DomainEvent
}

func NewEventRecorder(eventTypes ...string) *EventRecorder {
	return &EventRecorder{types: eventTypes}
}

func (r *EventRecorder) EventTypes() []string { return r.types }

func (r *EventRecorder) Handle(_ context.Context, event shared.DomainEvent) error {
	r.mu.Lock()
	r.received = append(r.received, event)
	r.mu.Unlock()
	return nil
}

// Types lists the received event types.
func (r *EventRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.received))
	for i, e := range r.received {
		out[i] = e.EventType()
	}
	return out
}

// ForAggregate returns the events raised by one aggregate.
func (r *EventRecorder) ForAggregate(id string) []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range r.received {
		if e.AggregateID().String() == id {
			out = append(out, e)
		}
	}
	return out
}
