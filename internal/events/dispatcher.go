// Package events provides the in-process event dispatcher that connects the
// write side (booking and availability services) to its subscribers: the read
// model projector, email notifications, and the optional stream mirror.
package events

import (
	"context"
	"log/slog"
	"sync"

	"multitenantbooking/internal/domain"
)

// Handler consumes a single domain event. Handlers must be safe to call
// concurrently and should treat every event as at-least-once delivered.
type Handler interface {
	HandleEvent(ctx context.Context, event domain.Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event domain.Event) error

func (f HandlerFunc) HandleEvent(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}

// Dispatcher fans events out to registered handlers synchronously, in
// registration order. A handler error is logged and does not stop delivery to
// the remaining handlers; by the time events are published the booking state
// is already committed, so subscribers can only ever lag, never veto.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// Register adds a handler. Not safe to call concurrently with Publish during
// startup races; register everything before serving traffic.
func (d *Dispatcher) Register(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Publish delivers each event to every handler.
func (d *Dispatcher) Publish(ctx context.Context, events ...domain.Event) {
	d.mu.RLock()
	handlers := d.handlers
	d.mu.RUnlock()

	for _, event := range events {
		for _, h := range handlers {
			if err := h.HandleEvent(ctx, event); err != nil {
				d.logger.Error("event handler failed",
					"event", event.EventName(),
					"error", err)
			}
		}
	}
}

var _ domain.EventPublisher = (*Dispatcher)(nil)
