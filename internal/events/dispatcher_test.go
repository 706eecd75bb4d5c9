package events

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"multitenantbooking/internal/domain"
)

func testEvent(name string) domain.Event {
	return domain.StaffAvailabilityUpdated{
		StaffID:    "staff-" + name,
		BusinessID: "biz-1",
		Date:       time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		At:         time.Now(),
	}
}

func TestDispatcher_Publish(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("delivers to all handlers in registration order", func(t *testing.T) {
		d := NewDispatcher(logger)
		var calls []string
		d.Register(HandlerFunc(func(ctx context.Context, ev domain.Event) error {
			calls = append(calls, "first")
			return nil
		}))
		d.Register(HandlerFunc(func(ctx context.Context, ev domain.Event) error {
			calls = append(calls, "second")
			return nil
		}))

		d.Publish(ctx, testEvent("a"), testEvent("b"))
		require.Equal(t, []string{"first", "second", "first", "second"}, calls)
	})

	t.Run("a failing handler does not block the rest", func(t *testing.T) {
		d := NewDispatcher(logger)
		var delivered int
		d.Register(HandlerFunc(func(ctx context.Context, ev domain.Event) error {
			return errors.New("projector down")
		}))
		d.Register(HandlerFunc(func(ctx context.Context, ev domain.Event) error {
			delivered++
			return nil
		}))

		d.Publish(ctx, testEvent("a"))
		require.Equal(t, 1, delivered)
	})

	t.Run("no handlers is a no-op", func(t *testing.T) {
		d := NewDispatcher(logger)
		d.Publish(ctx, testEvent("a"))
	})
}
