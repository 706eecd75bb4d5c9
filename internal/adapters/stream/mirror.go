// Package stream mirrors domain events onto a Kafka topic so downstream
// systems (analytics, CRM sync) can consume the booking feed.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"multitenantbooking/internal/domain"
)

// messageWriter is the part of kafka.Writer the mirror uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// envelope is the wire format for mirrored events.
type envelope struct {
	Name       string      `json:"name"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// EventMirror publishes every domain event as a JSON message. The message key
// is the staff ID so a partition preserves per-staff ordering.
type EventMirror struct {
	writer messageWriter
	logger *slog.Logger
}

// NewEventMirror builds a mirror writing to the given brokers and topic.
func NewEventMirror(brokers []string, topic string, logger *slog.Logger) *EventMirror {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &EventMirror{writer: writer, logger: logger}
}

func (m *EventMirror) HandleEvent(ctx context.Context, event domain.Event) error {
	raw, err := json.Marshal(envelope{
		Name:       event.EventName(),
		OccurredAt: event.OccurredAt(),
		Payload:    event,
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventName(), err)
	}
	msg := kafka.Message{
		Key:   []byte(eventKey(event)),
		Value: raw,
	}
	if err := m.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s: %w", event.EventName(), err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (m *EventMirror) Close() error {
	if w, ok := m.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}

func eventKey(event domain.Event) string {
	switch ev := event.(type) {
	case domain.AppointmentScheduled:
		return ev.StaffID
	case domain.AppointmentConfirmed:
		return ev.StaffID
	case domain.AppointmentCancelled:
		return ev.StaffID
	case domain.AppointmentCompleted:
		return ev.StaffID
	case domain.AppointmentNoShow:
		return ev.StaffID
	case domain.StaffAvailabilityUpdated:
		return ev.StaffID
	default:
		return event.EventName()
	}
}
