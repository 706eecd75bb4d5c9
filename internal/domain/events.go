package domain

import (
	"context"
	"time"
)

// Event is a domain event produced by an aggregate transition. Every event
// carries the full identity tuple downstream consumers need, so the projector
// and notifiers require no additional lookups.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// AppointmentEventData is the identity payload common to all appointment events.
type AppointmentEventData struct {
	AppointmentID string    `json:"appointment_id"`
	BusinessID    string    `json:"business_id"`
	ClientID      string    `json:"client_id"`
	StaffID       string    `json:"staff_id"`
	ServiceID     string    `json:"service_id"`
	Date          time.Time `json:"date"`
	Slot          TimeSlot  `json:"slot"`
	At            time.Time `json:"at"`
}

func (d AppointmentEventData) OccurredAt() time.Time { return d.At }

// AppointmentScheduled is emitted when a new appointment is booked.
type AppointmentScheduled struct {
	AppointmentEventData
}

func (AppointmentScheduled) EventName() string { return "appointment.scheduled" }

// AppointmentConfirmed is emitted on SCHEDULED -> CONFIRMED.
type AppointmentConfirmed struct {
	AppointmentEventData
}

func (AppointmentConfirmed) EventName() string { return "appointment.confirmed" }

// AppointmentCancelled is emitted on cancellation from SCHEDULED or CONFIRMED.
type AppointmentCancelled struct {
	AppointmentEventData
	Reason string `json:"reason,omitempty"`
}

func (AppointmentCancelled) EventName() string { return "appointment.cancelled" }

// AppointmentCompleted is emitted on CONFIRMED -> COMPLETED.
type AppointmentCompleted struct {
	AppointmentEventData
}

func (AppointmentCompleted) EventName() string { return "appointment.completed" }

// AppointmentNoShow is emitted on CONFIRMED -> NO_SHOW.
type AppointmentNoShow struct {
	AppointmentEventData
}

func (AppointmentNoShow) EventName() string { return "appointment.no_show" }

// StaffAvailabilityUpdated is emitted after any successful mutation of a
// staff member's daily availability (including the carve-out at booking time).
type StaffAvailabilityUpdated struct {
	StaffID    string    `json:"staff_id"`
	BusinessID string    `json:"business_id"`
	Date       time.Time `json:"date"`
	At         time.Time `json:"at"`
}

func (StaffAvailabilityUpdated) EventName() string { return "availability.updated" }
func (e StaffAvailabilityUpdated) OccurredAt() time.Time { return e.At }

// EventPublisher delivers domain events to subscribers. Publishing happens
// after the write transaction has committed; subscriber failures must not
// roll back the write.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event)
}
