package domain

import (
	"context"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusNoShow    AppointmentStatus = "NO_SHOW"
)

// IsTerminal reports whether no further transitions are allowed from the status.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Appointment is one booked service instance. It is write-once: it is never
// deleted, and after creation it changes only through its transition methods.
// Each transition returns the updated copy together with the emitted event;
// the receiver is left unchanged.
type Appointment struct {
	ID         string            `json:"id"`
	BusinessID string            `json:"business_id"`
	ClientID   string            `json:"client_id"`
	StaffID    string            `json:"staff_id"`
	ServiceID  string            `json:"service_id"`
	Date       time.Time         `json:"date"`
	Slot       TimeSlot          `json:"slot"`
	Status     AppointmentStatus `json:"status"`
	Notes      string            `json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Schedule is the only appointment constructor. The returned appointment is in
// state SCHEDULED and the AppointmentScheduled event is returned alongside it.
func Schedule(id, businessID, clientID, staffID, serviceID string, date time.Time, slot TimeSlot, notes string, now time.Time) (*Appointment, Event, error) {
	if slot.Start >= slot.End {
		return nil, nil, ErrInvalidTimeRange
	}
	if id == "" || businessID == "" || clientID == "" || staffID == "" || serviceID == "" {
		return nil, nil, ErrInvalidInput
	}
	a := &Appointment{
		ID:         id,
		BusinessID: businessID,
		ClientID:   clientID,
		StaffID:    staffID,
		ServiceID:  serviceID,
		Date:       date,
		Slot:       slot,
		Status:     StatusScheduled,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return a, AppointmentScheduled{a.eventData(now)}, nil
}

func (a *Appointment) eventData(now time.Time) AppointmentEventData {
	return AppointmentEventData{
		AppointmentID: a.ID,
		BusinessID:    a.BusinessID,
		ClientID:      a.ClientID,
		StaffID:       a.StaffID,
		ServiceID:     a.ServiceID,
		Date:          a.Date,
		Slot:          a.Slot,
		At:            now,
	}
}

func (a *Appointment) withStatus(status AppointmentStatus, now time.Time) *Appointment {
	next := *a
	next.Status = status
	next.UpdatedAt = now
	return &next
}

// Confirm moves SCHEDULED -> CONFIRMED.
func (a *Appointment) Confirm(now time.Time) (*Appointment, Event, error) {
	if a.Status != StatusScheduled {
		return nil, nil, ErrInvalidTransition
	}
	next := a.withStatus(StatusConfirmed, now)
	return next, AppointmentConfirmed{next.eventData(now)}, nil
}

// Cancel moves SCHEDULED or CONFIRMED -> CANCELLED. Cancelling an already
// cancelled appointment is an idempotent no-op: the same appointment is
// returned with no event.
func (a *Appointment) Cancel(reason string, now time.Time) (*Appointment, Event, error) {
	switch a.Status {
	case StatusCancelled:
		return a, nil, nil
	case StatusScheduled, StatusConfirmed:
		next := a.withStatus(StatusCancelled, now)
		if reason != "" {
			next.Notes = reason
		}
		return next, AppointmentCancelled{AppointmentEventData: next.eventData(now), Reason: reason}, nil
	default:
		return nil, nil, ErrInvalidTransition
	}
}

// Complete moves CONFIRMED -> COMPLETED.
func (a *Appointment) Complete(now time.Time) (*Appointment, Event, error) {
	if a.Status != StatusConfirmed {
		return nil, nil, ErrInvalidTransition
	}
	next := a.withStatus(StatusCompleted, now)
	return next, AppointmentCompleted{next.eventData(now)}, nil
}

// MarkNoShow moves CONFIRMED -> NO_SHOW.
func (a *Appointment) MarkNoShow(now time.Time) (*Appointment, Event, error) {
	if a.Status != StatusConfirmed {
		return nil, nil, ErrInvalidTransition
	}
	next := a.withStatus(StatusNoShow, now)
	return next, AppointmentNoShow{next.eventData(now)}, nil
}

// AppointmentRepository defines storage for appointments.
type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*Appointment, error)
	// ListActiveByStaffAndDate returns all non-cancelled appointments for the
	// staff member on the date, ordered by start time.
	ListActiveByStaffAndDate(ctx context.Context, staffID string, date time.Time) ([]*Appointment, error)
	// Update persists a status transition (status, notes, updated_at).
	Update(ctx context.Context, appt *Appointment) error
}

// BookingStore persists a new appointment together with the shrunk
// availability in one transaction. The storage layer carries an exclusion
// constraint on (staff, date, time range, non-cancelled); a constraint
// violation is translated to ErrSlotConflict, never surfaced raw.
type BookingStore interface {
	SaveBooking(ctx context.Context, appt *Appointment, availability *StaffDailyAvailability) error
}
