package domain

import (
	"context"
	"time"
)

// BookAppointmentCommand carries everything needed to book one appointment.
// The caller's identity is explicit; nothing is read from ambient state.
type BookAppointmentCommand struct {
	BusinessID string
	ClientID   string
	StaffID    string
	ServiceID  string
	Date       time.Time
	StartTime  TimeOfDay
	Notes      string
}

// CancelAppointmentCommand cancels an appointment on behalf of the requester,
// who must be either the booking client or the appointment's staff member.
type CancelAppointmentCommand struct {
	AppointmentID string
	RequesterID   string
	Reason        string
}

// BookingService orchestrates the appointment lifecycle: eligibility check,
// availability check, conflict check, persistence, and event publication.
type BookingService interface {
	Book(ctx context.Context, cmd BookAppointmentCommand) (*Appointment, error)
	Cancel(ctx context.Context, cmd CancelAppointmentCommand) (*Appointment, error)
	Confirm(ctx context.Context, appointmentID string) (*Appointment, error)
	Complete(ctx context.Context, appointmentID string) (*Appointment, error)
	MarkNoShow(ctx context.Context, appointmentID string) (*Appointment, error)
}

// AvailabilityService orchestrates staff-availability edits while protecting
// already-booked appointments from being orphaned.
type AvailabilityService interface {
	SetAvailability(ctx context.Context, staffID, businessID string, date time.Time, slots []TimeSlot) (*StaffDailyAvailability, error)
	AddTimeSlot(ctx context.Context, staffID, businessID string, date time.Time, slot TimeSlot) (*StaffDailyAvailability, error)
	RemoveTimeSlot(ctx context.Context, staffID string, date time.Time, slot TimeSlot) (*StaffDailyAvailability, error)
	DeleteAvailability(ctx context.Context, staffID string, date time.Time) error
}

// SlotQueryService answers read-side questions from the derived projections.
type SlotQueryService interface {
	IsSlotAvailable(ctx context.Context, businessID, staffID, serviceID string, date time.Time, start TimeOfDay) (bool, error)
	// GetAvailableSlots lists bookable offers for a business, service, and date.
	// staffID narrows the result to one staff member when non-empty.
	GetAvailableSlots(ctx context.Context, businessID, serviceID string, date time.Time, staffID string) ([]*AvailableBookingSlot, error)
	// FindAlternativeSlots searches same-day slots ordered by distance from the
	// preferred time, then future days up to the configured horizon ordered by
	// date then time.
	FindAlternativeSlots(ctx context.Context, businessID, serviceID, staffID string, preferredDate time.Time, preferredStart TimeOfDay, maxResults int) ([]*AvailableBookingSlot, error)
	GetStaffSchedule(ctx context.Context, staffID string, date time.Time) ([]*StaffScheduleEntry, error)
	GetClientAppointments(ctx context.Context, clientID string) ([]*ClientAppointmentView, error)
}
