package domain

import (
	"context"
	"time"
)

// AvailableBookingSlot is a precomputed, service-specific offer: one bookable
// start time for one service with one staff member. Fully derived from the
// write model; rows are deleted and regenerated wholesale, never patched.
type AvailableBookingSlot struct {
	BusinessID             string    `json:"business_id"`
	ServiceID              string    `json:"service_id"`
	StaffID                string    `json:"staff_id"`
	Date                   time.Time `json:"date"`
	Slot                   TimeSlot  `json:"slot"`
	ServiceDurationMinutes int       `json:"service_duration_minutes"`
	ServiceName            string    `json:"service_name"`
	StaffName              string    `json:"staff_name"`
	ServicePriceCents      int64     `json:"service_price_cents"`
}

// ScheduleEntryKind distinguishes free and booked segments in a staff day schedule.
type ScheduleEntryKind string

const (
	ScheduleEntryFree   ScheduleEntryKind = "free"
	ScheduleEntryBooked ScheduleEntryKind = "booked"
)

// StaffScheduleEntry is one segment of a staff member's denormalized day view:
// the availability intervals split into alternating free and booked pieces.
type StaffScheduleEntry struct {
	StaffID       string            `json:"staff_id"`
	StaffName     string            `json:"staff_name"`
	BusinessID    string            `json:"business_id"`
	Date          time.Time         `json:"date"`
	Slot          TimeSlot          `json:"slot"`
	Kind          ScheduleEntryKind `json:"kind"`
	AppointmentID string            `json:"appointment_id,omitempty"`
	ServiceName   string            `json:"service_name,omitempty"`
	ClientName    string            `json:"client_name,omitempty"`
}

// ClientAppointmentView is the client-facing denormalized appointment row.
type ClientAppointmentView struct {
	AppointmentID string            `json:"appointment_id"`
	BusinessID    string            `json:"business_id"`
	BusinessName  string            `json:"business_name"`
	ClientID      string            `json:"client_id"`
	ClientName    string            `json:"client_name"`
	StaffID       string            `json:"staff_id"`
	StaffName     string            `json:"staff_name"`
	ServiceID     string            `json:"service_id"`
	ServiceName   string            `json:"service_name"`
	Date          time.Time         `json:"date"`
	Slot          TimeSlot          `json:"slot"`
	Status        AppointmentStatus `json:"status"`
	Notes         string            `json:"notes,omitempty"`
}

// ReadModelRepository stores the derived projections. Rebuilds replace all
// rows for a (staff, date) in one transaction.
type ReadModelRepository interface {
	// ReplaceForStaffDate deletes all booking-slot and schedule rows for the
	// staff member on the date and inserts the given rows.
	ReplaceForStaffDate(ctx context.Context, staffID string, date time.Time, slots []*AvailableBookingSlot, schedule []*StaffScheduleEntry) error
	// DeleteSlotsOverlapping removes booking-slot rows for (staff, date) whose
	// time range overlaps the given slot.
	DeleteSlotsOverlapping(ctx context.Context, staffID string, date time.Time, slot TimeSlot) error
	// ListSlots returns booking-slot rows for a business, service, and date,
	// optionally restricted to one staff member, ordered by start time.
	ListSlots(ctx context.Context, businessID, serviceID string, date time.Time, staffID string) ([]*AvailableBookingSlot, error)
	// ListSlotsInRange returns booking-slot rows for the date range [from, to], ordered by date then start time.
	ListSlotsInRange(ctx context.Context, businessID, serviceID string, from, to time.Time, staffID string) ([]*AvailableBookingSlot, error)
	ListScheduleForStaffDate(ctx context.Context, staffID string, date time.Time) ([]*StaffScheduleEntry, error)
	UpsertClientAppointment(ctx context.Context, view *ClientAppointmentView) error
	ListClientAppointments(ctx context.Context, clientID string) ([]*ClientAppointmentView, error)
}
