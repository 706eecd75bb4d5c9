package domain

import "errors"

// Sentinel errors shared across the booking core. Services wrap unexpected
// failures with fmt.Errorf("...: %w", err); these are matched with errors.Is
// at the delivery boundary.
var (
	// ErrInvalidTimeRange is returned when a time slot's start is not strictly before its end.
	ErrInvalidTimeRange = errors.New("start time must be before end time")

	// ErrInvalidInput is returned for malformed input outside the time-range rule.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is the generic absent-record error (appointment, staff, business).
	ErrNotFound = errors.New("not found")

	// ErrServiceNotFound is returned when a referenced service does not exist in the catalog.
	ErrServiceNotFound = errors.New("service not found")

	// ErrNoAvailability is returned when the staff member has no availability record for the date.
	ErrNoAvailability = errors.New("no availability for this date")

	// ErrIneligibleStaff is returned when the staff member cannot perform the requested service.
	ErrIneligibleStaff = errors.New("staff member cannot perform this service")

	// ErrSlotUnavailable is returned when the requested time is not inside any free slot.
	ErrSlotUnavailable = errors.New("slot is not available")

	// ErrSlotConflict is returned when a booking loses the race against a
	// concurrent booking, whether detected by the pre-check or by the
	// storage-layer exclusion constraint.
	ErrSlotConflict = errors.New("slot no longer available")

	// ErrSlotOverlap is returned when a new availability slot overlaps an existing one.
	ErrSlotOverlap = errors.New("time slot overlaps an existing slot")

	// ErrAvailabilityConflict is returned when an availability edit would leave
	// an existing non-cancelled appointment without a containing slot.
	ErrAvailabilityConflict = errors.New("availability change conflicts with booked appointments")

	// ErrInvalidTransition is returned on an illegal appointment status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAccessDenied is returned when the acting user does not own the resource.
	ErrAccessDenied = errors.New("access denied")
)
