package domain

import (
	"context"
	"sort"
	"time"
)

// StaffDailyAvailability holds the set of bookable time slots a staff member
// offers on one calendar date. Invariant: no two slots overlap; the slice is
// kept ordered by start time. The aggregate has no appointment awareness;
// callers guard booked appointments before replacing or removing slots.
type StaffDailyAvailability struct {
	ID         string     `json:"id"`
	StaffID    string     `json:"staff_id"`
	BusinessID string     `json:"business_id"`
	Date       time.Time  `json:"date"`
	Slots      []TimeSlot `json:"time_slots"`
}

// NewStaffDailyAvailability creates an empty availability record for (staff, date).
func NewStaffDailyAvailability(id, staffID, businessID string, date time.Time) *StaffDailyAvailability {
	return &StaffDailyAvailability{
		ID:         id,
		StaffID:    staffID,
		BusinessID: businessID,
		Date:       date,
	}
}

func (av *StaffDailyAvailability) sortSlots() {
	sort.Slice(av.Slots, func(i, j int) bool { return av.Slots[i].Start < av.Slots[j].Start })
}

func (av *StaffDailyAvailability) updatedEvent(now time.Time) Event {
	return StaffAvailabilityUpdated{
		StaffID:    av.StaffID,
		BusinessID: av.BusinessID,
		Date:       av.Date,
		At:         now,
	}
}

// AddTimeSlot appends a slot. Returns ErrSlotOverlap if it overlaps any
// existing slot; the set is left unchanged on failure.
func (av *StaffDailyAvailability) AddTimeSlot(slot TimeSlot, now time.Time) (Event, error) {
	for _, existing := range av.Slots {
		if existing.Overlaps(slot) {
			return nil, ErrSlotOverlap
		}
	}
	av.Slots = append(av.Slots, slot)
	av.sortSlots()
	return av.updatedEvent(now), nil
}

// RemoveTimeSlot removes the slot matching (start, end) exactly. Absent slots
// are an event-free no-op.
func (av *StaffDailyAvailability) RemoveTimeSlot(slot TimeSlot, now time.Time) (Event, error) {
	for i, existing := range av.Slots {
		if existing == slot {
			av.Slots = append(av.Slots[:i], av.Slots[i+1:]...)
			return av.updatedEvent(now), nil
		}
	}
	return nil, nil
}

// SetSlots replaces the whole slot set. Returns ErrSlotOverlap if any two new
// slots overlap; guarding existing appointments is the caller's job.
func (av *StaffDailyAvailability) SetSlots(slots []TimeSlot, now time.Time) (Event, error) {
	sorted := make([]TimeSlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Overlaps(sorted[i]) {
			return nil, ErrSlotOverlap
		}
	}
	av.Slots = sorted
	return av.updatedEvent(now), nil
}

// IsAvailable reports whether some stored slot fully contains the given slot.
func (av *StaffDailyAvailability) IsAvailable(slot TimeSlot) bool {
	for _, existing := range av.Slots {
		if existing.Contains(slot) {
			return true
		}
	}
	return false
}

// ApplyAppointment carves the booked interval out of the containing free slot,
// re-inserting the non-empty remainders on either side. Returns false if no
// stored slot contains the appointment slot; callers must have verified
// availability with IsAvailable first.
func (av *StaffDailyAvailability) ApplyAppointment(appointmentSlot TimeSlot) bool {
	for i, existing := range av.Slots {
		if !existing.Contains(appointmentSlot) {
			continue
		}
		remainder := make([]TimeSlot, 0, 2)
		if existing.Start < appointmentSlot.Start {
			remainder = append(remainder, TimeSlot{Start: existing.Start, End: appointmentSlot.Start})
		}
		if appointmentSlot.End < existing.End {
			remainder = append(remainder, TimeSlot{Start: appointmentSlot.End, End: existing.End})
		}
		av.Slots = append(av.Slots[:i], av.Slots[i+1:]...)
		av.Slots = append(av.Slots, remainder...)
		av.sortSlots()
		return true
	}
	return false
}

// IsEmpty reports whether no bookable slots remain.
func (av *StaffDailyAvailability) IsEmpty() bool {
	return len(av.Slots) == 0
}

// AvailabilityRepository defines storage for staff daily availability.
type AvailabilityRepository interface {
	// GetByStaffAndDate returns the availability record, or ErrNoAvailability if absent.
	GetByStaffAndDate(ctx context.Context, staffID string, date time.Time) (*StaffDailyAvailability, error)
	// Save upserts the record and its slot set.
	Save(ctx context.Context, availability *StaffDailyAvailability) error
	// Delete removes the record for (staff, date).
	Delete(ctx context.Context, staffID string, date time.Time) error
}
