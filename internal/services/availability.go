package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"multitenantbooking/internal/domain"
)

type availabilityService struct {
	availabilityRepo domain.AvailabilityRepository
	apptRepo         domain.AppointmentRepository
	publisher        domain.EventPublisher
	contextTimeout   time.Duration
}

func NewAvailabilityService(availabilityRepo domain.AvailabilityRepository,
	apptRepo domain.AppointmentRepository,
	publisher domain.EventPublisher,
	timeout time.Duration,
) domain.AvailabilityService {
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		apptRepo:         apptRepo,
		publisher:        publisher,
		contextTimeout:   timeout,
	}
}

// guardAppointments verifies every non-cancelled appointment for (staff, date)
// is contained by at least one of the proposed slots. Availability edits must
// never silently orphan a booking.
func (s *availabilityService) guardAppointments(ctx context.Context, staffID string, date time.Time, proposed []domain.TimeSlot) error {
	appts, err := s.apptRepo.ListActiveByStaffAndDate(ctx, staffID, date)
	if err != nil {
		return fmt.Errorf("list appointments: %w", err)
	}
	for _, appt := range appts {
		contained := false
		for _, slot := range proposed {
			if slot.Contains(appt.Slot) {
				contained = true
				break
			}
		}
		if !contained {
			return domain.ErrAvailabilityConflict
		}
	}
	return nil
}

func (s *availabilityService) SetAvailability(ctx context.Context, staffID, businessID string, date time.Time, slots []domain.TimeSlot) (*domain.StaffDailyAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	availability, err := s.availabilityRepo.GetByStaffAndDate(ctx, staffID, date)
	if err != nil {
		if !errors.Is(err, domain.ErrNoAvailability) {
			return nil, fmt.Errorf("get availability: %w", err)
		}
		availability = domain.NewStaffDailyAvailability(uuid.NewString(), staffID, businessID, date)
	}

	if err := s.guardAppointments(ctx, staffID, date, slots); err != nil {
		return nil, err
	}

	ev, err := availability.SetSlots(slots, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.availabilityRepo.Save(ctx, availability); err != nil {
		return nil, fmt.Errorf("save availability: %w", err)
	}
	s.publisher.Publish(ctx, ev)
	return availability, nil
}

func (s *availabilityService) AddTimeSlot(ctx context.Context, staffID, businessID string, date time.Time, slot domain.TimeSlot) (*domain.StaffDailyAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	availability, err := s.availabilityRepo.GetByStaffAndDate(ctx, staffID, date)
	if err != nil {
		if !errors.Is(err, domain.ErrNoAvailability) {
			return nil, fmt.Errorf("get availability: %w", err)
		}
		availability = domain.NewStaffDailyAvailability(uuid.NewString(), staffID, businessID, date)
	}

	ev, err := availability.AddTimeSlot(slot, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.availabilityRepo.Save(ctx, availability); err != nil {
		return nil, fmt.Errorf("save availability: %w", err)
	}
	s.publisher.Publish(ctx, ev)
	return availability, nil
}

func (s *availabilityService) RemoveTimeSlot(ctx context.Context, staffID string, date time.Time, slot domain.TimeSlot) (*domain.StaffDailyAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	availability, err := s.availabilityRepo.GetByStaffAndDate(ctx, staffID, date)
	if err != nil {
		if errors.Is(err, domain.ErrNoAvailability) {
			return nil, domain.ErrNoAvailability
		}
		return nil, fmt.Errorf("get availability: %w", err)
	}

	remaining := make([]domain.TimeSlot, 0, len(availability.Slots))
	for _, existing := range availability.Slots {
		if existing != slot {
			remaining = append(remaining, existing)
		}
	}
	if err := s.guardAppointments(ctx, staffID, date, remaining); err != nil {
		return nil, err
	}

	ev, err := availability.RemoveTimeSlot(slot, time.Now())
	if err != nil {
		return nil, err
	}
	if ev == nil {
		// slot was not present; nothing changed
		return availability, nil
	}

	if availability.IsEmpty() {
		if err := s.availabilityRepo.Delete(ctx, staffID, date); err != nil {
			return nil, fmt.Errorf("delete availability: %w", err)
		}
	} else if err := s.availabilityRepo.Save(ctx, availability); err != nil {
		return nil, fmt.Errorf("save availability: %w", err)
	}
	s.publisher.Publish(ctx, ev)
	return availability, nil
}

func (s *availabilityService) DeleteAvailability(ctx context.Context, staffID string, date time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	availability, err := s.availabilityRepo.GetByStaffAndDate(ctx, staffID, date)
	if err != nil {
		if errors.Is(err, domain.ErrNoAvailability) {
			return domain.ErrNoAvailability
		}
		return fmt.Errorf("get availability: %w", err)
	}

	if err := s.guardAppointments(ctx, staffID, date, nil); err != nil {
		return err
	}
	if err := s.availabilityRepo.Delete(ctx, staffID, date); err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	s.publisher.Publish(ctx, domain.StaffAvailabilityUpdated{
		StaffID:    availability.StaffID,
		BusinessID: availability.BusinessID,
		Date:       availability.Date,
		At:         time.Now(),
	})
	return nil
}
