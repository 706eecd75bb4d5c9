package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"multitenantbooking/internal/domain"
)

type bookingService struct {
	apptRepo         domain.AppointmentRepository
	availabilityRepo domain.AvailabilityRepository
	store            domain.BookingStore
	eligibility      domain.StaffServiceEligibility
	catalog          domain.ServiceCatalog
	publisher        domain.EventPublisher
	contextTimeout   time.Duration
}

func NewBookingService(apptRepo domain.AppointmentRepository,
	availabilityRepo domain.AvailabilityRepository,
	store domain.BookingStore,
	eligibility domain.StaffServiceEligibility,
	catalog domain.ServiceCatalog,
	publisher domain.EventPublisher,
	timeout time.Duration,
) domain.BookingService {
	return &bookingService{
		apptRepo:         apptRepo,
		availabilityRepo: availabilityRepo,
		store:            store,
		eligibility:      eligibility,
		catalog:          catalog,
		publisher:        publisher,
		contextTimeout:   timeout,
	}
}

func (s *bookingService) Book(ctx context.Context, cmd domain.BookAppointmentCommand) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	eligible, err := s.eligibility.CanPerform(ctx, cmd.StaffID, cmd.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("check staff eligibility: %w", err)
	}
	if !eligible {
		return nil, domain.ErrIneligibleStaff
	}

	svc, err := s.catalog.GetService(ctx, cmd.ServiceID)
	if err != nil {
		if errors.Is(err, domain.ErrServiceNotFound) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}

	slot, err := domain.NewTimeSlot(cmd.StartTime, cmd.StartTime.AddMinutes(svc.DurationMinutes))
	if err != nil {
		return nil, err
	}

	availability, err := s.availabilityRepo.GetByStaffAndDate(ctx, cmd.StaffID, cmd.Date)
	if err != nil {
		if errors.Is(err, domain.ErrNoAvailability) {
			return nil, domain.ErrNoAvailability
		}
		return nil, fmt.Errorf("get availability: %w", err)
	}
	if !availability.IsAvailable(slot) {
		return nil, domain.ErrSlotUnavailable
	}

	// Advisory conflict pre-check. The authoritative guard is the exclusion
	// constraint enforced by the booking store on save.
	existing, err := s.apptRepo.ListActiveByStaffAndDate(ctx, cmd.StaffID, cmd.Date)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	for _, other := range existing {
		if other.Slot.Overlaps(slot) {
			return nil, domain.ErrSlotConflict
		}
	}

	now := time.Now()
	appt, scheduled, err := domain.Schedule(uuid.NewString(), cmd.BusinessID, cmd.ClientID, cmd.StaffID, cmd.ServiceID, cmd.Date, slot, cmd.Notes, now)
	if err != nil {
		return nil, err
	}

	if !availability.ApplyAppointment(slot) {
		return nil, domain.ErrSlotUnavailable
	}

	if err := s.store.SaveBooking(ctx, appt, availability); err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			return nil, domain.ErrSlotConflict
		}
		return nil, fmt.Errorf("save booking: %w", err)
	}

	s.publisher.Publish(ctx, scheduled, domain.StaffAvailabilityUpdated{
		StaffID:    availability.StaffID,
		BusinessID: availability.BusinessID,
		Date:       availability.Date,
		At:         now,
	})
	return appt, nil
}

func (s *bookingService) Cancel(ctx context.Context, cmd domain.CancelAppointmentCommand) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	appt, err := s.apptRepo.GetByID(ctx, cmd.AppointmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	now := time.Now()
	switch cmd.RequesterID {
	case appt.ClientID:
		// clients may cancel their own appointments at any time
	case appt.StaffID:
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, appt.Date.Location())
		if appt.Date.Before(today) {
			return nil, fmt.Errorf("cannot cancel a past appointment: %w", domain.ErrInvalidInput)
		}
	default:
		return nil, domain.ErrAccessDenied
	}

	cancelled, ev, err := appt.Cancel(cmd.Reason, now)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		// already cancelled; nothing to persist or publish
		return cancelled, nil
	}

	if err := s.apptRepo.Update(ctx, cancelled); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	s.publisher.Publish(ctx, ev)
	return cancelled, nil
}

func (s *bookingService) Confirm(ctx context.Context, appointmentID string) (*domain.Appointment, error) {
	return s.transition(ctx, appointmentID, func(a *domain.Appointment, now time.Time) (*domain.Appointment, domain.Event, error) {
		return a.Confirm(now)
	})
}

func (s *bookingService) Complete(ctx context.Context, appointmentID string) (*domain.Appointment, error) {
	return s.transition(ctx, appointmentID, func(a *domain.Appointment, now time.Time) (*domain.Appointment, domain.Event, error) {
		return a.Complete(now)
	})
}

func (s *bookingService) MarkNoShow(ctx context.Context, appointmentID string) (*domain.Appointment, error) {
	return s.transition(ctx, appointmentID, func(a *domain.Appointment, now time.Time) (*domain.Appointment, domain.Event, error) {
		return a.MarkNoShow(now)
	})
}

// transition is the shared load -> transition -> persist -> publish flow.
func (s *bookingService) transition(ctx context.Context, appointmentID string,
	apply func(*domain.Appointment, time.Time) (*domain.Appointment, domain.Event, error),
) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	appt, err := s.apptRepo.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	next, ev, err := apply(appt, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.apptRepo.Update(ctx, next); err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}
	s.publisher.Publish(ctx, ev)
	return next, nil
}
