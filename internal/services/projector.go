package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"multitenantbooking/internal/domain"
)

// fallbackClientName is shown when the client display-name lookup fails.
// Display-only; the authoritative client ID is always carried alongside.
const fallbackClientName = "Client"

// Projector keeps the derived read models consistent with the authoritative
// booking state. Projections are always deleted and fully regenerated for a
// (staff, date), never incrementally patched, so a retried rebuild is
// idempotent and the read model cannot drift.
type Projector struct {
	readModels       domain.ReadModelRepository
	availabilityRepo domain.AvailabilityRepository
	apptRepo         domain.AppointmentRepository
	eligibility      domain.StaffServiceEligibility
	catalog          domain.ServiceCatalog
	directory        domain.StaffDirectory
	slotStepMinutes  int
	logger           *slog.Logger
}

func NewProjector(readModels domain.ReadModelRepository,
	availabilityRepo domain.AvailabilityRepository,
	apptRepo domain.AppointmentRepository,
	eligibility domain.StaffServiceEligibility,
	catalog domain.ServiceCatalog,
	directory domain.StaffDirectory,
	slotStepMinutes int,
	logger *slog.Logger,
) *Projector {
	return &Projector{
		readModels:       readModels,
		availabilityRepo: availabilityRepo,
		apptRepo:         apptRepo,
		eligibility:      eligibility,
		catalog:          catalog,
		directory:        directory,
		slotStepMinutes:  slotStepMinutes,
		logger:           logger,
	}
}

// HandleEvent dispatches one domain event to the matching projection update.
func (p *Projector) HandleEvent(ctx context.Context, ev domain.Event) error {
	switch e := ev.(type) {
	case domain.StaffAvailabilityUpdated:
		return p.RebuildStaffDate(ctx, e.StaffID, e.Date)
	case domain.AppointmentScheduled:
		return p.onAppointmentChanged(ctx, e.AppointmentEventData, domain.StatusScheduled, "")
	case domain.AppointmentCancelled:
		return p.onAppointmentChanged(ctx, e.AppointmentEventData, domain.StatusCancelled, e.Reason)
	case domain.AppointmentConfirmed:
		return p.refreshClientView(ctx, e.AppointmentEventData, domain.StatusConfirmed, "")
	case domain.AppointmentCompleted:
		return p.refreshClientView(ctx, e.AppointmentEventData, domain.StatusCompleted, "")
	case domain.AppointmentNoShow:
		return p.refreshClientView(ctx, e.AppointmentEventData, domain.StatusNoShow, "")
	default:
		return nil
	}
}

// RebuildStaffDate regenerates all booking-slot and schedule rows for the
// staff member's date from the write model.
func (p *Projector) RebuildStaffDate(ctx context.Context, staffID string, date time.Time) error {
	availability, err := p.availabilityRepo.GetByStaffAndDate(ctx, staffID, date)
	if err != nil {
		if errors.Is(err, domain.ErrNoAvailability) {
			// nothing to project; clear any stale rows
			return p.readModels.ReplaceForStaffDate(ctx, staffID, date, nil, nil)
		}
		return fmt.Errorf("get availability: %w", err)
	}

	servicesForStaff, err := p.eligibility.ServicesForStaff(ctx, staffID)
	if err != nil {
		return fmt.Errorf("list staff services: %w", err)
	}
	if len(servicesForStaff) == 0 {
		return p.readModels.ReplaceForStaffDate(ctx, staffID, date, nil, nil)
	}

	staff, err := p.directory.GetStaff(ctx, staffID)
	if err != nil {
		return fmt.Errorf("get staff: %w", err)
	}

	appointments, err := p.apptRepo.ListActiveByStaffAndDate(ctx, staffID, date)
	if err != nil {
		return fmt.Errorf("list appointments: %w", err)
	}

	slots := BuildBookingSlots(availability, appointments, servicesForStaff, staff, p.slotStepMinutes)
	schedule := p.buildStaffSchedule(ctx, availability, appointments, staff)

	if err := p.readModels.ReplaceForStaffDate(ctx, staffID, date, slots, schedule); err != nil {
		return fmt.Errorf("replace read model rows: %w", err)
	}
	return nil
}

func (p *Projector) onAppointmentChanged(ctx context.Context, data domain.AppointmentEventData, status domain.AppointmentStatus, reason string) error {
	if err := p.readModels.DeleteSlotsOverlapping(ctx, data.StaffID, data.Date, data.Slot); err != nil {
		return fmt.Errorf("delete overlapping slots: %w", err)
	}
	if err := p.RebuildStaffDate(ctx, data.StaffID, data.Date); err != nil {
		return err
	}
	return p.refreshClientView(ctx, data, status, reason)
}

func (p *Projector) refreshClientView(ctx context.Context, data domain.AppointmentEventData, status domain.AppointmentStatus, notes string) error {
	view := &domain.ClientAppointmentView{
		AppointmentID: data.AppointmentID,
		BusinessID:    data.BusinessID,
		ClientID:      data.ClientID,
		ClientName:    p.clientDisplayName(ctx, data.ClientID),
		StaffID:       data.StaffID,
		ServiceID:     data.ServiceID,
		Date:          data.Date,
		Slot:          data.Slot,
		Status:        status,
		Notes:         notes,
	}
	if staff, err := p.directory.GetStaff(ctx, data.StaffID); err == nil {
		view.StaffName = staff.Name
		view.BusinessName = staff.BusinessName
	}
	if svc, err := p.catalog.GetService(ctx, data.ServiceID); err == nil {
		view.ServiceName = svc.Name
	}
	if err := p.readModels.UpsertClientAppointment(ctx, view); err != nil {
		return fmt.Errorf("upsert client appointment view: %w", err)
	}
	return nil
}

// clientDisplayName resolves the client's display name, falling back to a
// placeholder when the lookup fails. The fallback is explicit: the view row is
// still written, only the display field degrades.
func (p *Projector) clientDisplayName(ctx context.Context, clientID string) string {
	name, err := p.directory.GetClientName(ctx, clientID)
	if err != nil || name == "" {
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			p.logger.WarnContext(ctx, "client name lookup failed", "client_id", clientID, "err", err)
		}
		return fallbackClientName
	}
	return name
}

func (p *Projector) buildStaffSchedule(ctx context.Context, availability *domain.StaffDailyAvailability, appointments []*domain.Appointment, staff *domain.StaffInfo) []*domain.StaffScheduleEntry {
	entries := make([]*domain.StaffScheduleEntry, 0, len(availability.Slots)+len(appointments))
	for _, free := range availability.Slots {
		entries = append(entries, &domain.StaffScheduleEntry{
			StaffID:    availability.StaffID,
			StaffName:  staff.Name,
			BusinessID: availability.BusinessID,
			Date:       availability.Date,
			Slot:       free,
			Kind:       domain.ScheduleEntryFree,
		})
	}
	for _, appt := range appointments {
		entry := &domain.StaffScheduleEntry{
			StaffID:       availability.StaffID,
			StaffName:     staff.Name,
			BusinessID:    availability.BusinessID,
			Date:          availability.Date,
			Slot:          appt.Slot,
			Kind:          domain.ScheduleEntryBooked,
			AppointmentID: appt.ID,
			ClientName:    p.clientDisplayName(ctx, appt.ClientID),
		}
		if svc, err := p.catalog.GetService(ctx, appt.ServiceID); err == nil {
			entry.ServiceName = svc.Name
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Slot.Start < entries[j].Slot.Start })
	return entries
}

// BuildBookingSlots is the pure regeneration step: availability minus
// non-cancelled appointments, crossed with the staff member's services,
// expanded into concrete start times on a fixed-step grid. For each free
// sub-interval a service produces one offer per step while the full service
// duration still fits.
func BuildBookingSlots(availability *domain.StaffDailyAvailability, appointments []*domain.Appointment, servicesForStaff []*domain.ServiceInfo, staff *domain.StaffInfo, stepMinutes int) []*domain.AvailableBookingSlot {
	if stepMinutes <= 0 {
		return nil
	}
	booked := make([]domain.TimeSlot, 0, len(appointments))
	for _, appt := range appointments {
		booked = append(booked, appt.Slot)
	}
	sort.Slice(booked, func(i, j int) bool { return booked[i].Start < booked[j].Start })

	var rows []*domain.AvailableBookingSlot
	for _, free := range availability.Slots {
		for _, sub := range subtractBooked(free, booked) {
			for _, svc := range servicesForStaff {
				for start := sub.Start; start.AddMinutes(svc.DurationMinutes) <= sub.End; start = start.AddMinutes(stepMinutes) {
					rows = append(rows, &domain.AvailableBookingSlot{
						BusinessID:             availability.BusinessID,
						ServiceID:              svc.ID,
						StaffID:                availability.StaffID,
						Date:                   availability.Date,
						Slot:                   domain.TimeSlot{Start: start, End: start.AddMinutes(svc.DurationMinutes)},
						ServiceDurationMinutes: svc.DurationMinutes,
						ServiceName:            svc.Name,
						StaffName:              staff.Name,
						ServicePriceCents:      svc.PriceCents,
					})
				}
			}
		}
	}
	return rows
}

// subtractBooked sweeps across a free interval, advancing past each booked
// interval in time order, and returns the remaining free sub-intervals.
func subtractBooked(free domain.TimeSlot, booked []domain.TimeSlot) []domain.TimeSlot {
	var out []domain.TimeSlot
	cursor := free.Start
	for _, b := range booked {
		if !free.Overlaps(b) {
			continue
		}
		if b.Start > cursor {
			out = append(out, domain.TimeSlot{Start: cursor, End: b.Start})
		}
		if b.End > cursor {
			cursor = b.End
		}
	}
	if cursor < free.End {
		out = append(out, domain.TimeSlot{Start: cursor, End: free.End})
	}
	return out
}
