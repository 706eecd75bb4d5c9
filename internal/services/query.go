package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"multitenantbooking/internal/domain"
)

// SlotCache is a read-through cache for available-slot queries. Entries are
// short-lived; the read model in Postgres stays authoritative and a cache miss
// always falls through to it.
type SlotCache interface {
	Get(ctx context.Context, key string) ([]*domain.AvailableBookingSlot, bool)
	Set(ctx context.Context, key string, slots []*domain.AvailableBookingSlot)
}

// noopSlotCache is used when no cache backend is configured.
type noopSlotCache struct{}

func (noopSlotCache) Get(context.Context, string) ([]*domain.AvailableBookingSlot, bool) {
	return nil, false
}
func (noopSlotCache) Set(context.Context, string, []*domain.AvailableBookingSlot) {}

// NoopSlotCache returns a SlotCache that never hits.
func NoopSlotCache() SlotCache { return noopSlotCache{} }

type slotQueryService struct {
	readModels     domain.ReadModelRepository
	cache          SlotCache
	horizonDays    int
	contextTimeout time.Duration
}

// NewSlotQueryService builds the read-side query service. horizonDays bounds
// the FindAlternativeSlots search into future days.
func NewSlotQueryService(readModels domain.ReadModelRepository, cache SlotCache, horizonDays int, timeout time.Duration) domain.SlotQueryService {
	if cache == nil {
		cache = NoopSlotCache()
	}
	return &slotQueryService{
		readModels:     readModels,
		cache:          cache,
		horizonDays:    horizonDays,
		contextTimeout: timeout,
	}
}

func slotCacheKey(businessID, serviceID string, date time.Time, staffID string) string {
	return fmt.Sprintf("slots:%s:%s:%s:%s", businessID, serviceID, date.Format("2006-01-02"), staffID)
}

func (s *slotQueryService) IsSlotAvailable(ctx context.Context, businessID, staffID, serviceID string, date time.Time, start domain.TimeOfDay) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	slots, err := s.GetAvailableSlots(ctx, businessID, serviceID, date, staffID)
	if err != nil {
		return false, err
	}
	for _, slot := range slots {
		if slot.Slot.Start == start {
			return true, nil
		}
	}
	return false, nil
}

func (s *slotQueryService) GetAvailableSlots(ctx context.Context, businessID, serviceID string, date time.Time, staffID string) ([]*domain.AvailableBookingSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	key := slotCacheKey(businessID, serviceID, date, staffID)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	slots, err := s.readModels.ListSlots(ctx, businessID, serviceID, date, staffID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	if slots == nil {
		slots = []*domain.AvailableBookingSlot{}
	}
	s.cache.Set(ctx, key, slots)
	return slots, nil
}

func (s *slotQueryService) FindAlternativeSlots(ctx context.Context, businessID, serviceID, staffID string, preferredDate time.Time, preferredStart domain.TimeOfDay, maxResults int) ([]*domain.AvailableBookingSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if maxResults <= 0 {
		return []*domain.AvailableBookingSlot{}, nil
	}

	sameDay, err := s.readModels.ListSlots(ctx, businessID, serviceID, preferredDate, staffID)
	if err != nil {
		return nil, fmt.Errorf("list same-day slots: %w", err)
	}
	// closest to the preferred time first
	sort.SliceStable(sameDay, func(i, j int) bool {
		return absMinutes(sameDay[i].Slot.Start, preferredStart) < absMinutes(sameDay[j].Slot.Start, preferredStart)
	})

	out := make([]*domain.AvailableBookingSlot, 0, maxResults)
	for _, slot := range sameDay {
		if len(out) == maxResults {
			return out, nil
		}
		out = append(out, slot)
	}

	from := preferredDate.AddDate(0, 0, 1)
	to := preferredDate.AddDate(0, 0, s.horizonDays)
	future, err := s.readModels.ListSlotsInRange(ctx, businessID, serviceID, from, to, staffID)
	if err != nil {
		return nil, fmt.Errorf("list future slots: %w", err)
	}
	for _, slot := range future {
		if len(out) == maxResults {
			break
		}
		out = append(out, slot)
	}
	return out, nil
}

func (s *slotQueryService) GetStaffSchedule(ctx context.Context, staffID string, date time.Time) ([]*domain.StaffScheduleEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entries, err := s.readModels.ListScheduleForStaffDate(ctx, staffID, date)
	if err != nil {
		return nil, fmt.Errorf("list staff schedule: %w", err)
	}
	if entries == nil {
		entries = []*domain.StaffScheduleEntry{}
	}
	return entries, nil
}

func (s *slotQueryService) GetClientAppointments(ctx context.Context, clientID string) ([]*domain.ClientAppointmentView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	views, err := s.readModels.ListClientAppointments(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client appointments: %w", err)
	}
	if views == nil {
		views = []*domain.ClientAppointmentView{}
	}
	return views, nil
}

func absMinutes(a, b domain.TimeOfDay) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
