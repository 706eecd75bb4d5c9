package services

import (
	"context"
	"fmt"
	"time"

	"multitenantbooking/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func slotOf(start, end string) domain.TimeSlot {
	s, err := domain.ParseTimeOfDay(start)
	if err != nil {
		panic(err)
	}
	e, err := domain.ParseTimeOfDay(end)
	if err != nil {
		panic(err)
	}
	return domain.TimeSlot{Start: s, End: e}
}

func timeOf(s string) domain.TimeOfDay {
	t, err := domain.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// fakeApptRepo is an in-memory AppointmentRepository.
type fakeApptRepo struct {
	byID      map[string]*domain.Appointment
	listErr   error
	updateErr error
}

func newFakeApptRepo(appts ...*domain.Appointment) *fakeApptRepo {
	f := &fakeApptRepo{byID: make(map[string]*domain.Appointment)}
	for _, a := range appts {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeApptRepo) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeApptRepo) ListActiveByStaffAndDate(ctx context.Context, staffID string, date time.Time) ([]*domain.Appointment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Appointment
	for _, a := range f.byID {
		if a.StaffID == staffID && a.Date.Equal(date) && a.Status != domain.StatusCancelled {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeApptRepo) Update(ctx context.Context, appt *domain.Appointment) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[appt.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[appt.ID] = appt
	return nil
}

// fakeAvailabilityRepo is an in-memory AvailabilityRepository keyed by staff+date.
type fakeAvailabilityRepo struct {
	records map[string]*domain.StaffDailyAvailability
	saveErr error
}

func availKey(staffID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", staffID, date.Format("2006-01-02"))
}

func newFakeAvailabilityRepo(records ...*domain.StaffDailyAvailability) *fakeAvailabilityRepo {
	f := &fakeAvailabilityRepo{records: make(map[string]*domain.StaffDailyAvailability)}
	for _, r := range records {
		f.records[availKey(r.StaffID, r.Date)] = r
	}
	return f
}

func (f *fakeAvailabilityRepo) GetByStaffAndDate(ctx context.Context, staffID string, date time.Time) (*domain.StaffDailyAvailability, error) {
	if r, ok := f.records[availKey(staffID, date)]; ok {
		return r, nil
	}
	return nil, domain.ErrNoAvailability
}

func (f *fakeAvailabilityRepo) Save(ctx context.Context, availability *domain.StaffDailyAvailability) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records[availKey(availability.StaffID, availability.Date)] = availability
	return nil
}

func (f *fakeAvailabilityRepo) Delete(ctx context.Context, staffID string, date time.Time) error {
	delete(f.records, availKey(staffID, date))
	return nil
}

// fakeBookingStore records the appointments it saved; err makes SaveBooking fail.
type fakeBookingStore struct {
	availability *fakeAvailabilityRepo
	appts        *fakeApptRepo
	saved        []*domain.Appointment
	err          error
}

func (f *fakeBookingStore) SaveBooking(ctx context.Context, appt *domain.Appointment, availability *domain.StaffDailyAvailability) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, appt)
	if f.appts != nil {
		f.appts.byID[appt.ID] = appt
	}
	if f.availability != nil {
		f.availability.records[availKey(availability.StaffID, availability.Date)] = availability
	}
	return nil
}

// fakeEligibility answers from a fixed staff -> services map.
type fakeEligibility struct {
	services map[string][]*domain.ServiceInfo
	err      error
}

func (f *fakeEligibility) CanPerform(ctx context.Context, staffID, serviceID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, svc := range f.services[staffID] {
		if svc.ID == serviceID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEligibility) ServicesForStaff(ctx context.Context, staffID string) ([]*domain.ServiceInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.services[staffID], nil
}

func (f *fakeEligibility) StaffForService(ctx context.Context, serviceID string) ([]*domain.StaffInfo, error) {
	return nil, nil
}

// fakeCatalog returns services from a fixed map.
type fakeCatalog struct {
	services map[string]*domain.ServiceInfo
}

func (f *fakeCatalog) GetService(ctx context.Context, serviceID string) (*domain.ServiceInfo, error) {
	if svc, ok := f.services[serviceID]; ok {
		return svc, nil
	}
	return nil, domain.ErrServiceNotFound
}

// fakeDirectory returns staff and client names from fixed maps.
type fakeDirectory struct {
	staff       map[string]*domain.StaffInfo
	clientNames map[string]string
	clientErr   error
}

func (f *fakeDirectory) GetStaff(ctx context.Context, staffID string) (*domain.StaffInfo, error) {
	if s, ok := f.staff[staffID]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDirectory) GetClientName(ctx context.Context, clientID string) (string, error) {
	if f.clientErr != nil {
		return "", f.clientErr
	}
	if name, ok := f.clientNames[clientID]; ok {
		return name, nil
	}
	return "", domain.ErrNotFound
}

// fakePublisher collects published events.
type fakePublisher struct {
	events []domain.Event
}

func (f *fakePublisher) Publish(ctx context.Context, events ...domain.Event) {
	f.events = append(f.events, events...)
}

func (f *fakePublisher) names() []string {
	var out []string
	for _, ev := range f.events {
		out = append(out, ev.EventName())
	}
	return out
}

// fakeReadModels is an in-memory ReadModelRepository.
type fakeReadModels struct {
	slots      map[string][]*domain.AvailableBookingSlot // keyed by staff|date
	schedules  map[string][]*domain.StaffScheduleEntry
	views      map[string]*domain.ClientAppointmentView
	replaceErr error
	listErr    error
}

func newFakeReadModels() *fakeReadModels {
	return &fakeReadModels{
		slots:     make(map[string][]*domain.AvailableBookingSlot),
		schedules: make(map[string][]*domain.StaffScheduleEntry),
		views:     make(map[string]*domain.ClientAppointmentView),
	}
}

func (f *fakeReadModels) ReplaceForStaffDate(ctx context.Context, staffID string, date time.Time, slots []*domain.AvailableBookingSlot, schedule []*domain.StaffScheduleEntry) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	key := availKey(staffID, date)
	f.slots[key] = slots
	f.schedules[key] = schedule
	return nil
}

func (f *fakeReadModels) DeleteSlotsOverlapping(ctx context.Context, staffID string, date time.Time, slot domain.TimeSlot) error {
	key := availKey(staffID, date)
	var kept []*domain.AvailableBookingSlot
	for _, row := range f.slots[key] {
		if !row.Slot.Overlaps(slot) {
			kept = append(kept, row)
		}
	}
	f.slots[key] = kept
	return nil
}

func (f *fakeReadModels) ListSlots(ctx context.Context, businessID, serviceID string, date time.Time, staffID string) ([]*domain.AvailableBookingSlot, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.AvailableBookingSlot
	for _, rows := range f.slots {
		for _, row := range rows {
			if row.BusinessID != businessID || row.ServiceID != serviceID || !row.Date.Equal(date) {
				continue
			}
			if staffID != "" && row.StaffID != staffID {
				continue
			}
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeReadModels) ListSlotsInRange(ctx context.Context, businessID, serviceID string, from, to time.Time, staffID string) ([]*domain.AvailableBookingSlot, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.AvailableBookingSlot
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		rows, err := f.ListSlots(ctx, businessID, serviceID, d, staffID)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (f *fakeReadModels) ListScheduleForStaffDate(ctx context.Context, staffID string, date time.Time) ([]*domain.StaffScheduleEntry, error) {
	return f.schedules[availKey(staffID, date)], nil
}

func (f *fakeReadModels) UpsertClientAppointment(ctx context.Context, view *domain.ClientAppointmentView) error {
	f.views[view.AppointmentID] = view
	return nil
}

func (f *fakeReadModels) ListClientAppointments(ctx context.Context, clientID string) ([]*domain.ClientAppointmentView, error) {
	var out []*domain.ClientAppointmentView
	for _, v := range f.views {
		if v.ClientID == clientID {
			out = append(out, v)
		}
	}
	return out, nil
}
