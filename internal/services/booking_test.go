package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multitenantbooking/internal/domain"
)

const testTimeout = 2 * time.Second

type bookingFixture struct {
	appts     *fakeApptRepo
	avail     *fakeAvailabilityRepo
	store     *fakeBookingStore
	publisher *fakePublisher
	svc       domain.BookingService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	appts := newFakeApptRepo()
	avail := newFakeAvailabilityRepo()
	store := &fakeBookingStore{appts: appts, availability: avail}
	publisher := &fakePublisher{}
	haircut := &domain.ServiceInfo{ID: "svc-haircut", BusinessID: "biz-1", Name: "Haircut", DurationMinutes: 30, PriceCents: 3500}
	eligibility := &fakeEligibility{services: map[string][]*domain.ServiceInfo{"staff-1": {haircut}}}
	catalog := &fakeCatalog{services: map[string]*domain.ServiceInfo{"svc-haircut": haircut}}

	return &bookingFixture{
		appts:     appts,
		avail:     avail,
		store:     store,
		publisher: publisher,
		svc:       NewBookingService(appts, avail, store, eligibility, catalog, publisher, testTimeout),
	}
}

func (f *bookingFixture) withAvailability(t *testing.T, date time.Time, slots ...domain.TimeSlot) {
	t.Helper()
	av := domain.NewStaffDailyAvailability("av-1", "staff-1", "biz-1", date)
	for _, s := range slots {
		_, err := av.AddTimeSlot(s, time.Now())
		require.NoError(t, err)
	}
	require.NoError(t, f.avail.Save(context.Background(), av))
}

func bookCmd(start string) domain.BookAppointmentCommand {
	return domain.BookAppointmentCommand{
		BusinessID: "biz-1",
		ClientID:   "client-1",
		StaffID:    "staff-1",
		ServiceID:  "svc-haircut",
		Date:       day(2024, time.June, 10),
		StartTime:  timeOf(start),
	}
}

func TestBookingService_Book(t *testing.T) {
	ctx := context.Background()
	date := day(2024, time.June, 10)

	t.Run("books an open slot and carves availability", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withAvailability(t, date, slotOf("09:00", "12:00"))

		appt, err := f.svc.Book(ctx, bookCmd("09:00"))
		require.NoError(t, err)
		require.Equal(t, domain.StatusScheduled, appt.Status)
		require.Equal(t, slotOf("09:00", "09:30"), appt.Slot)
		require.Len(t, f.store.saved, 1)

		av, err := f.avail.GetByStaffAndDate(ctx, "staff-1", date)
		require.NoError(t, err)
		require.Equal(t, []domain.TimeSlot{slotOf("09:30", "12:00")}, av.Slots)

		require.Equal(t, []string{"appointment.scheduled", "availability.updated"}, f.publisher.names())
	})

	t.Run("overlapping second booking fails, adjacent succeeds", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withAvailability(t, date, slotOf("09:00", "12:00"))

		_, err := f.svc.Book(ctx, bookCmd("09:00"))
		require.NoError(t, err)

		_, err = f.svc.Book(ctx, bookCmd("09:15"))
		require.ErrorIs(t, err, domain.ErrSlotUnavailable)

		appt, err := f.svc.Book(ctx, bookCmd("09:30"))
		require.NoError(t, err)
		require.Equal(t, slotOf("09:30", "10:00"), appt.Slot)
	})

	t.Run("ineligible staff", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withAvailability(t, date, slotOf("09:00", "12:00"))

		cmd := bookCmd("09:00")
		cmd.ServiceID = "svc-massage"
		_, err := f.svc.Book(ctx, cmd)
		require.ErrorIs(t, err, domain.ErrIneligibleStaff)
		require.Empty(t, f.store.saved)
	})

	t.Run("unknown service", func(t *testing.T) {
		f := newBookingFixture(t)
		// eligible for a service the catalog no longer knows
		ghost := &domain.ServiceInfo{ID: "svc-ghost", DurationMinutes: 30}
		f.svc = NewBookingService(f.appts, f.avail, f.store,
			&fakeEligibility{services: map[string][]*domain.ServiceInfo{"staff-1": {ghost}}},
			&fakeCatalog{services: map[string]*domain.ServiceInfo{}},
			f.publisher, testTimeout)

		cmd := bookCmd("09:00")
		cmd.ServiceID = "svc-ghost"
		_, err := f.svc.Book(ctx, cmd)
		require.ErrorIs(t, err, domain.ErrServiceNotFound)
	})

	t.Run("no availability for the date", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.Book(ctx, bookCmd("09:00"))
		require.ErrorIs(t, err, domain.ErrNoAvailability)
	})

	t.Run("slot outside availability", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withAvailability(t, date, slotOf("09:00", "10:00"))

		_, err := f.svc.Book(ctx, bookCmd("09:45"))
		require.ErrorIs(t, err, domain.ErrSlotUnavailable)
	})

	t.Run("conflicting active appointment detected by pre-check", func(t *testing.T) {
		f := newBookingFixture(t)
		// availability not yet carved for the competing appointment, as
		// happens when two bookers raced
		f.withAvailability(t, date, slotOf("09:00", "12:00"))
		competing, _, err := domain.Schedule("appt-race", "biz-1", "client-2", "staff-1", "svc-haircut", date, slotOf("09:00", "09:30"), "", time.Now())
		require.NoError(t, err)
		f.appts.byID[competing.ID] = competing

		_, err = f.svc.Book(ctx, bookCmd("09:15"))
		require.ErrorIs(t, err, domain.ErrSlotConflict)
	})

	t.Run("cancelled appointment does not block rebooking", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withAvailability(t, date, slotOf("09:00", "12:00"))
		cancelled, _, err := domain.Schedule("appt-old", "biz-1", "client-2", "staff-1", "svc-haircut", date, slotOf("09:00", "09:30"), "", time.Now())
		require.NoError(t, err)
		cancelled, _, err = cancelled.Cancel("", time.Now())
		require.NoError(t, err)
		f.appts.byID[cancelled.ID] = cancelled

		_, err = f.svc.Book(ctx, bookCmd("09:00"))
		require.NoError(t, err)
	})

	t.Run("storage conflict translated, no events published", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withAvailability(t, date, slotOf("09:00", "12:00"))
		f.store.err = domain.ErrSlotConflict

		_, err := f.svc.Book(ctx, bookCmd("09:00"))
		require.ErrorIs(t, err, domain.ErrSlotConflict)
		require.Empty(t, f.publisher.events)
	})

	t.Run("storage failure wrapped", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withAvailability(t, date, slotOf("09:00", "12:00"))
		f.store.err = errors.New("db down")

		_, err := f.svc.Book(ctx, bookCmd("09:00"))
		require.Error(t, err)
		require.NotErrorIs(t, err, domain.ErrSlotConflict)
	})
}

func (f *bookingFixture) bookOne(t *testing.T, start string) *domain.Appointment {
	t.Helper()
	f.withAvailability(t, day(2024, time.June, 10), slotOf("09:00", "12:00"))
	appt, err := f.svc.Book(context.Background(), bookCmd(start))
	require.NoError(t, err)
	f.publisher.events = nil
	return appt
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("client cancels own appointment", func(t *testing.T) {
		f := newBookingFixture(t)
		appt := f.bookOne(t, "09:00")

		cancelled, err := f.svc.Cancel(ctx, domain.CancelAppointmentCommand{AppointmentID: appt.ID, RequesterID: "client-1", Reason: "sick"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, cancelled.Status)
		assert.Equal(t, appt.ID, cancelled.ID)
		require.Equal(t, []string{"appointment.cancelled"}, f.publisher.names())
	})

	t.Run("staff cancels future appointment", func(t *testing.T) {
		f := newBookingFixture(t)
		appt := f.bookOne(t, "09:00")
		future := time.Now().AddDate(0, 0, 7)
		appt.Date = day(future.Year(), future.Month(), future.Day())
		f.appts.byID[appt.ID] = appt

		cancelled, err := f.svc.Cancel(ctx, domain.CancelAppointmentCommand{AppointmentID: appt.ID, RequesterID: "staff-1"})
		require.NoError(t, err)
		require.Equal(t, domain.StatusCancelled, cancelled.Status)
	})

	t.Run("staff cannot cancel past appointment", func(t *testing.T) {
		f := newBookingFixture(t)
		appt := f.bookOne(t, "09:00") // dated 2024-06-10, in the past

		_, err := f.svc.Cancel(ctx, domain.CancelAppointmentCommand{AppointmentID: appt.ID, RequesterID: "staff-1"})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("stranger denied", func(t *testing.T) {
		f := newBookingFixture(t)
		appt := f.bookOne(t, "09:00")

		_, err := f.svc.Cancel(ctx, domain.CancelAppointmentCommand{AppointmentID: appt.ID, RequesterID: "someone-else"})
		require.ErrorIs(t, err, domain.ErrAccessDenied)
	})

	t.Run("second cancel is idempotent", func(t *testing.T) {
		f := newBookingFixture(t)
		appt := f.bookOne(t, "09:00")

		first, err := f.svc.Cancel(ctx, domain.CancelAppointmentCommand{AppointmentID: appt.ID, RequesterID: "client-1"})
		require.NoError(t, err)
		require.Len(t, f.publisher.events, 1)

		second, err := f.svc.Cancel(ctx, domain.CancelAppointmentCommand{AppointmentID: appt.ID, RequesterID: "client-1"})
		require.NoError(t, err)
		assert.Equal(t, first.Status, second.Status)
		require.Len(t, f.publisher.events, 1, "no duplicate event")
	})

	t.Run("cancel completed fails", func(t *testing.T) {
		f := newBookingFixture(t)
		appt := f.bookOne(t, "09:00")
		appt.Status = domain.StatusCompleted
		f.appts.byID[appt.ID] = appt

		_, err := f.svc.Cancel(ctx, domain.CancelAppointmentCommand{AppointmentID: appt.ID, RequesterID: "client-1"})
		require.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("unknown appointment", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.Cancel(ctx, domain.CancelAppointmentCommand{AppointmentID: "nope", RequesterID: "client-1"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	f := newBookingFixture(t)
	appt := f.bookOne(t, "09:00")

	// complete before confirm is illegal
	_, err := f.svc.Complete(ctx, appt.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	confirmed, err := f.svc.Confirm(ctx, appt.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, confirmed.Status)

	// confirm twice is illegal
	_, err = f.svc.Confirm(ctx, appt.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	completed, err := f.svc.Complete(ctx, appt.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCompleted, completed.Status)

	require.Equal(t, []string{"appointment.confirmed", "appointment.completed"}, f.publisher.names())
}

func TestBookingService_MarkNoShow(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	appt := f.bookOne(t, "09:00")

	_, err := f.svc.MarkNoShow(ctx, appt.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition, "no-show requires CONFIRMED")

	_, err = f.svc.Confirm(ctx, appt.ID)
	require.NoError(t, err)

	noShow, err := f.svc.MarkNoShow(ctx, appt.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusNoShow, noShow.Status)
}
