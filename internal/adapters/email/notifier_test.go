package email

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multitenantbooking/internal/domain"
)

type sentMail struct {
	to      string
	subject string
	html    string
	text    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html, text: text})
	return nil
}

type fakeContacts struct {
	name  string
	email string
	err   error
}

func (f *fakeContacts) GetClientContact(ctx context.Context, clientID string) (string, string, error) {
	return f.name, f.email, f.err
}

type fakeDirectory struct{}

func (fakeDirectory) GetStaff(ctx context.Context, staffID string) (*domain.StaffInfo, error) {
	return &domain.StaffInfo{ID: staffID, Name: "Maya", BusinessName: "Shear Genius"}, nil
}

func (fakeDirectory) GetClientName(ctx context.Context, clientID string) (string, error) {
	return "Jo", nil
}

type fakeCatalog struct{}

func (fakeCatalog) GetService(ctx context.Context, serviceID string) (*domain.ServiceInfo, error) {
	return &domain.ServiceInfo{ID: serviceID, Name: "Haircut", DurationMinutes: 30}, nil
}

func eventData() domain.AppointmentEventData {
	start, _ := domain.ParseTimeOfDay("09:00")
	return domain.AppointmentEventData{
		AppointmentID: "appt-1",
		BusinessID:    "biz-1",
		ClientID:      "client-1",
		StaffID:       "staff-1",
		ServiceID:     "svc-haircut",
		Date:          time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		Slot:          domain.TimeSlot{Start: start, End: start.AddMinutes(30)},
		At:            time.Now(),
	}
}

func newNotifier(mailer *fakeMailer, contacts *fakeContacts) *BookingNotifier {
	return NewBookingNotifier(mailer, contacts, fakeDirectory{}, fakeCatalog{}, slog.New(slog.DiscardHandler))
}

func TestBookingNotifier_Scheduled(t *testing.T) {
	mailer := &fakeMailer{}
	n := newNotifier(mailer, &fakeContacts{name: "Jo", email: "jo@example.com"})

	err := n.HandleEvent(context.Background(), domain.AppointmentScheduled{AppointmentEventData: eventData()})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	mail := mailer.sent[0]
	assert.Equal(t, "jo@example.com", mail.to)
	assert.Equal(t, "Your appointment at Shear Genius is booked", mail.subject)
	assert.Contains(t, mail.text, "Haircut")
	assert.Contains(t, mail.text, "Maya")
	assert.Contains(t, mail.text, "Monday, 10 June 2024")
	assert.Contains(t, mail.text, "09:00 - 09:30")
	assert.Contains(t, mail.html, "Haircut")
}

func TestBookingNotifier_CancelledWithReason(t *testing.T) {
	mailer := &fakeMailer{}
	n := newNotifier(mailer, &fakeContacts{name: "Jo", email: "jo@example.com"})

	err := n.HandleEvent(context.Background(), domain.AppointmentCancelled{
		AppointmentEventData: eventData(),
		Reason:               "staff unavailable",
	})
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].text, "staff unavailable")
}

func TestBookingNotifier_SkipsWithoutEmail(t *testing.T) {
	mailer := &fakeMailer{}
	n := newNotifier(mailer, &fakeContacts{name: "Jo", email: ""})

	err := n.HandleEvent(context.Background(), domain.AppointmentScheduled{AppointmentEventData: eventData()})
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestBookingNotifier_IgnoresOtherEvents(t *testing.T) {
	mailer := &fakeMailer{}
	n := newNotifier(mailer, &fakeContacts{name: "Jo", email: "jo@example.com"})

	err := n.HandleEvent(context.Background(), domain.StaffAvailabilityUpdated{StaffID: "staff-1"})
	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestBookingNotifier_ContactLookupFailure(t *testing.T) {
	mailer := &fakeMailer{}
	n := newNotifier(mailer, &fakeContacts{err: errors.New("db down")})

	err := n.HandleEvent(context.Background(), domain.AppointmentScheduled{AppointmentEventData: eventData()})
	require.Error(t, err)
	assert.Empty(t, mailer.sent)
}
