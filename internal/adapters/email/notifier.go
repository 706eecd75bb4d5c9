package email

import (
	"context"
	"fmt"
	"log/slog"

	"multitenantbooking/internal/domain"
)

// ClientContacts resolves a client ID to a display name and email address.
// Implemented by the postgres directory repository.
type ClientContacts interface {
	GetClientContact(ctx context.Context, clientID string) (name, email string, err error)
}

// appointmentEmailData feeds the appointment_* templates.
type appointmentEmailData struct {
	ClientName   string
	StaffName    string
	BusinessName string
	ServiceName  string
	Date         string
	Start        string
	End          string
	Reason       string
}

// BookingNotifier emails clients about appointment lifecycle changes. It is
// registered as an event handler; a failed send is reported to the dispatcher
// and logged, never retried here.
type BookingNotifier struct {
	mailer    domain.Mailer
	contacts  ClientContacts
	directory domain.StaffDirectory
	catalog   domain.ServiceCatalog
	renderer  *templateRenderer
	logger    *slog.Logger
}

func NewBookingNotifier(mailer domain.Mailer,
	contacts ClientContacts,
	directory domain.StaffDirectory,
	catalog domain.ServiceCatalog,
	logger *slog.Logger,
) *BookingNotifier {
	return &BookingNotifier{
		mailer:    mailer,
		contacts:  contacts,
		directory: directory,
		catalog:   catalog,
		renderer:  &templateRenderer{},
		logger:    logger,
	}
}

func (n *BookingNotifier) HandleEvent(ctx context.Context, event domain.Event) error {
	switch ev := event.(type) {
	case domain.AppointmentScheduled:
		return n.notify(ctx, "appointment_scheduled", ev.AppointmentEventData, "")
	case domain.AppointmentConfirmed:
		return n.notify(ctx, "appointment_confirmed", ev.AppointmentEventData, "")
	case domain.AppointmentCancelled:
		return n.notify(ctx, "appointment_cancelled", ev.AppointmentEventData, ev.Reason)
	default:
		return nil
	}
}

func (n *BookingNotifier) notify(ctx context.Context, templateName string, data domain.AppointmentEventData, reason string) error {
	clientName, clientEmail, err := n.contacts.GetClientContact(ctx, data.ClientID)
	if err != nil {
		return fmt.Errorf("lookup client contact: %w", err)
	}
	if clientEmail == "" {
		n.logger.Info("client has no email address, skipping notification",
			"client_id", data.ClientID,
			"appointment_id", data.AppointmentID)
		return nil
	}

	staff, err := n.directory.GetStaff(ctx, data.StaffID)
	if err != nil {
		return fmt.Errorf("lookup staff: %w", err)
	}
	service, err := n.catalog.GetService(ctx, data.ServiceID)
	if err != nil {
		return fmt.Errorf("lookup service: %w", err)
	}

	payload := appointmentEmailData{
		ClientName:   clientName,
		StaffName:    staff.Name,
		BusinessName: staff.BusinessName,
		ServiceName:  service.Name,
		Date:         data.Date.Format("Monday, 2 January 2006"),
		Start:        data.Slot.Start.String(),
		End:          data.Slot.End.String(),
		Reason:       reason,
	}
	subject, html, text, err := n.renderer.render(templateName, payload)
	if err != nil {
		return fmt.Errorf("render %s email: %w", templateName, err)
	}
	if err := n.mailer.Send(clientEmail, subject, html, text); err != nil {
		return fmt.Errorf("send %s email: %w", templateName, err)
	}
	n.logger.Info("notification sent",
		"template", templateName,
		"appointment_id", data.AppointmentID)
	return nil
}
