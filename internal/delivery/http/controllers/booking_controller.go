package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"multitenantbooking/internal/delivery/http/helpers"
	"multitenantbooking/internal/delivery/http/middleware"
	"multitenantbooking/internal/domain"
)

const dateLayout = "2006-01-02"

// writeDomainError maps domain sentinel errors onto HTTP statuses. Unknown
// errors are logged and returned as 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidTimeRange):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrServiceNotFound),
		errors.Is(err, domain.ErrNoAvailability):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrIneligibleStaff):
		helpers.WriteJSONError(w, http.StatusUnprocessableEntity, helpers.ErrCodeUnprocessable, err.Error())
	case errors.Is(err, domain.ErrSlotOverlap),
		errors.Is(err, domain.ErrAvailabilityConflict),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSlotUnavailable),
		errors.Is(err, domain.ErrSlotConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// BookAppointmentRequest is the request body for POST /appointments.
type BookAppointmentRequest struct {
	BusinessID string `json:"business_id"`
	StaffID    string `json:"staff_id"`
	ServiceID  string `json:"service_id"`
	Date       string `json:"date"`       // YYYY-MM-DD
	StartTime  string `json:"start_time"` // HH:MM
	Notes      string `json:"notes"`
}

// Validate implements Validator.
func (b BookAppointmentRequest) Validate() []string {
	var errs []string
	if b.BusinessID == "" {
		errs = append(errs, "business_id is required")
	}
	if b.StaffID == "" {
		errs = append(errs, "staff_id is required")
	}
	if b.ServiceID == "" {
		errs = append(errs, "service_id is required")
	}
	if _, err := time.Parse(dateLayout, b.Date); err != nil {
		errs = append(errs, "date must be YYYY-MM-DD")
	}
	if _, err := domain.ParseTimeOfDay(b.StartTime); err != nil {
		errs = append(errs, "start_time must be HH:MM")
	}
	return errs
}

// BookConflictResponse is the 409 body for POST /appointments: the conflict
// plus alternative slots the client can book instead.
type BookConflictResponse struct {
	Message      string                         `json:"message"`
	Alternatives []*domain.AvailableBookingSlot `json:"alternatives"`
}

// CancelAppointmentRequest is the request body for cancelling an appointment.
type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

type BookingController struct {
	Logger   *slog.Logger
	Bookings domain.BookingService
	Queries  domain.SlotQueryService

	// AlternativeLimit caps the alternatives attached to a 409 response.
	AlternativeLimit int
}

func NewBookingController(logger *slog.Logger, bookings domain.BookingService, queries domain.SlotQueryService) *BookingController {
	return &BookingController{
		Logger:           logger,
		Bookings:         bookings,
		Queries:          queries,
		AlternativeLimit: 5,
	}
}

// Book godoc
// @Summary Book an appointment
// @Description Books a service with a staff member at a start time inside the staff member's published availability. The authenticated client becomes the appointment's client. On a slot conflict the 409 response carries alternative slots.
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param appointment body BookAppointmentRequest true "Booking request"
// @Success 201 {object} helpers.APIResponse "data contains the scheduled appointment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict; data contains alternatives"
// @Failure 422 {object} helpers.APIResponse "error.code: unprocessable"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /appointments [post]
func (c *BookingController) Book(w http.ResponseWriter, r *http.Request) {
	var req BookAppointmentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	clientID, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	date, _ := time.Parse(dateLayout, req.Date)
	start, _ := domain.ParseTimeOfDay(req.StartTime)

	appt, err := c.Bookings.Book(r.Context(), domain.BookAppointmentCommand{
		BusinessID: req.BusinessID,
		ClientID:   clientID,
		StaffID:    req.StaffID,
		ServiceID:  req.ServiceID,
		Date:       date,
		StartTime:  start,
		Notes:      req.Notes,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) || errors.Is(err, domain.ErrSlotConflict) || errors.Is(err, domain.ErrNoAvailability) {
			c.writeConflictWithAlternatives(w, r, req, date, start, err)
			return
		}
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, appt)
}

// writeConflictWithAlternatives answers a failed booking with nearby open
// slots. The alternative lookup is best-effort; a failure there still returns
// the original conflict.
func (c *BookingController) writeConflictWithAlternatives(w http.ResponseWriter, r *http.Request, req BookAppointmentRequest, date time.Time, start domain.TimeOfDay, cause error) {
	alternatives, err := c.Queries.FindAlternativeSlots(r.Context(), req.BusinessID, req.ServiceID, "", date, start, c.AlternativeLimit)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "alternative slot lookup failed", "err", err)
		alternatives = nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	_ = json.NewEncoder(w).Encode(helpers.APIResponse{
		Data: BookConflictResponse{
			Message:      cause.Error(),
			Alternatives: alternatives,
		},
		Error: &helpers.APIError{Code: helpers.ErrCodeConflict, Message: cause.Error()},
	})
}

// Cancel godoc
// @Summary Cancel an appointment
// @Description Cancels the appointment on behalf of the authenticated subject, who must be the booking client or the appointment's staff member. Staff may not cancel past appointments. Repeating a cancel is a no-op.
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param appointmentID path string true "Appointment ID"
// @Param body body CancelAppointmentRequest false "Optional reason"
// @Success 200 {object} helpers.APIResponse "data contains the cancelled appointment"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /appointments/{appointmentID}/cancel [post]
func (c *BookingController) Cancel(w http.ResponseWriter, r *http.Request) {
	appointmentID := r.PathValue("appointmentID")
	if appointmentID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing appointmentID")
		return
	}
	requesterID, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CancelAppointmentRequest
	if r.ContentLength > 0 && !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	appt, err := c.Bookings.Cancel(r.Context(), domain.CancelAppointmentCommand{
		AppointmentID: appointmentID,
		RequesterID:   requesterID,
		Reason:        req.Reason,
	})
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, appt)
}

// Confirm godoc
// @Summary Confirm a scheduled appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param appointmentID path string true "Appointment ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /appointments/{appointmentID}/confirm [post]
func (c *BookingController) Confirm(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Bookings.Confirm)
}

// Complete godoc
// @Summary Mark a confirmed appointment completed
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param appointmentID path string true "Appointment ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /appointments/{appointmentID}/complete [post]
func (c *BookingController) Complete(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Bookings.Complete)
}

// MarkNoShow godoc
// @Summary Mark a confirmed appointment as a no-show
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param appointmentID path string true "Appointment ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /appointments/{appointmentID}/no-show [post]
func (c *BookingController) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, c.Bookings.MarkNoShow)
}

func (c *BookingController) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, appointmentID string) (*domain.Appointment, error)) {
	appointmentID := r.PathValue("appointmentID")
	if appointmentID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing appointmentID")
		return
	}
	appt, err := apply(r.Context(), appointmentID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, appt)
}
