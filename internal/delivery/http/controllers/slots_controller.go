package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"multitenantbooking/internal/delivery/http/helpers"
	"multitenantbooking/internal/delivery/http/middleware"
	"multitenantbooking/internal/domain"
)

type SlotsController struct {
	Logger  *slog.Logger
	Queries domain.SlotQueryService
}

func NewSlotsController(logger *slog.Logger, queries domain.SlotQueryService) *SlotsController {
	return &SlotsController{
		Logger:  logger,
		Queries: queries,
	}
}

// ListSlots godoc
// @Summary List available booking slots
// @Description Lists open slots for a service on a date. Optional staff_id narrows the result to one staff member.
// @Tags slots
// @Produce json
// @Param businessID path string true "Business ID"
// @Param serviceID path string true "Service ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param staff_id query string false "Staff ID"
// @Success 200 {object} helpers.APIResponse "data contains the slot list"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /businesses/{businessID}/services/{serviceID}/slots [get]
func (c *SlotsController) ListSlots(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("businessID")
	serviceID := r.PathValue("serviceID")
	date, err := time.Parse(dateLayout, r.URL.Query().Get("date"))
	if businessID == "" || serviceID == "" || err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing businessID, serviceID, or valid date")
		return
	}
	slots, err := c.Queries.GetAvailableSlots(r.Context(), businessID, serviceID, date, r.URL.Query().Get("staff_id"))
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slots)
}

// ListAlternatives godoc
// @Summary Find alternative booking slots
// @Description Finds open slots near a preferred date and time: same-day slots ordered by distance from the preferred time, then future days up to the search horizon.
// @Tags slots
// @Produce json
// @Param businessID path string true "Business ID"
// @Param serviceID path string true "Service ID"
// @Param date query string true "Preferred date (YYYY-MM-DD)"
// @Param start query string true "Preferred start time (HH:MM)"
// @Param staff_id query string false "Staff ID"
// @Param max query int false "Maximum results (default 5)"
// @Success 200 {object} helpers.APIResponse "data contains the alternatives"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /businesses/{businessID}/services/{serviceID}/slots/alternatives [get]
func (c *SlotsController) ListAlternatives(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("businessID")
	serviceID := r.PathValue("serviceID")
	q := r.URL.Query()
	date, dateErr := time.Parse(dateLayout, q.Get("date"))
	start, startErr := domain.ParseTimeOfDay(q.Get("start"))
	if businessID == "" || serviceID == "" || dateErr != nil || startErr != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing businessID, serviceID, valid date, or valid start")
		return
	}
	maxResults := 5
	if raw := q.Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "max must be a positive integer")
			return
		}
		maxResults = n
	}
	slots, err := c.Queries.FindAlternativeSlots(r.Context(), businessID, serviceID, q.Get("staff_id"), date, start, maxResults)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, slots)
}

// GetStaffSchedule godoc
// @Summary Get a staff member's day schedule
// @Description Returns the staff member's availability for the date split into free and booked segments. Staff see their own schedule.
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} helpers.APIResponse "data contains the schedule entries"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /staff/{staffID}/schedule [get]
func (c *SlotsController) GetStaffSchedule(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("staffID")
	date, err := time.Parse(dateLayout, r.URL.Query().Get("date"))
	if staffID == "" || err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID or valid date")
		return
	}
	subjectID, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if subjectID != staffID {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "cannot view another staff member's schedule")
		return
	}
	entries, err := c.Queries.GetStaffSchedule(r.Context(), staffID, date)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// ListMyAppointments godoc
// @Summary List the authenticated client's appointments
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the appointment views"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /clients/me/appointments [get]
func (c *SlotsController) ListMyAppointments(w http.ResponseWriter, r *http.Request) {
	clientID, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	views, err := c.Queries.GetClientAppointments(r.Context(), clientID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}
