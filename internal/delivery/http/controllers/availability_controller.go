package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"multitenantbooking/internal/delivery/http/helpers"
	"multitenantbooking/internal/delivery/http/middleware"
	"multitenantbooking/internal/domain"
)

// TimeSlotRequest is one slot in an availability request body.
type TimeSlotRequest struct {
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

func (s TimeSlotRequest) toDomain() (domain.TimeSlot, error) {
	start, err := domain.ParseTimeOfDay(s.StartTime)
	if err != nil {
		return domain.TimeSlot{}, err
	}
	end, err := domain.ParseTimeOfDay(s.EndTime)
	if err != nil {
		return domain.TimeSlot{}, err
	}
	return domain.NewTimeSlot(start, end)
}

// SetAvailabilityRequest is the request body for PUT /staff/{staffID}/availability/{date}.
type SetAvailabilityRequest struct {
	BusinessID string            `json:"business_id"`
	Slots      []TimeSlotRequest `json:"time_slots"`
}

// Validate implements Validator.
func (s SetAvailabilityRequest) Validate() []string {
	var errs []string
	if s.BusinessID == "" {
		errs = append(errs, "business_id is required")
	}
	for _, slot := range s.Slots {
		if _, err := slot.toDomain(); err != nil {
			errs = append(errs, "time_slots must be valid HH:MM ranges with start before end")
			break
		}
	}
	return errs
}

// SlotRequest is the request body for adding or removing a single slot.
type SlotRequest struct {
	BusinessID string          `json:"business_id,omitempty"`
	Slot       TimeSlotRequest `json:"slot"`
}

// Validate implements Validator.
func (s SlotRequest) Validate() []string {
	if _, err := s.Slot.toDomain(); err != nil {
		return []string{"slot must be a valid HH:MM range with start before end"}
	}
	return nil
}

type AvailabilityController struct {
	Logger       *slog.Logger
	Availability domain.AvailabilityService
}

func NewAvailabilityController(logger *slog.Logger, availability domain.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{
		Logger:       logger,
		Availability: availability,
	}
}

// staffAccess extracts the staffID path value and checks the authenticated
// subject is that staff member. Staff edit only their own availability.
func staffAccess(w http.ResponseWriter, r *http.Request) (string, time.Time, bool) {
	staffID := r.PathValue("staffID")
	date, err := time.Parse(dateLayout, r.PathValue("date"))
	if staffID == "" || err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID or invalid date")
		return "", time.Time{}, false
	}
	subjectID, ok := middleware.SubjectFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", time.Time{}, false
	}
	if subjectID != staffID {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "cannot edit another staff member's availability")
		return "", time.Time{}, false
	}
	return staffID, date, true
}

// Set godoc
// @Summary Replace a day's availability
// @Description Replaces the staff member's whole slot set for the date. Fails if a new set would orphan an active appointment.
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param body body SetAvailabilityRequest true "Slot set"
// @Success 200 {object} helpers.APIResponse "data contains the stored availability"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /staff/{staffID}/availability/{date} [put]
func (c *AvailabilityController) Set(w http.ResponseWriter, r *http.Request) {
	staffID, date, ok := staffAccess(w, r)
	if !ok {
		return
	}
	var req SetAvailabilityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slots := make([]domain.TimeSlot, 0, len(req.Slots))
	for _, s := range req.Slots {
		slot, _ := s.toDomain()
		slots = append(slots, slot)
	}
	availability, err := c.Availability.SetAvailability(r.Context(), staffID, req.BusinessID, date, slots)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, availability)
}

// AddSlot godoc
// @Summary Add one availability slot
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param body body SlotRequest true "Slot to add"
// @Success 200 {object} helpers.APIResponse "data contains the stored availability"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /staff/{staffID}/availability/{date}/slots [post]
func (c *AvailabilityController) AddSlot(w http.ResponseWriter, r *http.Request) {
	staffID, date, ok := staffAccess(w, r)
	if !ok {
		return
	}
	var req SlotRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slot, _ := req.Slot.toDomain()
	availability, err := c.Availability.AddTimeSlot(r.Context(), staffID, req.BusinessID, date, slot)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, availability)
}

// RemoveSlot godoc
// @Summary Remove one availability slot
// @Description Removes the slot matching the given range exactly. Fails if an active appointment sits inside it.
// @Tags availability
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param body body SlotRequest true "Slot to remove"
// @Success 200 {object} helpers.APIResponse "data contains the remaining availability"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /staff/{staffID}/availability/{date}/slots/remove [post]
func (c *AvailabilityController) RemoveSlot(w http.ResponseWriter, r *http.Request) {
	staffID, date, ok := staffAccess(w, r)
	if !ok {
		return
	}
	var req SlotRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	slot, _ := req.Slot.toDomain()
	availability, err := c.Availability.RemoveTimeSlot(r.Context(), staffID, date, slot)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, availability)
}

// Delete godoc
// @Summary Delete a day's availability
// @Description Removes the whole availability record for the date. Fails if any active appointment remains on it.
// @Tags availability
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 204 "availability removed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /staff/{staffID}/availability/{date} [delete]
func (c *AvailabilityController) Delete(w http.ResponseWriter, r *http.Request) {
	staffID, date, ok := staffAccess(w, r)
	if !ok {
		return
	}
	if err := c.Availability.DeleteAvailability(r.Context(), staffID, date); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
