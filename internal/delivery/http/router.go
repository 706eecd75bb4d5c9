package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"multitenantbooking/internal/delivery/http/controllers"
	"multitenantbooking/internal/delivery/http/middleware"
	"multitenantbooking/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	verifier domain.TokenVerifier,
	logger *slog.Logger,
	authController *controllers.AuthController,
	bookingController *controllers.BookingController,
	availabilityController *controllers.AvailabilityController,
	slotsController *controllers.SlotsController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	staffOnly := middleware.RequireRole(domain.RoleStaff)
	clientOnly := middleware.RequireRole(domain.RoleClient)

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Public slot discovery
	mux.HandleFunc("GET /businesses/{businessID}/services/{serviceID}/slots", slotsController.ListSlots)
	mux.HandleFunc("GET /businesses/{businessID}/services/{serviceID}/slots/alternatives", slotsController.ListAlternatives)

	// Appointments
	mux.HandleFunc("POST /appointments", auth(clientOnly(bookingController.Book)))
	mux.HandleFunc("POST /appointments/{appointmentID}/cancel", auth(bookingController.Cancel))
	mux.HandleFunc("POST /appointments/{appointmentID}/confirm", auth(staffOnly(bookingController.Confirm)))
	mux.HandleFunc("POST /appointments/{appointmentID}/complete", auth(staffOnly(bookingController.Complete)))
	mux.HandleFunc("POST /appointments/{appointmentID}/no-show", auth(staffOnly(bookingController.MarkNoShow)))
	mux.HandleFunc("GET /clients/me/appointments", auth(clientOnly(slotsController.ListMyAppointments)))

	// Staff availability and schedule
	mux.HandleFunc("PUT /staff/{staffID}/availability/{date}", auth(staffOnly(availabilityController.Set)))
	mux.HandleFunc("DELETE /staff/{staffID}/availability/{date}", auth(staffOnly(availabilityController.Delete)))
	mux.HandleFunc("POST /staff/{staffID}/availability/{date}/slots", auth(staffOnly(availabilityController.AddSlot)))
	mux.HandleFunc("POST /staff/{staffID}/availability/{date}/slots/remove", auth(staffOnly(availabilityController.RemoveSlot)))
	mux.HandleFunc("GET /staff/{staffID}/schedule", auth(staffOnly(slotsController.GetStaffSchedule)))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
