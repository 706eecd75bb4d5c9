package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"multitenantbooking/config"
	_ "multitenantbooking/docs"
	authadapter "multitenantbooking/internal/adapters/auth"
	"multitenantbooking/internal/adapters/cache"
	"multitenantbooking/internal/adapters/email"
	"multitenantbooking/internal/adapters/stream"
	delivery "multitenantbooking/internal/delivery/http"
	"multitenantbooking/internal/delivery/http/controllers"
	"multitenantbooking/internal/delivery/http/middleware"
	"multitenantbooking/internal/events"
	"multitenantbooking/internal/repository/postgres"
	"multitenantbooking/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title Multi-Tenant Booking API
// @version 1.0
// @description Appointment booking backend: staff availability, slot discovery, and conflict-safe bookings.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Repositories
	apptRepo := postgres.NewAppointmentRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	bookingStore := postgres.NewBookingStore(db)
	readModels := postgres.NewReadModelRepository(db)
	catalog := postgres.NewServiceCatalogRepository(db)
	eligibility := postgres.NewEligibilityRepository(db)
	directory := postgres.NewDirectoryRepository(db)
	accounts := postgres.NewAccountRepository(db)

	// Adapters
	hasher := authadapter.NewBcryptHasher(10)
	issuer, verifier := authadapter.NewJWTTokens(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("failed to build mailer", "error", err)
		os.Exit(1)
	}

	var slotCache services.SlotCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		slotCache = cache.NewRedisSlotCache(redisClient, cfg.SlotCacheTTL, logger)
	}

	// Event subscribers
	dispatcher := events.NewDispatcher(logger)
	projector := services.NewProjector(readModels, availabilityRepo, apptRepo, eligibility, catalog, directory, cfg.SlotStepMinutes, logger)
	dispatcher.Register(projector)
	dispatcher.Register(email.NewBookingNotifier(mailer, directory, directory, catalog, logger))
	if len(cfg.KafkaBrokers) > 0 {
		mirror := stream.NewEventMirror(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer mirror.Close()
		dispatcher.Register(mirror)
	}

	// Services
	bookingService := services.NewBookingService(apptRepo, availabilityRepo, bookingStore, eligibility, catalog, dispatcher, serviceTimeout)
	availabilityService := services.NewAvailabilityService(availabilityRepo, apptRepo, dispatcher, serviceTimeout)
	queryService := services.NewSlotQueryService(readModels, slotCache, cfg.AlternativeHorizonDays, serviceTimeout)
	authService := services.NewAuthService(accounts, hasher, issuer, cfg.TokenExpiry, serviceTimeout)

	// HTTP
	router := delivery.NewRouter(
		verifier,
		logger,
		controllers.NewAuthController(logger, authService),
		controllers.NewBookingController(logger, bookingService, queryService),
		controllers.NewAvailabilityController(logger, availabilityService),
		controllers.NewSlotsController(logger, queryService),
	)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, router))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
