package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/staffops/staffops-backend/internal/booking/consumers"
	"github.com/staffops/staffops-backend/internal/booking/events"
	"github.com/staffops/staffops-backend/internal/booking/handler"
	"github.com/staffops/staffops-backend/internal/booking/repository"
	"github.com/staffops/staffops-backend/internal/booking/service"
	"github.com/staffops/staffops-backend/pkg/config"
	"github.com/staffops/staffops-backend/pkg/database"
	"github.com/staffops/staffops-backend/pkg/httputil"
	"github.com/staffops/staffops-backend/pkg/logger"
	"github.com/staffops/staffops-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("booking-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("booking-service", cfg.Server.Environment)
	log.Info().Msg("starting Booking Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewBookingEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	bookingRepo := repository.NewBookingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// Initialize services
	bookingService := service.NewBookingService(bookingRepo, roomRepo, publisher, log)
	roomService := service.NewRoomService(roomRepo, publisher, log)

	// Initialize handlers
	bookingHandler := handler.NewBookingHandler(bookingService, log)
	roomHandler := handler.NewRoomHandler(roomService, log)
	meHandler := handler.NewMeHandler()

	// Start profile event consumer
	profileConsumer, err := consumers.NewProfileEventConsumer(rmq, profileRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create profile event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := profileConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start profile event consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httputil.Auth(cfg.JWT.Secret, cfg.JWT.Issuer)) // /health exempt

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "booking-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", meHandler.Get)

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", bookingHandler.List)
			r.Post("/", bookingHandler.Create)
			r.Get("/availability", bookingHandler.Availability)
			r.Get("/{id}", bookingHandler.Get)
			r.Post("/{id}/approve", bookingHandler.Approve)
			r.Post("/{id}/reject", bookingHandler.Reject)
			r.Post("/{id}/cancel", bookingHandler.Cancel)
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", roomHandler.List)
			r.Post("/", roomHandler.Create)
			r.Get("/{id}", roomHandler.Get)
			r.Put("/{id}", roomHandler.Update)
			r.Delete("/{id}", roomHandler.Deactivate)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
