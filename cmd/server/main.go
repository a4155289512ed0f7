package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coachbook/service-scheduling/internal/application"
	"github.com/coachbook/service-scheduling/internal/config"
	"github.com/coachbook/service-scheduling/internal/domain/schedule"
	eventConsumer "github.com/coachbook/service-scheduling/internal/events/consumer"
	"github.com/coachbook/service-scheduling/internal/handler"
	"github.com/coachbook/service-scheduling/internal/platform/auth"
	"github.com/coachbook/service-scheduling/internal/platform/database"
	"github.com/coachbook/service-scheduling/internal/platform/health"
	"github.com/coachbook/service-scheduling/internal/platform/kafka"
	"github.com/coachbook/service-scheduling/internal/platform/logger"
	"github.com/coachbook/service-scheduling/internal/platform/middleware"
	"github.com/coachbook/service-scheduling/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-scheduling")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-scheduling",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.BookingModel{}, &repository.BlackoutModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTTL,
		cfg.JWTConfig.RefreshTTL,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	blackoutRepo := repository.NewGormBlackoutRepository(db)

	// Availability window policy
	window := schedule.WorkingWindow{
		StartHour:   cfg.Availability.DayStartHour,
		EndHour:     cfg.Availability.DayEndHour,
		Granularity: time.Duration(cfg.Availability.GranularityMinutes) * time.Minute,
	}

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		blackoutRepo,
		window,
		cfg.Availability.CreateTimeout,
		kafkaProducer,
		log,
	)
	availabilityService := application.NewAvailabilityService(bookingRepo, blackoutRepo, window, log)
	blackoutService := application.NewBlackoutService(blackoutRepo, kafkaProducer, log)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "scheduling-service"
	paymentConsumer := eventConsumer.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	blackoutHandler := handler.NewBlackoutHandler(blackoutService)
	adminHandler := handler.NewAdminBookingHandler(bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-scheduling")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	availabilityHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	blackoutHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-scheduling...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-scheduling stopped")
}
