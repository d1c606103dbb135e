package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trailhead/service-bookings/internal/application"
	"github.com/trailhead/service-bookings/internal/config"
	"github.com/trailhead/service-bookings/internal/docstore"
	bookingEvents "github.com/trailhead/service-bookings/internal/events"
	"github.com/trailhead/service-bookings/internal/handler"
	"github.com/trailhead/service-bookings/internal/identity"
	"github.com/trailhead/service-bookings/internal/platform/auth"
	"github.com/trailhead/service-bookings/internal/platform/database"
	"github.com/trailhead/service-bookings/internal/platform/health"
	"github.com/trailhead/service-bookings/internal/platform/logger"
	"github.com/trailhead/service-bookings/internal/platform/middleware"
	"github.com/trailhead/service-bookings/internal/presentation"
	"github.com/trailhead/service-bookings/internal/repository"
)

const serviceName = "service-bookings"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreDriver),
		zap.Duration("session_ttl", cfg.SessionTTL),
	)

	// Open the document store
	store, db, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("failed to open document store", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.AccessTTL,
		cfg.JWTConfig.RefreshTTL,
	)

	// Initialize repository and use-cases
	bookingRepo := repository.NewDocumentBookingRepository(store, identity.NewContextProvider(), log)

	getUpcoming := application.NewGetUpcomingBookingsUseCase(bookingRepo)
	getPast := application.NewGetPastBookingsUseCase(bookingRepo)
	getAll := application.NewGetAllBookingsUseCase(bookingRepo, log)
	getHistory := application.NewGetBookingHistoryUseCase(bookingRepo)

	// One screen view-model per user
	sessions := presentation.NewSessionStore(func() *presentation.BookingsViewModel {
		return presentation.NewBookingsViewModel(getAll, getUpcoming, getPast, cfg.PageSize, log.Named("screen"))
	}).WithIdleTTL(cfg.SessionTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Drop idle screen sessions
	if cfg.SessionTTL > 0 {
		go sessions.Run(ctx, sessionSweepInterval(cfg.SessionTTL), func(dropped int) {
			log.Debug("dropped idle screen sessions", zap.Int("count", dropped))
		})
	}

	// Start the booking change consumer in a goroutine

	if len(cfg.KafkaConfig.Brokers) > 0 {
		groupID := cfg.KafkaConfig.GroupPrefix + serviceName
		changeConsumer := bookingEvents.NewBookingChangeConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			sessions,
			log,
		)
		defer func() { _ = changeConsumer.Close() }()

		go func() {
			log.Info("starting booking change consumer")
			if err := changeConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking change consumer error", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(getUpcoming, getPast, getAll, getHistory, cfg.PageSize)
	screenHandler := handler.NewScreenHandler(sessions)
	adminHandler := handler.NewAdminSessionHandler(sessions)

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
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	screenHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
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

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// sessionSweepInterval checks a few times per TTL, but not more than once a second.
func sessionSweepInterval(ttl time.Duration) time.Duration {
	if interval := ttl / 4; interval > time.Second {
		return interval
	}
	return time.Second
}

// openStore returns the configured document store. db is nil for the memory driver.
func openStore(cfg *config.ServiceConfig, log *zap.Logger) (docstore.Store, *gorm.DB, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using in-memory document store; bookings are not persisted")
		return docstore.NewMemoryStore(), nil, nil
	}

	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := docstore.NewGormStore(db)

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := store.AutoMigrate(repository.BookingsCollection); err != nil {
			return nil, nil, fmt.Errorf("failed to run auto-migration: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return store, db, nil
}
