package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/habalhub/habal-hub/internal/api/handlers"
	"github.com/habalhub/habal-hub/internal/api/realtime"
	"github.com/habalhub/habal-hub/internal/api/routes"
	"github.com/habalhub/habal-hub/internal/config"
	"github.com/habalhub/habal-hub/internal/repository/postgres"
	"github.com/habalhub/habal-hub/internal/service/booking"
	"github.com/habalhub/habal-hub/internal/service/fare"
	"github.com/habalhub/habal-hub/internal/service/geo"
	"github.com/habalhub/habal-hub/internal/service/lifecycle"
	"github.com/habalhub/habal-hub/internal/service/session"
	"github.com/habalhub/habal-hub/internal/service/tracking"
	"github.com/habalhub/habal-hub/pkg/auth"
	"github.com/habalhub/habal-hub/pkg/cache"
	"github.com/habalhub/habal-hub/pkg/database"
	"github.com/habalhub/habal-hub/pkg/logger"
	"github.com/habalhub/habal-hub/pkg/monitoring"
	"github.com/habalhub/habal-hub/pkg/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Habal Hub",
		logger.String("env", cfg.Server.Env),
		logger.String("port", cfg.Server.Port),
	)

	// Initialize New Relic
	nrApp, err := monitoring.New(monitoring.Config{
		LicenseKey: cfg.NewRelic.LicenseKey,
		AppName:    cfg.NewRelic.AppName,
		Enabled:    cfg.NewRelic.Enabled,
	})
	if err != nil {
		appLogger.Warn("Failed to initialize New Relic", logger.Err(err))
	} else if nrApp.IsEnabled() {
		appLogger.Info("New Relic APM initialized",
			logger.String("app_name", cfg.NewRelic.AppName))
	}
	defer nrApp.Shutdown(10 * time.Second)

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cache.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  cfg.Redis.MaxRetries,
		PoolSize:    cfg.Redis.PoolSize,
		DialTimeout: cfg.Redis.DialTimeout,
		ReadTimeout: cfg.Redis.ReadTimeout,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer cache.Close(redisClient)

	appLogger.Info("Connected to Redis")

	// Initialize PostgreSQL
	db, err := database.NewPostgresDB(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.MaxConns,
		MaxIdle:  cfg.Database.MaxIdle,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	defer db.Close()

	appLogger.Info("Connected to PostgreSQL")

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(appLogger)
	go wsHub.Run()
	defer wsHub.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	savedLocationRepo := postgres.NewSavedLocationRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	statsRepo := postgres.NewStatsRepository(db)

	// Geocoding degrades to manual addresses when no API key is set.
	var geocoder geo.Geocoder = geo.Disabled{}
	if cfg.Maps.APIKey != "" {
		geocoder, err = geo.NewGoogleGeocoder(cfg.Maps.APIKey, cfg.Maps.Region)
		if err != nil {
			appLogger.Warn("Failed to initialize geocoder", logger.Err(err))
			geocoder = geo.Disabled{}
		}
	}

	// Services
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	sessions := session.NewService(userRepo, tokens, redisClient, appLogger)
	defer sessions.Close()

	notifier := realtime.NewNotifier(wsHub)

	// Auth-state changes (sign-in, sign-out, profile edits) flow to the
	// hub alongside ride events. Closing the session service ends the
	// forwarder.
	authEvents, cancelAuthEvents := sessions.Subscribe()
	defer cancelAuthEvents()
	go notifier.ForwardAuth(authEvents)

	fares := fare.NewCalculator(fare.Config{
		Base:    cfg.Fare.Base,
		PerKM:   cfg.Fare.PerKM,
		Minimum: cfg.Fare.Minimum,
	})
	rideLifecycle := lifecycle.NewController(rideRepo, reviewRepo, notifier, appLogger).
		WithRecorder(nrApp)
	bookings := booking.NewService(rideRepo, geocoder, fares, notifier, appLogger)
	tracker := tracking.NewTracker(redisClient, db, appLogger)

	h := &handlers.Handlers{
		Sessions:       sessions,
		Booking:        bookings,
		Lifecycle:      rideLifecycle,
		Fares:          fares,
		Rides:          rideRepo,
		Reviews:        reviewRepo,
		Users:          userRepo,
		SavedLocations: savedLocationRepo,
		Payments:       paymentRepo,
		Stats:          statsRepo,
		Tracker:        tracker,
		Hub:            wsHub,
		Monitoring:     nrApp,
		Logger:         appLogger,
	}

	// Initialize Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	var nrGin *newrelic.Application
	if nrApp.IsEnabled() {
		nrGin = nrApp.Application
	}
	routes.SetupRoutes(router, h, sessions, nrGin)

	appLogger.Info("Routes configured")

	// Create HTTP server
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Server starting", logger.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.Err(err))
	}

	appLogger.Info("Server exited")
}
