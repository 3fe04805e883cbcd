// main.go - Entry point for the forecast backend server

package main // Declares the package name

import ( // Import required packages
	"context"   // Startup and shutdown deadlines
	"errors"    // Server shutdown check
	"log/slog"  // Structured logging
	"net/http"  // HTTP server
	"os"        // Exit codes
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"go-forecast-backend/config"     // Project config management
	"go-forecast-backend/database"   // Database connection and lock retrier
	"go-forecast-backend/handlers"   // HTTP handlers
	"go-forecast-backend/middleware" // Logger construction
	"go-forecast-backend/mqtt"       // MQTT client for forecast events
	"go-forecast-backend/repository" // Credential and forecast stores
	"go-forecast-backend/router"     // Route wiring
	"go-forecast-backend/session"    // Session manager and stores
)

func main() { // Main function, program entry point
	if err := run(); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// STEP 1: Load configuration and establish connections
	cfg := config.Load() // Load configuration (DB, sessions, MQTT)
	logger := middleware.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := database.Connect(cfg) // Connect to the database and migrate
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	writer := database.NewLockRetrier(logger) // One retry policy for every write
	users := repository.NewUserRepository(db, writer, cfg.BcryptCost)
	forecasts := repository.NewForecastRepository(db, writer)

	var store session.Store = session.NewMemoryStore()
	if cfg.SessionStore == "redis" {
		rdb, err := session.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb)
	}
	sessions := session.NewManager(store, users, cfg.JWTSecret, cfg.SessionTTL)

	h := handlers.NewHandler(users, forecasts, sessions, logger)
	h.SecureCookie = cfg.CookieSecure
	if cfg.MQTTBroker != "" { // Forecast events are optional
		client, err := mqtt.Connect(cfg.MQTTBroker)
		if err != nil {
			logger.Warn("MQTT unavailable, forecast events disabled", slog.String("error", err.Error()))
		} else {
			defer client.Close()
			h.WithEvents(client, cfg.MQTTTopic)
		}
	}

	// STEP 2: Create Gin router and configure routes
	r := router.Setup(h, sessions, router.Options{
		Mode:              cfg.GinMode,
		SecureCookie:      cfg.CookieSecure,
		EnableDiagnostics: cfg.EnableDiagnostics,
		Logger:            logger,
	})

	// STEP 3: Start the web server and wait for a signal
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
