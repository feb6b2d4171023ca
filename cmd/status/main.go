package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/cache"
	"github.com/bimakw/market-intel/internal/infrastructure/database"
	"github.com/bimakw/market-intel/internal/infrastructure/logging"
	"github.com/bimakw/market-intel/internal/presentation/handlers"
	"github.com/bimakw/market-intel/internal/presentation/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := logging.New(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting market-intel status API",
		zap.Int("port", cfg.API.Port),
	)

	// Connect to the run ledger
	db, err := database.NewPostgresDB(cfg.Ledger, logger)
	if err != nil {
		logger.Fatal("Failed to connect to run ledger", zap.Error(err))
	}
	defer db.Close()

	ledger := database.NewRunLedgerRepo(db.DB())
	if err := ledger.EnsureSchema(context.Background()); err != nil {
		logger.Fatal("Failed to prepare run ledger schema", zap.Error(err))
	}

	// Connect to the Redis dedup cache (optional, health reporting only)
	var cacheChecker handlers.HealthChecker
	if !cfg.Redis.Disabled {
		dedup, err := cache.NewRedisDedup(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Failed to connect to Redis, health will omit cache", zap.Error(err))
		} else {
			defer dedup.Close()
			cacheChecker = dedup
		}
	}

	// Create handlers
	runsHandler := handlers.NewRunsHandler(ledger, logger)
	healthHandler := handlers.NewHealthHandler(db, cacheChecker)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		runsHandler.RegisterRoutes(r)
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("Status API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
