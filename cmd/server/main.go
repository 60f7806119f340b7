package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Eissaali11/nuzum/internal"
	"github.com/Eissaali11/nuzum/internal/auth"
	"github.com/Eissaali11/nuzum/internal/handler"
	"github.com/Eissaali11/nuzum/internal/media"
	"github.com/Eissaali11/nuzum/internal/metrics"
	"github.com/Eissaali11/nuzum/internal/middleware"
	"github.com/Eissaali11/nuzum/internal/report"
	"github.com/Eissaali11/nuzum/internal/repository"
	"github.com/Eissaali11/nuzum/internal/service"
	"github.com/Eissaali11/nuzum/internal/storage"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// HEIC/HEIF decoding must be registered before any request handler runs
	media.RegisterHEIF()

	// Run migrations over a plain database/sql connection
	migrateDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := internal.RunMigrations(migrateDB); err != nil {
		migrateDB.Close()
		return fmt.Errorf("migration failed: %w", err)
	}
	migrateDB.Close()

	// Initialize connection pool
	pool, err := repository.Connect(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database pool failed: %w", err)
	}
	defer pool.Close()
	logger.Info("Database ready")

	// Initialize object storage
	var store storage.Storage
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		store, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		store, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	// Initialize repository and services
	repo := repository.New(pool)
	normalizer := media.NewNormalizer(media.DefaultMaxWidth, media.DefaultMaxHeight, media.DefaultQuality, logger)
	safetyService := service.NewSafetyService(repo, repo, store, normalizer, cfg.PublicStorageURL, logger)

	composer := report.NewComposer(store, cfg.FontDir, cfg.LogoPath, logger)
	accidentService := service.NewAccidentService(repo, composer, logger)

	// Initialize middleware
	signer := auth.NewTokenSigner(cfg.SessionSecret)
	bearer := middleware.NewBearerAuth(signer, repo, logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	defer limiter.Stop()

	// Initialize handlers
	safetyHandler := handler.NewSafetyHandler(safetyService, logger)
	reportHandler := handler.NewReportHandler(accidentService, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Stored objects are served directly when running on local storage; in
	// production the R2 public domain serves them instead.
	if cfg.StorageProvider == storage.ProviderLocal {
		filesFS := http.FileServer(http.Dir(cfg.LocalStoragePath))
		mux.Handle("GET /storage/", http.StripPrefix("/storage/", filesFS))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics (basic auth when credentials are configured)
	metricsHandler := metrics.Handler()
	if cfg.MetricsUsername != "" && cfg.MetricsPassword != "" {
		metricsHandler = middleware.MetricsAuth(cfg.MetricsUsername, cfg.MetricsPassword)(metricsHandler)
	} else {
		logger.Warn("metrics endpoint is unprotected, set METRICS_USERNAME and METRICS_PASSWORD")
	}
	mux.Handle("GET /metrics", metricsHandler)

	// External safety API
	requireEmployee := bearer.RequireEmployee
	api := http.NewServeMux()
	api.HandleFunc("GET /vehicles", safetyHandler.ListVehicles)
	api.HandleFunc("POST /checks", safetyHandler.CreateCheck)
	api.HandleFunc("GET /checks/{id}", safetyHandler.GetCheck)
	api.HandleFunc("POST /checks/{id}/upload-image", safetyHandler.UploadImage)
	api.HandleFunc("POST /checks/{id}/approve", safetyHandler.ApproveCheck)
	api.HandleFunc("POST /checks/{id}/reject", safetyHandler.RejectCheck)
	api.HandleFunc("DELETE /checks/{id}/images/{imageID}", safetyHandler.DeleteImage)
	mux.Handle("/api/v1/external-safety/",
		http.StripPrefix("/api/v1/external-safety", requireEmployee(api)))

	// Accident report download
	mux.Handle("GET /api/v1/accidents/{id}/report",
		requireEmployee(http.HandlerFunc(reportHandler.AccidentReport)))

	// Global middleware chain
	root := middleware.SecurityHeaders(
		limiter.Limit(logger)(
			metrics.Middleware(
				middleware.Logging(logger)(mux))))

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
