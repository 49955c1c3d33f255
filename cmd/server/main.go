package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/sdview/internal"
	"github.com/DukeRupert/sdview/internal/auth"
	"github.com/DukeRupert/sdview/internal/domain"
	"github.com/DukeRupert/sdview/internal/handler"
	"github.com/DukeRupert/sdview/internal/jobs"
	"github.com/DukeRupert/sdview/internal/metrics"
	"github.com/DukeRupert/sdview/internal/middleware"
	"github.com/DukeRupert/sdview/internal/report"
	"github.com/DukeRupert/sdview/internal/repository"
	"github.com/DukeRupert/sdview/internal/service"
	"github.com/DukeRupert/sdview/internal/storage"
	"github.com/DukeRupert/sdview/internal/worker"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// revocationSweepInterval is how often expired token revocations are purged.
const revocationSweepInterval = time.Hour

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(ctx, db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	repo := repository.New(db)

	files, err := storage.New(storage.Config{
		Provider: cfg.StorageProvider,
		Local: storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		},
		R2: storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			Endpoint:        cfg.R2Endpoint,
			PublicURL:       cfg.R2PublicURL,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	// Initialize services
	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("token issuer initialization failed: %w", err)
	}
	userService := service.NewUserService(repo, tokens, logger)
	snapshotService := service.NewSnapshotService(repo, service.SnapshotConfig{
		Location:       cfg.ReportLocation,
		HeaderImageURL: cfg.ReportHeaderImageURL,
	}, logger)
	generator := report.NewXLSXGenerator(report.NewHTTPImageDownloader(), logger)

	// Background worker. It runs on its own context so in-flight jobs can
	// finish during shutdown.
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	var bgWorker *worker.Worker
	if cfg.WorkerEnabled {
		bgWorker, err = worker.New(worker.NewDBQueue(db, repo), worker.Config{
			Concurrency:  cfg.WorkerConcurrency,
			PollInterval: cfg.WorkerPollInterval,
			JobTimeout:   cfg.WorkerJobTimeout,
		}.WithDefaults(), logger)
		if err != nil {
			return fmt.Errorf("worker initialization failed: %w", err)
		}
		bgWorker.Register(jobs.NewGenerateReportHandler(snapshotService, generator, files, repo, logger))
		bgWorker.Start(workerCtx)
	} else {
		logger.Warn("Background worker disabled; enqueued reports will not be generated by this process")
	}

	go sweepRevocations(ctx, userService, logger)

	// Initialize middleware
	isSecure := !cfg.IsDevelopment()
	authMw := middleware.NewAuthMiddleware(userService, logger)
	authLimiter := middleware.NewAuthRateLimiter(logger)
	defer authLimiter.Stop()
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	if !metricsAuth.Enabled() {
		logger.Warn("METRICS_USERNAME and METRICS_PASSWORD are unset; /metrics is unprotected")
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, logger)
	reportHandler := handler.NewReportHandler(snapshotService, generator, repo, files, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	mux.Handle("GET /health", handler.NewHealthHandler(db, logger))
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	requireUser := middleware.Stack(authMw.Authenticate)
	requireViewer := middleware.Stack(authMw.Authenticate, authMw.RequireRole(domain.RoleViewer))
	requireSupervisor := middleware.Stack(authMw.Authenticate, authMw.RequireRole(domain.RoleSupervisor))

	authHandler.RegisterRoutes(mux, authLimiter.LimitRegister, authLimiter.LimitLogin, requireUser)
	reportHandler.RegisterRoutes(mux, requireViewer, requireSupervisor)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handler.NotFoundResponse(w, r, logger)
	})

	root := middleware.Stack(
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		metrics.Middleware,
		middleware.NewSecurityHeadersMiddleware(isSecure).Handler,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	case err := <-serverErr:
		logger.Error("Server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	if bgWorker != nil {
		bgWorker.Stop()
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// sweepRevocations periodically deletes revocation entries for tokens that
// have expired on their own.
func sweepRevocations(ctx context.Context, users service.UserService, logger *slog.Logger) {
	ticker := time.NewTicker(revocationSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := users.DeleteExpiredRevocations(ctx)
			if err != nil {
				logger.Error("failed to delete expired revocations", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("deleted expired revocations", "count", n)
			}
		}
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
