package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"quipt/internal/adapters/handlers/http/auth"
	"quipt/internal/adapters/handlers/http/chi"
	"quipt/internal/adapters/handlers/http/chi/v1/media"
	promrecorder "quipt/internal/adapters/metrics/prometheus"
	"quipt/internal/adapters/repository/postgres"
	"quipt/internal/adapters/storage/minio"
	"quipt/internal/config"
	"quipt/internal/core/port"
	"quipt/internal/core/service/cleanup"
	"quipt/internal/core/service/derivative"
	"quipt/internal/core/service/upload"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 5*time.Second)
	db, err := postgres.Open(dbCtx, cfg.Database)
	dbCancel()
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}

	//metrics
	registry := prometheus.NewRegistry()
	recorder := promrecorder.NewRecorder(registry)

	//services
	unitOfWork := postgres.NewUnitOfWork(db)
	uploadService := upload.NewUploadService(unitOfWork, minioAdapter, recorder, cfg.Upload, logger)
	publisher := derivative.NewPublisher(cfg.Media)
	cleanupService := cleanup.NewCleanupService(unitOfWork, minioAdapter, cfg.Upload, logger)

	//http
	authMiddleware := auth.NewMiddleware(cfg.Auth.JWTSecret, logger)
	mediaHandler := media.NewMediaHandlerV1(uploadService, publisher, logger)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	router := chi.NewRouter(logger, mediaHandler, authMiddleware.RequireAuth, metricsHandler, cfg.Env.Env)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init cleanup task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initCleanupTask(ctx, cleanupService, cfg.Upload.CleanupEvery, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

func initCleanupTask(ctx context.Context, service port.CleanupService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("cleanup task initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			logger.Info("cleanup task starting")
			if err := service.CleanupStaleUploads(ctx, time.Now()); err != nil {
				logger.Error("failed to cleanup stale uploads", "error", err)
			} else {
				logger.Info("cleanup task completed successfully")
			}
		case <-ctx.Done():
			logger.Info("cleanup task stopped")
			return
		}
	}

}
