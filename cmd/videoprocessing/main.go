package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"quipt/internal/adapters/eventbroker/nats"
	"quipt/internal/adapters/media/ffmpeg"
	promrecorder "quipt/internal/adapters/metrics/prometheus"
	"quipt/internal/adapters/repository/postgres"
	"quipt/internal/adapters/storage/minio"
	"quipt/internal/config"
	"quipt/internal/core/service/transcode"
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

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize database
	dbCtx, dbCancel := context.WithTimeout(ctx, 5*time.Second)
	db, err := postgres.Open(dbCtx, cfg.Database)
	dbCancel()
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	logger.Info("db connection established")

	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}
	logger.Info("minio adapter initialized")

	// Metrics
	registry := prometheus.NewRegistry()
	recorder := promrecorder.NewRecorder(registry)
	metricsServer := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	// Initialize services
	unitOfWork := postgres.NewUnitOfWork(db)
	prober := ffmpeg.NewProber(cfg.Transcode.FFprobePath, logger)
	transcoder := ffmpeg.NewTranscoder(cfg.Transcode.FFmpegPath, cfg.Transcode.FFmpegArgs, logger)
	transcodeService := transcode.NewTranscodeService(
		unitOfWork,
		minioAdapter,
		prober,
		transcoder,
		recorder,
		cfg.Transcode,
		cfg.Minio.SourceBucket,
		logger,
	)

	// Initialize NATS consumer
	natsConsumer, err := nats.NewNATSConsumer(cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to create NATS consumer", "error", err)
		os.Exit(1)
	}
	logger.Info("NATS consumer initialized")

	// Subscribe to NATS
	if err := natsConsumer.Subscribe(ctx, transcodeService); err != nil {
		logger.Error("failed to subscribe to NATS", "error", err)
		natsConsumer.Close()
		os.Exit(1)
	}
	logger.Info("NATS subscription active")

	// Wait for termination signal
	<-ctx.Done()
	logger.Info("gracefully shutting down video processing service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Close NATS consumer; an in-flight message is left unacked and redelivered
	if err := natsConsumer.Close(); err != nil {
		logger.Error("failed to close NATS consumer during shutdown", "error", err)
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown metrics server", "error", err)
	}

	logger.Info("video processing service shutdown complete")
}
