package transcode

import (
	"log/slog"
	"quipt/internal/config"
	"quipt/internal/core/port"
)

type transcodeService struct {
	uow          port.UnitOfWork
	store        port.ObjectStore
	prober       port.MediaProber
	transcoder   port.Transcoder
	metrics      port.Metrics
	cfg          config.TranscodeConfig
	sourceBucket string
	logger       *slog.Logger
}

// NewTranscodeService creates the worker that turns raw uploads into published derivatives
func NewTranscodeService(
	uow port.UnitOfWork,
	store port.ObjectStore,
	prober port.MediaProber,
	transcoder port.Transcoder,
	metrics port.Metrics,
	cfg config.TranscodeConfig,
	sourceBucket string,
	logger *slog.Logger,
) port.MessageService {
	return &transcodeService{
		uow:          uow,
		store:        store,
		prober:       prober,
		transcoder:   transcoder,
		metrics:      metrics,
		cfg:          cfg,
		sourceBucket: sourceBucket,
		logger:       logger,
	}
}

// transcode outcomes reported to metrics
const (
	outcomePublished = "published"
	outcomeSkipped   = "skipped"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)
