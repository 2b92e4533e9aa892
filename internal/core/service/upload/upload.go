package upload

import (
	"log/slog"
	"quipt/internal/config"
	"quipt/internal/core/port"

	"github.com/google/uuid"
)

type uploadService struct {
	uow       port.UnitOfWork
	store     port.ObjectStore
	metrics   port.Metrics
	uploadCfg config.UploadConfig
	logger    *slog.Logger
	newID     func() string
}

// NewUploadService creates a new upload service
func NewUploadService(uow port.UnitOfWork, store port.ObjectStore, metrics port.Metrics, cfg config.UploadConfig, logger *slog.Logger) port.UploadService {
	return &uploadService{
		uow:       uow,
		store:     store,
		metrics:   metrics,
		uploadCfg: cfg,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// upload outcomes reported to metrics
const (
	outcomeDuplicate = "duplicate"
	outcomeReused    = "reused"
	outcomeCreated   = "created"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)
