package cleanup

import (
	"log/slog"
	"quipt/internal/config"
	"quipt/internal/core/port"
)

type cleanupService struct {
	uow    port.UnitOfWork
	store  port.ObjectStore
	cfg    config.UploadConfig
	logger *slog.Logger
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(uow port.UnitOfWork, store port.ObjectStore, cfg config.UploadConfig, logger *slog.Logger) port.CleanupService {
	return &cleanupService{
		uow:    uow,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}
