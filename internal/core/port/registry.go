package port

import (
	"context"
	"quipt/internal/core/domain"
	"time"
)

// HashRegistry is the durable hash -> state index that governs deduplication
type HashRegistry interface {
	Get(ctx context.Context, hash domain.ContentHash) (*domain.HashRecord, error)
	CreateIfAbsent(ctx context.Context, hash domain.ContentHash, id string, uploader string) (*domain.HashRecord, bool, error)
	MarkValidated(ctx context.Context, hash domain.ContentHash, id string) error
	MarkProcessed(ctx context.Context, hash domain.ContentHash, id string) error
	RecordDerivative(ctx context.Context, hash domain.ContentHash, id string, uploader string) (bool, error)
	FindStalePending(ctx context.Context, before time.Time, limit int) ([]domain.HashRecord, error)
	MarkRawPurged(ctx context.Context, hash domain.ContentHash) error
}
