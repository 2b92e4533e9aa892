package upload

import (
	"context"
	"errors"
	"fmt"
	"quipt/internal/core/domain"
)

// RequestUpload validates a claimed hash and size, deduplicates it against the registry
// and issues a scoped credential when bytes still have to be uploaded.
func (u *uploadService) RequestUpload(ctx context.Context, hexHash string, size int64, uploader string) (*domain.UploadOutcome, error) {
	hash, err := domain.ParseContentHash(hexHash)
	if err != nil {
		u.metrics.UploadRequested(outcomeRejected)
		return nil, err
	}
	if size <= 0 {
		u.metrics.UploadRequested(outcomeRejected)
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidSize, size)
	}
	if size > u.uploadCfg.MaxPayloadBytes {
		u.metrics.UploadRequested(outcomeRejected)
		return nil, fmt.Errorf("%w: %d > %d", domain.ErrPayloadTooLarge, size, u.uploadCfg.MaxPayloadBytes)
	}

	registry := u.uow.HashRegistry()

	record, err := registry.Get(ctx, hash)
	if err != nil && !errors.Is(err, domain.ErrHashNotFound) {
		u.metrics.UploadRequested(outcomeFailed)
		return nil, fmt.Errorf("could not look up hash: %w", err)
	}

	outcome := outcomeReused
	if record == nil {
		var created bool
		record, created, err = registry.CreateIfAbsent(ctx, hash, u.newID(), uploader)
		if err != nil {
			u.metrics.UploadRequested(outcomeFailed)
			return nil, fmt.Errorf("could not claim hash: %w", err)
		}
		if created {
			outcome = outcomeCreated
		}
	}

	if record.Processed() {
		u.metrics.UploadRequested(outcomeDuplicate)
		return &domain.UploadOutcome{ID: record.ID, Duplicate: true}, nil
	}

	credential, err := u.store.PresignUpload(ctx, record.ID, size, hash)
	if err != nil {
		u.metrics.UploadRequested(outcomeFailed)
		return nil, fmt.Errorf("could not issue upload credential: %w", err)
	}

	u.logger.Info("upload credential issued",
		"id", record.ID,
		"hash", hash.Hex(),
		"size", size,
		"outcome", outcome,
	)
	u.metrics.UploadRequested(outcome)

	return &domain.UploadOutcome{ID: record.ID, Credential: credential}, nil
}
