package cleanup

import (
	"context"
	"errors"
	"quipt/internal/core/domain"
	"time"
)

// CleanupStaleUploads removes raw objects of uploads that stayed pending past the stale window.
// Registry state is left untouched so the hash keeps its id.
// An object written inside the window survives: credentials are reissued without touching the record.
func (c *cleanupService) CleanupStaleUploads(ctx context.Context, now time.Time) error {

	before := now.Add(-c.cfg.StaleAfter)
	records, err := c.uow.HashRegistry().FindStalePending(ctx, before, c.cfg.CleanupBatch)
	if err != nil {
		return err
	}

	purged, fresh := 0, 0
	for _, record := range records {

		modified, err := c.store.UploadModifiedAt(ctx, record.ID)
		switch {
		case errors.Is(err, domain.ErrObjectNotFound):
			// nothing to remove, stamp it so the batch moves on
		case err != nil:
			c.logger.Error("Failed to stat stale upload", "id", record.ID, "hash", record.Hash.Hex(), "err", err)
			continue
		case !modified.Before(before):
			c.logger.Info("Skipping recently written upload", "id", record.ID, "hash", record.Hash.Hex(), "modified", modified)
			fresh++
			continue
		default:
			if err := c.store.RemoveUpload(ctx, record.ID); err != nil {
				c.logger.Error("Failed to remove stale upload", "id", record.ID, "hash", record.Hash.Hex(), "err", err)
				continue
			}
		}

		if err := c.uow.HashRegistry().MarkRawPurged(ctx, record.Hash); err != nil {
			c.logger.Error("Failed to mark stale upload purged", "id", record.ID, "hash", record.Hash.Hex(), "err", err)
			continue
		}
		purged++
	}

	c.logger.Info("stale upload cleanup completed", "found", len(records), "purged", purged, "fresh", fresh)
	return nil
}
