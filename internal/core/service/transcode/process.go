package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"quipt/internal/core/domain"
	"quipt/internal/core/port"
	"quipt/internal/core/service/derivative"
)

const fallbackContentType = "application/octet-stream"

func (t *transcodeService) process(ctx context.Context, location domain.ObjectLocation, logger *slog.Logger) error {
	id := location.ID()

	workDir, err := os.MkdirTemp(t.cfg.ScratchDir, "transcode-")
	if err != nil {
		return fmt.Errorf("could not create scratch dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logger.Error("failed to remove scratch dir", "dir", workDir, "error", rmErr)
		}
	}()

	download := filepath.Join(workDir, "download")
	outputDir := filepath.Join(workDir, "outputs")
	if err := os.Mkdir(outputDir, 0o700); err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	if err := t.store.Download(ctx, location, download); err != nil {
		return fmt.Errorf("could not download upload: %w", err)
	}

	hash, err := domain.HashFile(download)
	if err != nil {
		return fmt.Errorf("could not hash upload: %w", err)
	}
	logger = logger.With("hash", hash.Hex())

	record, err := t.lookup(ctx, hash, id, logger)
	if err != nil {
		return err
	}
	if record != nil && record.Processed() {
		t.removeUpload(ctx, location, logger)
		return errAlreadyPublished
	}

	if err := screenPlaylist(download); err != nil {
		return err
	}

	info, err := t.prober.Probe(ctx, download)
	if err != nil {
		return fmt.Errorf("could not probe upload: %w", err)
	}
	if !info.HasVideoWithin(t.cfg.MaxDuration()) {
		return fmt.Errorf("%w: no video stream within %s", domain.ErrInvalidMedia, t.cfg.MaxDuration())
	}

	if err := t.uow.HashRegistry().MarkValidated(ctx, hash, id); err != nil && !isBenign(err) {
		return fmt.Errorf("could not mark upload validated: %w", err)
	}

	outputs, err := t.transcoder.Transcode(ctx, download, outputDir, id)
	if err != nil {
		return fmt.Errorf("could not transcode upload: %w", err)
	}

	var rendition *domain.TranscodeOutput
	for i := range outputs {
		if outputs[i].Extension == derivative.VideoSuffix {
			rendition = &outputs[i]
		}
	}
	if rendition == nil {
		return domain.ErrMissingRendition
	}

	for _, output := range outputs {
		if err := t.publish(ctx, id, output); err != nil {
			return err
		}
	}

	renditionHash, err := domain.HashFile(rendition.Path)
	if err != nil {
		return fmt.Errorf("could not hash rendition: %w", err)
	}

	var uploader string
	if record != nil {
		uploader = record.OriginalUploader
	}

	txErr := t.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		recorded, err := uow.HashRegistry().RecordDerivative(ctx, renditionHash, id, uploader)
		if err != nil {
			return fmt.Errorf("could not record rendition hash: %w", err)
		}
		if !recorded {
			t.reportProvenanceConflict(ctx, uow, renditionHash, id, logger)
		}
		if err := uow.HashRegistry().MarkProcessed(ctx, hash, id); err != nil && !isBenign(err) {
			return fmt.Errorf("could not mark upload processed: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	t.removeUpload(ctx, location, logger)
	return nil
}

// lookup returns the registry record for hash, or nil when the hash was never claimed.
func (t *transcodeService) lookup(ctx context.Context, hash domain.ContentHash, id string, logger *slog.Logger) (*domain.HashRecord, error) {
	record, err := t.uow.HashRegistry().Get(ctx, hash)
	switch {
	case errors.Is(err, domain.ErrHashNotFound):
		logger.Warn("upload hash is not registered")
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("could not look up upload hash: %w", err)
	case record.ID != id:
		return nil, fmt.Errorf("%w: bytes belong to %s", domain.ErrSuspiciousContent, record.ID)
	}
	return record, nil
}

// reportProvenanceConflict logs a rendition hash that is already registered.
// Redeliveries find their own record; anything else means the provenance link was not written.
func (t *transcodeService) reportProvenanceConflict(ctx context.Context, uow port.UnitOfWork, renditionHash domain.ContentHash, id string, logger *slog.Logger) {
	existing, err := uow.HashRegistry().Get(ctx, renditionHash)
	if err != nil {
		logger.Warn("rendition hash not recorded", "rendition_hash", renditionHash.Hex(), "error", err)
		return
	}
	if existing.ID == id {
		logger.Info("rendition hash already recorded", "rendition_hash", renditionHash.Hex())
		return
	}
	logger.Warn("rendition hash owned by another id, provenance not recorded",
		"rendition_hash", renditionHash.Hex(),
		"owner_id", existing.ID,
		"owner_state", existing.State,
	)
}

func (t *transcodeService) publish(ctx context.Context, id string, output domain.TranscodeOutput) error {
	contentType, ok := t.cfg.MimeTypes[output.Extension]
	if !ok {
		contentType = fallbackContentType
	}

	key := derivative.Key(id, output.Extension)
	if err := t.store.Publish(ctx, key, output.Path, contentType, t.cfg.CacheControl); err != nil {
		return fmt.Errorf("could not publish %s: %w", key, err)
	}

	t.logger.Info("derivative published", "key", key, "content_type", contentType)
	return nil
}

func (t *transcodeService) removeUpload(ctx context.Context, location domain.ObjectLocation, logger *slog.Logger) {
	if err := t.store.RemoveUpload(ctx, location.Key); err != nil {
		logger.Warn("failed to remove raw upload", "error", err)
	}
}

// isBenign reports registry transition conflicts that a repeated invocation is expected to hit.
func isBenign(err error) bool {
	return errors.Is(err, domain.ErrAlreadyProcessed) || errors.Is(err, domain.ErrHashNotFound)
}
