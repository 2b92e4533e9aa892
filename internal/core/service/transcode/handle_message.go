package transcode

import (
	"context"
	"errors"
	"quipt/internal/core/domain"
	"time"
)

// errAlreadyPublished short-circuits a redelivered event whose derivatives already exist.
var errAlreadyPublished = errors.New("already published")

// HandleMessage runs the pipeline for one object-created notification.
// Content rejections are logged and acknowledged; infrastructure errors are returned for redelivery.
func (t *transcodeService) HandleMessage(ctx context.Context, data []byte) error {
	location, err := domain.ParseObjectLocation(data)
	if err != nil {
		t.logger.Error("dropping malformed storage event", "error", err)
		return nil
	}

	if t.sourceBucket != "" && location.Bucket != t.sourceBucket {
		t.logger.Warn("ignoring event for foreign bucket", "bucket", location.Bucket, "key", location.Key)
		return nil
	}

	start := time.Now()
	logger := t.logger.With("bucket", location.Bucket, "key", location.Key, "id", location.ID())
	logger.Info("handling upload")

	err = t.process(ctx, location, logger)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		t.metrics.TranscodeFinished(outcomePublished, elapsed)
		logger.Info("upload published", "duration", elapsed)
		return nil
	case errors.Is(err, errAlreadyPublished):
		t.metrics.TranscodeFinished(outcomeSkipped, elapsed)
		logger.Info("upload already published, skipping")
		return nil
	case domain.IsRejection(err):
		t.metrics.TranscodeFinished(outcomeRejected, elapsed)
		logger.Error("upload rejected", "error", err)
		return nil
	default:
		t.metrics.TranscodeFinished(outcomeFailed, elapsed)
		logger.Error("upload processing failed", "error", err)
		return err
	}
}
