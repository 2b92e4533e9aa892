package port

import (
	"context"
	"time"
)

// CleanupService reclaims raw uploads that never finished processing
type CleanupService interface {
	CleanupStaleUploads(ctx context.Context, now time.Time) error
}
