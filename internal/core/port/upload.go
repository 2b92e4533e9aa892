package port

import (
	"context"
	"quipt/internal/core/domain"
)

// UploadService issues scoped upload credentials after deduplication
type UploadService interface {
	RequestUpload(ctx context.Context, hash string, size int64, uploader string) (*domain.UploadOutcome, error)
}

// DerivativeLinks are the public URLs of a published derivative set
type DerivativeLinks struct {
	ID        string
	VideoURL  string
	PosterURL string
}

// DerivativePublisher maps a content id to its public derivative URLs
type DerivativePublisher interface {
	Links(id string) DerivativeLinks
}
