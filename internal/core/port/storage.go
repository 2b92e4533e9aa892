package port

import (
	"context"
	"quipt/internal/core/domain"
	"time"
)

// ObjectStore is an interface to define blob storage interactions for raw uploads and derivatives
type ObjectStore interface {
	PresignUpload(ctx context.Context, key string, size int64, hash domain.ContentHash) (*domain.UploadCredential, error)
	Download(ctx context.Context, location domain.ObjectLocation, filePath string) error
	Publish(ctx context.Context, key string, filePath string, contentType string, cacheControl string) error
	RemoveUpload(ctx context.Context, key string) error
	UploadModifiedAt(ctx context.Context, key string) (time.Time, error)
}
