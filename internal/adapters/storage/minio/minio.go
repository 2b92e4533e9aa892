package minio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"quipt/internal/config"
	"quipt/internal/core/domain"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// uploadContentTypePrefix is the only family of content types a raw upload may declare
const uploadContentTypePrefix = "video/"

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter. Both buckets are created when missing and the
// processed bucket is made anonymously readable.
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	a := &Adapter{client: client, config: cfg, logger: logger}

	for _, bucket := range []string{cfg.SourceBucket, cfg.ProcessedBucket} {
		if err := a.ensureBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}

	if err := client.SetBucketPolicy(ctx, cfg.ProcessedBucket, publicReadPolicy(cfg.ProcessedBucket)); err != nil {
		return nil, fmt.Errorf("failed to set public read policy: %w", err)
	}

	return a, nil
}

func (a *Adapter) ensureBucket(ctx context.Context, bucket string) error {
	exists, err := a.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check if bucket %s exists: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	a.logger.Info("bucket created", slog.String("bucket", bucket))
	return nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// PresignUpload signs a browser-style POST policy that only admits one object:
// exactly size bytes, a video content type, and bytes whose SHA-256 equals hash.
func (a *Adapter) PresignUpload(ctx context.Context, key string, size int64, hash domain.ContentHash) (*domain.UploadCredential, error) {
	expiresAt := time.Now().UTC().Add(a.config.UploadCredentialDuration)

	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(a.config.SourceBucket); err != nil {
		return nil, fmt.Errorf("failed to set policy bucket: %w", err)
	}
	if err := policy.SetKey(key); err != nil {
		return nil, fmt.Errorf("failed to set policy key: %w", err)
	}
	if err := policy.SetExpires(expiresAt); err != nil {
		return nil, fmt.Errorf("failed to set policy expiry: %w", err)
	}
	if err := policy.SetContentTypeStartsWith(uploadContentTypePrefix); err != nil {
		return nil, fmt.Errorf("failed to set policy content type: %w", err)
	}
	if err := policy.SetContentLengthRange(size, size); err != nil {
		return nil, fmt.Errorf("failed to set policy length: %w", err)
	}
	if err := policy.SetChecksum(minio.NewChecksum(minio.ChecksumSHA256, hash.Bytes())); err != nil {
		return nil, fmt.Errorf("failed to set policy checksum: %w", err)
	}

	postURL, fields, err := a.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned post policy: %w", err)
	}

	return &domain.UploadCredential{
		Key:       key,
		URL:       postURL.String(),
		Fields:    fields,
		ExpiresAt: expiresAt,
	}, nil
}

// Download copies an object to filePath
func (a *Adapter) Download(ctx context.Context, location domain.ObjectLocation, filePath string) error {
	err := a.client.FGetObject(ctx, location.Bucket, location.Key, filePath, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return fmt.Errorf("%s/%s: %w", location.Bucket, location.Key, domain.ErrObjectNotFound)
		}
		return fmt.Errorf("failed to download object: %w", err)
	}
	return nil
}

// Publish uploads a derivative to the processed bucket
func (a *Adapter) Publish(ctx context.Context, key string, filePath string, contentType string, cacheControl string) error {
	info, err := a.client.FPutObject(ctx, a.config.ProcessedBucket, key, filePath, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: cacheControl,
	})
	if err != nil {
		return fmt.Errorf("failed to publish object: %w", err)
	}

	a.logger.Info("object published",
		slog.String("key", key),
		slog.String("bucket", a.config.ProcessedBucket),
		slog.Int64("size", info.Size))

	return nil
}

// RemoveUpload deletes a raw upload from the source bucket. Missing objects are not an error.
func (a *Adapter) RemoveUpload(ctx context.Context, key string) error {
	err := a.client.RemoveObject(ctx, a.config.SourceBucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	a.logger.Info("object deleted",
		slog.String("key", key),
		slog.String("bucket", a.config.SourceBucket))

	return nil
}

// UploadModifiedAt reports when a raw upload was last written
func (a *Adapter) UploadModifiedAt(ctx context.Context, key string) (time.Time, error) {
	info, err := a.client.StatObject(ctx, a.config.SourceBucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return time.Time{}, fmt.Errorf("%s/%s: %w", a.config.SourceBucket, key, domain.ErrObjectNotFound)
		}
		return time.Time{}, fmt.Errorf("failed to stat object: %w", err)
	}
	return info.LastModified, nil
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == minio.NoSuchKey
	}
	return minio.ToErrorResponse(err).Code == minio.NoSuchKey
}
