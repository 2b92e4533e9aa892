package port

import (
	"context"
	"quipt/internal/core/domain"
)

// MediaProber inspects a media file
type MediaProber interface {
	Probe(ctx context.Context, filePath string) (*domain.MediaInfo, error)
}

// Transcoder converts a media file into delivery renditions written to outputDir
type Transcoder interface {
	Transcode(ctx context.Context, filePath string, outputDir string, keyPrefix string) ([]domain.TranscodeOutput, error)
}
