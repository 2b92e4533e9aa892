package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"quipt/internal/core/domain"
)

// Prober runs ffprobe
type Prober struct {
	path   string
	logger *slog.Logger
}

// NewProber creates a Prober using the ffprobe binary at path
func NewProber(path string, logger *slog.Logger) *Prober {
	return &Prober{path: path, logger: logger}
}

type probeOutput struct {
	Streams []struct {
		Index     int    `json:"index"`
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reports the streams and durations of filePath
func (p *Prober) Probe(ctx context.Context, filePath string) (*domain.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, p.path,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-i", filePath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// ffprobe exits non-zero for files it cannot demux
		if _, ok := err.(*exec.ExitError); ok && ctx.Err() == nil {
			p.logger.Warn("ffprobe could not read file", "error", err, "stderr", stderr.String())
			return &domain.MediaInfo{}, nil
		}
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return ParseProbeOutput(stdout.Bytes())
}

// ParseProbeOutput decodes ffprobe's JSON report
func ParseProbeOutput(data []byte) (*domain.MediaInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid ffprobe output: %w", err)
	}

	info := &domain.MediaInfo{
		Streams:        make([]domain.MediaStream, 0, len(out.Streams)),
		FormatDuration: out.Format.Duration,
	}
	for _, s := range out.Streams {
		info.Streams = append(info.Streams, domain.MediaStream{
			Index:     s.Index,
			CodecType: s.CodecType,
			Duration:  s.Duration,
		})
	}
	return info, nil
}
