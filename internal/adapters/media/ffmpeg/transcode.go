package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"quipt/internal/core/domain"
	"strings"
)

// keyPrefixPlaceholder in the argument template is replaced with the content id
const keyPrefixPlaceholder = "$KEY_PREFIX"

// maxStderr bounds the ffmpeg diagnostics kept for error messages
const maxStderr = 4 << 10

// Transcoder runs ffmpeg with a configurable argument template
type Transcoder struct {
	path   string
	args   string
	logger *slog.Logger
}

// NewTranscoder creates a Transcoder. args lists ffmpeg output options and file names
// separated by whitespace, relative to the output directory.
func NewTranscoder(path string, args string, logger *slog.Logger) *Transcoder {
	return &Transcoder{path: path, args: args, logger: logger}
}

// Args builds the ffmpeg argument list for one input
func (t *Transcoder) Args(inputPath string, keyPrefix string) []string {
	args := []string{"-y", "-loglevel", "warning", "-i", inputPath}
	return append(args, strings.Fields(strings.ReplaceAll(t.args, keyPrefixPlaceholder, keyPrefix))...)
}

// Transcode writes every output of the template into outputDir and lists them
func (t *Transcoder) Transcode(ctx context.Context, filePath string, outputDir string, keyPrefix string) ([]domain.TranscodeOutput, error) {
	input, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("could not resolve input path: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.path, t.Args(input, keyPrefix)...)
	cmd.Dir = outputDir
	stderr := &limitedBuffer{limit: maxStderr}
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stderr.Len() > 0 {
		t.logger.Warn("ffmpeg reported warnings", "key_prefix", keyPrefix, "stderr", strings.TrimSpace(stderr.String()))
	}

	return listOutputs(outputDir)
}

func listOutputs(dir string) ([]domain.TranscodeOutput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not list outputs: %w", err)
	}

	outputs := make([]domain.TranscodeOutput, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(entry.Name()), ".")
		if ext == "" {
			continue
		}
		outputs = append(outputs, domain.TranscodeOutput{
			Path:      filepath.Join(dir, entry.Name()),
			Extension: ext,
		})
	}
	return outputs, nil
}

// limitedBuffer keeps the first limit bytes written to it
type limitedBuffer struct {
	buf   []byte
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - len(b.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		b.buf = append(b.buf, p[:room]...)
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string { return string(b.buf) }

func (b *limitedBuffer) Len() int { return len(b.buf) }
