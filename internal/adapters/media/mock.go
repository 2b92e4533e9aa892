package media

import (
	"context"
	"os"
	"path/filepath"
	"quipt/internal/core/domain"
	"sort"

	"github.com/stretchr/testify/mock"
)

type MockProber struct {
	mock.Mock
}

func NewMockProber() *MockProber {
	return &MockProber{}
}

func (m *MockProber) Probe(ctx context.Context, filePath string) (*domain.MediaInfo, error) {
	args := m.Called(ctx, filePath)
	return args.Get(0).(*domain.MediaInfo), args.Error(1)
}

type MockTranscoder struct {
	mock.Mock
	// Outputs maps an extension to the bytes written as <keyPrefix>.<ext> on success.
	Outputs map[string][]byte
}

func NewMockTranscoder() *MockTranscoder {
	return &MockTranscoder{}
}

func (m *MockTranscoder) Transcode(ctx context.Context, filePath string, outputDir string, keyPrefix string) ([]domain.TranscodeOutput, error) {
	args := m.Called(ctx, filePath, outputDir, keyPrefix)
	if err := args.Error(0); err != nil {
		return nil, err
	}

	exts := make([]string, 0, len(m.Outputs))
	for ext := range m.Outputs {
		exts = append(exts, ext)
	}
	sort.Strings(exts)

	outputs := make([]domain.TranscodeOutput, 0, len(exts))
	for _, ext := range exts {
		path := filepath.Join(outputDir, keyPrefix+"."+ext)
		if err := os.WriteFile(path, m.Outputs[ext], 0o600); err != nil {
			return nil, err
		}
		outputs = append(outputs, domain.TranscodeOutput{Path: path, Extension: ext})
	}
	return outputs, nil
}
