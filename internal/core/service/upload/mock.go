package upload

import (
	"context"
	"quipt/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	mock.Mock
}

// NewMockUploadService creates a new MockUploadService
func NewMockUploadService() *MockUploadService {
	return &MockUploadService{}
}

func (m *MockUploadService) RequestUpload(ctx context.Context, hash string, size int64, uploader string) (*domain.UploadOutcome, error) {
	args := m.Called(ctx, hash, size, uploader)
	return args.Get(0).(*domain.UploadOutcome), args.Error(1)
}
