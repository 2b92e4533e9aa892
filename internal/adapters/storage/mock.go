package storage

import (
	"context"
	"os"
	"quipt/internal/core/domain"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockObjectStore struct {
	mock.Mock
	// Contents, when set, is written to the target path on Download.
	Contents []byte
}

func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{}
}

func (m *MockObjectStore) PresignUpload(ctx context.Context, key string, size int64, hash domain.ContentHash) (*domain.UploadCredential, error) {
	args := m.Called(ctx, key, size, hash)
	return args.Get(0).(*domain.UploadCredential), args.Error(1)
}

func (m *MockObjectStore) Download(ctx context.Context, location domain.ObjectLocation, filePath string) error {
	args := m.Called(ctx, location, filePath)
	if err := args.Error(0); err != nil {
		return err
	}
	return os.WriteFile(filePath, m.Contents, 0o600)
}

func (m *MockObjectStore) Publish(ctx context.Context, key string, filePath string, contentType string, cacheControl string) error {
	args := m.Called(ctx, key, filePath, contentType, cacheControl)
	return args.Error(0)
}

func (m *MockObjectStore) RemoveUpload(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockObjectStore) UploadModifiedAt(ctx context.Context, key string) (time.Time, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Time), args.Error(1)
}
