package upload_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"quipt/internal/adapters/metrics"
	"quipt/internal/adapters/repository"
	"quipt/internal/adapters/storage"
	"quipt/internal/config"
	"quipt/internal/core/domain"
	"quipt/internal/core/service/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var defaultCfg = config.UploadConfig{MaxPayloadBytes: 0x3200000}

const testHash = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustHash(t *testing.T, s string) domain.ContentHash {
	t.Helper()
	h, err := domain.ParseContentHash(s)
	require.NoError(t, err)
	return h
}

func TestUploadService_RequestUpload_NewHash(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := upload.NewUploadService(mockUow, mockStore, metrics.Discard{}, defaultCfg, discardLogger())

	hash := mustHash(t, testHash)
	credential := &domain.UploadCredential{Key: "new-id", URL: "http://minio/uploads", Fields: map[string]string{"key": "new-id"}, ExpiresAt: time.Now().Add(time.Minute)}

	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("Get", ctx, hash).Return((*domain.HashRecord)(nil), domain.ErrHashNotFound)
	mockRegistry.On("CreateIfAbsent", ctx, hash, mock.AnythingOfType("string"), "user-1").
		Return(&domain.HashRecord{Hash: hash, ID: "new-id", State: domain.HashStatePending, OriginalUploader: "user-1"}, true, nil)
	mockStore.On("PresignUpload", ctx, "new-id", int64(1024), hash).Return(credential, nil)

	// Act
	outcome, err := service.RequestUpload(ctx, testHash, 1024, "user-1")

	// Assert
	require.NoError(t, err)
	assert.False(t, outcome.Duplicate)
	assert.Equal(t, "new-id", outcome.ID)
	assert.Equal(t, credential, outcome.Credential)
	mockRegistry.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestUploadService_RequestUpload_PendingHashReusesID(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := upload.NewUploadService(mockUow, mockStore, metrics.Discard{}, defaultCfg, discardLogger())

	hash := mustHash(t, testHash)
	existing := &domain.HashRecord{Hash: hash, ID: "first-id", State: domain.HashStatePending, OriginalUploader: "user-1"}

	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("Get", ctx, hash).Return(existing, nil)
	mockStore.On("PresignUpload", ctx, "first-id", int64(2048), hash).
		Return(&domain.UploadCredential{Key: "first-id"}, nil)

	// Act
	outcome, err := service.RequestUpload(ctx, testHash, 2048, "user-2")

	// Assert
	require.NoError(t, err)
	assert.False(t, outcome.Duplicate)
	assert.Equal(t, "first-id", outcome.ID)
	require.NotNil(t, outcome.Credential)
	assert.Equal(t, "first-id", outcome.Credential.Key)
	mockRegistry.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertExpectations(t)
}

func TestUploadService_RequestUpload_ValidatedHashReissuesCredential(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := upload.NewUploadService(mockUow, mockStore, metrics.Discard{}, defaultCfg, discardLogger())

	hash := mustHash(t, testHash)
	existing := &domain.HashRecord{Hash: hash, ID: "first-id", State: domain.HashStateValidated}

	mockUow.GetHashRegistryMock().On("Get", ctx, hash).Return(existing, nil)
	mockStore.On("PresignUpload", ctx, "first-id", int64(10), hash).
		Return(&domain.UploadCredential{Key: "first-id"}, nil)

	// Act
	outcome, err := service.RequestUpload(ctx, testHash, 10, "user-1")

	// Assert
	require.NoError(t, err)
	assert.False(t, outcome.Duplicate)
	assert.NotNil(t, outcome.Credential)
}

func TestUploadService_RequestUpload_ProcessedHashIsDuplicate(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := upload.NewUploadService(mockUow, mockStore, metrics.Discard{}, defaultCfg, discardLogger())

	hash := mustHash(t, testHash)
	existing := &domain.HashRecord{Hash: hash, ID: "done-id", State: domain.HashStatePublished}
	mockUow.GetHashRegistryMock().On("Get", ctx, hash).Return(existing, nil)

	// Act
	outcome, err := service.RequestUpload(ctx, testHash, 1024, "user-2")

	// Assert
	require.NoError(t, err)
	assert.True(t, outcome.Duplicate)
	assert.Equal(t, "done-id", outcome.ID)
	assert.Nil(t, outcome.Credential)
	mockStore.AssertNotCalled(t, "PresignUpload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_RequestUpload_LostRaceUsesWinnerID(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := upload.NewUploadService(mockUow, mockStore, metrics.Discard{}, defaultCfg, discardLogger())

	hash := mustHash(t, testHash)
	winner := &domain.HashRecord{Hash: hash, ID: "winner-id", State: domain.HashStatePending, OriginalUploader: "user-1"}

	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("Get", ctx, hash).Return((*domain.HashRecord)(nil), domain.ErrHashNotFound)
	mockRegistry.On("CreateIfAbsent", ctx, hash, mock.AnythingOfType("string"), "user-2").Return(winner, false, nil)
	mockStore.On("PresignUpload", ctx, "winner-id", int64(512), hash).Return(&domain.UploadCredential{Key: "winner-id"}, nil)

	// Act
	outcome, err := service.RequestUpload(ctx, testHash, 512, "user-2")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "winner-id", outcome.ID)
	mockStore.AssertExpectations(t)
}

func TestUploadService_RequestUpload_LostRaceToPublishedIsDuplicate(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := upload.NewUploadService(mockUow, mockStore, metrics.Discard{}, defaultCfg, discardLogger())

	hash := mustHash(t, testHash)
	winner := &domain.HashRecord{Hash: hash, ID: "winner-id", State: domain.HashStatePublished}

	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("Get", ctx, hash).Return((*domain.HashRecord)(nil), domain.ErrHashNotFound)
	mockRegistry.On("CreateIfAbsent", ctx, hash, mock.Anything, "user-2").Return(winner, false, nil)

	// Act
	outcome, err := service.RequestUpload(ctx, testHash, 512, "user-2")

	// Assert
	require.NoError(t, err)
	assert.True(t, outcome.Duplicate)
	assert.Equal(t, "winner-id", outcome.ID)
}

func TestUploadService_RequestUpload_Validation(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		size    int64
		wantErr error
	}{
		{name: "uppercase hex", hash: strings.ToUpper(testHash), size: 1, wantErr: domain.ErrInvalidHash},
		{name: "short hash", hash: testHash[:63], size: 1, wantErr: domain.ErrInvalidHash},
		{name: "long hash", hash: testHash + "0", size: 1, wantErr: domain.ErrInvalidHash},
		{name: "non hex", hash: "z" + testHash[1:], size: 1, wantErr: domain.ErrInvalidHash},
		{name: "zero size", hash: testHash, size: 0, wantErr: domain.ErrInvalidSize},
		{name: "one byte over max", hash: testHash, size: 0x3200000 + 1, wantErr: domain.ErrPayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockUow := repository.NewMockUnitOfWork()
			mockStore := storage.NewMockObjectStore()
			service := upload.NewUploadService(mockUow, mockStore, metrics.Discard{}, defaultCfg, discardLogger())

			// Act
			outcome, err := service.RequestUpload(context.Background(), tt.hash, tt.size, "user-1")

			// Assert
			assert.Nil(t, outcome)
			assert.ErrorIs(t, err, tt.wantErr)
			mockUow.GetHashRegistryMock().AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		})
	}
}

func TestUploadService_RequestUpload_MaxSizeAccepted(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := upload.NewUploadService(mockUow, mockStore, metrics.Discard{}, defaultCfg, discardLogger())

	hash := mustHash(t, testHash)
	mockUow.GetHashRegistryMock().On("Get", ctx, hash).
		Return(&domain.HashRecord{Hash: hash, ID: "id", State: domain.HashStatePending}, nil)
	mockStore.On("PresignUpload", ctx, "id", int64(0x3200000), hash).Return(&domain.UploadCredential{Key: "id"}, nil)

	// Act
	_, err := service.RequestUpload(ctx, testHash, 0x3200000, "user-1")

	// Assert
	require.NoError(t, err)
}

func TestUploadService_RequestUpload_StoreFailure(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := upload.NewUploadService(mockUow, mockStore, metrics.Discard{}, defaultCfg, discardLogger())

	hash := mustHash(t, testHash)
	mockUow.GetHashRegistryMock().On("Get", ctx, hash).Return((*domain.HashRecord)(nil), assert.AnError)

	// Act
	outcome, err := service.RequestUpload(ctx, testHash, 1, "user-1")

	// Assert
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, assert.AnError)
}
