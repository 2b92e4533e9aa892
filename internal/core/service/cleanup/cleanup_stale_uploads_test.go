package cleanup_test

import (
	"context"
	"crypto/sha256"
	"errors"
	"log/slog"
	"quipt/internal/adapters/repository"
	"quipt/internal/adapters/storage"
	"quipt/internal/config"
	"quipt/internal/core/domain"
	"quipt/internal/core/service/cleanup"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var cfg = config.UploadConfig{StaleAfter: 24 * time.Hour, CleanupBatch: 50}

func staleRecord(id string) domain.HashRecord {
	return domain.HashRecord{
		Hash:  domain.ContentHash(sha256.Sum256([]byte(id))),
		ID:    id,
		State: domain.HashStatePending,
	}
}

func TestCleanupService_CleanupStaleUploads_NoStaleUploads(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := cleanup.NewCleanupService(mockUow, mockStore, cfg, slog.Default())

	now := time.Now()
	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("FindStalePending", ctx, now.Add(-24*time.Hour), 50).Return([]domain.HashRecord{}, nil)

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.NoError(t, err)
	mockRegistry.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "RemoveUpload", mock.Anything, mock.Anything)
}

func TestCleanupService_CleanupStaleUploads_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := cleanup.NewCleanupService(mockUow, mockStore, cfg, slog.Default())

	now := time.Now()
	first := staleRecord("first")
	second := staleRecord("second")

	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("FindStalePending", ctx, now.Add(-24*time.Hour), 50).Return([]domain.HashRecord{first, second}, nil)
	mockStore.On("UploadModifiedAt", ctx, "first").Return(now.Add(-25*time.Hour), nil)
	mockStore.On("UploadModifiedAt", ctx, "second").Return(now.Add(-48*time.Hour), nil)
	mockStore.On("RemoveUpload", ctx, "first").Return(nil)
	mockStore.On("RemoveUpload", ctx, "second").Return(nil)
	mockRegistry.On("MarkRawPurged", ctx, first.Hash).Return(nil)
	mockRegistry.On("MarkRawPurged", ctx, second.Hash).Return(nil)

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.NoError(t, err)
	mockRegistry.AssertExpectations(t)
	mockStore.AssertExpectations(t)
	mockRegistry.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestCleanupService_CleanupStaleUploads_FindError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := cleanup.NewCleanupService(mockUow, mockStore, cfg, slog.Default())

	now := time.Now()
	expectedError := errors.New("database error")

	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("FindStalePending", ctx, now.Add(-24*time.Hour), 50).Return([]domain.HashRecord(nil), expectedError)

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.Error(t, err)
	assert.Equal(t, expectedError, err)
	mockRegistry.AssertExpectations(t)
}

func TestCleanupService_CleanupStaleUploads_PartialFailure(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := cleanup.NewCleanupService(mockUow, mockStore, cfg, slog.Default())

	now := time.Now()
	failing := staleRecord("failing")
	healthy := staleRecord("healthy")

	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("FindStalePending", ctx, now.Add(-24*time.Hour), 50).Return([]domain.HashRecord{failing, healthy}, nil)
	mockStore.On("UploadModifiedAt", ctx, "failing").Return(now.Add(-25*time.Hour), nil)
	mockStore.On("UploadModifiedAt", ctx, "healthy").Return(now.Add(-25*time.Hour), nil)
	mockStore.On("RemoveUpload", ctx, "failing").Return(errors.New("storage unavailable"))
	mockStore.On("RemoveUpload", ctx, "healthy").Return(nil)
	mockRegistry.On("MarkRawPurged", ctx, healthy.Hash).Return(nil)

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
	mockRegistry.AssertExpectations(t)
	mockRegistry.AssertNotCalled(t, "MarkRawPurged", ctx, failing.Hash)
}

func TestCleanupService_CleanupStaleUploads_RecentUploadSurvives(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := cleanup.NewCleanupService(mockUow, mockStore, cfg, slog.Default())

	now := time.Now()
	retried := staleRecord("retried")

	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("FindStalePending", ctx, now.Add(-24*time.Hour), 50).Return([]domain.HashRecord{retried}, nil)
	mockStore.On("UploadModifiedAt", ctx, "retried").Return(now.Add(-time.Minute), nil)

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "RemoveUpload", mock.Anything, mock.Anything)
	mockRegistry.AssertNotCalled(t, "MarkRawPurged", mock.Anything, mock.Anything)
}

func TestCleanupService_CleanupStaleUploads_MissingObject(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := cleanup.NewCleanupService(mockUow, mockStore, cfg, slog.Default())

	now := time.Now()
	abandoned := staleRecord("abandoned")

	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("FindStalePending", ctx, now.Add(-24*time.Hour), 50).Return([]domain.HashRecord{abandoned}, nil)
	mockStore.On("UploadModifiedAt", ctx, "abandoned").Return(time.Time{}, domain.ErrObjectNotFound)
	mockRegistry.On("MarkRawPurged", ctx, abandoned.Hash).Return(nil)

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.NoError(t, err)
	mockRegistry.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "RemoveUpload", mock.Anything, mock.Anything)
}

func TestCleanupService_CleanupStaleUploads_StatError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockStore := storage.NewMockObjectStore()
	service := cleanup.NewCleanupService(mockUow, mockStore, cfg, slog.Default())

	now := time.Now()
	unknown := staleRecord("unknown")

	mockRegistry := mockUow.GetHashRegistryMock()
	mockRegistry.On("FindStalePending", ctx, now.Add(-24*time.Hour), 50).Return([]domain.HashRecord{unknown}, nil)
	mockStore.On("UploadModifiedAt", ctx, "unknown").Return(time.Time{}, errors.New("storage unavailable"))

	// Act
	err := service.CleanupStaleUploads(ctx, now)

	// Assert
	assert.NoError(t, err)
	mockStore.AssertNotCalled(t, "RemoveUpload", mock.Anything, mock.Anything)
	mockRegistry.AssertNotCalled(t, "MarkRawPurged", mock.Anything, mock.Anything)
}
