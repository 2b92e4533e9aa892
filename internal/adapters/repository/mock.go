package repository

import (
	"context"
	"quipt/internal/core/domain"
	"quipt/internal/core/port"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockHashRegistry struct {
	mock.Mock
}

func NewMockHashRegistry() *MockHashRegistry {
	return &MockHashRegistry{}
}

func (m *MockHashRegistry) Get(ctx context.Context, hash domain.ContentHash) (*domain.HashRecord, error) {
	args := m.Called(ctx, hash)
	return args.Get(0).(*domain.HashRecord), args.Error(1)
}

func (m *MockHashRegistry) CreateIfAbsent(ctx context.Context, hash domain.ContentHash, id string, uploader string) (*domain.HashRecord, bool, error) {
	args := m.Called(ctx, hash, id, uploader)
	return args.Get(0).(*domain.HashRecord), args.Bool(1), args.Error(2)
}

func (m *MockHashRegistry) MarkValidated(ctx context.Context, hash domain.ContentHash, id string) error {
	args := m.Called(ctx, hash, id)
	return args.Error(0)
}

func (m *MockHashRegistry) MarkProcessed(ctx context.Context, hash domain.ContentHash, id string) error {
	args := m.Called(ctx, hash, id)
	return args.Error(0)
}

func (m *MockHashRegistry) RecordDerivative(ctx context.Context, hash domain.ContentHash, id string, uploader string) (bool, error) {
	args := m.Called(ctx, hash, id, uploader)
	return args.Bool(0), args.Error(1)
}

func (m *MockHashRegistry) FindStalePending(ctx context.Context, before time.Time, limit int) ([]domain.HashRecord, error) {
	args := m.Called(ctx, before, limit)
	return args.Get(0).([]domain.HashRecord), args.Error(1)
}

func (m *MockHashRegistry) MarkRawPurged(ctx context.Context, hash domain.ContentHash) error {
	args := m.Called(ctx, hash)
	return args.Error(0)
}

type MockUnitOfWork struct {
	mock.Mock
	hashRegistry *MockHashRegistry
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		hashRegistry: &MockHashRegistry{},
	}
}

func (m *MockUnitOfWork) HashRegistry() port.HashRegistry {
	return m.hashRegistry
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetHashRegistryMock() *MockHashRegistry {
	return m.hashRegistry
}
