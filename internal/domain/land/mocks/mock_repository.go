package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/agrolease/agrolease/internal/domain/land"
)

// MockRepository is a mock implementation of land.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, l *land.Land) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, landID uuid.UUID) (*land.Land, error) {
	args := m.Called(ctx, landID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*land.Land), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter land.Filter, limit, offset int) ([]*land.Land, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*land.Land), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, landID uuid.UUID, from, to land.Status) (bool, error) {
	args := m.Called(ctx, landID, from, to)
	return args.Bool(0), args.Error(1)
}
