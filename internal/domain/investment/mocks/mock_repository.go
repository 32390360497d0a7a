package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/agrolease/agrolease/internal/domain/investment"
)

// MockRepository is a mock implementation of investment.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, i *investment.Investment) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, investmentID uuid.UUID) (*investment.Investment, error) {
	args := m.Called(ctx, investmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.Investment), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter investment.Filter, limit, offset int) ([]*investment.Investment, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*investment.Investment), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, investmentID uuid.UUID, from, to investment.Status) (bool, error) {
	args := m.Called(ctx, investmentID, from, to)
	return args.Bool(0), args.Error(1)
}
