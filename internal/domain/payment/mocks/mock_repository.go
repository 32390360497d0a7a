package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/agrolease/agrolease/internal/domain/payment"
)

// MockRepository is a mock implementation of payment.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateEscrow(ctx context.Context, p *payment.Payment, entry *payment.HistoryEntry) error {
	args := m.Called(ctx, p, entry)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter payment.Filter, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockRepository) RequestRelease(ctx context.Context, paymentID uuid.UUID) (bool, error) {
	args := m.Called(ctx, paymentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Settle(ctx context.Context, paymentID uuid.UUID, to payment.Status, at time.Time, entry *payment.HistoryEntry) error {
	args := m.Called(ctx, paymentID, to, at, entry)
	return args.Error(0)
}

func (m *MockRepository) ListHistory(ctx context.Context, paymentID uuid.UUID) ([]*payment.HistoryEntry, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.HistoryEntry), args.Error(1)
}
