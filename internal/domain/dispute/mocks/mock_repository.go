package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/agrolease/agrolease/internal/domain/dispute"
)

// MockRepository is a mock implementation of dispute.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, d *dispute.Dispute, entry *dispute.HistoryEntry) error {
	args := m.Called(ctx, d, entry)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, disputeID uuid.UUID) (*dispute.Dispute, error) {
	args := m.Called(ctx, disputeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispute.Dispute), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter dispute.Filter, limit, offset int) ([]*dispute.Dispute, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dispute.Dispute), args.Error(1)
}

func (m *MockRepository) FindOpen(ctx context.Context, raisedBy, subjectID uuid.UUID) (*dispute.Dispute, error) {
	args := m.Called(ctx, raisedBy, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispute.Dispute), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, disputeID uuid.UUID, from, to dispute.Status, resolutionNote *string, actionTakenBy string, entry *dispute.HistoryEntry) error {
	args := m.Called(ctx, disputeID, from, to, resolutionNote, actionTakenBy, entry)
	return args.Error(0)
}

func (m *MockRepository) ListHistory(ctx context.Context, disputeID uuid.UUID) ([]*dispute.HistoryEntry, error) {
	args := m.Called(ctx, disputeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dispute.HistoryEntry), args.Error(1)
}
