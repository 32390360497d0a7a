package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/agrolease/agrolease/internal/domain/audit"
)

// MockRepository is a mock implementation of audit.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, l *audit.AuditLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, auditID uuid.UUID) (*audit.AuditLog, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*audit.AuditLog), args.Error(1)
}

func (m *MockRepository) Query(ctx context.Context, filter audit.QueryFilter, limit, offset int) ([]*audit.AuditLog, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.AuditLog), args.Error(1)
}

func (m *MockRepository) GetByEntityID(ctx context.Context, entityType audit.EntityType, entityID string) ([]*audit.AuditLog, error) {
	args := m.Called(ctx, entityType, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.AuditLog), args.Error(1)
}
