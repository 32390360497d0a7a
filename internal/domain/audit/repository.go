package audit

import (
	"context"

	"github.com/google/uuid"
)

// QueryFilter controls audit log queries.
type QueryFilter struct {
	EntityType *EntityType
	EntityID   *string
	Action     *Action
	Actor      *string
}

// Repository defines persistence for audit logs. Logs are append-only;
// there is no update or delete.
type Repository interface {
	Create(ctx context.Context, l *AuditLog) error
	GetByID(ctx context.Context, auditID uuid.UUID) (*AuditLog, error)
	Query(ctx context.Context, filter QueryFilter, limit, offset int) ([]*AuditLog, error)
	GetByEntityID(ctx context.Context, entityType EntityType, entityID string) ([]*AuditLog, error)
}
