package land

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls land listing.
type Filter struct {
	OwnerID *uuid.UUID
	Status  *Status
}

// Repository defines persistence for land parcels.
type Repository interface {
	Create(ctx context.Context, l *Land) error
	GetByID(ctx context.Context, landID uuid.UUID) (*Land, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Land, error)

	// UpdateStatus performs a conditional status update. It reports
	// whether a row matched the expected current status.
	UpdateStatus(ctx context.Context, landID uuid.UUID, from, to Status) (bool, error)
}
