package investment

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls investment listing.
type Filter struct {
	InvestorID *uuid.UUID
	LeaseID    *uuid.UUID
	Status     *Status
}

// Repository defines persistence for investments.
type Repository interface {
	Create(ctx context.Context, i *Investment) error
	GetByID(ctx context.Context, investmentID uuid.UUID) (*Investment, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Investment, error)
	UpdateStatus(ctx context.Context, investmentID uuid.UUID, from, to Status) (bool, error)
}
