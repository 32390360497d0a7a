package lease

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls lease listing.
type Filter struct {
	LandID   *uuid.UUID
	FarmerID *uuid.UUID
	OwnerID  *uuid.UUID
	Status   *Status
}

// Repository defines persistence for leases.
type Repository interface {
	Create(ctx context.Context, l *Lease) error
	GetByID(ctx context.Context, leaseID uuid.UUID) (*Lease, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Lease, error)

	// UpdateStatus performs a conditional status update
	// (WHERE status = from). It reports whether a row matched.
	UpdateStatus(ctx context.Context, leaseID uuid.UUID, from, to Status) (bool, error)

	// Delete removes a lease. Only legal while the lease is pending;
	// callers enforce that before invoking.
	Delete(ctx context.Context, leaseID uuid.UUID) error
}
