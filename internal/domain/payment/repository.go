package payment

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter controls payment listing.
type Filter struct {
	LeaseID *uuid.UUID
	PayerID *uuid.UUID
	PayeeID *uuid.UUID
	Status  *Status
}

// Repository defines persistence for escrow payments. Status-changing
// methods are conditional updates appending history in the same database
// transaction; a lost condition surfaces as apperr.ErrConflict or, once
// re-read, apperr.ErrInvalidTransition.
type Repository interface {
	// CreateEscrow inserts the payment and, when this is the lease's
	// first funding, flips the lease APPROVED -> ACTIVE in the same
	// transaction.
	CreateEscrow(ctx context.Context, p *Payment, entry *HistoryEntry) error

	GetByID(ctx context.Context, paymentID uuid.UUID) (*Payment, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Payment, error)

	// RequestRelease sets release_requested while the payment is still
	// in escrow and not already requested. Reports whether a row matched.
	RequestRelease(ctx context.Context, paymentID uuid.UUID) (bool, error)

	// Settle transitions ESCROW -> RELEASED or ESCROW -> REFUNDED,
	// clearing release_requested and stamping the settlement time.
	Settle(ctx context.Context, paymentID uuid.UUID, to Status, at time.Time, entry *HistoryEntry) error

	ListHistory(ctx context.Context, paymentID uuid.UUID) ([]*HistoryEntry, error)
}
