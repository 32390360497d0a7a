package payout

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter controls payout request listing.
type Filter struct {
	Kind        *Kind
	SourceID    *uuid.UUID
	RequesterID *uuid.UUID
	Status      *Status
}

// Review carries the admin-supplied fields of a review transition.
type Review struct {
	Status         Status
	Note           *string
	TransactionRef *string
	PaidAmount     *int64
	ReceiptURL     *string
	ReviewedBy     string
	ReviewedAt     time.Time
}

// PaidResult reports the lease-side outcome of marking a rent request paid.
type PaidResult struct {
	PaymentsMade   int
	TotalPayments  int
	LeaseCompleted bool
}

// Repository defines persistence for payout requests. Status-changing
// methods are conditional on the expected current status and append the
// matching history entry in the same database transaction; losing the
// condition yields apperr.ErrConflict (or apperr.ErrInvalidTransition once
// the caller re-reads). Create surfaces apperr.ErrDuplicatePending when the
// one-pending-per-source-and-requester index rejects the insert.
type Repository interface {
	Create(ctx context.Context, r *Request, entry *HistoryEntry) error
	GetByID(ctx context.Context, requestID uuid.UUID) (*Request, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Request, error)

	// HasPending reports whether a pending request exists for the same
	// source and requester.
	HasPending(ctx context.Context, kind Kind, sourceID, requesterID uuid.UUID) (bool, error)

	// UpdateStatus applies a conditional transition (WHERE status = from)
	// and appends the history entry atomically.
	UpdateStatus(ctx context.Context, requestID uuid.UUID, from Status, review Review, entry *HistoryEntry) error

	// MarkPaid transitions APPROVED -> PAID and, for lease-rent requests,
	// increments the parent lease's payment counter and completes the
	// lease when the counter reaches its total, all in one transaction.
	MarkPaid(ctx context.Context, requestID uuid.UUID, review Review, entry *HistoryEntry) (*PaidResult, error)

	// Cancel transitions PENDING -> CANCELED, stamping canceled_at.
	Cancel(ctx context.Context, requestID uuid.UUID, entry *HistoryEntry) error

	ListHistory(ctx context.Context, requestID uuid.UUID) ([]*HistoryEntry, error)
}
