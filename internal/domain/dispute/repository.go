package dispute

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls dispute listing.
type Filter struct {
	RaisedBy  *uuid.UUID
	Against   *uuid.UUID
	SubjectID *uuid.UUID
	Status    *Status
}

// Repository defines persistence for disputes. Create surfaces
// apperr.ErrDuplicatePending when the one-open-dispute-per-raiser-and-
// subject index rejects the insert.
type Repository interface {
	Create(ctx context.Context, d *Dispute, entry *HistoryEntry) error
	GetByID(ctx context.Context, disputeID uuid.UUID) (*Dispute, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Dispute, error)

	// FindOpen returns the raiser's open dispute on the subject, if any.
	FindOpen(ctx context.Context, raisedBy, subjectID uuid.UUID) (*Dispute, error)

	// UpdateStatus applies a conditional transition (WHERE status = from)
	// and appends the history entry atomically.
	UpdateStatus(ctx context.Context, disputeID uuid.UUID, from, to Status, resolutionNote *string, actionTakenBy string, entry *HistoryEntry) error

	ListHistory(ctx context.Context, disputeID uuid.UUID) ([]*HistoryEntry, error)
}
