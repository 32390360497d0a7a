package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents escrow ledger entry status.
type Status string

const (
	StatusEscrow   Status = "ESCROW"
	StatusReleased Status = "RELEASED"
	StatusRefunded Status = "REFUNDED"
)

var (
	ErrInvalidTransition       = errors.New("payment already released or refunded")
	ErrReleaseAlreadyRequested = errors.New("release already requested")
)

// Payment represents one escrow ledger entry: rent paid by a farmer, held
// until an admin releases it to the landowner or refunds it.
type Payment struct {
	ID               int64      `json:"id"`
	PaymentID        uuid.UUID  `json:"paymentId"`
	LeaseID          uuid.UUID  `json:"leaseId"`
	PayerID          uuid.UUID  `json:"payerId"`
	PayeeID          uuid.UUID  `json:"payeeId"`
	Amount           int64      `json:"amount"`
	Status           Status     `json:"status"`
	ReleaseRequested bool       `json:"releaseRequested"`
	CreatedAt        time.Time  `json:"createdAt"`
	ReleasedAt       *time.Time `json:"releasedAt,omitempty"`
	RefundedAt       *time.Time `json:"refundedAt,omitempty"`
}

// HistoryEntry is an append-only record of one payment status change.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	PaymentID uuid.UUID `json:"paymentId"`
	Status    Status    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// CanTransition reports whether a status move is legal. Escrow moves
// forward exactly once; released and refunded are terminal.
func CanTransition(from, to Status) bool {
	transitions := map[Status][]Status{
		StatusEscrow:   {StatusReleased, StatusRefunded},
		StatusReleased: {},
		StatusRefunded: {},
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (p *Payment) CanTransitionTo(target Status) bool {
	return CanTransition(p.Status, target)
}

// CanRequestRelease reports whether release may still be requested.
// releaseRequested is only settable while the payment sits in escrow.
func (p *Payment) CanRequestRelease() error {
	if p.Status != StatusEscrow {
		return ErrInvalidTransition
	}
	if p.ReleaseRequested {
		return ErrReleaseAlreadyRequested
	}
	return nil
}

func IsTerminal(s Status) bool {
	return s == StatusReleased || s == StatusRefunded
}
