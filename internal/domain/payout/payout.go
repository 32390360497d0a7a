package payout

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the payout source. The lease-rent and investment-return
// request flows share one record shape and one state machine, parameterized
// by kind.
type Kind string

const (
	KindLeaseRent        Kind = "LEASE_RENT"
	KindInvestmentReturn Kind = "INVESTMENT_RETURN"
)

// Status represents payout request status.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusPaid     Status = "PAID"
	StatusCanceled Status = "CANCELED"
)

var ErrInvalidTransition = errors.New("invalid payout request status transition")

// Request represents a payout request raised against a lease or an
// investment and reviewed by an admin.
type Request struct {
	ID               int64      `json:"id"`
	RequestID        uuid.UUID  `json:"requestId"`
	Kind             Kind       `json:"kind"`
	SourceID         uuid.UUID  `json:"sourceId"`
	RequesterID      uuid.UUID  `json:"requesterId"`
	Amount           int64      `json:"amount"`
	PayoutMethodID   string     `json:"payoutMethodId"`
	Status           Status     `json:"status"`
	AdminComment     *string    `json:"adminComment,omitempty"`
	TransactionRef   *string    `json:"transactionRef,omitempty"`
	PaidAmount       *int64     `json:"paidAmount,omitempty"`
	ReceiptURL       *string    `json:"receiptUrl,omitempty"`
	FlaggedForReview bool       `json:"flaggedForReview"`
	RequestedAt      time.Time  `json:"requestedAt"`
	ReviewedAt       *time.Time `json:"reviewedAt,omitempty"`
	CanceledAt       *time.Time `json:"canceledAt,omitempty"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// HistoryEntry is an append-only audit record of one status change.
// Entries are never edited or removed.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	RequestID uuid.UUID `json:"requestId"`
	Status    Status    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// CanTransition reports whether the move from one status to another is in
// the legal table. Role gating is enforced by the caller, not here.
func CanTransition(from, to Status) bool {
	transitions := map[Status][]Status{
		StatusPending:  {StatusApproved, StatusRejected, StatusCanceled},
		StatusApproved: {StatusPaid},
		StatusRejected: {},
		StatusPaid:     {},
		StatusCanceled: {},
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransitionTo validates a transition for this request.
func (r *Request) CanTransitionTo(target Status) bool {
	return CanTransition(r.Status, target)
}

func (r *Request) IsTerminal() bool {
	return IsTerminal(r.Status)
}

func IsTerminal(s Status) bool {
	return s == StatusRejected || s == StatusPaid || s == StatusCanceled
}

func ValidateStatus(s Status) error {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusPaid, StatusCanceled:
		return nil
	}
	return errors.New("invalid payout request status")
}

func ValidateKind(k Kind) error {
	switch k {
	case KindLeaseRent, KindInvestmentReturn:
		return nil
	}
	return errors.New("invalid payout request kind")
}
