package dispute

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents dispute status.
type Status string

const (
	StatusOpen     Status = "OPEN"
	StatusInReview Status = "IN_REVIEW"
	StatusResolved Status = "RESOLVED"
	StatusRejected Status = "REJECTED"
)

// SubjectType identifies what a dispute is raised against.
type SubjectType string

const (
	SubjectLease   SubjectType = "LEASE"
	SubjectPayment SubjectType = "PAYMENT"
)

// Category classifies the complaint.
type Category string

const (
	CategoryPayment        Category = "PAYMENT"
	CategoryLandCondition  Category = "LAND_CONDITION"
	CategoryContractBreach Category = "CONTRACT_BREACH"
	CategoryFraud          Category = "FRAUD"
	CategoryOther          Category = "OTHER"
)

var ErrInvalidTransition = errors.New("invalid dispute status transition")

// Dispute represents a complaint raised by one party against the
// counterparty of a lease or escrow payment.
type Dispute struct {
	ID             int64       `json:"id"`
	DisputeID      uuid.UUID   `json:"disputeId"`
	RaisedBy       uuid.UUID   `json:"raisedBy"`
	Against        uuid.UUID   `json:"against"`
	SubjectType    SubjectType `json:"subjectType"`
	SubjectID      uuid.UUID   `json:"subjectId"`
	Category       Category    `json:"category"`
	Reason         string      `json:"reason"`
	Status         Status      `json:"status"`
	ResolutionNote *string     `json:"resolutionNote,omitempty"`
	ActionTakenBy  *string     `json:"actionTakenBy,omitempty"`
	ActionTakenAt  *time.Time  `json:"actionTakenAt,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// HistoryEntry is an append-only record of one dispute status change.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	DisputeID uuid.UUID `json:"disputeId"`
	Status    Status    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// CanTransition reports whether a status move is in the legal table.
func CanTransition(from, to Status) bool {
	transitions := map[Status][]Status{
		StatusOpen:     {StatusInReview, StatusResolved, StatusRejected},
		StatusInReview: {StatusResolved, StatusRejected},
		StatusResolved: {},
		StatusRejected: {},
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (d *Dispute) CanTransitionTo(target Status) bool {
	return CanTransition(d.Status, target)
}

func IsTerminal(s Status) bool {
	return s == StatusResolved || s == StatusRejected
}

func ValidateStatus(s Status) error {
	switch s {
	case StatusOpen, StatusInReview, StatusResolved, StatusRejected:
		return nil
	}
	return errors.New("invalid dispute status")
}

func ValidateCategory(c Category) error {
	switch c {
	case CategoryPayment, CategoryLandCondition, CategoryContractBreach, CategoryFraud, CategoryOther:
		return nil
	}
	return errors.New("invalid dispute category")
}
