package lease

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents lease lifecycle status.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
)

var (
	ErrInvalidTransition   = errors.New("invalid lease status transition")
	ErrAllPaymentsComplete = errors.New("all lease payments already completed")
)

// Lease represents a land lease agreement between a farmer and a landowner.
// Rent is held in minor currency units.
type Lease struct {
	ID             int64     `json:"id"`
	LeaseID        uuid.UUID `json:"leaseId"`
	LandID         uuid.UUID `json:"landId"`
	FarmerID       uuid.UUID `json:"farmerId"`
	OwnerID        uuid.UUID `json:"ownerId"`
	DurationMonths int       `json:"durationMonths"`
	PricePerMonth  int64     `json:"pricePerMonth"`
	TotalPayments  int       `json:"totalPayments"`
	PaymentsMade   int       `json:"paymentsMade"`
	Status         Status    `json:"status"`
	AgreementURL   *string   `json:"agreementUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CanTransitionTo validates lease status transition. APPROVED->ACTIVE and
// ACTIVE->COMPLETED are implicit transitions driven by escrow payments and
// the payment counter; they are still part of the legal table.
func (l *Lease) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusPending:   {StatusApproved, StatusRejected},
		StatusApproved:  {StatusActive},
		StatusActive:    {StatusCompleted},
		StatusRejected:  {},
		StatusCompleted: {},
	}
	for _, s := range transitions[l.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// Approve moves a pending lease to approved.
func (l *Lease) Approve() error {
	if !l.CanTransitionTo(StatusApproved) {
		return ErrInvalidTransition
	}
	l.Status = StatusApproved
	return nil
}

// Reject moves a pending lease to rejected.
func (l *Lease) Reject() error {
	if !l.CanTransitionTo(StatusRejected) {
		return ErrInvalidTransition
	}
	l.Status = StatusRejected
	return nil
}

// Activate marks the lease active on first escrow funding.
func (l *Lease) Activate() error {
	if !l.CanTransitionTo(StatusActive) {
		return ErrInvalidTransition
	}
	l.Status = StatusActive
	return nil
}

// RecordPayment increments the payment counter and reports whether the
// lease is now fully paid. The counter never exceeds TotalPayments.
func (l *Lease) RecordPayment() (completed bool, err error) {
	if l.PaymentsMade >= l.TotalPayments {
		return false, ErrAllPaymentsComplete
	}
	l.PaymentsMade++
	if l.PaymentsMade == l.TotalPayments {
		l.Status = StatusCompleted
		return true, nil
	}
	return false, nil
}

// FullyPaid reports whether no further rent payouts can be requested.
func (l *Lease) FullyPaid() bool {
	return l.PaymentsMade >= l.TotalPayments
}

// Deletable reports whether the lease may still be hard-deleted.
// Once approved a lease is never hard-deleted.
func (l *Lease) Deletable() bool {
	return l.Status == StatusPending
}

func IsTerminal(s Status) bool {
	return s == StatusRejected || s == StatusCompleted
}
