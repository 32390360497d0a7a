package investment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents investment status.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

// Investment represents capital an investor has placed against a lease.
// It is the payout source for investment-return requests.
type Investment struct {
	ID           int64     `json:"id"`
	InvestmentID uuid.UUID `json:"investmentId"`
	InvestorID   uuid.UUID `json:"investorId"`
	LeaseID      uuid.UUID `json:"leaseId"`
	Amount       int64     `json:"amount"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (i *Investment) IsActive() bool {
	return i.Status == StatusActive
}

func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}
