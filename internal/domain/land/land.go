package land

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents land availability.
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusLeased    Status = "LEASED"
)

var ErrNotAvailable = errors.New("land is not available for lease")

// Land represents a listed parcel.
type Land struct {
	ID        int64     `json:"id"`
	LandID    uuid.UUID `json:"landId"`
	OwnerID   uuid.UUID `json:"ownerId"`
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	SizeAcres float64   `json:"sizeAcres"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (l *Land) IsAvailable() bool {
	return l.Status == StatusAvailable
}

func Validate(title, location string, sizeAcres float64) error {
	if title == "" {
		return errors.New("title is required")
	}
	if location == "" {
		return errors.New("location is required")
	}
	if sizeAcres <= 0 {
		return errors.New("size_acres must be positive")
	}
	return nil
}
