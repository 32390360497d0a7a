// Package actor carries the authenticated caller through service calls.
package actor

import (
	"github.com/google/uuid"

	"github.com/agrolease/agrolease/internal/domain/user"
)

// Actor describes an authenticated caller.
type Actor struct {
	UserID   uuid.UUID
	Username string
	Role     user.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

func (a Actor) String() string {
	return "user:" + a.Username
}

// Roles returns the actor's roles for audit records.
func (a Actor) Roles() []string {
	return []string{string(a.Role)}
}
