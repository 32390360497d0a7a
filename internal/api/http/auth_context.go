package httpapi

import (
	"context"

	"github.com/google/uuid"

	"github.com/agrolease/agrolease/internal/application/actor"
	"github.com/agrolease/agrolease/internal/domain/user"
)

type authContextKey string

const authUserKey authContextKey = "authUser"

// AuthUser represents the authenticated user in context.
type AuthUser struct {
	UserID    uuid.UUID
	Username  string
	Role      user.Role
	SessionID uuid.UUID
}

func (u AuthUser) Actor() actor.Actor {
	return actor.Actor{
		UserID:   u.UserID,
		Username: u.Username,
		Role:     u.Role,
	}
}

func withAuthUser(ctx context.Context, u *AuthUser) context.Context {
	if u == nil {
		return ctx
	}
	return context.WithValue(ctx, authUserKey, u)
}

func authUserFromContext(ctx context.Context) *AuthUser {
	if v, ok := ctx.Value(authUserKey).(*AuthUser); ok {
		return v
	}
	return nil
}
