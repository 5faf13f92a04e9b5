package service

import (
	"context"

	"github.com/garyjia/donation-desk/internal/domain/entity"
)

type sessionKey struct{}

// WithSessionUser returns a context carrying the signed-in user
func WithSessionUser(ctx context.Context, user *entity.SessionUser) context.Context {
	return context.WithValue(ctx, sessionKey{}, user)
}

// SessionUserFrom returns the signed-in user, or nil for anonymous calls
func SessionUserFrom(ctx context.Context) *entity.SessionUser {
	user, _ := ctx.Value(sessionKey{}).(*entity.SessionUser)
	return user
}
