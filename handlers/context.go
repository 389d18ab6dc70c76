package handlers

import (
	"context"

	"github.com/akinalp/shopapi/models"
)

// contextKey is the type of context keys set by this package and the auth
// middleware. A private type keeps them from colliding with string keys used
// elsewhere.
type contextKey string

// UserContextKey carries the authenticated *models.User.
const UserContextKey contextKey = "user"

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext returns the user set by the auth middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}
