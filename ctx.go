package blog

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// DefaultContextKey is the fiber locals key the identity middleware uses
const DefaultContextKey = "user"

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok && raw != nil
}

// SetCurrentUser stores user on the request, both in locals and in the user context
func SetCurrentUser(c *fiber.Ctx, key string, user *User) {
	if key == "" {
		key = DefaultContextKey
	}
	c.Locals(key, user)
	c.SetUserContext(WithContext(c.UserContext(), user))
}

// CurrentUser returns the user resolved by the identity middleware
func CurrentUser(c *fiber.Ctx, key string) (*User, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	user, ok := c.Locals(key).(*User)
	if ok && user != nil {
		return user, true
	}
	return FromContext(c.UserContext())
}

// UserHandler is a handler that receives the resolved caller explicitly
type UserHandler func(c *fiber.Ctx, user *User) error

// WithUser adapts h to a fiber.Handler. It must run behind the identity
// middleware, a missing user is reported as ErrNoCredentials.
func WithUser(h UserHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c, "")
		if !ok {
			return ErrNoCredentials
		}
		return h(c, user)
	}
}
