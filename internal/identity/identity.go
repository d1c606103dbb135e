// Package identity exposes the signed-in user to the rest of the service.
// Tokens are issued by an external identity provider; the auth middleware
// validates them and stores the resulting User in the request context.
package identity

import "context"

// User is the authenticated caller.
type User struct {
	ID    string
	Email string
	Role  string
}

// Provider resolves the current user for a request.
type Provider interface {
	CurrentUser(ctx context.Context) (*User, bool)
}

type userKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// FromContext returns the user stored by WithUser.
func FromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userKey{}).(*User)
	if !ok || u == nil || u.ID == "" {
		return nil, false
	}
	return u, true
}

// ContextProvider reads the current user from the request context.
type ContextProvider struct{}

// NewContextProvider creates a ContextProvider.
func NewContextProvider() *ContextProvider {
	return &ContextProvider{}
}

// CurrentUser implements Provider.
func (ContextProvider) CurrentUser(ctx context.Context) (*User, bool) {
	return FromContext(ctx)
}
