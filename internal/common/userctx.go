package common

import "context"

// UserContext holds the caller's identity as asserted by the identity provider.
// It is absent (nil) for anonymous requests.
type UserContext struct {
	IdentityRef string
	Email       string
}

type contextKey int

const userContextKey contextKey = iota

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// ResolveIdentity returns the caller's identity reference, or "" when anonymous.
func ResolveIdentity(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil {
		return uc.IdentityRef
	}
	return ""
}
