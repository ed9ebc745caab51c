package auth

import (
	"context"
)

type contextKey string

const userContextKey contextKey = "user"

// Role names carried in the "roles" claim
const (
	RoleAdmin      = "admin"
	RoleDeclarant  = "declarant"
	RoleVerifier   = "verifier"
	RoleAPIService = "api_service"
)

// Authentication methods recorded on the user context
const (
	MethodAPIKey   = "api_key"
	MethodJWT      = "jwt"
	MethodDisabled = "disabled"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Roles       []string
	AuthMethod  string
}

// WithUserContext adds user context to the request context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the request context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok && user != nil
}

// Actor returns the identifier recorded on audit fields (created by,
// submitted by, resolved by). Falls back to "system" outside a request.
func Actor(ctx context.Context) string {
	user, ok := FromContext(ctx)
	if !ok {
		return "system"
	}
	if user.Email != "" {
		return user.Email
	}
	if user.UserID != "" {
		return user.UserID
	}
	return "system"
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin returns true for administrators and system integrations
func (u *UserContext) IsAdmin() bool {
	return u.HasAnyRole(RoleAdmin, RoleAPIService)
}
