package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/taller-labs/workshop-api/internal/domain"
)

// UserContext holds authenticated user information for one request
type UserContext struct {
	EmployeeID  uuid.UUID
	TenantID    uuid.UUID
	DisplayName string
	Email       string
	Role        domain.EmployeeRole
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// IsAdmin checks if the user is a tenant admin
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// IsTechnician checks if the user is a technician
func (u *UserContext) IsTechnician() bool {
	return u.Role == domain.RoleTechnician
}

// HasAnyRole checks if the user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.EmployeeRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// CanWrite reports whether the role may mutate tenant data
func (u *UserContext) CanWrite() bool {
	return u.Role != domain.RoleViewer
}

// TenantFromContext returns the tenant ID to scope queries by.
// Repositories must treat a missing tenant as an error, never as "all".
func TenantFromContext(ctx context.Context) (uuid.UUID, bool) {
	if user, ok := FromContext(ctx); ok {
		return user.TenantID, true
	}
	return uuid.Nil, false
}
