package common

import (
	"context"
	"slices"

	"studiokit/internal/models"
)

type contextKey string

const authContextKey contextKey = "auth_context"

// EmailCredentials is a tenant's decrypted outbound email provider config.
type EmailCredentials struct {
	APIKey string `json:"api_key"`
	From   string `json:"from"`
}

// SMSCredentials is a tenant's decrypted outbound SMS provider config.
type SMSCredentials struct {
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"auth_token"`
	From       string `json:"from"`
}

// FeatureSet is the set of feature keys enabled for a tenant. Platform
// admins bypass feature checks in the route guard, not here.
type FeatureSet map[string]struct{}

func (fs FeatureSet) Has(key string) bool {
	_, ok := fs[key]
	return ok
}

// AuthContext is the product of the request pipeline: which tenant the
// request belongs to, who the caller is, and what they may do. It is
// request-scoped, owned by the handling goroutine, and never persisted
// or shared. Stages populate it strictly in order; handlers only read it.
type AuthContext struct {
	Tenant *models.Tenant

	// Claims is nil for unauthenticated requests.
	Claims *Claims
	User   *models.User

	IsPlatformAdmin bool
	// RoleOverride holds the single role forced by the view-as cookie,
	// empty when no override applies.
	RoleOverride string

	// Membership is the caller's real membership row, or a synthetic one
	// for platform admins without a row. Nil when unauthenticated.
	Membership      *models.Membership
	RoleAssignments []*models.RoleAssignment
	Roles           []string

	Permissions PermissionSet
	Features    FeatureSet

	Email *EmailCredentials
	SMS   *SMSCredentials
}

// Can reports whether the resolved permission set grants the permission.
// Before permission resolution has run it always returns false.
func (ac *AuthContext) Can(permission string) bool {
	return ac.Permissions.Contains(permission)
}

// HasRole reports whether the caller holds the given role in the tenant.
func (ac *AuthContext) HasRole(role string) bool {
	return slices.Contains(ac.Roles, role)
}

// Staff reports whether the caller holds a back-office role.
func (ac *AuthContext) Staff() bool {
	return ac.HasRole(models.RoleOwner) || ac.HasRole(models.RoleAdmin) || ac.HasRole(models.RoleInstructor)
}

// Impersonated reports whether this is an impersonation session.
func (ac *AuthContext) Impersonated() bool {
	return ac.Claims.Impersonated()
}

// Authenticated reports whether the request carried verified claims.
func (ac *AuthContext) Authenticated() bool {
	return ac.Claims != nil
}

// WithAuthContext stores the auth context on a request context.
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// GetAuthContext extracts the auth context from a request context.
func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey).(*AuthContext)
	return ac, ok
}
