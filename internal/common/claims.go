package common

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// Claims carries the upstream-verified authentication claims for the
// request. The pipeline trusts them as-is; signature verification happens
// in the JWT middleware before any stage runs.
type Claims struct {
	UserID         uuid.UUID
	ImpersonatorID *uuid.UUID
	AMR            []string
	MFA            *bool
}

// Impersonated reports whether a platform admin is acting as this user.
func (cl *Claims) Impersonated() bool {
	return cl != nil && cl.ImpersonatorID != nil
}

// MFASatisfied reports whether the session completed a second factor,
// from either the amr array or an explicit mfa claim.
func (cl *Claims) MFASatisfied() bool {
	if cl == nil {
		return false
	}
	for _, m := range cl.AMR {
		if slices.Contains([]string{"mfa", "otp", "totp"}, m) {
			return true
		}
	}
	return cl.MFA != nil && *cl.MFA
}

type claimsContextKey struct{}

// WithClaims stores verified claims on a request context. Set by the JWT
// middleware, read by the pipeline.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// GetClaims extracts verified claims from the request context. Nil for
// unauthenticated requests.
func GetClaims(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*Claims)
	return claims
}
