package httpx

import (
	"context"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
)

// Principal is the authenticated caller attached to a request after
// the auth middleware has verified its token and confirmed employee
// membership. Permissions are resolved from the directory role, never
// from token claims.
type Principal struct {
	Identity    domainauth.Identity
	Role        domainauth.Role
	Permissions domainauth.PermissionSet
	Employee    domainauth.EmployeeData
}

// principalKey is an unexported context key type to avoid collisions across packages.
type principalKey struct{}

// requestIDKey carries the per-request correlation ID.
type requestIDKey struct{}

// SetPrincipalInContext returns a child context carrying the principal.
// If principal is nil, the original ctx is returned unchanged.
func SetPrincipalInContext(ctx context.Context, p *Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal from context and a
// boolean indicating presence.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok && p != nil {
		return p, true
	}
	return nil, false
}

// RequestIDFromContext returns the correlation ID assigned by the
// logging middleware, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func setRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
