package ports

// Package ports defines interfaces (hexagonal ports) for auth-related
// behavior. Implementations live in internal/adapters and
// internal/data; orchestration in internal/service.

import (
	"context"

	"golang.org/x/oauth2"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
)

// ProviderSession is the provider-issued credential bundle
// representing an authenticated identity. The provider owns durable
// persistence of these tokens; this service only mirrors them.
type ProviderSession struct {
	Token    *oauth2.Token
	Identity domainauth.Identity
}

// SessionEventKind identifies why the provider reported a session change.
type SessionEventKind string

const (
	SessionEventSignedIn       SessionEventKind = "signed_in"
	SessionEventTokenRefreshed SessionEventKind = "token_refreshed"
	SessionEventSignedOut      SessionEventKind = "signed_out"
)

// SessionEvent is emitted by the identity provider whenever its
// session changes (sign-in, token refresh, sign-out). Session is nil
// for signed_out events.
type SessionEvent struct {
	Kind    SessionEventKind
	Session *ProviderSession
}

// UpdateUserInput groups parameters for a provider-side user mutation.
type UpdateUserInput struct {
	Password     string
	UserMetadata domainauth.Metadata
}

// IdentityProvider is the hosted identity provider's client surface.
// GetSession returns (nil, nil) when no session exists.
type IdentityProvider interface {
	GetSession(ctx context.Context) (*ProviderSession, error)
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)
	SignInWithOTP(ctx context.Context, email, redirectTo string) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdateUser(ctx context.Context, in UpdateUserInput) (domainauth.Identity, error)
	SetSession(ctx context.Context, accessToken, refreshToken string) (*ProviderSession, error)
	GetUser(ctx context.Context, accessToken string) (domainauth.Identity, error)
	SignOut(ctx context.Context) error

	// Events is the provider's session-change stream. The channel is
	// closed when the provider shuts down.
	Events() <-chan SessionEvent
}

// EmployeeDirectory answers whether an email belongs to an employee
// and with which role. Callers must lowercase and trim the email
// before calling; adapters normalize again defensively.
type EmployeeDirectory interface {
	CheckEmployeeStatus(ctx context.Context, email string) (domainauth.EmployeeStatus, error)
}

// TokenVerifier validates a bearer access token offline and returns
// the identity encoded in its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domainauth.Identity, error)
}

// LinkRateLimiter throttles emailed one-time links (magic link,
// password reset) per address.
type LinkRateLimiter interface {
	// Allow reports whether another link of the given kind may be sent
	// to the email right now.
	Allow(ctx context.Context, kind, email string) (bool, error)
}
