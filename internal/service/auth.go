package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
	"github.com/leanchem/connect-api/internal/domain/model"
	apperrors "github.com/leanchem/connect-api/internal/errors"
	"github.com/leanchem/connect-api/internal/ports"
	"github.com/leanchem/connect-api/internal/session"
)

const (
	linkKindMagic = "magic_link"
	linkKindReset = "password_reset"

	setupRedirectPath = "/auth/callback?type=setup"
	resetRedirectPath = "/auth/callback?type=reset"
)

const notEmployeeMessage = "this account is not registered as an employee; contact an administrator for access"

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider  ports.IdentityProvider
	Directory ports.EmployeeDirectory
	Limiter   ports.LinkRateLimiter
	Store     *session.Store
	// RedirectBaseURL is the application origin one-time links return
	// to, e.g. https://connect.leanchem.com.
	RedirectBaseURL string
	Logger          *slog.Logger
}

// AuthService orchestrates the authentication lifecycle: it drives the
// identity provider, layers employee directory answers and resolved
// permissions on top of provider sessions, and maintains the injected
// session store as the single snapshot consumers read.
//
// Authorization fails closed: a directory outage, an unknown email,
// or any ambiguity resolves to an unauthenticated, permissionless
// state.
type AuthService struct {
	provider    ports.IdentityProvider
	directory   ports.EmployeeDirectory
	limiter     ports.LinkRateLimiter
	store       *session.Store
	redirectURL string
	logger      *slog.Logger

	// group collapses concurrent directory lookups for the same email
	// into one query. Which result lands in the store is decided by the
	// store's generation counter, not by call ordering.
	group singleflight.Group
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider:    opts.Provider,
		directory:   opts.Directory,
		limiter:     opts.Limiter,
		store:       opts.Store,
		redirectURL: opts.RedirectBaseURL,
		logger:      logger.With("component", "auth"),
	}
}

// Bootstrap performs the initial session resolution. The store starts
// in the loading shape; after Bootstrap returns it holds either an
// authenticated employee state or the unauthenticated zero state.
func (s *AuthService) Bootstrap(ctx context.Context) error {
	gen := s.store.Begin()

	sess, err := s.provider.GetSession(ctx)
	if err != nil {
		// Cannot reach the provider: treat as signed out rather than
		// blocking startup.
		s.logger.WarnContext(ctx, "session restore failed", "err", err)
		s.store.Commit(gen, domainauth.ZeroSessionState())
		return nil
	}

	s.resolveAndCommit(ctx, gen, sess)
	return nil
}

// Run consumes provider session events until ctx is done or the
// provider closes its event stream. Each sign-in or token refresh
// triggers a fresh resolution; sign-out resets the store.
func (s *AuthService) Run(ctx context.Context) error {
	events := s.provider.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Kind {
			case ports.SessionEventSignedOut:
				s.store.Reset()
			case ports.SessionEventSignedIn, ports.SessionEventTokenRefreshed:
				gen := s.store.Begin()
				s.resolveAndCommit(ctx, gen, ev.Session)
			}
		}
	}
}

// SignIn authenticates with email and password. A provider-accepted
// identity that is not a recognized employee is signed out again and
// rejected with an access_denied error distinct from bad credentials.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (domainauth.SessionState, error) {
	sess, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return domainauth.ZeroSessionState(), err
	}

	gen := s.store.Begin()
	state := s.resolveAndCommit(ctx, gen, sess)
	if !state.IsEmployee {
		return domainauth.ZeroSessionState(), apperrors.AccessDenied(notEmployeeMessage)
	}
	return state, nil
}

// SignInWithMagicLink emails a one-time sign-in link. The directory
// is consulted before the provider is contacted so no link is ever
// sent to a non-employee address, and sends are throttled per
// address.
func (s *AuthService) SignInWithMagicLink(ctx context.Context, email string) error {
	normalized := model.NormalizeEmail(email)
	if err := s.precheckEmployee(ctx, normalized); err != nil {
		return err
	}
	if err := s.allowLink(ctx, linkKindMagic, normalized); err != nil {
		return err
	}
	return s.provider.SignInWithOTP(ctx, normalized, s.redirectURL+setupRedirectPath)
}

// ResetPassword emails a password recovery link, with the same
// directory pre-check and throttling as magic links.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	normalized := model.NormalizeEmail(email)
	if err := s.precheckEmployee(ctx, normalized); err != nil {
		return err
	}
	if err := s.allowLink(ctx, linkKindReset, normalized); err != nil {
		return err
	}
	return s.provider.ResetPasswordForEmail(ctx, normalized, s.redirectURL+resetRedirectPath)
}

// CompleteLink installs the token pair a one-time link redirect
// carries, resolving the resulting identity like any other sign-in.
func (s *AuthService) CompleteLink(ctx context.Context, accessToken, refreshToken string) (domainauth.SessionState, error) {
	sess, err := s.provider.SetSession(ctx, accessToken, refreshToken)
	if err != nil {
		return domainauth.ZeroSessionState(), err
	}

	gen := s.store.Begin()
	state := s.resolveAndCommit(ctx, gen, sess)
	if !state.IsEmployee {
		return domainauth.ZeroSessionState(), apperrors.AccessDenied(notEmployeeMessage)
	}
	return state, nil
}

// UpdatePassword sets a new password for the signed-in identity and
// stamps the password-set markers so first-time setup is not offered
// again.
func (s *AuthService) UpdatePassword(ctx context.Context, newPassword string) error {
	if newPassword == "" {
		return apperrors.Validation("password cannot be empty")
	}

	_, err := s.provider.UpdateUser(ctx, ports.UpdateUserInput{
		Password: newPassword,
		UserMetadata: domainauth.Metadata{
			domainauth.PasswordSetKey:   true,
			domainauth.PasswordSetAtKey: time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return err
	}

	// Re-resolve so the stored snapshot carries the updated metadata.
	sess, err := s.provider.GetSession(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "session refresh after password update failed", "err", err)
		return nil
	}
	gen := s.store.Begin()
	s.resolveAndCommit(ctx, gen, sess)
	return nil
}

// PasswordSet reports whether the signed-in identity has completed
// password setup.
func (s *AuthService) PasswordSet(ctx context.Context) (bool, error) {
	sess, err := s.provider.GetSession(ctx)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, apperrors.AccessDenied("not signed in")
	}
	return domainauth.PasswordSet(sess.Identity), nil
}

// SignOut delegates revocation to the provider and unconditionally
// resets the local state. A provider failure is reported but never
// leaves a stale authenticated snapshot behind; calling SignOut
// without a session is a no-op.
func (s *AuthService) SignOut(ctx context.Context) error {
	err := s.provider.SignOut(ctx)
	s.store.Reset()
	if err != nil {
		s.logger.WarnContext(ctx, "provider sign-out failed", "err", err)
		return err
	}
	return nil
}

// CheckEmployee answers the public employee pre-check for an email
// address without requiring authentication.
func (s *AuthService) CheckEmployee(ctx context.Context, email string) (domainauth.EmployeeStatus, error) {
	return s.directory.CheckEmployeeStatus(ctx, model.NormalizeEmail(email))
}

// Session returns the current session snapshot.
func (s *AuthService) Session() domainauth.SessionState {
	return s.store.Snapshot()
}

// resolveAndCommit turns a provider session into a full SessionState
// and commits it under gen. A nil session commits the zero state. The
// committed state is returned even when a newer generation won the
// store, so callers can still report the outcome of their own
// resolution.
func (s *AuthService) resolveAndCommit(ctx context.Context, gen uint64, sess *ports.ProviderSession) domainauth.SessionState {
	if sess == nil {
		s.store.Commit(gen, domainauth.ZeroSessionState())
		return domainauth.ZeroSessionState()
	}

	identity := sess.Identity
	email := model.NormalizeEmail(identity.Email)

	status, err := s.lookupEmployee(ctx, email)
	if err != nil {
		// Fail closed: an unreachable directory yields no access, and
		// the dangling provider session is revoked.
		s.logger.ErrorContext(ctx, "employee lookup failed, treating as non-employee", "err", err)
		s.forceSignOut(ctx)
		s.store.Commit(gen, domainauth.ZeroSessionState())
		return domainauth.ZeroSessionState()
	}

	if !status.IsEmployee {
		s.logger.InfoContext(ctx, "authenticated identity is not an employee, signing out", "email", email)
		s.forceSignOut(ctx)
		s.store.Commit(gen, domainauth.ZeroSessionState())
		return domainauth.ZeroSessionState()
	}

	state := domainauth.SessionState{
		Identity:   &identity,
		IsEmployee: true,
		Role:       status.Role,
		Employee: &domainauth.EmployeeData{
			Email: status.Email,
			Name:  status.Name,
		},
		Permissions: domainauth.Resolve(status.Role),
	}
	s.store.Commit(gen, state)
	return state
}

// lookupEmployee consults the directory, collapsing concurrent
// lookups for the same email into a single query.
func (s *AuthService) lookupEmployee(ctx context.Context, email string) (domainauth.EmployeeStatus, error) {
	v, err, _ := s.group.Do("employee:"+email, func() (any, error) {
		return s.directory.CheckEmployeeStatus(ctx, email)
	})
	if err != nil {
		return domainauth.EmployeeStatus{}, err
	}
	status, ok := v.(domainauth.EmployeeStatus)
	if !ok {
		return domainauth.EmployeeStatus{}, errors.New("unexpected directory result type")
	}
	return status, nil
}

func (s *AuthService) forceSignOut(ctx context.Context) {
	if err := s.provider.SignOut(ctx); err != nil {
		s.logger.WarnContext(ctx, "forced sign-out failed", "err", err)
	}
}

// precheckEmployee rejects link sends for addresses the directory
// does not recognize. Directory failures block the send: a link to an
// unverifiable address is worse than a retry.
func (s *AuthService) precheckEmployee(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.Validation("email is required")
	}
	status, err := s.directory.CheckEmployeeStatus(ctx, email)
	if err != nil {
		return err
	}
	if !status.IsEmployee {
		return apperrors.AccessDenied(notEmployeeMessage)
	}
	return nil
}

func (s *AuthService) allowLink(ctx context.Context, kind, email string) error {
	if s.limiter == nil {
		return nil
	}
	ok, err := s.limiter.Allow(ctx, kind, email)
	if err != nil {
		// Throttle bookkeeping failures must not block sign-in mail.
		s.logger.WarnContext(ctx, "link rate limiter unavailable", "kind", kind, "err", err)
		return nil
	}
	if !ok {
		return apperrors.RateLimited(fmt.Sprintf("a %s email was sent recently; try again later", linkKindLabel(kind)))
	}
	return nil
}

func linkKindLabel(kind string) string {
	switch kind {
	case linkKindMagic:
		return "sign-in link"
	case linkKindReset:
		return "password reset"
	default:
		return kind
	}
}
