package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
	apperrors "github.com/leanchem/connect-api/internal/errors"
	"github.com/leanchem/connect-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider  = (*MockIdentityProvider)(nil)
	_ ports.EmployeeDirectory = (*StaticEmployeeDirectory)(nil)
	_ ports.LinkRateLimiter   = (*MemoryLinkLimiter)(nil)
)

// MockIdentityProvider simulates a hosted identity provider. Every
// method can be overridden with a Func field; without an override the
// mock keeps an in-memory session and behaves like a well-behaved
// provider with a single known user.
type MockIdentityProvider struct {
	GetSessionFunc         func(ctx context.Context) (*ports.ProviderSession, error)
	SignInWithPasswordFunc func(ctx context.Context, email, password string) (*ports.ProviderSession, error)
	SignInWithOTPFunc      func(ctx context.Context, email, redirectTo string) error
	ResetPasswordFunc      func(ctx context.Context, email, redirectTo string) error
	UpdateUserFunc         func(ctx context.Context, in ports.UpdateUserInput) (domainauth.Identity, error)
	SetSessionFunc         func(ctx context.Context, accessToken, refreshToken string) (*ports.ProviderSession, error)
	GetUserFunc            func(ctx context.Context, accessToken string) (domainauth.Identity, error)
	SignOutFunc            func(ctx context.Context) error

	// Password accepted by the default SignInWithPassword behavior.
	Password string
	// User is the identity issued on successful sign-in.
	User domainauth.Identity

	mu       sync.Mutex
	current  *ports.ProviderSession
	events   chan ports.SessionEvent
	signOuts int

	// Sent records OTP/recovery emails the provider was asked to send.
	Sent []SentLink
}

// SentLink records a link-send request made against the mock.
type SentLink struct {
	Kind       string
	Email      string
	RedirectTo string
}

// NewMockIdentityProvider creates a provider mock with a default user.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{
		Password: "correct-password",
		User: domainauth.Identity{
			UserID:       "mock-user-1",
			Email:        "mock.user@leanchem.test",
			UserMetadata: domainauth.Metadata{},
			AppMetadata:  domainauth.Metadata{},
			ExpiresAt:    time.Now().Add(time.Hour),
		},
		events: make(chan ports.SessionEvent, 16),
	}
}

func (m *MockIdentityProvider) GetSession(ctx context.Context) (*ports.ProviderSession, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, nil
}

func (m *MockIdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*ports.ProviderSession, error) {
	if m.SignInWithPasswordFunc != nil {
		return m.SignInWithPasswordFunc(ctx, email, password)
	}
	if password != m.Password {
		return nil, apperrors.Credential(nil)
	}
	identity := m.User
	identity.Email = email
	sess := &ports.ProviderSession{
		Token:    &oauth2.Token{AccessToken: "mock-access", RefreshToken: "mock-refresh", Expiry: identity.ExpiresAt},
		Identity: identity,
	}
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	m.Emit(ports.SessionEvent{Kind: ports.SessionEventSignedIn, Session: sess})
	return sess, nil
}

func (m *MockIdentityProvider) SignInWithOTP(ctx context.Context, email, redirectTo string) error {
	if m.SignInWithOTPFunc != nil {
		return m.SignInWithOTPFunc(ctx, email, redirectTo)
	}
	m.mu.Lock()
	m.Sent = append(m.Sent, SentLink{Kind: "otp", Email: email, RedirectTo: redirectTo})
	m.mu.Unlock()
	return nil
}

func (m *MockIdentityProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, email, redirectTo)
	}
	m.mu.Lock()
	m.Sent = append(m.Sent, SentLink{Kind: "recovery", Email: email, RedirectTo: redirectTo})
	m.mu.Unlock()
	return nil
}

func (m *MockIdentityProvider) UpdateUser(ctx context.Context, in ports.UpdateUserInput) (domainauth.Identity, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, in)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domainauth.Identity{}, apperrors.Provider(nil, "not signed in")
	}
	if m.current.Identity.UserMetadata == nil {
		m.current.Identity.UserMetadata = domainauth.Metadata{}
	}
	for k, v := range in.UserMetadata {
		m.current.Identity.UserMetadata[k] = v
	}
	if in.Password != "" {
		m.Password = in.Password
	}
	return m.current.Identity, nil
}

func (m *MockIdentityProvider) SetSession(ctx context.Context, accessToken, refreshToken string) (*ports.ProviderSession, error) {
	if m.SetSessionFunc != nil {
		return m.SetSessionFunc(ctx, accessToken, refreshToken)
	}
	sess := &ports.ProviderSession{
		Token:    &oauth2.Token{AccessToken: accessToken, RefreshToken: refreshToken, Expiry: m.User.ExpiresAt},
		Identity: m.User,
	}
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	m.Emit(ports.SessionEvent{Kind: ports.SessionEventSignedIn, Session: sess})
	return sess, nil
}

func (m *MockIdentityProvider) GetUser(ctx context.Context, accessToken string) (domainauth.Identity, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, accessToken)
	}
	return m.User, nil
}

func (m *MockIdentityProvider) SignOut(ctx context.Context) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx)
	}
	m.mu.Lock()
	m.current = nil
	m.signOuts++
	m.mu.Unlock()
	m.Emit(ports.SessionEvent{Kind: ports.SessionEventSignedOut})
	return nil
}

func (m *MockIdentityProvider) Events() <-chan ports.SessionEvent {
	return m.events
}

// Emit pushes an event onto the mock's event stream.
func (m *MockIdentityProvider) Emit(ev ports.SessionEvent) {
	select {
	case m.events <- ev:
	default:
	}
}

// SetCurrent installs a session directly, bypassing sign-in.
func (m *MockIdentityProvider) SetCurrent(sess *ports.ProviderSession) {
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
}

// SignOutCount reports how many times SignOut was called.
func (m *MockIdentityProvider) SignOutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signOuts
}

// StaticEmployeeDirectory answers employee checks from a fixed map of
// normalized email to status. Err, when set, is returned for every
// lookup to simulate an unreachable directory.
type StaticEmployeeDirectory struct {
	Employees map[string]domainauth.EmployeeStatus
	Err       error

	mu      sync.Mutex
	Lookups []string
}

// NewStaticEmployeeDirectory creates an empty directory double.
func NewStaticEmployeeDirectory() *StaticEmployeeDirectory {
	return &StaticEmployeeDirectory{Employees: map[string]domainauth.EmployeeStatus{}}
}

// Add registers an employee under the given email and role.
func (d *StaticEmployeeDirectory) Add(email, name string, role domainauth.Role) {
	d.Employees[email] = domainauth.EmployeeStatus{
		IsEmployee: true,
		Email:      email,
		Role:       role,
		Name:       name,
	}
}

func (d *StaticEmployeeDirectory) CheckEmployeeStatus(ctx context.Context, email string) (domainauth.EmployeeStatus, error) {
	d.mu.Lock()
	d.Lookups = append(d.Lookups, email)
	d.mu.Unlock()

	if d.Err != nil {
		return domainauth.EmployeeStatus{}, d.Err
	}
	if status, ok := d.Employees[email]; ok {
		return status, nil
	}
	return domainauth.EmployeeStatus{IsEmployee: false, Email: email}, nil
}

// LookupCount reports how many lookups were made.
func (d *StaticEmployeeDirectory) LookupCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Lookups)
}

// MemoryLinkLimiter is an in-memory fixed-budget limiter.
type MemoryLinkLimiter struct {
	Limit int

	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryLinkLimiter creates a limiter allowing limit sends per
// (kind, email) pair.
func NewMemoryLinkLimiter(limit int) *MemoryLinkLimiter {
	return &MemoryLinkLimiter{Limit: limit, counts: map[string]int{}}
}

func (l *MemoryLinkLimiter) Allow(ctx context.Context, kind, email string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := kind + ":" + email
	l.counts[key]++
	return l.counts[key] <= l.Limit, nil
}
