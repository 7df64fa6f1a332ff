package gotrue

// Package gotrue provides an HTTP adapter for a GoTrue-compatible
// hosted identity provider (the auth API Supabase exposes). It
// implements ports.IdentityProvider and mirrors the provider's
// current session in memory, emitting change events on sign-in,
// token refresh, and sign-out.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/leanchem/connect-api/internal/errors"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
	"github.com/leanchem/connect-api/internal/ports"
)

const defaultEventBuffer = 16

// Config holds configuration for the GoTrue client.
type Config struct {
	// BaseURL is the provider auth endpoint, e.g.
	// https://<project>.supabase.co/auth/v1.
	BaseURL string
	// APIKey is sent as the apikey header on every request.
	APIKey string
	// HTTPClient is optional; defaults to a 30s-timeout client.
	HTTPClient *http.Client
	// RefreshLeeway is how long before token expiry the auto-refresh
	// loop renews the session.
	RefreshLeeway time.Duration
}

// Client implements ports.IdentityProvider against a GoTrue API.
type Client struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	refreshLeeway time.Duration

	mu      sync.Mutex
	current *ports.ProviderSession

	events    chan ports.SessionEvent
	closeOnce sync.Once
}

var _ ports.IdentityProvider = (*Client)(nil)

// NewClient creates a GoTrue client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	leeway := cfg.RefreshLeeway
	if leeway <= 0 {
		leeway = time.Minute
	}

	return &Client{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		httpClient:    httpClient,
		refreshLeeway: leeway,
		events:        make(chan ports.SessionEvent, defaultEventBuffer),
	}, nil
}

// tokenResponse is the GoTrue token grant payload.
type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	RefreshToken string      `json:"refresh_token"`
	User         userPayload `json:"user"`
}

// userPayload is the GoTrue user object.
type userPayload struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  map[string]any `json:"app_metadata"`
}

func (u userPayload) identity(expiresAt time.Time) domainauth.Identity {
	return domainauth.Identity{
		UserID:       u.ID,
		Email:        u.Email,
		UserMetadata: u.UserMetadata,
		AppMetadata:  u.AppMetadata,
		ExpiresAt:    expiresAt,
	}
}

// GetSession returns the mirrored provider session, renewing it first
// when the access token is within the refresh leeway of expiry.
// Returns (nil, nil) when no session exists.
func (c *Client) GetSession(ctx context.Context) (*ports.ProviderSession, error) {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()

	if sess == nil {
		return nil, nil
	}
	if sess.Token != nil && time.Until(sess.Token.Expiry) > c.refreshLeeway {
		return sess, nil
	}
	return c.refresh(ctx)
}

// SignInWithPassword performs the password grant. Provider credential
// rejections surface as credential errors, everything else as
// provider errors.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*ports.ProviderSession, error) {
	body := map[string]string{"email": email, "password": password}
	var out tokenResponse
	if err := c.doJSON(ctx, jsonRequest{
		Method: http.MethodPost,
		Path:   "/token",
		Query:  url.Values{"grant_type": []string{"password"}},
		Body:   body,
	}, &out); err != nil {
		return nil, mapGrantError(err)
	}

	sess := c.install(out)
	c.emit(ports.SessionEvent{Kind: ports.SessionEventSignedIn, Session: sess})
	return sess, nil
}

// SignInWithOTP asks the provider to email a one-time-use magic link.
// The provider redirects the follow-up to redirectTo.
func (c *Client) SignInWithOTP(ctx context.Context, email, redirectTo string) error {
	query := url.Values{}
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	body := map[string]any{"email": email, "create_user": false}
	if err := c.doJSON(ctx, jsonRequest{
		Method: http.MethodPost,
		Path:   "/otp",
		Query:  query,
		Body:   body,
	}, nil); err != nil {
		return apperrors.Provider(err, "failed to send sign-in link")
	}
	return nil
}

// ResetPasswordForEmail asks the provider to email a recovery link.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	query := url.Values{}
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	if err := c.doJSON(ctx, jsonRequest{
		Method: http.MethodPost,
		Path:   "/recover",
		Query:  query,
		Body:   map[string]string{"email": email},
	}, nil); err != nil {
		return apperrors.Provider(err, "failed to send password reset link")
	}
	return nil
}

// UpdateUser mutates the authenticated user (password and/or the
// user-writable metadata namespace) and refreshes the mirrored
// identity.
func (c *Client) UpdateUser(ctx context.Context, in ports.UpdateUserInput) (domainauth.Identity, error) {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess == nil || sess.Token == nil {
		return domainauth.Identity{}, apperrors.Provider(errors.New("no active session"), "not signed in")
	}

	body := map[string]any{}
	if in.Password != "" {
		body["password"] = in.Password
	}
	if len(in.UserMetadata) > 0 {
		body["data"] = in.UserMetadata
	}

	var out userPayload
	if err := c.doJSON(ctx, jsonRequest{
		Method: http.MethodPut,
		Path:   "/user",
		Body:   body,
		Bearer: sess.Token.AccessToken,
	}, &out); err != nil {
		return domainauth.Identity{}, apperrors.Provider(err, "failed to update user")
	}

	identity := out.identity(sess.Identity.ExpiresAt)

	c.mu.Lock()
	if c.current != nil {
		c.current.Identity = identity
	}
	c.mu.Unlock()

	return identity, nil
}

// GetUser fetches the user behind an access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (domainauth.Identity, error) {
	var out userPayload
	if err := c.doJSON(ctx, jsonRequest{
		Method: http.MethodGet,
		Path:   "/user",
		Bearer: accessToken,
	}, &out); err != nil {
		return domainauth.Identity{}, apperrors.Provider(err, "failed to fetch user")
	}
	return out.identity(time.Time{}), nil
}

// SetSession installs tokens obtained out of band (e.g. from a magic
// link redirect) after validating them against the provider.
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*ports.ProviderSession, error) {
	identity, err := c.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	sess := &ports.ProviderSession{
		Token: &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "bearer",
		},
		Identity: identity,
	}
	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()

	c.emit(ports.SessionEvent{Kind: ports.SessionEventSignedIn, Session: sess})
	return sess, nil
}

// SignOut revokes the provider session. The local mirror is cleared
// and a signed_out event emitted even when revocation fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sess := c.current
	c.current = nil
	c.mu.Unlock()

	c.emit(ports.SessionEvent{Kind: ports.SessionEventSignedOut})

	if sess == nil || sess.Token == nil {
		return nil
	}
	if err := c.doJSON(ctx, jsonRequest{
		Method: http.MethodPost,
		Path:   "/logout",
		Bearer: sess.Token.AccessToken,
	}, nil); err != nil {
		return apperrors.Provider(err, "failed to revoke provider session")
	}
	return nil
}

// Events returns the session-change stream.
func (c *Client) Events() <-chan ports.SessionEvent {
	return c.events
}

// Close shuts the event stream down.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.events) })
}

// RunAutoRefresh renews the session shortly before expiry, emitting a
// token_refreshed event per renewal. It blocks until ctx is done.
func (c *Client) RunAutoRefresh(ctx context.Context) {
	timer := time.NewTimer(c.refreshLeeway)
	defer timer.Stop()

	for {
		c.mu.Lock()
		sess := c.current
		c.mu.Unlock()

		wait := c.refreshLeeway
		if sess != nil && sess.Token != nil {
			if until := time.Until(sess.Token.Expiry) - c.refreshLeeway; until > wait {
				wait = until
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if sess == nil {
				continue
			}
			// Renewal failures leave the old session in place; the next
			// tick retries until the refresh token itself is rejected.
			_, _ = c.refresh(ctx)
		}
	}
}

func (c *Client) refresh(ctx context.Context) (*ports.ProviderSession, error) {
	c.mu.Lock()
	sess := c.current
	c.mu.Unlock()
	if sess == nil || sess.Token == nil || sess.Token.RefreshToken == "" {
		return nil, apperrors.Provider(errors.New("no refresh token"), "session cannot be renewed")
	}

	var out tokenResponse
	if err := c.doJSON(ctx, jsonRequest{
		Method: http.MethodPost,
		Path:   "/token",
		Query:  url.Values{"grant_type": []string{"refresh_token"}},
		Body:   map[string]string{"refresh_token": sess.Token.RefreshToken},
	}, &out); err != nil {
		return nil, apperrors.Provider(err, "failed to refresh session")
	}

	renewed := c.install(out)
	c.emit(ports.SessionEvent{Kind: ports.SessionEventTokenRefreshed, Session: renewed})
	return renewed, nil
}

func (c *Client) install(out tokenResponse) *ports.ProviderSession {
	expiry := time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	sess := &ports.ProviderSession{
		Token: &oauth2.Token{
			AccessToken:  out.AccessToken,
			RefreshToken: out.RefreshToken,
			TokenType:    out.TokenType,
			Expiry:       expiry,
		},
		Identity: out.User.identity(expiry),
	}
	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()
	return sess
}

func (c *Client) emit(ev ports.SessionEvent) {
	// Drop events when the consumer lags; the consumer re-resolves
	// from GetSession so a dropped intermediate event is harmless.
	select {
	case c.events <- ev:
	default:
	}
}

// jsonRequest groups parameters for doJSON.
type jsonRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Bearer string
}

func (c *Client) doJSON(ctx context.Context, req jsonRequest, out any) error {
	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Bearer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", req.Method, req.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError is the provider's error shape; older and newer GoTrue
// versions disagree on field names, so all are tried.
type apiError struct {
	Status      int
	ErrorCode   string `json:"error"`
	Description string `json:"error_description"`
	Msg         string `json:"msg"`
	Message     string `json:"message"`
}

func (e *apiError) Error() string {
	for _, m := range []string{e.Description, e.Msg, e.Message, e.ErrorCode} {
		if m != "" {
			return m
		}
	}
	return fmt.Sprintf("provider returned status %d", e.Status)
}

func parseAPIError(resp *http.Response) error {
	apiErr := &apiError{Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(raw) > 0 {
		_ = json.Unmarshal(raw, apiErr)
	}
	return apiErr
}

// mapGrantError classifies a password-grant failure: 4xx rejections
// are credential errors surfaced with the provider's own message,
// everything else is a provider error.
func mapGrantError(err error) error {
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apperrors.Credential(apiErr)
	}
	return apperrors.Provider(err, "sign-in failed")
}
