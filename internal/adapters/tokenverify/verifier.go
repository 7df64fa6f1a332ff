package tokenverify

// Package tokenverify validates provider-issued access tokens offline
// against the provider's JWKS endpoint and extracts the identity from
// the verified claims. Claim locations are configurable as JMESPath
// expressions because providers disagree on where they put metadata.

import (
	"context"
	"errors"
	"fmt"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
	apperrors "github.com/leanchem/connect-api/internal/errors"
	"github.com/leanchem/connect-api/internal/ports"
)

// Config holds configuration for the verifier.
type Config struct {
	// Issuer is the expected iss claim, e.g.
	// https://<project>.supabase.co/auth/v1.
	Issuer string
	// JWKSURL is the provider's key-set endpoint.
	JWKSURL string
	// Audience is the expected aud claim. Empty skips the audience
	// check.
	Audience string

	// Claim paths, as JMESPath expressions over the token claims.
	// Zero values fall back to the GoTrue layout.
	EmailPath        string
	UserMetadataPath string
	AppMetadataPath  string
}

const (
	defaultEmailPath        = "email"
	defaultUserMetadataPath = "user_metadata"
	defaultAppMetadataPath  = "app_metadata"
)

// Verifier implements ports.TokenVerifier over a remote key set.
type Verifier struct {
	verifier *gooidc.IDTokenVerifier

	emailExpr    string
	userMetaExpr string
	appMetaExpr  string
}

var _ ports.TokenVerifier = (*Verifier)(nil)

// NewVerifier creates a verifier backed by the provider's JWKS
// endpoint. ctx governs key-set refresh requests for the verifier's
// lifetime.
func NewVerifier(ctx context.Context, cfg Config) (*Verifier, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if cfg.JWKSURL == "" {
		return nil, errors.New("JWKS URL is required")
	}

	oidcCfg := &gooidc.Config{ClientID: cfg.Audience}
	if cfg.Audience == "" {
		oidcCfg.SkipClientIDCheck = true
	}

	keySet := gooidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
	v := &Verifier{verifier: gooidc.NewVerifier(cfg.Issuer, keySet, oidcCfg)}

	var err error
	if v.emailExpr, err = compilePath(cfg.EmailPath, defaultEmailPath); err != nil {
		return nil, fmt.Errorf("email claim path: %w", err)
	}
	if v.userMetaExpr, err = compilePath(cfg.UserMetadataPath, defaultUserMetadataPath); err != nil {
		return nil, fmt.Errorf("user metadata claim path: %w", err)
	}
	if v.appMetaExpr, err = compilePath(cfg.AppMetadataPath, defaultAppMetadataPath); err != nil {
		return nil, fmt.Errorf("app metadata claim path: %w", err)
	}

	return v, nil
}

func compilePath(expr, fallback string) (string, error) {
	if expr == "" {
		expr = fallback
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return "", fmt.Errorf("compile %q: %w", expr, err)
	}
	return expr, nil
}

// Verify checks the token signature, issuer, audience and expiry, then
// pulls the identity out of the claims. Failures are credential
// errors: an unverifiable token is indistinguishable from a forged
// one.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (domainauth.Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return domainauth.Identity{}, apperrors.Credential(fmt.Errorf("token rejected: %w", err))
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return domainauth.Identity{}, apperrors.Credential(fmt.Errorf("decode claims: %w", err))
	}

	identity := domainauth.Identity{
		UserID:       idToken.Subject,
		Email:        v.searchString(v.emailExpr, claims),
		UserMetadata: v.searchMetadata(v.userMetaExpr, claims),
		AppMetadata:  v.searchMetadata(v.appMetaExpr, claims),
		ExpiresAt:    idToken.Expiry,
	}
	if identity.ExpiresAt.IsZero() {
		identity.ExpiresAt = time.Now()
	}
	return identity, nil
}

func (v *Verifier) searchString(expr string, claims map[string]any) string {
	result, err := jmespath.Search(expr, claims)
	if err != nil {
		return ""
	}
	s, _ := result.(string)
	return s
}

func (v *Verifier) searchMetadata(expr string, claims map[string]any) domainauth.Metadata {
	result, err := jmespath.Search(expr, claims)
	if err != nil {
		return nil
	}
	m, _ := result.(map[string]any)
	return m
}
