package config

import (
	"strings"
	"time"
)

// ProviderConfig contains the hosted identity provider (GoTrue/Supabase
// Auth) connection settings.
type ProviderConfig struct {
	// BaseURL is the auth API root, e.g. https://<project>.supabase.co/auth/v1.
	BaseURL string `env:"BASE_URL,required"`

	// APIKey is the provider's public (anon) API key sent on every request.
	APIKey string `env:"API_KEY,required"`

	// RefreshLeeway is how long before token expiry a refresh is attempted.
	RefreshLeeway time.Duration `env:"REFRESH_LEEWAY" envDefault:"1m"`
}

// VerifierConfig controls offline access-token verification.
type VerifierConfig struct {
	// Issuer is the expected iss claim of provider tokens.
	Issuer string `env:"ISSUER,required"`

	// JWKSURL is the provider's key-set endpoint. Defaults to
	// <issuer>/.well-known/jwks.json when empty.
	JWKSURL string `env:"JWKS_URL"`

	// Audience is the expected aud claim. Empty skips the check.
	Audience string `env:"AUDIENCE" envDefault:"authenticated"`

	// Claim locations as JMESPath expressions. Empty values use the
	// GoTrue defaults.
	EmailPath        string `env:"EMAIL_PATH"`
	UserMetadataPath string `env:"USER_METADATA_PATH"`
	AppMetadataPath  string `env:"APP_METADATA_PATH"`
}

// LinkLimitConfig throttles emailed one-time links per address.
type LinkLimitConfig struct {
	// Limit is the number of links allowed per (kind, email) within Window.
	Limit  int           `env:"LIMIT"  envDefault:"3"`
	Window time.Duration `env:"WINDOW" envDefault:"1h"`
}

// Sanitize clamps link-limit values to a working range.
func (c *LinkLimitConfig) Sanitize() {
	if c.Limit < 1 {
		c.Limit = 1
	}
	if c.Window <= 0 {
		c.Window = time.Hour
	}
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	Provider  ProviderConfig  `envPrefix:"AUTH_PROVIDER_"`
	Verifier  VerifierConfig  `envPrefix:"AUTH_TOKEN_"`
	LinkLimit LinkLimitConfig `envPrefix:"AUTH_LINK_"`

	// RedirectBaseURL is the application origin emailed links return
	// to, e.g. https://connect.leanchem.com.
	RedirectBaseURL string `env:"AUTH_REDIRECT_BASE_URL" envDefault:"http://localhost:8080"`
}

// Sanitize normalises derived auth fields.
func (c *AuthConfig) Sanitize() {
	c.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.BaseURL), "/")
	c.RedirectBaseURL = strings.TrimRight(strings.TrimSpace(c.RedirectBaseURL), "/")
	if c.Verifier.JWKSURL == "" && c.Verifier.Issuer != "" {
		c.Verifier.JWKSURL = strings.TrimRight(c.Verifier.Issuer, "/") + "/.well-known/jwks.json"
	}
	c.LinkLimit.Sanitize()
}
