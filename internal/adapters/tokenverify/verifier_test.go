package tokenverify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/leanchem/connect-api/internal/domain/auth"
)

func TestNewVerifierRequiresIssuerAndJWKS(t *testing.T) {
	_, err := NewVerifier(context.Background(), Config{JWKSURL: "https://x/jwks"})
	assert.ErrorContains(t, err, "issuer")

	_, err = NewVerifier(context.Background(), Config{Issuer: "https://x/auth/v1"})
	assert.ErrorContains(t, err, "JWKS")
}

func TestNewVerifierRejectsBadClaimPath(t *testing.T) {
	_, err := NewVerifier(context.Background(), Config{
		Issuer:    "https://x/auth/v1",
		JWKSURL:   "https://x/jwks",
		EmailPath: "][not-jmespath",
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "email claim path")
}

func TestNewVerifierDefaultsClaimPaths(t *testing.T) {
	v, err := NewVerifier(context.Background(), Config{
		Issuer:  "https://x/auth/v1",
		JWKSURL: "https://x/jwks",
	})
	require.NoError(t, err)
	assert.Equal(t, "email", v.emailExpr)
	assert.Equal(t, "user_metadata", v.userMetaExpr)
	assert.Equal(t, "app_metadata", v.appMetaExpr)
}

func TestSearchStringAndMetadata(t *testing.T) {
	v, err := NewVerifier(context.Background(), Config{
		Issuer:    "https://x/auth/v1",
		JWKSURL:   "https://x/jwks",
		EmailPath: "identity.email",
	})
	require.NoError(t, err)

	claims := map[string]any{
		"identity": map[string]any{"email": "jane@leanchem.test"},
		"user_metadata": map[string]any{
			domainauth.PasswordSetKey: true,
		},
	}

	assert.Equal(t, "jane@leanchem.test", v.searchString(v.emailExpr, claims))
	assert.Empty(t, v.searchString(v.emailExpr, map[string]any{}))

	meta := v.searchMetadata(v.userMetaExpr, claims)
	require.NotNil(t, meta)
	assert.Equal(t, true, meta[domainauth.PasswordSetKey])

	assert.Nil(t, v.searchMetadata(v.appMetaExpr, claims))
}
