package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leanchem/connect-api/internal/testutil"
)

func TestLinkLimiter_AllowsUpToLimit(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	limiter := NewLinkLimiter(client, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "magic_link", "jane@acme.com")
		require.NoError(t, err)
		assert.True(t, ok, "send %d should be allowed", i+1)
	}

	ok, err := limiter.Allow(ctx, "magic_link", "jane@acme.com")
	require.NoError(t, err)
	assert.False(t, ok, "third send should be throttled")
}

func TestLinkLimiter_KindsAndAddressesIsolated(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	limiter := NewLinkLimiter(client, 1, time.Minute)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "magic_link", "jane@acme.com")
	require.NoError(t, err)
	assert.True(t, ok)

	// Different kind, same address.
	ok, err = limiter.Allow(ctx, "password_reset", "jane@acme.com")
	require.NoError(t, err)
	assert.True(t, ok)

	// Same kind, different address.
	ok, err = limiter.Allow(ctx, "magic_link", "omar@acme.com")
	require.NoError(t, err)
	assert.True(t, ok)

	// Same kind, same address, over limit.
	ok, err = limiter.Allow(ctx, "magic_link", "jane@acme.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinkLimiter_NormalizesEmail(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	limiter := NewLinkLimiter(client, 1, time.Minute)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "magic_link", "Jane@Acme.com")
	require.NoError(t, err)
	assert.True(t, ok)

	// Casing and whitespace variants count against the same window.
	ok, err = limiter.Allow(ctx, "magic_link", "  jane@acme.com ")
	require.NoError(t, err)
	assert.False(t, ok)
}
