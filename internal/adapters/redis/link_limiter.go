package redis

// Package redis provides Redis-based adapters for the connect system.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leanchem/connect-api/internal/ports"
)

// LinkLimiter throttles emailed one-time links (magic link, password
// reset) per address with a fixed-window counter. Key TTL is set on
// the first send of each window.
type LinkLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int64
	window time.Duration
}

var _ ports.LinkRateLimiter = (*LinkLimiter)(nil)

// NewLinkLimiter creates a limiter allowing limit sends per window per
// (kind, email) pair.
func NewLinkLimiter(client redis.UniversalClient, limit int64, window time.Duration) *LinkLimiter {
	return &LinkLimiter{
		client: client,
		prefix: "linklimit:",
		limit:  limit,
		window: window,
	}
}

func (l *LinkLimiter) key(kind, email string) string {
	return l.prefix + kind + ":" + strings.ToLower(strings.TrimSpace(email))
}

// Allow reports whether another link of the given kind may be sent to
// the email right now. The counter increments even when the answer is
// no, so hammering the endpoint extends nothing but the count.
func (l *LinkLimiter) Allow(ctx context.Context, kind, email string) (bool, error) {
	key := l.key(kind, email)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("redis expire: %w", err)
		}
	}
	return count <= l.limit, nil
}
