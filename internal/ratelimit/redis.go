package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smilepoint-dental/contact-service/pkg/logging"
)

// RedisStore provides fixed-window rate limiting shared across instances,
// using an atomic INCR with a TTL set on the first increment of each window.
// When Redis is unreachable it fails open: a broken cache must not take the
// contact form down with it.
type RedisStore struct {
	client *redis.Client
	logger *logging.Logger
	max    int
	window time.Duration
}

// NewRedisStore creates a Redis-backed store allowing max submissions per key
// per window.
func NewRedisStore(client *redis.Client, max int, window time.Duration, logger *logging.Logger) *RedisStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{
		client: client,
		logger: logger,
		max:    max,
		window: window,
	}
}

// Allow reports whether the submission for key fits in the current window.
func (s *RedisStore) Allow(ctx context.Context, key string) bool {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn("rate limit check unavailable, allowing", "error", err, "key", key)
		return true
	}

	// Set expiry only on the first increment so later attempts do not
	// extend the window.
	if count == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			s.logger.Warn("failed to set rate limit expiry", "error", err, "key", key)
		}
	}

	return count <= int64(s.max)
}

var _ Store = (*RedisStore)(nil)
