package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/account-api/internal/platform/logger"
)

const loginAttemptsPrefix = "login_attempts:"

// LoginLimiter counts login attempts per key in a fixed window. The window
// starts with the first attempt and the counter is dropped when it expires
// or when Reset is called after a successful login.
type LoginLimiter struct {
	client      goredis.Cmdable
	maxAttempts int64
	window      time.Duration
	logger      *slog.Logger
}

// NewLoginLimiter creates a limiter allowing maxAttempts attempts per window.
func NewLoginLimiter(client goredis.Cmdable, maxAttempts int, window time.Duration, logger *slog.Logger) (*LoginLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be positive, got %d", maxAttempts)
	}
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %s", window)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginLimiter{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
		logger:      logger.With(slog.String("component", "login_limiter")),
	}, nil
}

func attemptsKey(key string) string {
	return loginAttemptsPrefix + key
}

// Allow records an attempt for key and reports whether it is within the
// limit. When it is not, the second result is the time until the window
// resets.
func (l *LoginLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	log := logger.FromContextOrDefault(ctx, l.logger)
	k := attemptsKey(key)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttlCmd := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to record login attempt: %w", err)
	}

	// The window is anchored to the first attempt; a counter without a TTL
	// is either brand new or lost its EXPIRE and gets one now.
	ttl := ttlCmd.Val()
	if ttl < 0 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set login attempt window: %w", err)
		}
		ttl = l.window
	}

	count := incr.Val()
	if count <= l.maxAttempts {
		return true, 0, nil
	}

	log.Warn("login attempts exceeded",
		slog.Int64("attempts", count),
		slog.Duration("retry_after", ttl))
	return false, ttl, nil
}

// Reset clears the attempt counter for key.
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, attemptsKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
