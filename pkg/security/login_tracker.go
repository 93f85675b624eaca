package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig bounds failed login attempts per email
type LoginTrackerConfig struct {
	MaxAttempts   int
	AttemptWindow time.Duration
	BlockDuration time.Duration
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginTracker counts failed logins in Redis and blocks an email once the threshold is hit.
// Without a Redis client it fails open.
type LoginTracker struct {
	client goredis.Cmdable
	config LoginTrackerConfig
	logger *SecurityLogger
}

func NewLoginTracker(client goredis.Cmdable, config LoginTrackerConfig, logger *SecurityLogger) *LoginTracker {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &LoginTracker{client: client, config: config, logger: logger}
}

const (
	failLoginPrefix    = "fail:login:user:"
	blockedLoginPrefix = "blocked:login:user:"
)

// INCR and set the window TTL on the first hit
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (lt *LoginTracker) enabled() bool {
	return lt != nil && lt.client != nil
}

func (lt *LoginTracker) IsBlocked(ctx context.Context, email string) (bool, error) {
	if !lt.enabled() {
		return false, nil
	}
	n, err := lt.client.Exists(ctx, blockedLoginPrefix+normalizeEmail(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check login block: %w", err)
	}
	return n > 0, nil
}

// RecordFailedAttempt increments the counter and reports whether the email is now blocked
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip, requestID string) (bool, error) {
	if !lt.enabled() {
		return false, nil
	}
	key := normalizeEmail(email)

	res, err := lt.client.Eval(ctx, incrWithTTLScript, []string{failLoginPrefix + key}, int(lt.config.AttemptWindow.Seconds())).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment login counter: %w", err)
	}
	count, ok := res.(int64)
	if !ok {
		return false, errors.New("unexpected result type from login counter script")
	}
	if int(count) < lt.config.MaxAttempts {
		return false, nil
	}

	if err := lt.client.Set(ctx, blockedLoginPrefix+key, "1", lt.config.BlockDuration).Err(); err != nil {
		return true, fmt.Errorf("failed to set login block: %w", err)
	}
	lt.logger.LogBlockCreated(ctx, email, ip, requestID, lt.config.BlockDuration)
	return true, nil
}

// ClearAttempts resets the counter after a successful login
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email string) error {
	if !lt.enabled() {
		return nil
	}
	return lt.client.Del(ctx, failLoginPrefix+normalizeEmail(email)).Err()
}
