package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited means the identifier has exhausted its attempt budget
	// for the current window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps infrastructure failures from the counter
	// backend.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Config holds throttle tuning parameters.
type Config struct {
	// MaxAttempts is the number of failed logins allowed per window.
	MaxAttempts int
	// Window is the fixed counting window.
	Window time.Duration
	// ThrottleIPs additionally counts failures per client IP.
	ThrottleIPs bool
}

// Limiter counts failed login attempts in Redis and reports when an email
// or IP has exhausted its budget.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckLogin reports whether email (and, when enabled, ip) still has attempt
// budget. It does not consume any.
func (l *Limiter) CheckLogin(ctx context.Context, email, ip string) error {
	if err := l.check(ctx, emailKey(email)); err != nil {
		return err
	}
	if l.config.ThrottleIPs && ip != "" {
		return l.check(ctx, ipKey(ip))
	}
	return nil
}

// RecordFailure consumes one attempt for email (and ip, when enabled). The
// window starts at the first failure.
func (l *Limiter) RecordFailure(ctx context.Context, email, ip string) error {
	if err := l.bump(ctx, emailKey(email)); err != nil {
		return err
	}
	if l.config.ThrottleIPs && ip != "" {
		return l.bump(ctx, ipKey(ip))
	}
	return nil
}

// Reset clears the counters for email and ip after a successful login.
func (l *Limiter) Reset(ctx context.Context, email, ip string) error {
	keys := []string{emailKey(email)}
	if l.config.ThrottleIPs && ip != "" {
		keys = append(keys, ipKey(ip))
	}
	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) check(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= l.config.MaxAttempts {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) bump(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return nil
}

func emailKey(email string) string {
	return "rl:login:" + email
}

func ipKey(ip string) string {
	return "rl:ip:" + ip
}
