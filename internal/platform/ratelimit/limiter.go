// Package ratelimit implements the Rate Limiter (C8): a shared integer
// counter per bucket in Redis, refilled by a standalone tokenizer process
// and decremented atomically by callers.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Bucket names, matching spec.md §6's key-value schema
// "{NAME}_EXTERNAL_API".
const (
	BucketLocation = "LOCATION_EXTERNAL_API"
	BucketEmail    = "EMAIL_EXTERNAL_API"
)

// deniedRetryAfter is the countdown denied callers re-queue themselves
// with; the bucket refills within one tokenizer period regardless.
const deniedRetryAfter = time.Second

// Limiter backs location.RateLimiter and notification.RateLimiter with a
// Redis DECR counter per bucket.
type Limiter struct {
	rdb *redis.Client
}

func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

// Result is the richer shape spec.md §4.8 describes for callers that need
// backoff hints beyond the plain allow/deny decision.
type Result struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
	ResetAfter time.Duration
}

// Take atomically decrements bucket's counter. A post-decrement value >= 0
// means the action is allowed; < 0 means denied.
func (l *Limiter) Take(ctx context.Context, bucket string) (bool, time.Duration, error) {
	res, err := l.TakeDetailed(ctx, bucket)
	if err != nil {
		return false, 0, err
	}
	return res.Allowed, res.RetryAfter, nil
}

// TakeDetailed is Take plus the remaining/reset_after fields. Limit is not
// populated and is always zero.
func (l *Limiter) TakeDetailed(ctx context.Context, bucket string) (Result, error) {
	remaining, err := l.rdb.Decr(ctx, bucket).Result()
	if err != nil {
		return Result{}, apperr.Unexpected("decrement rate limit bucket "+bucket, err)
	}

	ttl, err := l.rdb.TTL(ctx, bucket).Result()
	if err != nil {
		return Result{}, apperr.Unexpected("read rate limit bucket ttl", err)
	}
	resetAfter := ttl
	if ttl < 0 {
		resetAfter = 0
	}

	if remaining >= 0 {
		return Result{Allowed: true, Remaining: remaining, ResetAfter: resetAfter}, nil
	}
	return Result{
		Allowed:    false,
		Remaining:  0,
		RetryAfter: deniedRetryAfter,
		ResetAfter: resetAfter,
	}, nil
}
