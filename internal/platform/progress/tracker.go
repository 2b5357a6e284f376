// Package progress implements the Progress Tracker (C9): a TTL'd
// key-value record of task status, backed by the same Redis instance as
// the rate limiter.
package progress

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Status values a task progress key can hold.
const (
	Pending = "Pending"
	Success = "Success"
	Failure = "Failure"
)

// ttl is the 20-minute window spec.md §6 assigns to progress:{taskId}
// keys.
const ttl = 20 * time.Minute

const keyPrefix = "progress:"

// Tracker implements subscription.ProgressTracker, plus the Set half the
// task queue workers use to stamp outcomes.
type Tracker struct {
	rdb *redis.Client
}

func NewTracker(rdb *redis.Client) *Tracker {
	return &Tracker{rdb: rdb}
}

func key(taskID string) string {
	return keyPrefix + taskID
}

// Set records status for taskID, refreshing the TTL.
func (t *Tracker) Set(ctx context.Context, taskID, status string) error {
	if err := t.rdb.Set(ctx, key(taskID), status, ttl).Err(); err != nil {
		return apperr.Unexpected("set task progress", err)
	}
	return nil
}

// Get returns the recorded status for taskID, or found=false if the key
// doesn't exist (never set, or expired).
func (t *Tracker) Get(ctx context.Context, taskID string) (string, bool, error) {
	status, err := t.rdb.Get(ctx, key(taskID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperr.Unexpected("get task progress", err)
	}
	return status, true, nil
}
