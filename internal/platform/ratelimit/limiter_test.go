package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLimiter(rdb), mr
}

func TestTake_AllowsWhilePositive(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	mr.Set(BucketLocation, "2")

	allowed, _, err := limiter.Take(context.Background(), BucketLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatal("expected first token to be allowed")
	}

	allowed, _, err = limiter.Take(context.Background(), BucketLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatal("expected second token to be allowed")
	}
}

func TestTake_DeniesOnceExhausted(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	mr.Set(BucketEmail, "0")

	allowed, retryAfter, err := limiter.Take(context.Background(), BucketEmail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("expected a zero-balance bucket to deny the next token")
	}
	if retryAfter != time.Second {
		t.Errorf("expected a 1s retry-after hint, got %v", retryAfter)
	}
}

func TestTake_CreatesBucketWhenMissing(t *testing.T) {
	limiter, _ := newTestLimiter(t)

	allowed, _, err := limiter.Take(context.Background(), "UNSEEDED_BUCKET")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("expected DECR on a missing key (starts at 0, decrements to -1) to deny")
	}
}

func TestTakeDetailed_ReportsRemaining(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	mr.Set(BucketLocation, "5")

	res, err := limiter.TakeDetailed(context.Background(), BucketLocation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Allowed || res.Remaining != 4 {
		t.Errorf("expected allowed with remaining=4, got %+v", res)
	}
}
