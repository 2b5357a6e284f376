package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func TestRefillPlan_WholeRateSetsFloorEverySecond(t *testing.T) {
	period, tokens := refillPlan(10)
	if period != time.Second {
		t.Errorf("expected a 1s period for rate >= 1, got %v", period)
	}
	if tokens != 10 {
		t.Errorf("expected 10 tokens, got %d", tokens)
	}
}

func TestRefillPlan_FractionalRateSetsOneTokenPerPeriod(t *testing.T) {
	period, tokens := refillPlan(0.5)
	if period != 2*time.Second {
		t.Errorf("expected a 2s period for rate 0.5, got %v", period)
	}
	if tokens != 1 {
		t.Errorf("expected 1 token, got %d", tokens)
	}
}

func TestTokenizer_RefillsBucket(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	tz := NewTokenizer(rdb, zerolog.Nop(), BucketRate{Bucket: BucketEmail, Rate: 100})

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	go tz.Run(ctx)
	mr.FastForward(time.Second)

	<-ctx.Done()

	val, err := mr.Get(BucketEmail)
	if err != nil {
		t.Fatalf("expected bucket to have been refilled: %v", err)
	}
	if val != "100" {
		t.Errorf("expected bucket refilled to 100, got %s", val)
	}
}
