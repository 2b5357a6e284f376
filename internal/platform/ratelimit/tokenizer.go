package ratelimit

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// BucketRate is one bucket's configured refill rate, in requests per
// second.
type BucketRate struct {
	Bucket string
	Rate   float64
}

// Tokenizer is the standalone process that keeps every rate-limit bucket
// topped up: for a bucket with rate >= 1 it resets the counter to
// floor(rate) every second; for rate < 1 it resets the counter to 1 every
// 1/rate seconds. This is the only writer of a bucket's base value —
// consumers only ever DECR it.
type Tokenizer struct {
	rdb    *redis.Client
	rates  []BucketRate
	logger zerolog.Logger
}

func NewTokenizer(rdb *redis.Client, logger zerolog.Logger, rates ...BucketRate) *Tokenizer {
	return &Tokenizer{rdb: rdb, rates: rates, logger: logger}
}

// Run blocks, refilling every configured bucket on its own ticker, until
// ctx is cancelled.
func (t *Tokenizer) Run(ctx context.Context) error {
	if len(t.rates) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	done := make(chan struct{}, len(t.rates))
	for _, br := range t.rates {
		br := br
		go func() {
			t.schedule(ctx, br)
			done <- struct{}{}
		}()
	}
	for range t.rates {
		<-done
	}
	return ctx.Err()
}

// schedule is the per-bucket refill loop, grounded on the original
// tokenizer's ExternalApi::schedule: one ticker per bucket, period and
// fill value both derived from the configured rate.
func (t *Tokenizer) schedule(ctx context.Context, br BucketRate) {
	period, tokens := refillPlan(br.Rate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.rdb.Set(ctx, br.Bucket, tokens, 0).Err(); err != nil {
				t.logger.Error().Err(err).Str("bucket", br.Bucket).Msg("failed to refill rate limit bucket")
			}
		}
	}
}

// refillPlan returns the tick period and the token count to set on each
// tick: every 1s setting floor(rate) when rate >= 1, or every 1/rate
// seconds setting 1 token when rate < 1.
func refillPlan(rate float64) (time.Duration, int64) {
	if rate >= 1 {
		return time.Second, int64(math.Floor(rate))
	}
	if rate <= 0 {
		rate = 1
	}
	return time.Duration(float64(time.Second) / rate), 1
}
