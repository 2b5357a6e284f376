package main

import (
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kplc/bulletin-notify/internal/config"
)

// newLogger builds the process-wide structured logger: a human-readable
// console writer in development, plain JSON to stdout otherwise.
func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newRedisClient builds the Redis client shared by the rate limiter (C8),
// progress tracker (C9), and search-result cache.
func newRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr(),
		DB:   cfg.Redis.DB,
	})
}
