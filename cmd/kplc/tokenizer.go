package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kplc/bulletin-notify/internal/config"
	"github.com/kplc/bulletin-notify/internal/platform/ratelimit"
)

func tokenizerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenizer",
		Short: "Run the rate-limit bucket tokenizer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenizer()
		},
	}
}

func runTokenizer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	rdb := newRedisClient(cfg)

	tokenizer := ratelimit.NewTokenizer(rdb, logger,
		ratelimit.BucketRate{Bucket: ratelimit.BucketLocation, Rate: cfg.ExternalAPIRateLimits.Location},
		ratelimit.BucketRate{Bucket: ratelimit.BucketEmail, Rate: cfg.ExternalAPIRateLimits.Email},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info().Msg("shutting down tokenizer")
		cancel()
	}()

	logger.Info().Msg("starting rate-limit tokenizer")
	return tokenizer.Run(ctx)
}
