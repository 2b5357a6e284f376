package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/kplc/bulletin-notify/internal/config"
	"github.com/kplc/bulletin-notify/internal/domain/outage"
	"github.com/kplc/bulletin-notify/internal/domain/source"
	"github.com/kplc/bulletin-notify/internal/domain/subscriber"
	"github.com/kplc/bulletin-notify/internal/domain/subscription"
	"github.com/kplc/bulletin-notify/internal/platform/auth"
	"github.com/kplc/bulletin-notify/internal/platform/db"
	kplcmw "github.com/kplc/bulletin-notify/internal/platform/middleware"
	"github.com/kplc/bulletin-notify/internal/platform/progress"
	"github.com/kplc/bulletin-notify/internal/platform/searchengine"
	"github.com/kplc/bulletin-notify/internal/platform/tasks"
	"github.com/kplc/bulletin-notify/pkg/apperr"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the subscriber-facing HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	rdb := newRedisClient(cfg)

	progressTracker := progress.NewTracker(rdb)
	searchCache := searchengine.NewCache(rdb)

	bus := tasks.NewBus(cfg.Kafka.Brokers)
	enqueuer := tasks.NewEnqueuer(bus)

	subscriberSvc := subscriber.NewService(subscriber.NewRepoPG(pool))
	subscriptionSvc := subscription.NewService(subscription.NewRepoPG(pool), enqueuer, progressTracker)
	sourceSvc := source.NewService(source.NewRepoPG(pool))
	outageSvc := outage.NewService(outage.NewRepoPG(pool))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = kplcmw.HTTPErrorHandler(logger)

	e.Use(kplcmw.Recovery(logger))
	e.Use(kplcmw.RequestID())
	e.Use(kplcmw.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(kplcmw.SecurityHeaders())
	e.Use(kplcmw.SanitizeWithLogger(logger))
	e.Use(kplcmw.BodyLimit("1M", "10M"))
	e.Use(kplcmw.RequestTimeout(30 * time.Second))

	skipper := auth.AuthSkipper
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware(skipper))
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:    cfg.Auth.Issuer,
			Audiences: cfg.Auth.Audiences,
			JWKSURL:   cfg.Auth.JWKS,
			Skipper:   skipper,
		}))
	}

	rateLimitCfg := kplcmw.DefaultRateLimitConfig()
	e.Use(kplcmw.RateLimit(rateLimitCfg))

	api := e.Group("/api")
	admin := api.Group("/admin")

	subscriber.NewHandler(subscriberSvc).RegisterRoutes(api)
	subscription.NewHandler(subscriptionSvc, subscriberSvc).RegisterRoutes(api)
	source.NewAdminHandler(sourceSvc, outageSvc).RegisterRoutes(admin)

	api.GET("/locations/search", func(c echo.Context) error {
		q := c.QueryParam("q")
		if q == "" {
			return apperr.Validation("q is required", nil)
		}
		raw, found, err := searchCache.Get(c.Request().Context(), q)
		if err != nil {
			return err
		}
		if found {
			return c.JSONBlob(http.StatusOK, raw)
		}
		if _, err := enqueuer.Enqueue(c.Request().Context(), tasks.TypeSearchLocationsByText, "", tasks.SearchLocationsByTextPayload{Text: q}); err != nil {
			return err
		}
		return c.NoContent(http.StatusAccepted)
	})

	e.GET("/healthz", db.HealthHandler(pool, rdb))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
