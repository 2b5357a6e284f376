package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kplc/bulletin-notify/internal/config"
	"github.com/kplc/bulletin-notify/internal/domain/location"
	"github.com/kplc/bulletin-notify/internal/domain/match"
	"github.com/kplc/bulletin-notify/internal/domain/notification"
	"github.com/kplc/bulletin-notify/internal/domain/outage"
	"github.com/kplc/bulletin-notify/internal/domain/source"
	"github.com/kplc/bulletin-notify/internal/domain/subscriber"
	"github.com/kplc/bulletin-notify/internal/domain/subscription"
	"github.com/kplc/bulletin-notify/internal/platform/db"
	"github.com/kplc/bulletin-notify/internal/platform/mail"
	"github.com/kplc/bulletin-notify/internal/platform/placeapi"
	"github.com/kplc/bulletin-notify/internal/platform/progress"
	"github.com/kplc/bulletin-notify/internal/platform/ratelimit"
	"github.com/kplc/bulletin-notify/internal/platform/searchengine"
	"github.com/kplc/bulletin-notify/internal/platform/tasks"
)

func workerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the task queue's consumer pool",
	}
	cmd.Flags().String("group", "kplc-worker", "Kafka consumer group id")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		groupID, _ := cmd.Flags().GetString("group")
		return runWorker(groupID)
	}
	return cmd
}

func runWorker(groupID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	rdb := newRedisClient(cfg)
	limiter := ratelimit.NewLimiter(rdb)
	progressTracker := progress.NewTracker(rdb)
	placeClient := placeapi.NewClient(cfg.Location.Host, cfg.Location.APIKey)
	searchClient := searchengine.NewClient(cfg.SearchEngine.Host, cfg.SearchEngine.ApplicationKey, cfg.SearchEngine.APIKey)
	searchCache := searchengine.NewCache(rdb)
	mailClient := mail.NewClient(cfg.Email.Host, cfg.Email.AuthToken, cfg.Email.TemplateID)

	bus := tasks.NewBus(cfg.Kafka.Brokers)
	enqueuer := tasks.NewEnqueuer(bus)

	outageSvc := outage.NewService(outage.NewRepoPG(pool))
	sourceSvc := source.NewService(source.NewRepoPG(pool))
	subscriberSvc := subscriber.NewService(subscriber.NewRepoPG(pool))
	locationSvc := location.NewService(location.NewRepoPG(pool), placeClient, placeClient, limiter)
	matchSvc := match.NewService(outage.NewMatchLookup(outageSvc), match.NewIndexPG(pool))
	notifierSvc := notification.NewService(notification.NewRepoPG(pool), sourceSvc, limiter, mailClient)
	subscriptionSvc := subscription.NewService(subscription.NewRepoPG(pool), enqueuer, progressTracker)

	handlers := &tasks.Handlers{
		Locations:     locationSvc,
		Subscriptions: subscriptionSvc,
		Subscribers:   subscriberSvc,
		Matcher:       matchSvc,
		Notifier:      notifierSvc,
		Sources:       sourceSvc,
		SearchClient:  searchClient,
		SearchCache:   searchCache,
		Enqueuer:      enqueuer,
		Progress:      progressTracker,
	}

	onFail := func(taskID string, taskType tasks.Type, attempt int, err error) {
		logger.Error().Err(err).Str("task_id", taskID).Str("task_type", string(taskType)).Int("attempt", attempt).Msg("task failed")
	}

	consumers := []*tasks.Consumer{
		tasks.NewConsumer(bus, tasks.TypeFetchAndSubscribeToLocation, groupID, enqueuer, handlers.FetchAndSubscribeToLocation, onFail, logger),
		tasks.NewConsumer(bus, tasks.TypeGetNearbyLocations, groupID, enqueuer, handlers.GetNearbyLocations, onFail, logger),
		tasks.NewConsumer(bus, tasks.TypeSendEmailNotification, groupID, enqueuer, handlers.SendEmailNotification, onFail, logger),
		tasks.NewConsumer(bus, tasks.TypeSearchLocationsByText, groupID, enqueuer, handlers.SearchLocationsByText, onFail, logger),
	}

	var wg sync.WaitGroup
	for _, c := range consumers {
		wg.Add(1)
		go func(c *tasks.Consumer) {
			defer wg.Done()
			if err := c.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("consumer stopped")
			}
		}(c)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down worker pool")
	cancel()
	wg.Wait()
	for _, c := range consumers {
		_ = c.Close()
	}
	logger.Info().Msg("worker pool stopped")
	return nil
}
