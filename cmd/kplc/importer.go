package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kplc/bulletin-notify/internal/config"
	"github.com/kplc/bulletin-notify/internal/domain/outage"
	"github.com/kplc/bulletin-notify/internal/domain/source"
	"github.com/kplc/bulletin-notify/internal/platform/bulletin"
	"github.com/kplc/bulletin-notify/internal/platform/db"
	"github.com/kplc/bulletin-notify/internal/platform/pdftext"
	"github.com/kplc/bulletin-notify/internal/platform/sourcescrape"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Scrape the bulletin listing page and ingest every pending bulletin",
	}
	cmd.Flags().Bool("dry-run", false, "run the scrape/parse pipeline without persisting or marking anything ingested")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return runImport(dryRun)
	}
	return cmd
}

func runImport(dryRun bool) error {
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

	sourceSvc := source.NewService(source.NewRepoPG(pool))
	outageSvc := outage.NewService(outage.NewRepoPG(pool))
	scraper := sourcescrape.NewScraper(cfg.Source.ListingURL)

	scraped, err := scraper.Scrape(ctx)
	if err != nil {
		return fmt.Errorf("scrape bulletin listing: %w", err)
	}
	logger.Info().Int("count", len(scraped)).Msg("scraped candidate bulletin urls")

	pending, err := sourceSvc.PendingURLs(ctx, scraped)
	if err != nil {
		return fmt.Errorf("list pending bulletin urls: %w", err)
	}
	logger.Info().Int("count", len(pending)).Bool("dry_run", dryRun).Msg("pending bulletins to ingest")

	httpClient := &http.Client{Timeout: 30 * time.Second}
	ingested := 0
	for _, url := range pending {
		areas, err := downloadAndParse(ctx, httpClient, url)
		if err != nil {
			logger.Error().Err(err).Str("url", url).Msg("failed to ingest bulletin")
			continue
		}

		if dryRun {
			logger.Info().Str("url", url).Int("areas", len(areas)).Msg("dry run: would persist bulletin")
			continue
		}

		src, err := sourceSvc.MarkIngested(ctx, url)
		if err != nil {
			logger.Error().Err(err).Str("url", url).Msg("failed to record source")
			continue
		}
		if err := outageSvc.PersistBulletin(ctx, src.SourceID, areas); err != nil {
			logger.Error().Err(err).Str("url", url).Msg("failed to persist bulletin")
			continue
		}
		ingested++
		logger.Info().Str("url", url).Int("areas", len(areas)).Msg("ingested bulletin")
	}

	logger.Info().Int("ingested", ingested).Int("pending", len(pending)).Msg("import run complete")
	return nil
}

func downloadAndParse(ctx context.Context, client *http.Client, url string) ([]outage.ParsedArea, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build bulletin download request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download bulletin: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bulletin download returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read bulletin body: %w", err)
	}

	text, err := pdftext.ExtractBytes(body)
	if err != nil {
		return nil, err
	}
	return bulletin.Parse(text, time.Now())
}
