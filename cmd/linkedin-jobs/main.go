package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"linkedin-jobs-scraper/internal/app"
	"linkedin-jobs-scraper/internal/browser"
	"linkedin-jobs-scraper/internal/config"
	"linkedin-jobs-scraper/internal/enrich"
	"linkedin-jobs-scraper/internal/fetcher"
	"linkedin-jobs-scraper/internal/normalize"
	"linkedin-jobs-scraper/internal/observability"
	"linkedin-jobs-scraper/internal/pacing"
	"linkedin-jobs-scraper/internal/scraper"
	"linkedin-jobs-scraper/internal/storage"
	"linkedin-jobs-scraper/internal/storage/mssql"
	"linkedin-jobs-scraper/internal/storage/redisqueue"
)

func main() {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(observability.Options{
		LogPath:    cfg.Observability.LogPath,
		LogLevel:   cfg.Observability.LogLevel,
		MaxSizeMB:  cfg.Observability.MaxSizeMB,
		MaxBackups: cfg.Observability.MaxBackups,
		MaxAgeDays: cfg.Observability.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Run failed", "error", err.Error())
		_ = logger.Close()
		os.Exit(1)
	}
	_ = logger.Close()
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx, cancel := app.GracefulShutdown(context.Background(), logger)
	defer cancel()

	tables, err := cfg.SelectorTables()
	if err != nil {
		return err
	}

	page, err := newPage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Warn("Failed to close page", "error", err.Error())
		}
	}()

	sink, err := newSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("Failed to close sink", "error", err.Error())
		}
	}()

	norm := normalize.NewNormalizer(normalize.Options{
		TrimNBSP:       cfg.Normalize.TrimNBSP,
		CollapseSpaces: cfg.Normalize.CollapseSpaces,
	})
	resolver := scraper.NewResolver(tables, norm)
	pace := pacing.New(nil)
	timing := cfg.GetTiming()

	var enricher *enrich.Enricher
	if cfg.IncludeCompanyURL {
		enricher = enrich.NewEnricher(page, resolver, pace, logger.With("component", "enrich"), enrich.Options{
			NavigationTimeout: cfg.GetDetailNavigationTimeout(),
			EvaluationTimeout: cfg.GetEvaluationTimeout(),
			MaxDetailPages:    cfg.Enrichment.MaxDetailPages,
			Settle:            timing.DetailSettle,
			Gap:               timing.DetailGap,
		})
	}

	orch := app.NewOrchestrator(cfg, logger, page, scraper.NewExtractor(resolver, logger.With("component", "extract")), enricher, pace, sink)

	if cfg.Scheduler.Mode != "interval" {
		_, err := orch.Run(ctx, cfg.StartURLs)
		return err
	}

	interval := cfg.GetSchedulerInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := orch.Run(ctx, cfg.StartURLs); err != nil {
			return err
		}
		logger.Info("Waiting for next run", "interval", interval.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func newPage(ctx context.Context, cfg *config.Config, logger *observability.Logger) (browser.Page, error) {
	switch cfg.Engine {
	case "http":
		return fetcher.NewStaticPage(fetcher.NewFetcher(cfg, logger)), nil
	case "rod":
		return browser.NewRodPage(ctx, browser.RodOptions{
			Bin:       cfg.Rod.ChromePath,
			Headless:  cfg.Rod.Headless,
			NoSandbox: cfg.Rod.NoSandbox,
			UserAgent: cfg.HTTP.UserAgent,
		}, logger)
	}
	return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
}

func newSink(ctx context.Context, cfg *config.Config, logger *observability.Logger) (storage.Sink, error) {
	switch cfg.Storage.Sink {
	case "mssql":
		return mssql.NewRepository(cfg.Storage.DSN, cfg.Storage.Table, cfg.GetCommandTimeout(), logger)
	case "redis":
		client, err := redisqueue.NewClient(ctx, cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
		if err != nil {
			return nil, err
		}
		return redisqueue.NewPublisher(client, cfg.Storage.RedisQueue), nil
	case "stdout":
		return storage.NewJSONLSink(os.Stdout), nil
	}
	return nil, fmt.Errorf("unknown sink %q", cfg.Storage.Sink)
}
