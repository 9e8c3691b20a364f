package app

import (
	"context"
	"fmt"
	"time"

	"linkedin-jobs-scraper/internal/browser"
	"linkedin-jobs-scraper/internal/config"
	"linkedin-jobs-scraper/internal/enrich"
	"linkedin-jobs-scraper/internal/fetcher"
	"linkedin-jobs-scraper/internal/observability"
	"linkedin-jobs-scraper/internal/pacing"
	"linkedin-jobs-scraper/internal/scraper"
	"linkedin-jobs-scraper/internal/storage"
)

type Orchestrator struct {
	cfg       *config.Config
	logger    *observability.Logger
	page      browser.Page
	extractor *scraper.Extractor
	enricher  *enrich.Enricher
	pace      *pacing.Controller
	sink      storage.Sink
	limiter   *fetcher.RateLimiter
	backoff   *fetcher.Backoff
	timing    pacing.Timing
	now       func() time.Time
}

// NewOrchestrator wires a visit pipeline. enricher may be nil when company links are
// not requested.
func NewOrchestrator(
	cfg *config.Config,
	logger *observability.Logger,
	page browser.Page,
	extractor *scraper.Extractor,
	enricher *enrich.Enricher,
	pace *pacing.Controller,
	sink storage.Sink,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		logger:    logger,
		page:      page,
		extractor: extractor,
		enricher:  enricher,
		pace:      pace,
		sink:      sink,
		limiter:   fetcher.NewRateLimiter(pace.RequestRateCeiling(cfg.GetMode())),
		backoff:   fetcher.NewBackoff(cfg.Backoff, nil),
		timing:    cfg.GetTiming(),
		now:       time.Now,
	}
}

type RunStats struct {
	Pages   int
	Failed  int
	Empty   int
	Records int
}

type VisitStats struct {
	URL          string
	Outcome      scraper.Outcome
	CardSelector string
	CardsFound   int
	Records      int
	Rejected     int
	Duplicates   int
	Faults       int
	Enrichment   enrich.Stats
	Saved        storage.SaveResult
}

// Run visits every start URL in order. A URL that cannot be loaded after all retries
// is logged and skipped; only ctx cancellation stops the run.
func (o *Orchestrator) Run(ctx context.Context, startURLs []string) (*RunStats, error) {
	mode := o.cfg.GetMode()
	o.logger.Info("Starting run",
		"urls", len(startURLs),
		"mode", string(mode),
		"rpm", o.pace.RequestRateCeiling(mode),
		"include_company_url", o.cfg.IncludeCompanyURL,
		"max_results", o.cfg.MaxResults,
	)

	stats := &RunStats{}
	for _, u := range startURLs {
		if err := o.limiter.WaitURL(ctx, u); err != nil {
			return stats, err
		}
		if !o.cfg.Pacing.Disabled {
			if err := pacing.Sleep(ctx, o.pace.InterRequestDelay(mode)); err != nil {
				return stats, err
			}
		}

		if err := o.navigate(ctx, u); err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			o.logger.Error("Page skipped", "url", u, "error", err.Error())
			stats.Failed++
			continue
		}
		if err := o.pace.Wait(ctx, o.timing.PostNavigation); err != nil {
			return stats, err
		}

		vs, err := o.Visit(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			o.logger.Error("Visit failed", "url", u, "error", err.Error())
			stats.Failed++
			continue
		}

		stats.Pages++
		stats.Records += vs.Records
		if vs.Outcome == scraper.OutcomeEmpty {
			stats.Empty++
		}
	}

	o.logger.Info("Run completed",
		"pages", stats.Pages,
		"failed", stats.Failed,
		"empty", stats.Empty,
		"records", stats.Records,
	)
	return stats, nil
}

// navigate owns the retry policy for the initial page load.
func (o *Orchestrator) navigate(ctx context.Context, u string) error {
	var lastErr error
	for attempt := 0; attempt <= o.cfg.MaxRequestRetries; attempt++ {
		if attempt > 0 {
			backoff := o.backoff.Delay(attempt)
			o.logger.Warn("Retrying navigation", "url", u, "attempt", attempt, "backoff", backoff)
			if err := pacing.Sleep(ctx, backoff); err != nil {
				return err
			}
		}

		err := o.page.Navigate(ctx, u, o.cfg.GetNavigationTimeout())
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}
	return fmt.Errorf("navigation failed after %d retries: %w", o.cfg.MaxRequestRetries, lastErr)
}

// Visit processes the page currently loaded: vary the fingerprint, let lazy content
// render, extract, optionally enrich, and hand a non-empty batch to the sink.
func (o *Orchestrator) Visit(ctx context.Context, sourceURL string) (*VisitStats, error) {
	vs := &VisitStats{URL: sourceURL}

	if err := o.varyFingerprint(ctx); err != nil {
		return vs, err
	}

	if err := o.page.WaitLoad(ctx, o.cfg.GetRodWaitLoadTimeout()); err != nil {
		if ctx.Err() != nil {
			return vs, ctx.Err()
		}
		o.logger.Warn("Page not fully loaded, extracting anyway", "url", sourceURL, "error", err.Error())
	}
	if err := o.pace.Wait(ctx, o.timing.PreExtraction); err != nil {
		return vs, err
	}

	if o.cfg.Rod.MaxScrollSteps > 0 {
		steps, err := browser.AutoScroll(ctx, o.page, o.pace, o.cfg.Rod.MaxScrollSteps, o.cfg.GetEvaluationTimeout())
		if err != nil {
			if ctx.Err() != nil {
				return vs, ctx.Err()
			}
			o.logger.Warn("Scrolling stopped", "url", sourceURL, "steps", steps, "error", err.Error())
		}
		if err := o.pace.Wait(ctx, o.timing.LazyLoad); err != nil {
			return vs, err
		}
	}

	doc, err := browser.Snapshot(ctx, o.page, o.cfg.GetEvaluationTimeout())
	if err != nil {
		if ctx.Err() != nil {
			return vs, ctx.Err()
		}
		return vs, fmt.Errorf("snapshot %s: %w", sourceURL, err)
	}

	res := o.extractor.Extract(doc.Root(), scraper.Options{
		IncludeCompanyURL: o.cfg.IncludeCompanyURL,
		MaxResults:        o.cfg.MaxResults,
		TitleKeywords:     o.cfg.Acceptance.TitleKeywords,
	})
	vs.Outcome = res.Outcome
	vs.CardSelector = res.CardSelector
	vs.CardsFound = res.CardsFound
	vs.Records = len(res.Records)
	vs.Rejected = res.Rejected
	vs.Duplicates = res.Duplicates
	vs.Faults = res.Faults

	if res.Empty() {
		o.logger.Warn("No listings found; empty search or challenge page",
			"url", sourceURL,
			"title", doc.Title(),
		)
	} else {
		o.logger.Info("Listings extracted",
			"url", sourceURL,
			"selector", res.CardSelector,
			"cards", res.CardsFound,
			"records", len(res.Records),
			"rejected", res.Rejected,
			"duplicates", res.Duplicates,
			"faults", res.Faults,
		)
	}

	if o.cfg.IncludeCompanyURL && o.enricher != nil && len(res.Records) > 0 {
		es, err := o.enricher.Enrich(ctx, res.Records)
		vs.Enrichment = es
		if err != nil {
			return vs, err
		}
	}

	if len(res.Records) > 0 {
		saved, err := o.sink.Save(ctx, storage.Batch{
			SourceURL:   sourceURL,
			CollectedAt: o.now().UTC(),
			Records:     res.Records,
		})
		vs.Saved = saved
		if err != nil {
			return vs, fmt.Errorf("save batch: %w", err)
		}
	}

	if err := o.pace.Wait(ctx, o.timing.Teardown); err != nil {
		return vs, err
	}
	return vs, nil
}

func (o *Orchestrator) varyFingerprint(ctx context.Context) error {
	fp := o.pace.FingerprintVariation()

	if err := o.page.SetViewport(ctx, fp.Viewport); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		o.logger.Warn("Failed to set viewport", "error", err.Error())
	}
	for _, step := range fp.Steps {
		if err := o.page.MoveMouse(ctx, step.X, step.Y); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.logger.Debug("Pointer move failed", "error", err.Error())
			break
		}
		if o.cfg.Pacing.Disabled {
			continue
		}
		if err := pacing.Sleep(ctx, step.Pause); err != nil {
			return err
		}
	}
	return nil
}
