package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkedin-jobs-scraper/internal/dom"
	"linkedin-jobs-scraper/internal/observability"
	"linkedin-jobs-scraper/internal/pacing"
	"linkedin-jobs-scraper/internal/scraper"
)

// Navigator is the part of a page the enricher drives.
type Navigator interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	Document(ctx context.Context) (*dom.Document, error)
}

// ErrNavigationFault marks a detail page whose visit or evaluation failed.
var ErrNavigationFault = errors.New("navigation fault")

type Options struct {
	NavigationTimeout time.Duration
	// EvaluationTimeout bounds the snapshot of each detail page. Zero falls back to
	// NavigationTimeout.
	EvaluationTimeout time.Duration
	// MaxDetailPages caps detail visits per batch; 0 visits every candidate.
	MaxDetailPages int
	// Settle is waited after each navigation, Gap between successive visits.
	Settle pacing.Window
	Gap    pacing.Window
}

type Stats struct {
	Candidates int
	Attempted  int
	Resolved   int
	Failed     int
}

// Enricher fills in missing company links by visiting each listing's detail page.
type Enricher struct {
	nav      Navigator
	resolver *scraper.Resolver
	pace     *pacing.Controller
	logger   *observability.Logger
	opts     Options
}

func NewEnricher(nav Navigator, resolver *scraper.Resolver, pace *pacing.Controller, logger *observability.Logger, opts Options) *Enricher {
	return &Enricher{
		nav:      nav,
		resolver: resolver,
		pace:     pace,
		logger:   logger,
		opts:     opts,
	}
}

// Enrich visits, strictly one after another and in record order, the detail page of
// every record that has a URL but no company link. A failed visit leaves that record
// unchanged; only ctx cancellation ends the batch early.
func (e *Enricher) Enrich(ctx context.Context, records []scraper.ListingRecord) (Stats, error) {
	var stats Stats

	var targets []int
	for i := range records {
		if records[i].CompanyURL == "" && records[i].URL != "" {
			targets = append(targets, i)
		}
	}
	stats.Candidates = len(targets)
	if e.opts.MaxDetailPages > 0 && len(targets) > e.opts.MaxDetailPages {
		targets = targets[:e.opts.MaxDetailPages]
	}

	for n, i := range targets {
		if n > 0 {
			if err := e.pace.Wait(ctx, e.opts.Gap); err != nil {
				return stats, err
			}
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Attempted++
		companyURL, err := e.resolve(ctx, records[i].URL)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Failed++
			e.logger.Warn("Detail page failed", "url", records[i].URL, "error", err)
			continue
		}
		if companyURL == "" {
			stats.Failed++
			e.logger.Debug("No company link on detail page", "url", records[i].URL)
			continue
		}

		records[i].CompanyURL = companyURL
		stats.Resolved++
	}

	e.logger.Info("Enrichment finished",
		"candidates", stats.Candidates,
		"attempted", stats.Attempted,
		"resolved", stats.Resolved,
		"failed", stats.Failed,
	)
	return stats, nil
}

func (e *Enricher) resolve(ctx context.Context, url string) (companyURL string, err error) {
	defer func() {
		if r := recover(); r != nil {
			companyURL = ""
			err = fmt.Errorf("detail page %s: %w: %v", url, ErrNavigationFault, r)
		}
	}()

	if err := e.nav.Navigate(ctx, url, e.opts.NavigationTimeout); err != nil {
		return "", err
	}
	if err := e.pace.Wait(ctx, e.opts.Settle); err != nil {
		return "", err
	}

	doc, err := e.snapshot(ctx)
	if err != nil {
		return "", err
	}
	return e.resolver.DetailCompanyURL(doc.Root()), nil
}

// snapshot runs under its own deadline; expiry only fails the current record.
func (e *Enricher) snapshot(ctx context.Context) (*dom.Document, error) {
	timeout := e.opts.EvaluationTimeout
	if timeout <= 0 {
		timeout = e.opts.NavigationTimeout
	}
	if timeout <= 0 {
		return e.nav.Document(ctx)
	}

	evalCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	doc, err := e.nav.Document(evalCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: snapshot timed out after %s", ErrNavigationFault, timeout)
		}
		return nil, err
	}
	return doc, nil
}
