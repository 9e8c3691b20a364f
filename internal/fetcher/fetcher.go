package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"linkedin-jobs-scraper/internal/config"
	"linkedin-jobs-scraper/internal/observability"
)

// Fetcher downloads server-rendered pages without a browser. LinkedIn serves the
// guest job search to plain HTTP clients, so this is enough for listing pages.
type Fetcher struct {
	collector *colly.Collector
	cfg       *config.Config
	backoff   *Backoff
	logger    *observability.Logger
}

type FetchResponse struct {
	StatusCode int
	Body       []byte
	URL        string
	Headers    http.Header
}

func NewFetcher(cfg *config.Config, logger *observability.Logger) *Fetcher {
	c := colly.NewCollector(
		colly.UserAgent(cfg.HTTP.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)
	c.SetRequestTimeout(cfg.GetTotalTimeout())

	return &Fetcher{
		collector: c,
		cfg:       cfg,
		backoff:   NewBackoff(cfg.Backoff, nil),
		logger:    logger,
	}
}

// Fetch GETs urlStr, retrying transport errors, 5xx and 429 with exponential backoff.
// Other statuses are returned to the caller as-is.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= f.cfg.HTTP.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := f.backoff.Delay(attempt)
			f.logger.Debug("Retrying fetch", "url", urlStr, "attempt", attempt, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := f.fetchOnce(ctx, urlStr)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			if attempt < f.cfg.HTTP.MaxRetries {
				continue
			}
		}

		return resp, nil
	}

	return nil, fmt.Errorf("fetch failed after %d retries: %w", f.cfg.HTTP.MaxRetries, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, urlStr string) (*FetchResponse, error) {
	// Clones share the transport but not callbacks.
	c := f.collector.Clone()
	c.Context = ctx

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		if f.cfg.HTTP.AcceptLanguage != "" {
			r.Headers.Set("Accept-Language", f.cfg.HTTP.AcceptLanguage)
		}
	})
	var resp *FetchResponse
	c.OnResponse(func(r *colly.Response) {
		headers := http.Header{}
		if r.Headers != nil {
			headers = *r.Headers
		}
		resp = &FetchResponse{
			StatusCode: r.StatusCode,
			Body:       r.Body,
			URL:        r.Request.URL.String(),
			Headers:    headers,
		}
	})

	if err := c.Visit(urlStr); err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("no response for %s", urlStr)
	}

	f.logger.Debug("Response received",
		"url", resp.URL,
		"status", resp.StatusCode,
		"content_type", resp.Headers.Get("Content-Type"),
		"bytes", len(resp.Body),
	)

	return resp, nil
}
