package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"linkedin-jobs-scraper/internal/browser"
	"linkedin-jobs-scraper/internal/dom"
	"linkedin-jobs-scraper/internal/pacing"
)

// StaticPage satisfies browser.Page over plain HTTP. There is no rendering, so
// viewport and pointer gestures are no-ops and the document is always fully scrolled.
type StaticPage struct {
	fetcher *Fetcher
	current *FetchResponse
}

var _ browser.Page = (*StaticPage)(nil)

func NewStaticPage(f *Fetcher) *StaticPage {
	return &StaticPage{fetcher: f}
}

func (p *StaticPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", browser.ErrNavigation, url, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s: status %d", browser.ErrNavigation, url, resp.StatusCode)
	}

	p.current = resp
	return nil
}

func (p *StaticPage) WaitLoad(context.Context, time.Duration) error {
	return nil
}

func (p *StaticPage) SetViewport(context.Context, pacing.Viewport) error {
	return nil
}

func (p *StaticPage) MoveMouse(context.Context, int, int) error {
	return nil
}

func (p *StaticPage) Scroll(context.Context, pacing.ScrollStep) (bool, error) {
	return true, nil
}

func (p *StaticPage) Document(context.Context) (*dom.Document, error) {
	if p.current == nil {
		return nil, fmt.Errorf("no page loaded")
	}
	return dom.Parse(bytes.NewReader(p.current.Body), p.current.URL)
}

func (p *StaticPage) URL() string {
	if p.current == nil {
		return ""
	}
	return p.current.URL
}

func (p *StaticPage) Close() error {
	p.current = nil
	return nil
}
