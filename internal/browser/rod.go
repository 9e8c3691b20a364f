package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"linkedin-jobs-scraper/internal/dom"
	"linkedin-jobs-scraper/internal/observability"
	"linkedin-jobs-scraper/internal/pacing"
)

type RodOptions struct {
	// Bin is the Chrome/Chromium binary; empty lets the launcher locate or download one.
	Bin       string
	Headless  bool
	NoSandbox bool
	UserAgent string
}

// RodPage drives a single stealth tab in a locally launched Chromium.
type RodPage struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   *observability.Logger
}

func NewRodPage(ctx context.Context, opts RodOptions, logger *observability.Logger) (*RodPage, error) {
	l := launcher.New().Headless(opts.Headless).NoSandbox(opts.NoSandbox)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			logger.Warn("Failed to set user agent", "error", err)
		}
	}

	logger.Info("Browser started", "headless", opts.Headless)

	return &RodPage{
		launcher: l,
		browser:  b,
		page:     page,
		logger:   logger,
	}, nil
}

func (r *RodPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p := r.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}
	wait()

	if err := p.GetContext().Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}
	return nil
}

func (r *RodPage) WaitLoad(ctx context.Context, timeout time.Duration) error {
	p := r.page.Context(ctx).Timeout(timeout)
	defer p.CancelTimeout()

	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	return nil
}

func (r *RodPage) SetViewport(ctx context.Context, vp pacing.Viewport) error {
	return r.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
	})
}

func (r *RodPage) MoveMouse(ctx context.Context, x, y int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.page.Mouse.MoveTo(proto.Point{X: float64(x), Y: float64(y)})
}

const scrollJS = `(d) => {
	window.scrollBy(0, d);
	return Math.ceil(window.innerHeight + window.scrollY) >= document.documentElement.scrollHeight;
}`

func (r *RodPage) Scroll(ctx context.Context, step pacing.ScrollStep) (bool, error) {
	res, err := r.page.Context(ctx).Eval(scrollJS, step.Distance)
	if err != nil {
		return false, fmt.Errorf("scroll: %w", err)
	}
	return res.Value.Bool(), nil
}

func (r *RodPage) Document(ctx context.Context) (*dom.Document, error) {
	html, err := r.page.Context(ctx).HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read page HTML: %w", err)
	}
	return dom.ParseString(html, r.URL())
}

func (r *RodPage) URL() string {
	info, err := r.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (r *RodPage) Close() error {
	var errs []error
	if err := r.page.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close page: %w", err))
	}
	if err := r.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	r.launcher.Cleanup()
	return errors.Join(errs...)
}
