package browser

import (
	"context"
	"errors"
	"time"

	"linkedin-jobs-scraper/internal/dom"
	"linkedin-jobs-scraper/internal/pacing"
)

// ErrNavigation wraps every failure to load a URL.
var ErrNavigation = errors.New("navigation failed")

// Page is one browser tab, or anything that can stand in for one. All calls are
// made from a single goroutine; implementations need not be safe for concurrent use.
type Page interface {
	// Navigate loads url and returns once DOMContentLoaded fired or timeout elapsed.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// WaitLoad waits for the load event. Callers treat a timeout as non-fatal.
	WaitLoad(ctx context.Context, timeout time.Duration) error
	SetViewport(ctx context.Context, vp pacing.Viewport) error
	MoveMouse(ctx context.Context, x, y int) error
	// Scroll advances by step.Distance and reports whether the bottom was reached.
	Scroll(ctx context.Context, step pacing.ScrollStep) (bool, error)
	// Document snapshots the current DOM.
	Document(ctx context.Context) (*dom.Document, error)
	URL() string
	Close() error
}

// AutoScroll scrolls until the bottom or maxSteps, pausing step.Interval between
// increments so lazily loaded cards can render. Each scroll evaluation is bounded by
// stepTimeout; zero leaves it bounded by ctx alone.
func AutoScroll(ctx context.Context, page Page, pace *pacing.Controller, maxSteps int, stepTimeout time.Duration) (int, error) {
	steps := 0
	for steps < maxSteps {
		step := pace.ScrollPacing()
		bottom, err := scrollOnce(ctx, page, step, stepTimeout)
		if err != nil {
			return steps, err
		}
		steps++
		if bottom {
			break
		}
		if err := pacing.Sleep(ctx, step.Interval); err != nil {
			return steps, err
		}
	}
	return steps, nil
}

func scrollOnce(ctx context.Context, page Page, step pacing.ScrollStep, timeout time.Duration) (bool, error) {
	if timeout <= 0 {
		return page.Scroll(ctx, step)
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return page.Scroll(stepCtx, step)
}

// Snapshot takes a Document bounded by timeout; zero leaves it bounded by ctx alone.
func Snapshot(ctx context.Context, page Page, timeout time.Duration) (*dom.Document, error) {
	if timeout <= 0 {
		return page.Document(ctx)
	}
	snapCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return page.Document(snapCtx)
}
