package pacing

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// Mode selects how aggressively a session moves through pages.
type Mode string

const (
	ModeConservative Mode = "conservative"
	ModeFast         Mode = "fast"
)

// ParseMode accepts "conservative" or "fast"; empty means conservative.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeConservative:
		return ModeConservative, nil
	case ModeFast:
		return ModeFast, nil
	}
	return "", fmt.Errorf("unknown pacing mode %q", s)
}

// Window is an inclusive [Min, Max] duration range.
type Window struct {
	Min time.Duration
	Max time.Duration
}

// Policy is the per-mode tuning.
type Policy struct {
	Delay Window
	// RequestsPerMinute is the ceiling the orchestrator enforces between page loads.
	RequestsPerMinute int
}

var policies = map[Mode]Policy{
	ModeConservative: {Delay: Window{Min: 5 * time.Second, Max: 15 * time.Second}, RequestsPerMinute: 3},
	ModeFast:         {Delay: Window{Min: 3 * time.Second, Max: 8 * time.Second}, RequestsPerMinute: 5},
}

// PolicyFor returns the tuning for mode, falling back to conservative.
func PolicyFor(mode Mode) Policy {
	if p, ok := policies[mode]; ok {
		return p
	}
	return policies[ModeConservative]
}

// Timing groups the fixed waits of a visit.
type Timing struct {
	PostNavigation Window
	PreExtraction  Window
	LazyLoad       Window
	DetailSettle   Window
	DetailGap      Window
	Teardown       Window
}

// DefaultTiming is the cadence used against the live site.
func DefaultTiming() Timing {
	return Timing{
		PostNavigation: Window{Min: time.Second, Max: 3 * time.Second},
		PreExtraction:  Window{Min: 2 * time.Second, Max: 3 * time.Second},
		LazyLoad:       Window{Min: 2 * time.Second, Max: 4 * time.Second},
		DetailSettle:   Window{Min: 2 * time.Second, Max: 4 * time.Second},
		DetailGap:      Window{Min: 3 * time.Second, Max: 6 * time.Second},
		Teardown:       Window{Min: time.Second, Max: 3 * time.Second},
	}
}

type Viewport struct {
	Width  int
	Height int
}

var viewports = []Viewport{
	{Width: 1920, Height: 1080},
	{Width: 1366, Height: 768},
	{Width: 1440, Height: 900},
	{Width: 1536, Height: 864},
}

const pointerMoves = 3

var pointerPause = Window{Min: 100 * time.Millisecond, Max: 500 * time.Millisecond}

// PointerStep is one mouse move followed by a pause.
type PointerStep struct {
	X, Y  int
	Pause time.Duration
}

// Fingerprint is what a session varies per visit.
type Fingerprint struct {
	Viewport Viewport
	Steps    []PointerStep
}

// ScrollStep is one increment of progressive scrolling.
type ScrollStep struct {
	Distance int
	Interval time.Duration
}

// Controller draws bounded-random values. It performs no I/O except through Sleep.
type Controller struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New builds a controller over src; nil seeds from the runtime.
func New(src rand.Source) *Controller {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Controller{rnd: rand.New(src)}
}

// InterRequestDelay is a uniform draw from the mode's delay window.
func (c *Controller) InterRequestDelay(mode Mode) time.Duration {
	return c.Between(PolicyFor(mode).Delay)
}

// RequestRateCeiling is the mode's requests-per-minute ceiling.
func (c *Controller) RequestRateCeiling(mode Mode) int {
	return PolicyFor(mode).RequestsPerMinute
}

// FingerprintVariation picks a viewport and a short pointer path inside it.
func (c *Controller) FingerprintVariation() Fingerprint {
	c.mu.Lock()
	vp := viewports[c.rnd.IntN(len(viewports))]
	c.mu.Unlock()

	fp := Fingerprint{Viewport: vp, Steps: make([]PointerStep, 0, pointerMoves)}
	for i := 0; i < pointerMoves; i++ {
		c.mu.Lock()
		x, y := c.rnd.IntN(vp.Width), c.rnd.IntN(vp.Height)
		c.mu.Unlock()
		fp.Steps = append(fp.Steps, PointerStep{X: x, Y: y, Pause: c.Between(pointerPause)})
	}
	return fp
}

// ScrollPacing draws a step distance in [100,300) px and an interval in [100,300) ms.
func (c *Controller) ScrollPacing() ScrollStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ScrollStep{
		Distance: 100 + c.rnd.IntN(200),
		Interval: time.Duration(100+c.rnd.IntN(200)) * time.Millisecond,
	}
}

// Between draws uniformly from w, both ends inclusive. An inverted or empty window
// returns Min.
func (c *Controller) Between(w Window) time.Duration {
	if w.Max <= w.Min {
		return w.Min
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return w.Min + time.Duration(c.rnd.Int64N(int64(w.Max-w.Min)+1))
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Wait draws from w and sleeps for it.
func (c *Controller) Wait(ctx context.Context, w Window) error {
	return Sleep(ctx, c.Between(w))
}
