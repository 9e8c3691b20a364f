package fetcher

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"linkedin-jobs-scraper/internal/config"
)

// Backoff computes exponential retry delays with symmetric jitter.
type Backoff struct {
	minMS     int
	maxMS     int
	jitterPct int

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewBackoff builds a Backoff from cfg; a nil src seeds from the runtime.
func NewBackoff(cfg config.BackoffConfig, src rand.Source) *Backoff {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Backoff{
		minMS:     cfg.MinMS,
		maxMS:     cfg.MaxMS,
		jitterPct: cfg.JitterPct,
		rnd:       rand.New(src),
	}
}

// Delay is the wait before retry number attempt (1-based): min * 2^(attempt-1),
// capped at max, then jittered by ±jitterPct and floored at min.
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	exponential := b.maxMS
	if shift := attempt - 1; shift < 31 {
		exponential = b.minMS * (1 << uint(shift))
	}
	if exponential > b.maxMS || exponential <= 0 {
		exponential = b.maxMS
	}

	b.mu.Lock()
	r := b.rnd.Float64()
	b.mu.Unlock()

	jitterRange := float64(exponential) * float64(b.jitterPct) / 100
	jitter := (r - 0.5) * 2 * jitterRange
	finalMS := float64(exponential) + jitter

	if finalMS < float64(b.minMS) {
		finalMS = float64(b.minMS)
	}

	return time.Duration(math.Max(finalMS, 0)) * time.Millisecond
}
