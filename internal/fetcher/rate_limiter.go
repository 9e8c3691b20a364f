package fetcher

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a requests-per-minute ceiling per host.
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	limiters map[string]*rate.Limiter
}

// NewRateLimiter allows rpm requests per minute per host with no burst beyond one.
// A non-positive rpm disables limiting.
func NewRateLimiter(rpm int) *RateLimiter {
	limit := rate.Inf
	if rpm > 0 {
		limit = rate.Every(time.Minute / time.Duration(rpm))
	}
	return &RateLimiter{
		limit:    limit,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) limiterFor(host string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if lim, ok := rl.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(rl.limit, 1)
	rl.limiters[host] = lim
	return lim
}

// Wait blocks until a request to host is allowed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context, host string) error {
	return rl.limiterFor(host).Wait(ctx)
}

// WaitURL is Wait keyed by the URL's host.
func (rl *RateLimiter) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return rl.Wait(ctx, "_")
	}
	return rl.Wait(ctx, u.Host)
}
