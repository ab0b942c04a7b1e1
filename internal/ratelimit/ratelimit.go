package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/amishk599/coldreach/internal/model"
)

// HostRateLimiter enforces a minimum delay between requests to the same host.
type HostRateLimiter struct {
	mu       sync.Mutex
	next     map[string]time.Time // key: lowercased host, value: earliest allowed start
	minDelay time.Duration
}

// NewHostRateLimiter creates a rate limiter that spaces consecutive requests
// to one host at least minDelay apart. A zero delay disables limiting.
func NewHostRateLimiter(minDelay time.Duration) *HostRateLimiter {
	return &HostRateLimiter{
		next:     make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until the host's slot comes up.
// Each caller reserves its slot under the lock, so concurrent waiters for the
// same host are released minDelay apart rather than all at once.
func (r *HostRateLimiter) Wait(ctx context.Context, host string) error {
	if r.minDelay <= 0 {
		return nil
	}
	host = strings.ToLower(host)

	r.mu.Lock()
	now := time.Now()
	slot, ok := r.next[host]
	if !ok || slot.Before(now) {
		slot = now
	}
	r.next[host] = slot.Add(r.minDelay)
	r.mu.Unlock()

	remaining := time.Until(slot)
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", host, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// Ensure RateLimitedFetcher implements model.PageFetcher.
var _ model.PageFetcher = (*RateLimitedFetcher)(nil)

// RateLimitedFetcher is a decorator that waits on the limiter for the target
// URL's host before delegating to the wrapped PageFetcher.
type RateLimitedFetcher struct {
	inner   model.PageFetcher
	limiter *HostRateLimiter
}

// NewRateLimitedFetcher wraps a PageFetcher with host-level rate limiting.
func NewRateLimitedFetcher(inner model.PageFetcher, limiter *HostRateLimiter) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: limiter,
	}
}

// Fetch waits for the URL's host slot, then delegates to the wrapped fetcher.
// Unparseable URLs skip the limiter and are left for the inner fetcher to reject.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, rawURL string) (model.Page, error) {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		if err := f.limiter.Wait(ctx, u.Host); err != nil {
			return model.Page{}, err
		}
	}
	return f.inner.Fetch(ctx, rawURL)
}
