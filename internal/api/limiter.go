package api

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter spaces out calls per backend host. A settings change that
// points the agent elsewhere gets a fresh bucket instead of inheriting the
// old host's debt. A nil *HostLimiter never waits.
type HostLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	every   rate.Limit
	burst   int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		buckets: make(map[string]*rate.Limiter),
		every:   rate.Limit(reqPerSec),
		burst:   burst,
	}
}

func (hl *HostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.buckets[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.every, hl.burst)
	hl.buckets[host] = lim
	return lim
}

// Wait blocks until a request to rawURL's host may go out or ctx ends.
func (hl *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if hl == nil {
		return nil
	}
	host := "_"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return hl.bucket(host).Wait(ctx)
}

// Hosts reports how many distinct hosts have a bucket.
func (hl *HostLimiter) Hosts() int {
	if hl == nil {
		return 0
	}
	hl.mu.Lock()
	defer hl.mu.Unlock()
	return len(hl.buckets)
}
