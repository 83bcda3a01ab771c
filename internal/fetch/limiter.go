package fetch

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-domain rate limiting for outbound fetches
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 3
	}
	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the domain of rawURL has rate-limit clearance
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return l.getLimiter(parsed.Host).Wait(ctx)
}

func (l *Limiter) getLimiter(domain string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[domain]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[domain] = limiter
	return limiter
}
