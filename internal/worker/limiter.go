package worker

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Throttle is what remote adapters wait on before each call
type Throttle interface {
	Wait(ctx context.Context, key string) error
}

// Limiter rate limits each remote collaborator independently. Keys are
// collaborator names or endpoint URLs; URLs are reduced to their host so
// two adapters talking to the same service share a budget.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter. A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until key may make another call
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(collaborator(key)).Wait(ctx)
}

// Allow reports whether key may call now without waiting
func (l *Limiter) Allow(key string) bool {
	return l.get(collaborator(key)).Allow()
}

// SetRate overrides the limit for one collaborator
func (l *Limiter) SetRate(key string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[collaborator(key)] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[key] = limiter

	return limiter
}

func collaborator(key string) string {
	parsed, err := url.Parse(key)
	if err != nil || parsed.Host == "" {
		return key
	}
	return parsed.Host
}

// NoThrottle never waits
type NoThrottle struct{}

// Wait implements Throttle
func (NoThrottle) Wait(ctx context.Context, _ string) error {
	return ctx.Err()
}
