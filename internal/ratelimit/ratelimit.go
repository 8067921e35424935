// Package ratelimit provides venue request limiters on golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a per-minute budget.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerMinute with a burst of 10% of it.
// A non-positive budget never blocks.
func New(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}

	rps := float64(requestsPerMinute) / 60.0
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// NewWithBurst creates a limiter with an explicit rate and burst.
func NewWithBurst(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a token is available or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may happen now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Tokens returns the number of available tokens.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}

// SetLimit updates the per-minute budget.
func (l *Limiter) SetLimit(requestsPerMinute int) {
	if requestsPerMinute <= 0 {
		l.limiter.SetLimit(rate.Inf)
		return
	}
	l.limiter.SetLimit(rate.Limit(float64(requestsPerMinute) / 60.0))
}

// Set holds one limiter per key, e.g. per venue.
type Set struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
	fallback int
}

// NewSet creates limiters for budgets. Unknown keys get a limiter built
// from fallbackPerMinute on first use.
func NewSet(budgets map[string]int, fallbackPerMinute int) *Set {
	s := &Set{
		limiters: make(map[string]*Limiter, len(budgets)),
		fallback: fallbackPerMinute,
	}
	for key, rpm := range budgets {
		s.limiters[key] = New(rpm)
	}
	return s
}

// Get returns the limiter for key.
func (s *Set) Get(key string) *Limiter {
	s.mu.RLock()
	l, ok := s.limiters[key]
	s.mu.RUnlock()
	if ok {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.limiters[key]; ok {
		return l
	}
	l = New(s.fallback)
	s.limiters[key] = l
	return l
}

// Wait blocks on key's limiter.
func (s *Set) Wait(ctx context.Context, key string) error {
	if err := s.Get(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", key, err)
	}
	return nil
}
