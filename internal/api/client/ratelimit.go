package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/donaldgifford/catalog-browser/internal/metrics"
)

// ErrBudgetExhausted is returned when the per-window call budget is used up.
var ErrBudgetExhausted = errors.New("backend call budget exhausted")

// RateLimiter throttles backend calls with a token bucket and an optional
// call budget per rolling window. The window restarts on the first call
// after it expires.
type RateLimiter struct {
	limiter *rate.Limiter
	budget  int64
	window  time.Duration
	nowFunc func() time.Time

	mu      sync.Mutex
	used    int64
	resetAt time.Time
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithRateLimiterNowFunc overrides the time function for testing.
func WithRateLimiterNowFunc(f func() time.Time) RateLimiterOption {
	return func(r *RateLimiter) {
		r.nowFunc = f
	}
}

// WithBudget caps the number of calls per window. A budget of zero or less
// disables the cap.
func WithBudget(calls int64, window time.Duration) RateLimiterOption {
	return func(r *RateLimiter) {
		r.budget = calls
		r.window = window
	}
}

// NewRateLimiter creates a rate limiter with the given per-second rate and
// burst size.
func NewRateLimiter(perSecond float64, burst int, opts ...RateLimiterOption) *RateLimiter {
	r := &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.resetAt = r.nowFunc().Add(r.window)
	return r
}

// Wait blocks until the limiter allows the call or ctx is done. It returns
// ErrBudgetExhausted without waiting when the window budget is spent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.take(); err != nil {
		return err
	}

	if r.limiter.Allow() {
		return nil
	}
	metrics.RateLimitWaitsTotal.Inc()
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// Used returns the number of calls counted in the current window.
func (r *RateLimiter) Used() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.used
}

// Remaining returns the calls left in the current window, or -1 when no
// budget is configured.
func (r *RateLimiter) Remaining() int64 {
	if r.budget <= 0 {
		return -1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return max(r.budget-r.used, 0)
}

// ResetAt returns when the current window expires.
func (r *RateLimiter) ResetAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetAt
}

func (r *RateLimiter) take() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.budget <= 0 {
		r.used++
		return nil
	}

	now := r.nowFunc()
	if now.After(r.resetAt) {
		r.used = 0
		r.resetAt = now.Add(r.window)
	}
	if r.used >= r.budget {
		metrics.RateLimitBudgetHits.Inc()
		return fmt.Errorf("%w (%d/%d, resets at %s)",
			ErrBudgetExhausted, r.used, r.budget, r.resetAt.Format(time.RFC3339))
	}
	r.used++
	return nil
}
