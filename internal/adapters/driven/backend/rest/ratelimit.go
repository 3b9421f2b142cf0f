package rest

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRatePerSecond is the proactive request rate.
	DefaultRatePerSecond = 10

	// DefaultBurst is the number of requests allowed at once.
	DefaultBurst = 5

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter throttles requests with a token bucket and honours
// Retry-After on 429 responses.
type RateLimiter struct {
	mu         sync.Mutex
	retryAfter time.Time
	bucket     *rate.Limiter
}

// NewRateLimiter creates a limiter. A non-positive rate disables the bucket.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	r := &RateLimiter{}
	if perSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		r.bucket = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return r
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}
	if r.bucket != nil {
		if err := r.bucket.Wait(ctx); err != nil {
			return err
		}
	}

	r.mu.Lock()
	until := r.retryAfter
	r.mu.Unlock()

	if wait := time.Until(until); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// UpdateFromResponse records a Retry-After deadline from a 429 response.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if r == nil || resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return
	}
	secs, err := strconv.Atoi(resp.Header.Get(HeaderRetryAfter))
	if err != nil || secs <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	until := time.Now().Add(time.Duration(secs) * time.Second)
	if until.After(r.retryAfter) {
		r.retryAfter = until
	}
}

// RetryAfter returns the time before which requests are held back.
func (r *RateLimiter) RetryAfter() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAfter
}
