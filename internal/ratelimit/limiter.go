package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// API represents the different external APIs we interact with
type API string

const (
	// APIEntsoe represents the ENTSO-E transparency platform
	APIEntsoe API = "entsoe"
	// APIFingrid represents the Fingrid open data API
	APIFingrid API = "fingrid"
)

// Limiter enforces a minimum interval between successive requests to the
// same API. The first request of an API never waits.
type Limiter struct {
	limiters map[API]*rate.Limiter
	mu       sync.RWMutex
}

// New creates a limiter from per-API minimum intervals. APIs without a
// positive interval are not limited.
func New(intervals map[API]time.Duration) *Limiter {
	l := &Limiter{
		limiters: make(map[API]*rate.Limiter),
	}
	for api, interval := range intervals {
		l.SetInterval(api, interval)
	}
	return l
}

// MaxInterval is the longest interval FromSeconds returns.
const MaxInterval = 24 * time.Hour

// ErrInvalidInterval is returned by FromSeconds for NaN and infinite values.
var ErrInvalidInterval = errors.New("interval must be a finite number of seconds")

// FromSeconds converts a fractional seconds value into an interval.
// Negative values are treated as zero and values above MaxInterval are
// clamped to it.
func FromSeconds(seconds float64) (time.Duration, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInterval, seconds)
	}
	if seconds <= 0 {
		return 0, nil
	}
	if seconds >= MaxInterval.Seconds() {
		return MaxInterval, nil
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// SetInterval replaces the minimum interval for an API. A non-positive
// interval removes the limit.
func (l *Limiter) SetInterval(api API, interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if interval <= 0 {
		delete(l.limiters, api)
		return
	}
	// Burst 1: one immediate request, then one per interval.
	l.limiters[api] = rate.NewLimiter(rate.Every(interval), 1)
}

// Wait blocks until the rate limiter permits an event for the given API
// It returns an error if the context is canceled before the event can proceed
func (l *Limiter) Wait(ctx context.Context, api API) error {
	if l == nil {
		return ctx.Err()
	}

	l.mu.RLock()
	limiter, exists := l.limiters[api]
	l.mu.RUnlock()

	if !exists {
		// If no limiter exists for this API, allow the request without limiting
		return ctx.Err()
	}

	return limiter.Wait(ctx)
}
