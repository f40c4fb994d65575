package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per key. Review calls are keyed by
// provider name and remote dialogue fetches by host, so a batch never
// floods a single upstream.
type Limiter struct {
	buckets sync.Map // key -> *rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewLimiter creates a limiter whose buckets refill at requestsPerSecond.
// A non-positive rate means unlimited.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	return &Limiter{limit: limit, burst: burst}
}

// Wait blocks until a call for key is allowed or ctx is done
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.bucket(key).Wait(ctx)
}

// Allow reports whether a call for key may go ahead now, consuming a token
// if so
func (l *Limiter) Allow(key string) bool {
	return l.bucket(key).Allow()
}

// SetRate overrides the budget for one key. A non-positive burst keeps the
// default.
func (l *Limiter) SetRate(key string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	l.buckets.Store(key, rate.NewLimiter(rate.Limit(requestsPerSecond), burst))
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	if b, ok := l.buckets.Load(key); ok {
		return b.(*rate.Limiter)
	}
	b, _ := l.buckets.LoadOrStore(key, rate.NewLimiter(l.limit, l.burst))
	return b.(*rate.Limiter)
}
