package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/repodoc-cli/internal/logger"
)

const (
	// DefaultQuota is the hourly request quota of an authenticated token.
	DefaultQuota = 5000

	// DefaultRate keeps listing at roughly 1.2 requests per second.
	DefaultRate = 1.2

	// DefaultReserve is the remaining quota below which requests pause until reset.
	DefaultReserve = 100
)

// Rate limit response headers.
const (
	headerLimit     = "X-RateLimit-Limit"
	headerRemaining = "X-RateLimit-Remaining"
	headerReset     = "X-RateLimit-Reset"
)

// Quota is the rate limit state last reported by GitHub.
type Quota struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// RateLimiter paces listing requests. A token bucket keeps the steady rate
// below the hourly quota, and the quota headers of each response pause
// requests once fewer than the reserve remain.
type RateLimiter struct {
	mu      sync.Mutex
	quota   Quota
	reserve int
	bucket  *rate.Limiter
	now     func() time.Time
}

// NewRateLimiter creates a limiter with the default rate and reserve.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithRate(rate.Limit(DefaultRate), DefaultReserve)
}

// NewRateLimiterWithRate creates a limiter allowing perSecond requests per
// second. rate.Inf disables pacing.
func NewRateLimiterWithRate(perSecond rate.Limit, reserve int) *RateLimiter {
	return &RateLimiter{
		quota:   Quota{Limit: DefaultQuota, Remaining: DefaultQuota},
		reserve: reserve,
		bucket:  rate.NewLimiter(perSecond, 1),
		now:     time.Now,
	}
}

// Wait blocks until the next request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	q := r.Quota()
	if q.Remaining >= r.reserve {
		return nil
	}
	pause := q.Reset.Sub(r.now())
	if pause <= 0 {
		return nil
	}

	logger.Warn("GitHub rate limit nearly exhausted (%d of %d left), waiting %s",
		q.Remaining, q.Limit, pause.Round(time.Second))
	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Observe records the quota headers of a response. Missing or malformed
// headers leave the previous value in place.
func (r *RateLimiter) Observe(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := intHeader(resp, headerLimit); ok {
		r.quota.Limit = int(v)
	}
	if v, ok := intHeader(resp, headerRemaining); ok {
		r.quota.Remaining = int(v)
	}
	if v, ok := intHeader(resp, headerReset); ok {
		r.quota.Reset = time.Unix(v, 0)
	}
}

// Quota returns the last observed quota.
func (r *RateLimiter) Quota() Quota {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quota
}

func intHeader(resp *http.Response, name string) (int64, bool) {
	raw := resp.Header.Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
