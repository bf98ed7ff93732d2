package github

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func quotaResponse(headers map[string]string) *http.Response {
	resp := &http.Response{Header: http.Header{}}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestRateLimiter_DefaultQuota(t *testing.T) {
	r := NewRateLimiter()

	q := r.Quota()
	assert.Equal(t, DefaultQuota, q.Limit)
	assert.Equal(t, DefaultQuota, q.Remaining)
	assert.True(t, q.Reset.IsZero())
}

func TestRateLimiter_Observe(t *testing.T) {
	r := NewRateLimiterWithRate(rate.Inf, 0)

	r.Observe(quotaResponse(map[string]string{
		"X-RateLimit-Limit":     "60",
		"X-RateLimit-Remaining": "12",
		"X-RateLimit-Reset":     "1700000000",
	}))

	q := r.Quota()
	assert.Equal(t, 60, q.Limit)
	assert.Equal(t, 12, q.Remaining)
	assert.Equal(t, int64(1700000000), q.Reset.Unix())
}

func TestRateLimiter_Observe_KeepsPreviousOnBadHeaders(t *testing.T) {
	r := NewRateLimiterWithRate(rate.Inf, 0)
	r.Observe(quotaResponse(map[string]string{"X-RateLimit-Remaining": "42"}))

	r.Observe(quotaResponse(map[string]string{"X-RateLimit-Remaining": "lots"}))
	r.Observe(nil)

	assert.Equal(t, 42, r.Quota().Remaining)
}

func TestRateLimiter_Wait_AboveReserve(t *testing.T) {
	r := NewRateLimiterWithRate(rate.Inf, 10)
	r.Observe(quotaResponse(map[string]string{
		"X-RateLimit-Remaining": "11",
		"X-RateLimit-Reset":     "4102444800",
	}))

	require.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_Wait_ResetAlreadyPassed(t *testing.T) {
	r := NewRateLimiterWithRate(rate.Inf, 10)
	r.Observe(quotaResponse(map[string]string{
		"X-RateLimit-Remaining": "0",
		"X-RateLimit-Reset":     "1000000000",
	}))

	require.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_Wait_PausesUntilReset(t *testing.T) {
	r := NewRateLimiterWithRate(rate.Inf, 10)
	r.Observe(quotaResponse(map[string]string{
		"X-RateLimit-Remaining": "1",
		"X-RateLimit-Reset":     "1000000001",
	}))
	r.now = func() time.Time { return time.Unix(1000000001, 0).Add(-50 * time.Millisecond) }

	start := time.Now()
	require.NoError(t, r.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRateLimiter_Wait_CanceledDuringPause(t *testing.T) {
	r := NewRateLimiterWithRate(rate.Inf, 10)
	r.Observe(quotaResponse(map[string]string{
		"X-RateLimit-Remaining": "1",
		"X-RateLimit-Reset":     "4102444800",
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
