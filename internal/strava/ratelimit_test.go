package strava

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newFakeLimiter(l Limits, now *time.Time) *RateLimiter {
	r := NewRateLimiter(l)
	r.now = func() time.Time { return *now }
	r.shortResetsAt, r.dailyResetsAt = time.Time{}, time.Time{}
	r.resetWindows(*now)
	return r
}

func TestRateLimiterDelay(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	r := newFakeLimiter(Limits{Short: 2, Daily: 3, MinInterval: time.Second}, &now)

	assert.NoError(t, r.Wait(context.Background()))
	assert.Equal(t, time.Second, r.delay(now), "min interval applies")

	now = now.Add(time.Second)
	assert.NoError(t, r.Wait(context.Background()))
	assert.Equal(t, 15*time.Minute-time.Second, r.delay(now), "short window is spent")

	now = now.Add(15 * time.Minute)
	assert.Zero(t, r.delay(now), "short window reset")
	assert.NoError(t, r.Wait(context.Background()))

	// Daily budget of 3 is now spent until midnight UTC
	now = now.Add(time.Minute)
	assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC).Sub(now), r.delay(now))
}

func TestRateLimiterWaitCanceled(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	r := newFakeLimiter(Limits{Short: 0, Daily: 10}, &now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.Canceled)
}

func TestUpdateFromHeaders(t *testing.T) {
	r := NewRateLimiter(DefaultLimits)
	h := http.Header{}
	h.Set("X-RateLimit-Limit", "200, 2000")
	h.Set("X-RateLimit-Usage", "50,garbage")
	r.UpdateFromHeaders(h)

	short, daily := r.Status()
	assert.Equal(t, 200, short, "bad usage header is ignored")
	assert.Equal(t, 2000, daily)
}
