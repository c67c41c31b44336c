package github

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responseWithHeaders(limit, remaining, reset string) *http.Response {
	h := http.Header{}
	if limit != "" {
		h.Set(HeaderRateLimit, limit)
	}
	if remaining != "" {
		h.Set(HeaderRateRemaining, remaining)
	}
	if reset != "" {
		h.Set(HeaderRateReset, reset)
	}
	return &http.Response{Header: h}
}

func unixHeader(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

func TestRateLimiter_UpdateFromResponse(t *testing.T) {
	r := NewRateLimiter()
	reset := time.Now().Add(30 * time.Minute).Truncate(time.Second)

	r.UpdateFromResponse(responseWithHeaders("5000", "4321", unixHeader(reset)))
	assert.Equal(t, 5000, r.Limit())
	assert.Equal(t, 4321, r.Remaining())
	assert.True(t, r.ResetTime().Equal(reset))

	// Garbage values are ignored, state is kept.
	r.UpdateFromResponse(responseWithHeaders("oops", "oops", "not-a-number"))
	assert.Equal(t, 5000, r.Limit())
	assert.Equal(t, 4321, r.Remaining())
	assert.True(t, r.ResetTime().Equal(reset))
}

func TestRateLimiter_NilResponseIgnored(t *testing.T) {
	r := NewRateLimiter()
	r.UpdateFromResponse(nil)
	assert.Equal(t, GitHubRateLimit, r.Remaining())
}

func TestRateLimiter_WaitsForResetWhenCritical(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	reset := now.Add(5 * time.Second)

	r := NewRateLimiter()
	r.now = func() time.Time { return now }

	var slept time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	r.UpdateFromResponse(responseWithHeaders("5000", "2", unixHeader(reset)))

	require.NoError(t, r.Wait(context.Background()))
	assert.Equal(t, 5*time.Second+resetSlack, slept)
}

func TestRateLimiter_WarnBandDoesNotBlock(t *testing.T) {
	r := NewRateLimiter()
	r.sleep = func(context.Context, time.Duration) error {
		t.Error("must not sleep above the critical threshold")
		return nil
	}

	r.UpdateFromResponse(responseWithHeaders("5000", "5", unixHeader(time.Now().Add(time.Hour))))
	require.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_PastResetSkipsWait(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	r := NewRateLimiter()
	r.now = func() time.Time { return now }
	r.sleep = func(context.Context, time.Duration) error {
		t.Error("must not sleep once the window has already reset")
		return nil
	}

	r.UpdateFromResponse(responseWithHeaders("5000", "0", unixHeader(now.Add(-time.Minute))))
	require.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_WaitHonoursCancelledContext(t *testing.T) {
	r := NewRateLimiter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, r.Wait(ctx), context.Canceled)
}
