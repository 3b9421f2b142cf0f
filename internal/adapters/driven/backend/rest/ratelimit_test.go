package rest

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Disabled(t *testing.T) {
	r := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, r.Wait(context.Background()))
	}
}

func TestRateLimiter_NilIsNoop(t *testing.T) {
	var r *RateLimiter
	assert.NoError(t, r.Wait(context.Background()))
	r.UpdateFromResponse(&http.Response{StatusCode: http.StatusTooManyRequests})
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	r := NewRateLimiter(0, 0)
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{}}
	resp.Header.Set(HeaderRetryAfter, "30")

	r.UpdateFromResponse(resp)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), r.RetryAfter(), 2*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimiter_IgnoresOtherStatuses(t *testing.T) {
	r := NewRateLimiter(0, 0)
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	resp.Header.Set(HeaderRetryAfter, "30")

	r.UpdateFromResponse(resp)
	assert.True(t, r.RetryAfter().IsZero())
}
