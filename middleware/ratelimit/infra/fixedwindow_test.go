package infra

import (
	"testing"
	"time"

	"endpoint-gateway/middleware/ratelimit/domain"

	"github.com/stretchr/testify/require"
)

func TestFixedWindow_WindowBoundary(t *testing.T) {
	c := &FixedWindowCounter{}
	p := domain.DefaultPolicy(domain.ByEndpointOnly)
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.True(t, c.Take(t0, p).Allowed)

	dec := c.Take(t0.Add(4900*time.Millisecond), p)
	require.False(t, dec.Allowed)
	require.Equal(t, 100*time.Millisecond, dec.RetryAfter)

	require.True(t, c.Take(t0.Add(5100*time.Millisecond), p).Allowed)
}

func TestFixedWindow_ResetsExactlyAtRollover(t *testing.T) {
	c := &FixedWindowCounter{}
	p := domain.DefaultPolicy(domain.ByEndpointOnly)
	p.MaxRequests = 3
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.True(t, c.Take(t0.Add(time.Duration(i)*time.Second), p).Allowed)
	}
	require.False(t, c.Take(t0.Add(5*time.Second-time.Nanosecond), p).Allowed)

	require.True(t, c.Take(t0.Add(5*time.Second), p).Allowed)
	require.Equal(t, 1, c.Count())
}

func TestFixedWindow_RejectDoesNotConsume(t *testing.T) {
	c := &FixedWindowCounter{}
	p := domain.DefaultPolicy(domain.ByEndpointOnly)
	p.MaxRequests = 2
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	c.Take(t0, p)
	c.Take(t0, p)
	for i := 0; i < 5; i++ {
		require.False(t, c.Take(t0.Add(time.Second), p).Allowed)
	}
	require.Equal(t, 2, c.Count())
}

func TestFixedWindow_IdleSinceIsWindowEnd(t *testing.T) {
	c := &FixedWindowCounter{}
	p := domain.DefaultPolicy(domain.ByEndpointOnly)
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	c.Take(t0, p)
	require.Equal(t, t0.Add(5*time.Second), c.IdleSince())
}

func TestNewCounter_SelectsByAlgorithm(t *testing.T) {
	p := domain.DefaultPolicy(domain.ByEndpointOnly)
	require.IsType(t, &FixedWindowCounter{}, NewCounter(p))

	p.Algorithm = domain.TokenBucket
	require.IsType(t, &TokenBucketCounter{}, NewCounter(p))

	p.Algorithm = ""
	require.IsType(t, &FixedWindowCounter{}, NewCounter(p))
}
