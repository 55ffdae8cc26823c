package webutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter_PerHost(t *testing.T) {
	// 1 req/s with burst 1: the first request per host is free, a second
	// to the same host has to wait, a different host does not.
	hl := NewHostLimiter(1, 1)

	ctx := context.Background()
	require.NoError(t, hl.WaitURL(ctx, "https://a.example.com/x"))

	start := time.Now()
	require.NoError(t, hl.WaitURL(ctx, "https://b.example.com/y"))
	assert.Less(t, time.Since(start), 200*time.Millisecond)

	ctx2, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := hl.WaitURL(ctx2, "https://a.example.com/z")
	assert.Error(t, err)
}

func TestHostLimiter_BadURLStillLimited(t *testing.T) {
	hl := NewHostLimiter(100, 1)
	assert.NoError(t, hl.WaitURL(context.Background(), "::not a url::"))
}

func TestNewClient(t *testing.T) {
	c := NewClient(0)
	assert.Equal(t, 30*time.Second, c.Timeout)

	c = NewClient(5 * time.Second)
	assert.Equal(t, 5*time.Second, c.Timeout)
}
