package verify

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingCloser struct {
	closed atomic.Bool
}

func (r *recordingCloser) Close() error {
	r.closed.Store(true)
	return nil
}

func TestCloseOnCancel_ExitsWhenCheckFinishes(t *testing.T) {
	c := &recordingCloser{}
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		closeOnCancel(context.Background(), done, c)
		close(exited)
	}()

	// Closing done stands in for Check returning; the watcher must exit
	// rather than block on the context until process end.
	close(done)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("watcher goroutine did not exit after done closed")
	}
	assert.False(t, c.closed.Load())
}

func TestCloseOnCancel_ClosesOnCancel(t *testing.T) {
	c := &recordingCloser{}
	done := make(chan struct{})
	exited := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		closeOnCancel(ctx, done, c)
		close(exited)
	}()

	cancel()
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("watcher goroutine did not exit after cancel")
	}
	assert.True(t, c.closed.Load())
}
