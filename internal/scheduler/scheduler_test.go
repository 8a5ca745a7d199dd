package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(nil)
	err := s.Add(context.Background(), "every tuesday", "bad", func(context.Context) error { return nil })
	assert.Error(t, err)
	require.NoError(t, s.Add(context.Background(), "*/5 * * * *", "ok", func(context.Context) error { return nil }))
	require.NoError(t, s.Add(context.Background(), "@every 30m", "ok", func(context.Context) error { return nil }))
}

func TestEveryRunsImmediatelyAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Every(ctx, time.Hour, "tick", func(context.Context) error {
			n.Add(1)
			return nil
		}, nil)
	}()

	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestRunFiresCronTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(nil)
	var n atomic.Int32
	require.NoError(t, s.Add(ctx, "@every 1s", "fast", func(context.Context) error {
		n.Add(1)
		return nil
	}))

	go s.Run(ctx)
	require.Eventually(t, func() bool { return n.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	assert.False(t, s.Next().IsZero())
	cancel()
}
