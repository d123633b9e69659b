package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() Options {
	return Options{Logger: slog.New(slog.DiscardHandler)}
}

func TestParseSpec(t *testing.T) {
	for _, ok := range []string{"0 */5 * * * *", "*/10 * * * * *", "@every 1m", "@hourly", "0 0 22 * * 1-5"} {
		assert.NoError(t, ParseSpec(ok), ok)
	}
	for _, bad := range []string{"", "*/5 * * * *", "every minute", "61 * * * * *"} {
		assert.Error(t, ParseSpec(bad), bad)
	}
}

func TestAddAndRunNow(t *testing.T) {
	s := New(context.Background(), quiet())

	var n atomic.Int32
	require.NoError(t, s.Add("analyze", "@every 1h", func(ctx context.Context) error {
		n.Add(1)
		return nil
	}))
	require.NoError(t, s.Add("broken", "@every 1h", func(ctx context.Context) error {
		return errors.New("boom")
	}))

	assert.Error(t, s.Add("analyze", "@every 1h", nil))
	assert.Error(t, s.Add("bad", "not a spec", nil))

	require.NoError(t, s.RunNow("analyze"))
	assert.EqualError(t, s.RunNow("broken"), "boom")
	assert.Error(t, s.RunNow("missing"))

	assert.EqualValues(t, 1, n.Load())
	runs, fails := s.Runs("analyze")
	assert.Equal(t, 1, runs)
	assert.Zero(t, fails)
	runs, fails = s.Runs("broken")
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, fails)

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "analyze", entries[0].Name)
	assert.Equal(t, "@every 1h", entries[0].Spec)
}

func TestScheduledRun(t *testing.T) {
	s := New(context.Background(), quiet())

	var n atomic.Int32
	require.NoError(t, s.Add("tick", "* * * * * *", func(ctx context.Context) error {
		n.Add(1)
		return nil
	}))

	s.Start()
	require.Eventually(t, func() bool { return n.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()

	assert.False(t, s.Entries()[0].Next.IsZero())
}

func TestCancelledContextSkipsJobs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, quiet())

	called := false
	require.NoError(t, s.Add("job", "@every 1h", func(ctx context.Context) error {
		called = true
		return nil
	}))
	cancel()

	assert.ErrorIs(t, s.RunNow("job"), context.Canceled)
	assert.False(t, called)
}
