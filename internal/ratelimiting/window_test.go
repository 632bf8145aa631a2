package ratelimiting_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Amund211/blacksmith/internal/ratelimiting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedWaits struct {
	t     *testing.T
	fire  bool
	waits []time.Duration
	lock  sync.Mutex
}

func (r *recordedWaits) After(d time.Duration) <-chan time.Time {
	r.t.Helper()

	r.lock.Lock()
	defer r.lock.Unlock()

	r.waits = append(r.waits, d)

	ch := make(chan time.Time, 1)
	if r.fire {
		ch <- time.Time{}
	}
	return ch
}

func (r *recordedWaits) Waits() []time.Duration {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]time.Duration{}, r.waits...)
}

func TestWindowLimiter(t *testing.T) {
	t.Parallel()

	start := time.Now()
	nowFunc := func() time.Time {
		return start
	}

	t.Run("operations under the limit run immediately", func(t *testing.T) {
		t.Parallel()

		after := &recordedWaits{t: t, fire: true}
		limiter := ratelimiting.NewWindowLimiter(2, time.Minute, nowFunc, after.After)

		for range 2 {
			called := false
			ran := limiter.Limit(t.Context(), time.Second, func() {
				called = true
			})
			require.True(t, ran)
			require.True(t, called)
		}

		require.Empty(t, after.Waits())
	})

	t.Run("operations over the limit wait for the window", func(t *testing.T) {
		t.Parallel()

		after := &recordedWaits{t: t, fire: true}
		limiter := ratelimiting.NewWindowLimiter(1, time.Minute, nowFunc, after.After)

		require.True(t, limiter.Limit(t.Context(), time.Second, func() {}))

		called := false
		ran := limiter.Limit(t.Context(), time.Second, func() {
			called = true
		})
		require.True(t, ran)
		require.True(t, called)

		require.Equal(t, []time.Duration{time.Minute}, after.Waits())
	})

	t.Run("operations that would pass the deadline are skipped", func(t *testing.T) {
		t.Parallel()

		after := &recordedWaits{t: t, fire: true}
		limiter := ratelimiting.NewWindowLimiter(1, time.Minute, nowFunc, after.After)

		require.True(t, limiter.Limit(t.Context(), time.Second, func() {}))

		ctx, cancel := context.WithDeadline(t.Context(), start.Add(30*time.Second))
		defer cancel()

		ran := limiter.Limit(ctx, time.Second, func() {
			require.Fail(t, "operation should not run")
		})
		require.False(t, ran)
		require.Empty(t, after.Waits())

		// The slot is handed back unchanged
		require.True(t, limiter.Limit(t.Context(), time.Second, func() {}))
		require.Equal(t, []time.Duration{time.Minute}, after.Waits())
	})

	t.Run("skipped operations keep the oldest finish time first in line", func(t *testing.T) {
		t.Parallel()

		clock := start
		after := &recordedWaits{t: t, fire: true}
		limiter := ratelimiting.NewWindowLimiter(2, time.Minute, func() time.Time {
			return clock
		}, after.After)

		require.True(t, limiter.Limit(t.Context(), time.Second, func() {}))

		clock = start.Add(30 * time.Second)
		require.True(t, limiter.Limit(t.Context(), time.Second, func() {}))
		require.Empty(t, after.Waits())

		// The first operation leaves the window in 20s, too late for this deadline
		clock = start.Add(40 * time.Second)
		ctx, cancel := context.WithDeadline(t.Context(), clock.Add(10*time.Second))
		defer cancel()

		ran := limiter.Limit(ctx, time.Second, func() {
			require.Fail(t, "operation should not run")
		})
		require.False(t, ran)
		require.Empty(t, after.Waits())

		require.True(t, limiter.Limit(t.Context(), time.Second, func() {}))
		require.Equal(t, []time.Duration{20 * time.Second}, after.Waits())
	})

	t.Run("fresh slots respect the deadline as well", func(t *testing.T) {
		t.Parallel()

		limiter := ratelimiting.NewWindowLimiter(1, time.Minute, nowFunc, time.After)

		ctx, cancel := context.WithDeadline(t.Context(), start.Add(time.Second))
		defer cancel()

		ran := limiter.Limit(ctx, 2*time.Second, func() {})
		require.False(t, ran)
	})

	t.Run("cancelled while waiting for a slot", func(t *testing.T) {
		t.Parallel()

		limiter := ratelimiting.NewWindowLimiter(1, time.Minute, nowFunc, time.After)

		holding := make(chan struct{})
		release := make(chan struct{})
		done := make(chan bool)
		go func() {
			done <- limiter.Limit(context.Background(), time.Second, func() {
				close(holding)
				<-release
			})
		}()
		<-holding

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		ran := limiter.Limit(ctx, time.Second, func() {})
		require.False(t, ran)

		close(release)
		require.True(t, <-done)
	})

	t.Run("cancelled while waiting for the window", func(t *testing.T) {
		t.Parallel()

		after := &recordedWaits{t: t, fire: false}
		limiter := ratelimiting.NewWindowLimiter(1, time.Minute, nowFunc, after.After)

		require.True(t, limiter.Limit(t.Context(), time.Second, func() {}))

		ctx, cancel := context.WithCancel(t.Context())
		go func() {
			for len(after.Waits()) == 0 {
				time.Sleep(time.Millisecond)
			}
			cancel()
		}()

		called := false
		ran := limiter.Limit(ctx, time.Second, func() {
			called = true
		})
		require.False(t, ran)
		require.False(t, called)
	})

	t.Run("concurrent operations", func(t *testing.T) {
		t.Parallel()

		after := &recordedWaits{t: t, fire: true}
		limiter := ratelimiting.NewWindowLimiter(3, time.Minute, nowFunc, after.After)

		var ran atomic.Int64
		var inFlight atomic.Int64
		wg := sync.WaitGroup{}
		for range 10 {
			wg.Go(func() {
				ok := limiter.Limit(t.Context(), time.Second, func() {
					assert.LessOrEqual(t, inFlight.Add(1), int64(3))
					inFlight.Add(-1)
					ran.Add(1)
				})
				assert.True(t, ok)
			})
		}
		wg.Wait()

		require.Equal(t, int64(10), ran.Load())
		require.Len(t, after.Waits(), 7)
	})
}
