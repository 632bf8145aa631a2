package ratelimiting

import (
	"context"
	"slices"
	"sync"
	"time"
)

// windowLimiter lets at most limit operations finish within any window
//
// finished holds the finish times of the last limit operations in ascending
// order. A caller takes a slot, claims the oldest finish time, waits until it
// has left the window, runs the operation and records the current time.
type windowLimiter struct {
	window    time.Duration
	nowFunc   func() time.Time
	afterFunc func(time.Duration) <-chan time.Time

	slots chan struct{}

	lock     sync.Mutex
	finished []time.Time
}

func NewWindowLimiter(
	limit int,
	window time.Duration,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) *windowLimiter {
	longAgo := nowFunc().Add(-window)
	finished := make([]time.Time, 0, limit)
	for range limit {
		finished = append(finished, longAgo)
	}

	return &windowLimiter{
		window:    window,
		nowFunc:   nowFunc,
		afterFunc: afterFunc,
		slots:     make(chan struct{}, limit),
		finished:  finished,
	}
}

func (l *windowLimiter) claimOldest() time.Time {
	l.lock.Lock()
	defer l.lock.Unlock()

	oldest := l.finished[0]
	l.finished = l.finished[1:]
	return oldest
}

func (l *windowLimiter) record(finishedAt time.Time) {
	l.lock.Lock()
	defer l.lock.Unlock()

	index, _ := slices.BinarySearchFunc(l.finished, finishedAt, time.Time.Compare)
	l.finished = slices.Insert(l.finished, index, finishedAt)
}

// Limit runs operation once the oldest finish time has left the window
//
// Returns false without running the operation if ctx is done first, or if the
// wait plus maxOperationTime would pass the deadline of ctx.
func (l *windowLimiter) Limit(ctx context.Context, maxOperationTime time.Duration, operation func()) bool {
	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	defer func() {
		<-l.slots
	}()

	oldest := l.claimOldest()

	// An unused finish time goes back unchanged
	release := oldest
	defer func() {
		l.record(release)
	}()

	wait := l.window - l.nowFunc().Sub(oldest)

	if deadline, ok := ctx.Deadline(); ok {
		if max(wait, 0)+maxOperationTime > deadline.Sub(l.nowFunc()) {
			return false
		}
	}

	if wait > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-l.afterFunc(wait):
		}
	}

	operation()

	release = l.nowFunc()
	return true
}
