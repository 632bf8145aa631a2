package app

import (
	"context"
	"slices"
	"time"
)

type scheduledEvent struct {
	at   time.Duration
	seq  uint64
	fire func(ctx context.Context)
}

// scheduler is a virtual-time queue of delayed events
//
// Events are ordered by due time, events due at the same time fire in the
// order they were scheduled.
type scheduler struct {
	events []scheduledEvent
	seq    uint64
}

func (s *scheduler) schedule(at time.Duration, fire func(ctx context.Context)) {
	s.seq++
	event := scheduledEvent{at: at, seq: s.seq, fire: fire}

	i, _ := slices.BinarySearchFunc(s.events, event, func(a, b scheduledEvent) int {
		if a.at != b.at {
			if a.at < b.at {
				return -1
			}
			return 1
		}
		if a.seq < b.seq {
			return -1
		}
		if a.seq > b.seq {
			return 1
		}
		return 0
	})
	s.events = slices.Insert(s.events, i, event)
}

func (s *scheduler) next() (time.Duration, bool) {
	if len(s.events) == 0 {
		return 0, false
	}
	return s.events[0].at, true
}

func (s *scheduler) popDue(now time.Duration) (scheduledEvent, bool) {
	if len(s.events) == 0 || s.events[0].at > now {
		return scheduledEvent{}, false
	}
	event := s.events[0]
	s.events = s.events[1:]
	return event, true
}

func (s *scheduler) pending() int {
	return len(s.events)
}
