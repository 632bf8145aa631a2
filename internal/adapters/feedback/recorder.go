package feedback

import (
	"context"
	"sync"

	"github.com/Amund211/blacksmith/internal/domain"
)

// Recorder keeps feedback until it is drained, dropping the oldest events beyond limit
type Recorder struct {
	mu     sync.Mutex
	events []domain.Feedback
	limit  int
}

func NewRecorder(limit int) *Recorder {
	return &Recorder{
		limit: limit,
	}
}

func (r *Recorder) Notify(ctx context.Context, event domain.Feedback) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = r.events[len(r.events)-r.limit:]
	}
}

// Drain returns the recorded events in order and forgets them
func (r *Recorder) Drain() []domain.Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.events
	r.events = nil
	if events == nil {
		return []domain.Feedback{}
	}
	return events
}
