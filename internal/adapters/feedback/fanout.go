package feedback

import (
	"context"

	"github.com/Amund211/blacksmith/internal/domain"
)

type Sink interface {
	Notify(ctx context.Context, event domain.Feedback)
}

type fanout struct {
	sinks []Sink
}

// NewFanout notifies every sink in order
func NewFanout(sinks ...Sink) *fanout {
	return &fanout{sinks: sinks}
}

func (f *fanout) Notify(ctx context.Context, event domain.Feedback) {
	for _, sink := range f.sinks {
		sink.Notify(ctx, event)
	}
}
