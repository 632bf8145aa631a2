package feedback

import (
	"context"
	"log/slog"

	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/logging"
)

type logSink struct {
	level slog.Level
}

// NewLogSink logs every event with the logger from the context
func NewLogSink(level slog.Level) *logSink {
	return &logSink{level: level}
}

func (s *logSink) Notify(ctx context.Context, event domain.Feedback) {
	logging.FromContext(ctx).Log(ctx, s.level, "Feedback", slog.String("event", string(event)))
}
