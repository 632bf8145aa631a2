package feedback

import (
	"context"
	"fmt"

	"github.com/Amund211/blacksmith/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metricsSink struct {
	eventCount metric.Int64Counter
}

// NewMetricsSink counts events by type
func NewMetricsSink() (*metricsSink, error) {
	meter := otel.Meter("blacksmith/feedback")

	eventCount, err := meter.Int64Counter(
		"feedback/event_count",
		metric.WithDescription("Number of feedback events emitted by games"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create event count metric: %w", err)
	}

	return &metricsSink{eventCount: eventCount}, nil
}

func (s *metricsSink) Notify(ctx context.Context, event domain.Feedback) {
	s.eventCount.Add(ctx, 1, metric.WithAttributes(attribute.String("event", string(event))))
}
