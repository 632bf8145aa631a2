package app

import (
	"context"
	"fmt"

	"github.com/Amund211/blacksmith/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type appMetricsCollection struct {
	itemsCrafted    metric.Int64Counter
	itemQuality     metric.Int64Histogram
	goldAwarded     metric.Int64Counter
	daysClosed      metric.Int64Counter
	customersServed metric.Int64Histogram
	customerSource  metric.Int64Counter
}

var metrics appMetricsCollection

func init() {
	const name = "blacksmith/app"
	meter := otel.Meter(name)

	itemsCrafted, err := meter.Int64Counter(
		"app/items_crafted",
		metric.WithDescription("Number of items delivered to customers"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create items crafted metric: %w", err))
	}

	itemQuality, err := meter.Int64Histogram(
		"app/item_quality",
		metric.WithDescription("Quality of delivered items"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create item quality metric: %w", err))
	}

	goldAwarded, err := meter.Int64Counter(
		"app/gold_awarded",
		metric.WithDescription("Gold paid out for delivered items"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create gold awarded metric: %w", err))
	}

	daysClosed, err := meter.Int64Counter(
		"app/days_closed",
		metric.WithDescription("Number of finished days"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create days closed metric: %w", err))
	}

	customersServed, err := meter.Int64Histogram(
		"app/customers_served_per_day",
		metric.WithDescription("Customers served in a finished day"),
		metric.WithExplicitBucketBoundaries(3, 4, 5, 6, 7, 8, 9, 10),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create customers served metric: %w", err))
	}

	customerSource, err := meter.Int64Counter(
		"app/customer_source",
		metric.WithDescription("Which provider produced each customer"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create customer source metric: %w", err))
	}

	metrics = appMetricsCollection{
		itemsCrafted:    itemsCrafted,
		itemQuality:     itemQuality,
		goldAwarded:     goldAwarded,
		daysClosed:      daysClosed,
		customersServed: customersServed,
		customerSource:  customerSource,
	}
}

func recordItemCrafted(ctx context.Context, outcome domain.Outcome, isBoss bool) {
	attributes := metric.WithAttributes(
		attribute.String("item_type", string(outcome.Item.Type)),
		attribute.String("material", string(outcome.Item.Material)),
		attribute.Bool("boss", isBoss),
	)
	metrics.itemsCrafted.Add(ctx, 1, attributes)
	metrics.itemQuality.Record(ctx, int64(outcome.Item.Quality), attributes)
	metrics.goldAwarded.Add(ctx, int64(outcome.Item.Value), attributes)
}

func recordDayClosed(ctx context.Context, customersServed int) {
	metrics.daysClosed.Add(ctx, 1)
	metrics.customersServed.Record(ctx, int64(customersServed))
}

func recordCustomerSource(ctx context.Context, source string) {
	metrics.customerSource.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}
