package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InitOTelMetrics registers an observable gauge reporting the cumulative
// totals kept in SQLite. A nil provider means the global one.
func InitOTelMetrics(mp metric.MeterProvider) (metric.Registration, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter("mcp-servers/metrics")

	calls, err := meter.Int64ObservableGauge(
		"mcpservers.invocations.total",
		metric.WithDescription("Cumulative tool invocations by integration and tool"),
		metric.WithUnit("{invocations}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: failed to create invocation gauge: %w", err)
	}
	failures, err := meter.Int64ObservableGauge(
		"mcpservers.invocation_errors.total",
		metric.WithDescription("Cumulative failed tool invocations by integration and tool"),
		metric.WithUnit("{invocations}"),
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: failed to create error gauge: %w", err)
	}

	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for _, total := range GetStats() {
			attrs := metric.WithAttributes(
				attribute.String("integration", total.Integration),
				attribute.String("tool", total.Tool),
			)
			o.ObserveInt64(calls, total.Calls, attrs)
			o.ObserveInt64(failures, total.Errors, attrs)
		}
		return nil
	}, calls, failures)
	if err != nil {
		return nil, fmt.Errorf("metrics: failed to register callback: %w", err)
	}
	return reg, nil
}
