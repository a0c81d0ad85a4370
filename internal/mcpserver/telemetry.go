package mcpserver

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Zentre-Ai/mcp-servers/internal/logger"
)

var tracer = otel.Tracer("mcp-servers/mcpserver")

type toolMetrics struct {
	requests metric.Int64Counter
	errors   metric.Int64Counter
	latency  metric.Float64Histogram
}

func newToolMetrics(mp metric.MeterProvider) *toolMetrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter("mcp-servers/mcpserver")
	log := logger.Named("mcpserver")
	m := &toolMetrics{}

	var err error
	m.requests, err = meter.Int64Counter(
		"mcpservers.tool.requests.total",
		metric.WithDescription("Total MCP tool calls"),
	)
	if err != nil {
		log.Warnw("failed to create tool request counter", "error", err)
	}
	m.errors, err = meter.Int64Counter(
		"mcpservers.tool.errors.total",
		metric.WithDescription("Total failed MCP tool calls"),
	)
	if err != nil {
		log.Warnw("failed to create tool error counter", "error", err)
	}
	m.latency, err = meter.Float64Histogram(
		"mcpservers.tool.response_time",
		metric.WithDescription("MCP tool response time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		log.Warnw("failed to create tool latency histogram", "error", err)
	}
	return m
}

func (m *toolMetrics) record(ctx context.Context, attrs []attribute.KeyValue, duration time.Duration, errType string) {
	opt := metric.WithAttributes(attrs...)
	if m.requests != nil {
		m.requests.Add(ctx, 1, opt)
	}
	if m.latency != nil {
		m.latency.Record(ctx, float64(duration.Microseconds())/1000, opt)
	}
	if errType != "" && m.errors != nil {
		errAttrs := append(append([]attribute.KeyValue{}, attrs...), attribute.String("error.type", errType))
		m.errors.Add(ctx, 1, metric.WithAttributes(errAttrs...))
	}
}
