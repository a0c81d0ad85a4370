package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestOTelGaugeReportsTotals(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	store := newTestStore(t)
	SetStoreForTesting(store)

	for i := 0; i < 3; i++ {
		_ = store.Record("github", "get_repository", false)
	}
	_ = store.Record("stripe", "create_refund", true)

	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	reg, err := InitOTelMetrics(provider)
	if err != nil {
		t.Fatalf("InitOTelMetrics failed: %v", err)
	}
	defer reg.Unregister()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}

	got := map[string]map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			if !ok {
				continue
			}
			for _, dp := range gauge.DataPoints {
				integration, _ := dp.Attributes.Value(attribute.Key("integration"))
				if got[m.Name] == nil {
					got[m.Name] = map[string]int64{}
				}
				got[m.Name][integration.AsString()] += dp.Value
			}
		}
	}

	if got["mcpservers.invocations.total"]["github"] != 3 {
		t.Errorf("github calls = %d, want 3", got["mcpservers.invocations.total"]["github"])
	}
	if got["mcpservers.invocations.total"]["stripe"] != 1 {
		t.Errorf("stripe calls = %d, want 1", got["mcpservers.invocations.total"]["stripe"])
	}
	if got["mcpservers.invocation_errors.total"]["stripe"] != 1 {
		t.Errorf("stripe errors = %d, want 1", got["mcpservers.invocation_errors.total"]["stripe"])
	}
}
