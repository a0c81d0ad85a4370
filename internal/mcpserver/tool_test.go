package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Zentre-Ai/mcp-servers/internal/metrics"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

func inMemory(t *testing.T, opts ServerOptions) *mcp.ClientSession {
	t.Helper()
	session, err := InMemorySession(context.Background(), newEchoIntegration(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestStaticCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("ECHO_TOKEN", "env-token")
	session := inMemory(t, ServerOptions{StaticCredentials: true})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "whoami"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "env-token", resultText(t, res))
}

func TestEnvironmentIgnoredWithoutStaticCredentials(t *testing.T) {
	t.Setenv("ECHO_TOKEN", "env-token")
	session := inMemory(t, ServerOptions{})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "whoami"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "no credentials available for echo")
	assert.Contains(t, text, "x-echo-token")
	assert.NotContains(t, text, "env-token")
}

func TestMissingStaticCredentialsIsToolError(t *testing.T) {
	t.Setenv("ECHO_TOKEN", "")
	session := inMemory(t, ServerOptions{StaticCredentials: true})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "whoami"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "no credentials available")
}

func TestVendorFailureBecomesErrorResult(t *testing.T) {
	t.Setenv("ECHO_TOKEN", "tok")
	session := inMemory(t, ServerOptions{StaticCredentials: true})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "fail",
		Arguments: map[string]any{"status": 404},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: echo API error (404 Not Found) on GET /thing: nope", resultText(t, res))
}

func TestListToolsReportsRegisteredTools(t *testing.T) {
	tools, err := ListTools(context.Background(), newEchoIntegration())
	require.NoError(t, err)

	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"whoami", "fail"}, names)
}

func TestToolMetricsRecorded(t *testing.T) {
	t.Setenv("ECHO_TOKEN", "tok")
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	session := inMemory(t, ServerOptions{StaticCredentials: true, MeterProvider: mp})
	ctx := context.Background()
	_, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "whoami"})
	require.NoError(t, err)
	_, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "fail", Arguments: map[string]any{"status": 500}})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	requests := sumCounter(t, rm, "mcpservers.tool.requests.total", nil)
	assert.Equal(t, int64(2), requests)

	errs := sumCounter(t, rm, "mcpservers.tool.errors.total", func(set attribute.Set) bool {
		v, ok := set.Value("error.type")
		return ok && v.AsString() == "vendor_500"
	})
	assert.Equal(t, int64(1), errs)

	assert.True(t, hasMetric(rm, "mcpservers.tool.response_time"))
}

func TestInvocationsPersisted(t *testing.T) {
	store, err := metrics.NewStore(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	metrics.SetStoreForTesting(store)
	t.Cleanup(metrics.ResetForTesting)

	t.Setenv("ECHO_TOKEN", "tok")
	session := inMemory(t, ServerOptions{StaticCredentials: true})
	_, err = session.CallTool(context.Background(), &mcp.CallToolParams{Name: "whoami"})
	require.NoError(t, err)
	_, err = session.CallTool(context.Background(), &mcp.CallToolParams{Name: "fail", Arguments: map[string]any{"status": 403}})
	require.NoError(t, err)

	totals, err := store.Totals()
	require.NoError(t, err)
	byTool := map[string]metrics.Total{}
	for _, tot := range totals {
		byTool[tot.Tool] = tot
	}
	assert.Equal(t, int64(1), byTool["whoami"].Calls)
	assert.Equal(t, int64(0), byTool["whoami"].Errors)
	assert.Equal(t, int64(1), byTool["fail"].Errors)
	assert.Equal(t, "echo", byTool["fail"].Integration)
}

func TestTextResult(t *testing.T) {
	res, err := TextResult("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", resultText(t, res))

	res, err = TextResult(map[string]int{"n": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, resultText(t, res))

	res, err = TextResult(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", resultText(t, res))

	_, err = TextResult(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&restclient.APIError{StatusCode: 401}, "vendor_401"},
		{fmt.Errorf("wrapped: %w", &restclient.APIError{StatusCode: 429}), "vendor_429"},
		{context.DeadlineExceeded, "timeout"},
		{fmt.Errorf("get: %w", context.Canceled), "canceled"},
		{errors.New("boom"), "tool_call_failed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyError(tt.err), tt.err.Error())
	}
}

func sumCounter(t *testing.T, rm metricdata.ResourceMetrics, name string, match func(attribute.Set) bool) int64 {
	t.Helper()
	var total int64
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is %T", name, m.Data)
			found = true
			for _, dp := range sum.DataPoints {
				if match == nil || match(dp.Attributes) {
					total += dp.Value
				}
			}
		}
	}
	require.True(t, found, "metric %s not collected", name)
	return total
}

func hasMetric(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}
