package mcpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
	"github.com/Zentre-Ai/mcp-servers/internal/types"
)

type echoCreds struct {
	Token string
}

type whoamiInput struct {
	DelayMS int `json:"delay_ms,omitempty" jsonschema:"milliseconds to wait before answering"`
}

type failInput struct {
	Status int `json:"status"`
}

// echoIntegration answers with the token of the caller.
type echoIntegration struct {
	scheme *credctx.Scheme[echoCreds]
}

func newEchoIntegration() *echoIntegration {
	return &echoIntegration{scheme: &credctx.Scheme[echoCreds]{
		Name:        "echo",
		HeaderNames: []string{"Authorization", "x-echo-token"},
		EnvHeaders:  map[string]string{"x-echo-token": "ECHO_TOKEN"},
		Extract: func(h http.Header) credctx.Result[echoCreds] {
			if token, ok := credctx.HeaderString(h, "x-echo-token"); ok {
				return credctx.Found(echoCreds{Token: token})
			}
			if token, ok := credctx.BearerToken(h); ok {
				return credctx.Found(echoCreds{Token: token})
			}
			return credctx.Missing[echoCreds]("expected x-echo-token")
		},
	}}
}

func (e *echoIntegration) Name() string           { return "echo" }
func (e *echoIntegration) Description() string    { return "Echo test integration" }
func (e *echoIntegration) Binder() credctx.Binder { return e.scheme }

func (e *echoIntegration) Register(r *Registrar) {
	AddTool(r, &mcp.Tool{Name: "whoami", Description: "Return the caller token"},
		func(ctx context.Context, creds echoCreds, in whoamiInput) (any, error) {
			if in.DelayMS > 0 {
				select {
				case <-time.After(time.Duration(in.DelayMS) * time.Millisecond):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return creds.Token, nil
		})
	AddTool(r, &mcp.Tool{Name: "fail", Description: "Fail with a vendor status"},
		func(ctx context.Context, _ echoCreds, in failInput) (any, error) {
			return nil, &restclient.APIError{Vendor: "echo", Method: http.MethodGet, Path: "/thing", StatusCode: in.Status, Message: "nope"}
		})
}

func testConfig() *types.Config {
	return &types.Config{
		MCPServerHost:             "127.0.0.1",
		MCPServerPort:             0,
		MCPServerPath:             "/mcp",
		MCPServerReadTimeout:      5 * time.Second,
		MCPServerWriteTimeout:     5 * time.Second,
		MCPServerIdleTimeout:      5 * time.Second,
		MCPServerShutdownTimeout:  5 * time.Second,
		MCPServerMaxHeaderBytes:   1 << 20,
		MCPServerGracefulShutdown: true,
		MCPStateless:              true,
		MCPSSEEnabled:             false,
	}
}

func newTestHTTPServer(t *testing.T, cfg *types.Config, opts ServerOptions) *httptest.Server {
	t.Helper()
	sw, err := NewServerWrapper(cfg, newEchoIntegration(), opts)
	require.NoError(t, err)
	srv := httptest.NewServer(sw.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// headerTransport adds fixed headers to every request of one client.
type headerTransport struct {
	header http.Header
	next   http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, vs := range t.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return t.next.RoundTrip(req)
}

func connectHTTP(t *testing.T, endpoint string, header http.Header) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	transport := &mcp.StreamableClientTransport{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{Transport: &headerTransport{header: header, next: http.DefaultTransport}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	session, err := client.Connect(ctx, transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func tokenHeader(token string) http.Header {
	h := http.Header{}
	h.Set("x-echo-token", token)
	return h
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}
