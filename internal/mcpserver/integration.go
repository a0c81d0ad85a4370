package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/metric"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
)

// Version is reported to MCP clients during initialization.
var Version = "dev"

// Integration is one vendor API exposed as a set of tools.
type Integration interface {
	Name() string
	Description() string
	Binder() credctx.Binder
	Register(r *Registrar)
}

// Registrar is handed to Integration.Register to add tools.
type Registrar struct {
	server      *mcp.Server
	integration string
	binder      credctx.Binder
	metrics     *toolMetrics
}

// Server exposes the underlying SDK server.
func (r *Registrar) Server() *mcp.Server {
	return r.server
}

// ServerOptions configure NewSDKServer.
type ServerOptions struct {
	// StaticCredentials lets calls without inbound headers (stdio,
	// in-memory) fall back to credentials from the environment.
	StaticCredentials bool
	MeterProvider     metric.MeterProvider
}

// NewSDKServer builds an MCP server exposing integ's tools.
func NewSDKServer(integ Integration, opts ServerOptions) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mcp-servers-" + integ.Name(),
		Version: Version,
	}, &mcp.ServerOptions{
		Instructions: integ.Description(),
	})
	server.AddReceivingMiddleware(credentialMiddleware(integ.Binder(), opts.StaticCredentials))

	integ.Register(&Registrar{
		server:      server,
		integration: integ.Name(),
		binder:      integ.Binder(),
		metrics:     newToolMetrics(opts.MeterProvider),
	})
	return server
}

// credentialMiddleware binds a call-scoped credential cell for every
// tools/call from the headers of the HTTP request that carried it. With
// long-lived sessions the session context outlives the request that created
// it, so each call is bound from its own headers.
func credentialMiddleware(binder credctx.Binder, allowStatic bool) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method != "tools/call" {
				return next(ctx, method, req)
			}

			var header http.Header
			if call, ok := req.(*mcp.CallToolRequest); ok && call.Extra != nil {
				header = call.Extra.Header
			}

			var (
				bound   context.Context
				release func()
				err     error
			)
			switch {
			case len(header) > 0:
				bound, release, err = binder.Bind(ctx, header)
			case allowStatic:
				bound, release, err = binder.BindStatic(ctx)
			default:
				return next(ctx, method, req)
			}
			if err != nil {
				// The tool reports the missing credentials itself.
				return next(ctx, method, req)
			}
			defer release()
			return next(bound, method, req)
		}
	}
}
