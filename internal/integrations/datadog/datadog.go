// Package datadog exposes monitors and metric queries of a Datadog site.
package datadog

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

type Integration struct {
	base   *restclient.Base
	scheme *credctx.Scheme[Credentials]
}

func New(opts restclient.Options) *Integration {
	return &Integration{
		base:   restclient.NewBase("datadog", opts),
		scheme: newScheme(),
	}
}

func (d *Integration) Name() string { return "datadog" }

func (d *Integration) Description() string {
	return "Datadog monitors and metrics. Requires an API key and an application key."
}

func (d *Integration) Binder() credctx.Binder { return d.scheme }

func (d *Integration) Register(r *mcpserver.Registrar) {
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "list_monitors",
		Description: "List monitors, optionally filtered by name or tags",
	}, d.listMonitors)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "query_metrics",
		Description: "Query timeseries points for a metric query over a time range",
	}, d.queryMetrics)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "mute_monitor",
		Description: "Mute a monitor, optionally for a scope and until a time",
	}, d.muteMonitor)
}

func (d *Integration) client(creds Credentials) (*restclient.Client, error) {
	h := http.Header{}
	h.Set("DD-API-KEY", creds.APIKey)
	h.Set("DD-APPLICATION-KEY", creds.AppKey)
	return d.base.Client(restclient.Config{
		BaseURL: creds.APIURL,
		Auth:    restclient.Auth{Header: h},
	})
}
