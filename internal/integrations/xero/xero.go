// Package xero exposes invoices and contacts of one Xero organisation.
package xero

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

const defaultAPIURL = "https://api.xero.com/api.xro/2.0"

// Credentials pair an OAuth access token with the organisation (tenant) it
// acts on.
type Credentials struct {
	Token    string
	TenantID string
}

type Integration struct {
	base   *restclient.Base
	scheme *credctx.Scheme[Credentials]
	apiURL string
}

func New(opts restclient.Options) *Integration {
	return &Integration{
		base: restclient.NewBase("xero", opts),
		scheme: &credctx.Scheme[Credentials]{
			Name:        "xero",
			HeaderNames: []string{"Authorization", "x-xero-token", "x-xero-tenant-id"},
			EnvHeaders: map[string]string{
				"x-xero-token":     "XERO_ACCESS_TOKEN",
				"x-xero-tenant-id": "XERO_TENANT_ID",
			},
			Extract: extractCredentials,
		},
		apiURL: defaultAPIURL,
	}
}

func extractCredentials(h http.Header) credctx.Result[Credentials] {
	token, ok := credctx.HeaderString(h, "x-xero-token")
	if !ok {
		token, ok = credctx.BearerToken(h)
	}
	if !ok {
		return credctx.Missing[Credentials]("expected Authorization: Bearer <token> or x-xero-token")
	}
	tenant, ok := credctx.HeaderString(h, "x-xero-tenant-id")
	if !ok {
		return credctx.Missing[Credentials]("x-xero-tenant-id is required")
	}
	return credctx.Found(Credentials{Token: token, TenantID: tenant})
}

func (x *Integration) Name() string { return "xero" }

func (x *Integration) Description() string {
	return "Xero accounting: invoices and contacts of the selected organisation."
}

func (x *Integration) Binder() credctx.Binder { return x.scheme }

func (x *Integration) Register(r *mcpserver.Registrar) {
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "list_invoices",
		Description: "List invoices, optionally filtered by status or contact",
	}, x.listInvoices)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "list_contacts",
		Description: "List or search contacts",
	}, x.listContacts)
}

func (x *Integration) client(creds Credentials) (*restclient.Client, error) {
	return x.base.Client(restclient.Config{
		BaseURL: x.apiURL,
		Auth: restclient.Auth{
			BearerToken: creds.Token,
			Header:      map[string][]string{"Xero-Tenant-Id": {creds.TenantID}},
		},
	})
}
