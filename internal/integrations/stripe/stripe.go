// Package stripe exposes customers, balance and refunds of a Stripe account.
package stripe

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

const (
	defaultAPIURL = "https://api.stripe.com"
	apiVersion    = "2024-06-20"
)

type Integration struct {
	base   *restclient.Base
	scheme *credctx.Scheme[Credentials]
	apiURL string
}

func New(opts restclient.Options) *Integration {
	return &Integration{
		base:   restclient.NewBase("stripe", opts),
		scheme: newScheme(),
		apiURL: defaultAPIURL,
	}
}

func (s *Integration) Name() string { return "stripe" }

func (s *Integration) Description() string {
	return "Stripe customers, balance and refunds. Use a secret or restricted API key."
}

func (s *Integration) Binder() credctx.Binder { return s.scheme }

func (s *Integration) Register(r *mcpserver.Registrar) {
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "list_customers",
		Description: "List customers, optionally filtered by email",
	}, s.listCustomers)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "get_balance",
		Description: "Get available and pending balance per currency",
	}, s.getBalance)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "create_refund",
		Description: "Refund a payment intent or charge, fully or partially",
	}, s.createRefund)
}

func (s *Integration) client(creds Credentials) (*restclient.Client, error) {
	return s.base.Client(restclient.Config{
		BaseURL: s.apiURL,
		Auth: restclient.Auth{
			BearerToken: creds.SecretKey,
			Header:      map[string][]string{"Stripe-Version": {apiVersion}},
		},
	})
}
