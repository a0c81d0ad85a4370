// Package bamboohr exposes the employee directory and time off of a BambooHR
// company.
package bamboohr

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

const defaultAPIURL = "https://api.bamboohr.com/api/gateway.php"

var subdomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

type Credentials struct {
	APIKey    string
	Subdomain string
}

type Integration struct {
	base   *restclient.Base
	scheme *credctx.Scheme[Credentials]
	apiURL string
}

func New(opts restclient.Options) *Integration {
	return &Integration{
		base: restclient.NewBase("bamboohr", opts),
		scheme: &credctx.Scheme[Credentials]{
			Name:        "bamboohr",
			HeaderNames: []string{"x-bamboohr-api-key", "x-bamboohr-subdomain"},
			EnvHeaders: map[string]string{
				"x-bamboohr-api-key":   "BAMBOOHR_API_KEY",
				"x-bamboohr-subdomain": "BAMBOOHR_SUBDOMAIN",
			},
			Extract: extractCredentials,
		},
		apiURL: defaultAPIURL,
	}
}

func extractCredentials(h http.Header) credctx.Result[Credentials] {
	key, hasKey := credctx.HeaderString(h, "x-bamboohr-api-key")
	sub, hasSub := credctx.HeaderString(h, "x-bamboohr-subdomain")
	if !hasKey || !hasSub {
		return credctx.Missing[Credentials]("expected x-bamboohr-api-key and x-bamboohr-subdomain")
	}
	sub = strings.ToLower(sub)
	if !subdomainPattern.MatchString(sub) {
		return credctx.Missing[Credentials]("invalid x-bamboohr-subdomain %q", sub)
	}
	return credctx.Found(Credentials{APIKey: key, Subdomain: sub})
}

func (b *Integration) Name() string { return "bamboohr" }

func (b *Integration) Description() string {
	return "BambooHR employee directory, employee records and time off requests."
}

func (b *Integration) Binder() credctx.Binder { return b.scheme }

func (b *Integration) Register(r *mcpserver.Registrar) {
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "get_directory",
		Description: "List the company employee directory",
	}, b.getDirectory)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "get_employee",
		Description: "Get one employee with their job history",
	}, b.getEmployee)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "list_time_off",
		Description: "List time off requests in a date range",
	}, b.listTimeOff)
}

// BambooHR takes the API key as the basic auth user with any password.
func (b *Integration) client(creds Credentials) (*restclient.Client, error) {
	return b.base.Client(restclient.Config{
		BaseURL: b.apiURL + "/" + creds.Subdomain,
		Auth:    restclient.Auth{BasicUser: creds.APIKey, BasicPassword: "x"},
	})
}
