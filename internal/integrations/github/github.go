// Package github exposes repositories, issues and branches of a GitHub or
// GitHub Enterprise host.
package github

import (
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

type Integration struct {
	base   *restclient.Base
	git    transport.Transport
	scheme *credctx.Scheme[Credentials]
}

func New(opts restclient.Options) *Integration {
	base := restclient.NewBase("github", opts)
	return &Integration{
		base: base,
		// git traffic shares the instrumented, rate limited client of the REST calls.
		git:    githttp.NewClient(base.HTTPClient(false)),
		scheme: newScheme(),
	}
}

func (g *Integration) Name() string { return "github" }

func (g *Integration) Description() string {
	return "GitHub repositories, issues and branches. Authenticate with a personal access token or GitHub App token."
}

func (g *Integration) Binder() credctx.Binder { return g.scheme }

func (g *Integration) Register(r *mcpserver.Registrar) {
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "get_repository",
		Description: "Get repository metadata together with its language breakdown",
	}, g.getRepository)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "list_issues",
		Description: "List issues of a repository, excluding pull requests",
	}, g.listIssues)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "create_issue",
		Description: "Open a new issue",
	}, g.createIssue)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "list_branches",
		Description: "List branch names and the default branch using the git protocol",
	}, g.listBranches)
}

func (g *Integration) client(creds Credentials) (*restclient.Client, error) {
	return g.base.Client(restclient.Config{
		BaseURL: creds.APIURL,
		Auth: restclient.Auth{
			BearerToken: creds.Token,
			Header:      map[string][]string{"Accept": {"application/vnd.github+json"}, "X-GitHub-Api-Version": {"2022-11-28"}},
		},
	})
}
