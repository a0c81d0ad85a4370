// Package jira exposes issues of a Jira Cloud or Data Center site.
package jira

import (
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
		base:   restclient.NewBase("jira", opts),
		scheme: newScheme(),
	}
}

func (j *Integration) Name() string { return "jira" }

func (j *Integration) Description() string {
	return "Jira issues: read, search with JQL and comment."
}

func (j *Integration) Binder() credctx.Binder { return j.scheme }

func (j *Integration) Register(r *mcpserver.Registrar) {
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "get_issue",
		Description: "Get an issue with its most recent comments",
	}, j.getIssue)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "search_issues",
		Description: "Search issues with a JQL query",
	}, j.searchIssues)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "add_comment",
		Description: "Add a comment to an issue",
	}, j.addComment)
}

func (j *Integration) client(creds Credentials) (*restclient.Client, error) {
	auth := restclient.Auth{BearerToken: creds.Token}
	if creds.Token == "" {
		auth.BasicUser, auth.BasicPassword = creds.Username, creds.Secret
	}
	return j.base.Client(restclient.Config{
		BaseURL:       creds.BaseURL,
		Auth:          auth,
		SkipTLSVerify: !creds.VerifySSL,
	})
}
