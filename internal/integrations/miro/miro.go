// Package miro exposes boards and sticky notes of a Miro team.
package miro

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

const defaultAPIURL = "https://api.miro.com"

type Credentials struct {
	Token string
}

type Integration struct {
	base   *restclient.Base
	scheme *credctx.Scheme[Credentials]
	apiURL string
}

func New(opts restclient.Options) *Integration {
	return &Integration{
		base: restclient.NewBase("miro", opts),
		scheme: &credctx.Scheme[Credentials]{
			Name:        "miro",
			HeaderNames: []string{"Authorization", "x-miro-token"},
			EnvHeaders:  map[string]string{"x-miro-token": "MIRO_ACCESS_TOKEN"},
			Extract:     extractCredentials,
		},
		apiURL: defaultAPIURL,
	}
}

func extractCredentials(h http.Header) credctx.Result[Credentials] {
	if token, ok := credctx.HeaderString(h, "x-miro-token"); ok {
		return credctx.Found(Credentials{Token: token})
	}
	if token, ok := credctx.BearerToken(h); ok {
		return credctx.Found(Credentials{Token: token})
	}
	return credctx.Missing[Credentials]("expected Authorization: Bearer <token> or x-miro-token")
}

func (m *Integration) Name() string { return "miro" }

func (m *Integration) Description() string {
	return "Miro boards: find boards and add sticky notes."
}

func (m *Integration) Binder() credctx.Binder { return m.scheme }

func (m *Integration) Register(r *mcpserver.Registrar) {
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "list_boards",
		Description: "List boards visible to the token, optionally filtered by a search query",
	}, m.listBoards)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "create_sticky_note",
		Description: "Add a sticky note to a board",
		InputSchema: mcpserver.InputSchema[StickyNoteInput](map[string][]string{"color": stickyColors}),
	}, m.createStickyNote)
}

func (m *Integration) client(creds Credentials) (*restclient.Client, error) {
	return m.base.Client(restclient.Config{
		BaseURL: m.apiURL,
		Auth:    restclient.Auth{BearerToken: creds.Token},
	})
}
