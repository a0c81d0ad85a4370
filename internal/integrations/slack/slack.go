// Package slack exposes channels and messaging of a Slack workspace through
// slack-go.
package slack

import (
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	slackgo "github.com/slack-go/slack"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

const defaultAPIURL = "https://slack.com/api/"

// Credentials hold a bot (xoxb-) or user (xoxp-) token.
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
		base: restclient.NewBase("slack", opts),
		scheme: &credctx.Scheme[Credentials]{
			Name:        "slack",
			HeaderNames: []string{"Authorization", "x-slack-token"},
			EnvHeaders:  map[string]string{"x-slack-token": "SLACK_BOT_TOKEN"},
			Extract:     extractCredentials,
		},
		apiURL: defaultAPIURL,
	}
}

func extractCredentials(h http.Header) credctx.Result[Credentials] {
	token, ok := credctx.HeaderString(h, "x-slack-token")
	if !ok {
		token, ok = credctx.BearerToken(h)
	}
	if !ok {
		return credctx.Missing[Credentials]("expected Authorization: Bearer <token> or x-slack-token")
	}
	if !strings.HasPrefix(token, "xox") {
		return credctx.Missing[Credentials]("slack tokens start with xoxb- or xoxp-")
	}
	return credctx.Found(Credentials{Token: token})
}

func (s *Integration) Name() string { return "slack" }

func (s *Integration) Description() string {
	return "Slack channels and messages. Use a bot or user token with the matching scopes."
}

func (s *Integration) Binder() credctx.Binder { return s.scheme }

func (s *Integration) Register(r *mcpserver.Registrar) {
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "list_channels",
		Description: "List conversations the token can see",
		InputSchema: mcpserver.InputSchema[ListChannelsInput](map[string][]string{"types": channelTypes}),
	}, s.listChannels)
	mcpserver.AddTool(r, &mcp.Tool{
		Name:        "post_message",
		Description: "Post a message to a channel, optionally as a thread reply",
	}, s.postMessage)
}

func (s *Integration) client(creds Credentials) *slackgo.Client {
	return slackgo.New(creds.Token,
		slackgo.OptionHTTPClient(s.base.HTTPClient(false)),
		slackgo.OptionAPIURL(s.apiURL),
	)
}
