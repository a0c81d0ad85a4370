package github

import (
	"net/http"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
)

const defaultAPIURL = "https://api.github.com"

// Credentials authenticate one caller against the GitHub REST API.
type Credentials struct {
	Token  string
	APIURL string
}

func newScheme() *credctx.Scheme[Credentials] {
	return &credctx.Scheme[Credentials]{
		Name:        "github",
		HeaderNames: []string{"Authorization", "x-github-token", "x-github-api-url"},
		EnvHeaders: map[string]string{
			"x-github-token":   "GITHUB_TOKEN",
			"x-github-api-url": "GITHUB_API_URL",
		},
		Extract: extractCredentials,
	}
}

func extractCredentials(h http.Header) credctx.Result[Credentials] {
	token, ok := credctx.HeaderString(h, "x-github-token")
	if !ok {
		token, ok = credctx.BearerToken(h)
	}
	if !ok {
		return credctx.Missing[Credentials]("expected Authorization: Bearer <token> or x-github-token")
	}

	apiURL := defaultAPIURL
	if raw, ok := credctx.HeaderString(h, "x-github-api-url"); ok {
		parsed, err := credctx.ParseBaseURL(raw)
		if err != nil {
			return credctx.Missing[Credentials]("invalid x-github-api-url: %v", err)
		}
		apiURL = parsed
	}
	return credctx.Found(Credentials{Token: token, APIURL: apiURL})
}
