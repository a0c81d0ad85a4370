package jira

import (
	"net/http"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
)

// Credentials for Jira Cloud (username + API token) or Jira Data Center
// (username + password, or a personal access token).
type Credentials struct {
	BaseURL   string
	Username  string
	Secret    string
	Token     string
	VerifySSL bool
}

func newScheme() *credctx.Scheme[Credentials] {
	return &credctx.Scheme[Credentials]{
		Name: "jira",
		HeaderNames: []string{
			"x-jira-base-url", "x-jira-username", "x-jira-api-token",
			"x-jira-password", "x-jira-token", "x-jira-verify-ssl",
		},
		EnvHeaders: map[string]string{
			"x-jira-base-url":   "JIRA_BASE_URL",
			"x-jira-username":   "JIRA_USERNAME",
			"x-jira-api-token":  "JIRA_API_TOKEN",
			"x-jira-password":   "JIRA_PASSWORD",
			"x-jira-token":      "JIRA_PERSONAL_TOKEN",
			"x-jira-verify-ssl": "JIRA_VERIFY_SSL",
		},
		Extract: extractCredentials,
	}
}

func extractCredentials(h http.Header) credctx.Result[Credentials] {
	raw, ok := credctx.HeaderString(h, "x-jira-base-url")
	if !ok {
		return credctx.Missing[Credentials]("x-jira-base-url is required")
	}
	baseURL, err := credctx.ParseBaseURL(raw)
	if err != nil {
		return credctx.Missing[Credentials]("invalid x-jira-base-url: %v", err)
	}
	verify, err := credctx.HeaderBool(h, "x-jira-verify-ssl", true)
	if err != nil {
		return credctx.Missing[Credentials]("invalid x-jira-verify-ssl: %v", err)
	}
	creds := Credentials{BaseURL: baseURL, VerifySSL: verify}

	if token, ok := credctx.HeaderString(h, "x-jira-token"); ok {
		creds.Token = token
		return credctx.Found(creds)
	}

	user, hasUser := credctx.HeaderString(h, "x-jira-username")
	secret, hasSecret := credctx.HeaderString(h, "x-jira-api-token")
	if !hasSecret {
		secret, hasSecret = credctx.HeaderString(h, "x-jira-password")
	}
	switch {
	case hasUser && hasSecret:
		creds.Username, creds.Secret = user, secret
		return credctx.Found(creds)
	case hasUser:
		return credctx.Missing[Credentials]("x-jira-username requires x-jira-api-token or x-jira-password")
	case hasSecret:
		return credctx.Missing[Credentials]("x-jira-api-token and x-jira-password require x-jira-username")
	default:
		return credctx.Missing[Credentials]("expected x-jira-token or x-jira-username with x-jira-api-token")
	}
}
