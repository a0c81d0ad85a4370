package datadog

import (
	"net/http"
	"strings"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
)

const defaultSite = "datadoghq.com"

type Credentials struct {
	APIKey string
	AppKey string
	// APIURL is derived from the site, e.g. https://api.datadoghq.eu.
	APIURL string
}

func newScheme() *credctx.Scheme[Credentials] {
	return &credctx.Scheme[Credentials]{
		Name:        "datadog",
		HeaderNames: []string{"x-datadog-api-key", "x-datadog-app-key", "x-datadog-site"},
		EnvHeaders: map[string]string{
			"x-datadog-api-key": "DD_API_KEY",
			"x-datadog-app-key": "DD_APP_KEY",
			"x-datadog-site":    "DD_SITE",
		},
		Extract: extractCredentials,
	}
}

func extractCredentials(h http.Header) credctx.Result[Credentials] {
	apiKey, hasAPI := credctx.HeaderString(h, "x-datadog-api-key")
	appKey, hasApp := credctx.HeaderString(h, "x-datadog-app-key")
	switch {
	case !hasAPI && !hasApp:
		return credctx.Missing[Credentials]("expected x-datadog-api-key and x-datadog-app-key")
	case !hasAPI:
		return credctx.Missing[Credentials]("x-datadog-app-key requires x-datadog-api-key")
	case !hasApp:
		return credctx.Missing[Credentials]("x-datadog-api-key requires x-datadog-app-key")
	}

	site, _ := credctx.HeaderString(h, "x-datadog-site")
	apiURL, err := siteURL(site)
	if err != nil {
		return credctx.Missing[Credentials]("invalid x-datadog-site: %v", err)
	}
	return credctx.Found(Credentials{APIKey: apiKey, AppKey: appKey, APIURL: apiURL})
}

// siteURL accepts a site name (datadoghq.eu, us5.datadoghq.com) or a full URL.
func siteURL(site string) (string, error) {
	site = strings.TrimSpace(site)
	if site == "" {
		site = defaultSite
	}
	if strings.Contains(site, "://") {
		return credctx.ParseBaseURL(site)
	}
	return credctx.ParseBaseURL("https://api." + strings.TrimPrefix(strings.Trim(site, "/"), "api."))
}
