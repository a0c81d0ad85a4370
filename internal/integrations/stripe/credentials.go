package stripe

import (
	"net/http"
	"strings"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
)

// Credentials hold a secret (sk_) or restricted (rk_) API key.
type Credentials struct {
	SecretKey string
}

// Live reports whether the key operates on live mode data.
func (c Credentials) Live() bool {
	return strings.Contains(c.SecretKey, "_live_")
}

func newScheme() *credctx.Scheme[Credentials] {
	return &credctx.Scheme[Credentials]{
		Name:        "stripe",
		HeaderNames: []string{"Authorization", "x-stripe-api-key"},
		EnvHeaders:  map[string]string{"x-stripe-api-key": "STRIPE_SECRET_KEY"},
		Extract:     extractCredentials,
	}
}

func extractCredentials(h http.Header) credctx.Result[Credentials] {
	key, ok := credctx.HeaderString(h, "x-stripe-api-key")
	if !ok {
		key, ok = credctx.BearerToken(h)
	}
	if !ok {
		return credctx.Missing[Credentials]("expected Authorization: Bearer <key> or x-stripe-api-key")
	}
	if !strings.HasPrefix(key, "sk_") && !strings.HasPrefix(key, "rk_") {
		// Publishable keys (pk_) cannot call these endpoints.
		return credctx.Missing[Credentials]("stripe API keys start with sk_ or rk_")
	}
	return credctx.Found(Credentials{SecretKey: key})
}
