package credctx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Zentre-Ai/mcp-servers/internal/logger"
)

// unauthorizedCode is the JSON-RPC server error code used for rejected requests.
const unauthorizedCode = -32001

// Boundary guards an http.Handler. Requests without credentials are answered
// with 401 and never reach next. Otherwise the credentials are installed in a
// request-scoped cell for exactly as long as next runs.
type Boundary struct {
	binder Binder
	next   http.Handler
}

func NewBoundary(binder Binder, next http.Handler) *Boundary {
	return &Boundary{binder: binder, next: next}
}

func (b *Boundary) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, release, err := b.binder.Bind(r.Context(), r.Header)
	if err != nil {
		logger.Named("credctx").Debugw("rejecting request without credentials",
			"integration", b.binder.Integration(),
			"method", r.Method,
			"path", r.URL.Path,
			"reason", err.Error(),
		)
		writeUnauthorized(w, b.binder, err)
		return
	}
	// Runs on return and while a panic unwinds; the panic is not recovered.
	defer release()

	b.next.ServeHTTP(w, r.WithContext(ctx))
}

func writeUnauthorized(w http.ResponseWriter, binder Binder, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Bearer realm=%q", binder.Integration()))
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]any{
		"error": map[string]any{
			"code":    unauthorizedCode,
			"message": err.Error(),
			"data": map[string]any{
				"integration": binder.Integration(),
				"headers":     binder.Headers(),
			},
		},
	}
	_ = json.NewEncoder(w).Encode(body)
}

// MissingMessage is the text shown to a tool caller whose request carried no
// credentials for the integration.
func MissingMessage(binder Binder) string {
	if len(binder.Headers()) == 0 {
		return fmt.Sprintf("%s for %s", ErrNoCredentials, binder.Integration())
	}
	return fmt.Sprintf("%s for %s; send one of the headers: %s",
		ErrNoCredentials, binder.Integration(), strings.Join(binder.Headers(), ", "))
}
