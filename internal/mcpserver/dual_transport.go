package mcpserver

import (
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
)

// DualTransportHandler serves streamable HTTP and legacy SSE clients on the
// same path.
type DualTransportHandler struct {
	streamable *mcp.StreamableHTTPHandler
	sse        http.Handler
}

// NewDualTransportHandler builds the handler. When binder is nil SSE routing
// is disabled; otherwise SSE sessions are pinned to the credentials binder
// extracts from the opening GET.
func NewDualTransportHandler(getServer func(*http.Request) *mcp.Server, opts *mcp.StreamableHTTPOptions, binder credctx.Binder) *DualTransportHandler {
	h := &DualTransportHandler{
		streamable: mcp.NewStreamableHTTPHandler(getServer, opts),
	}
	if binder != nil {
		h.sse = newSSESessionGuard(binder, mcp.NewSSEHandler(getServer, nil))
	}
	return h
}

// ServeHTTP dispatches on method, query and Accept header.
func (h *DualTransportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.sse != nil && wantsSSE(r) {
		h.sse.ServeHTTP(w, r)
		return
	}
	h.streamable.ServeHTTP(w, r)
}

func wantsSSE(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost:
		// SSE message posts carry the session in the query string.
		return r.URL.Query().Has("sessionid")
	case http.MethodGet:
		// A streamable GET carries its session header; anything else asking
		// for an event stream opens an SSE session.
		if r.Header.Get("Mcp-Session-Id") != "" {
			return false
		}
		for _, v := range strings.Split(strings.Join(r.Header.Values("Accept"), ","), ",") {
			v = strings.TrimSpace(v)
			if v == "text/event-stream" || v == "*/*" {
				return true
			}
		}
	}
	return false
}
