package mcpserver

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/logger"
)

// sseSessionGuard pins each legacy SSE session to the credentials of the GET
// that opened it. Tool calls on an SSE session run in the session's context,
// so a message POST is only forwarded when it carries the same credentials.
type sseSessionGuard struct {
	binder credctx.Binder
	next   http.Handler

	mu     sync.Mutex
	owners map[string]string // session id -> credential fingerprint
}

func newSSESessionGuard(binder credctx.Binder, next http.Handler) *sseSessionGuard {
	return &sseSessionGuard{binder: binder, next: next, owners: make(map[string]string)}
}

func (g *sseSessionGuard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		g.serveStream(w, r)
	case http.MethodPost:
		g.serveMessage(w, r)
	default:
		g.next.ServeHTTP(w, r)
	}
}

func (g *sseSessionGuard) serveStream(w http.ResponseWriter, r *http.Request) {
	fp, err := g.binder.Fingerprint(r.Header)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, err.Error())
		return
	}

	sw := &sessionSniffer{ResponseWriter: w, onSession: func(id string) {
		g.mu.Lock()
		g.owners[id] = fp
		g.mu.Unlock()
	}}
	defer func() {
		if sw.id != "" {
			g.mu.Lock()
			delete(g.owners, sw.id)
			g.mu.Unlock()
		}
	}()
	g.next.ServeHTTP(sw, r)
}

func (g *sseSessionGuard) serveMessage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("sessionid")
	g.mu.Lock()
	owner, ok := g.owners[id]
	g.mu.Unlock()
	if !ok {
		writeJSONError(w, http.StatusNotFound, "session not found")
		return
	}

	fp, err := g.binder.Fingerprint(r.Header)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if subtle.ConstantTimeCompare([]byte(fp), []byte(owner)) != 1 {
		logger.Named("mcpserver").Warnw("rejecting SSE message with foreign credentials",
			"integration", g.binder.Integration(),
			"request_id", RequestIDFromContext(r.Context()),
		)
		writeJSONError(w, http.StatusForbidden, "credentials do not match the session")
		return
	}
	g.next.ServeHTTP(w, r)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": -32600, "message": msg},
	})
}

var sessionIDMarker = []byte("sessionid=")

// sessionSniffer records the session id announced in the endpoint event,
// before the client can see it.
type sessionSniffer struct {
	http.ResponseWriter
	onSession func(id string)
	id        string
}

func (s *sessionSniffer) Write(p []byte) (int, error) {
	if s.id == "" {
		if i := bytes.Index(p, sessionIDMarker); i >= 0 {
			rest := p[i+len(sessionIDMarker):]
			end := 0
			for end < len(rest) && isSessionIDByte(rest[end]) {
				end++
			}
			if end > 0 {
				s.id = string(rest[:end])
				s.onSession(s.id)
			}
		}
	}
	return s.ResponseWriter.Write(p)
}

func (s *sessionSniffer) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *sessionSniffer) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func isSessionIDByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
