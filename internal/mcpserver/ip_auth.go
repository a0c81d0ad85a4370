package mcpserver

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Zentre-Ai/mcp-servers/internal/logger"
)

// IPAuthMiddleware restricts which caller addresses may reach the server.
// It gates the network, not the vendor: callers still need credentials.
type IPAuthMiddleware struct {
	allowedIPs    []string
	allowedNets   []*net.IPNet
	proxies       *clientIPResolver
	enableLogging bool
	logger        *zap.SugaredLogger
}

// NewIPAuthMiddleware accepts single addresses and CIDR blocks. Forwarding
// headers are only believed when the socket peer is in trustedProxies.
func NewIPAuthMiddleware(allowedIPs, trustedProxies []string, enableLogging bool) (*IPAuthMiddleware, error) {
	proxies, err := newClientIPResolver(trustedProxies)
	if err != nil {
		return nil, err
	}
	m := &IPAuthMiddleware{
		proxies:       proxies,
		enableLogging: enableLogging,
		logger:        logger.Named("ipauth"),
	}

	for _, entry := range allowedIPs {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		network, err := parseCIDROrIP(entry)
		if err != nil {
			return nil, err
		}
		m.allowedIPs = append(m.allowedIPs, entry)
		m.allowedNets = append(m.allowedNets, network)
	}
	if len(m.allowedNets) == 0 {
		return nil, fmt.Errorf("no allowed IPs specified")
	}

	if m.enableLogging {
		m.logger.Infow("IP allowlist initialized", "ranges", len(m.allowedNets), "trusted_proxies", len(proxies.trusted))
	}
	return m, nil
}

// Middleware returns the HTTP middleware function. /health is always reachable.
func (m *IPAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthPath {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := m.proxies.clientIP(r)
		if !m.IsIPAllowed(clientIP) {
			if m.enableLogging {
				m.logger.Warnw("access denied",
					"client_ip", clientIP,
					"path", r.URL.Path,
					"method", r.Method,
					"user_agent", r.Header.Get("User-Agent"),
				)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error": {"code": -32603, "message": "Access denied: IP not authorized"}}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// IsIPAllowed reports whether ipStr falls inside an allowed range.
func (m *IPAuthMiddleware) IsIPAllowed(ipStr string) bool {
	return containsIP(m.allowedNets, ipStr)
}

func containsIP(nets []*net.IPNet, ipStr string) bool {
	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil {
		return false
	}
	for _, network := range nets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// AllowedIPs returns the configured entries.
func (m *IPAuthMiddleware) AllowedIPs() []string {
	return m.allowedIPs
}

func parseCIDROrIP(s string) (*net.IPNet, error) {
	if strings.Contains(s, "/") {
		_, network, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR block %s: %w", s, err)
		}
		return network, nil
	}

	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %s", s)
	}
	bits := 128
	if v4 := ip.To4(); v4 != nil {
		ip, bits = v4, 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}

// clientIPResolver derives the caller address of a request. X-Forwarded-For
// and X-Real-IP are honoured only when the socket peer is a trusted proxy.
type clientIPResolver struct {
	trusted []*net.IPNet
}

func newClientIPResolver(trustedProxies []string) (*clientIPResolver, error) {
	c := &clientIPResolver{}
	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		network, err := parseCIDROrIP(entry)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy: %w", err)
		}
		c.trusted = append(c.trusted, network)
	}
	return c, nil
}

func (c *clientIPResolver) clientIP(r *http.Request) string {
	peer := socketIP(r)
	if c == nil || !containsIP(c.trusted, peer) {
		return peer
	}

	// Walk the chain from the nearest hop and stop at the first untrusted one.
	var hops []string
	for _, v := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(v, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	for i := len(hops) - 1; i >= 0; i-- {
		if !containsIP(c.trusted, hops[i]) || i == 0 {
			return hops[i]
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func socketIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LocalhostIPs is the default allowlist when IP auth is enabled without one.
var LocalhostIPs = []string{"127.0.0.1", "::1"}
