package mcpserver

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Zentre-Ai/mcp-servers/internal/types"
)

// SDKServerConfig is the HTTP serving configuration of one MCP server.
type SDKServerConfig struct {
	Host             string        `json:"host"`
	Port             int           `json:"port"`
	Path             string        `json:"path"`
	ReadTimeout      time.Duration `json:"read_timeout"`
	WriteTimeout     time.Duration `json:"write_timeout"`
	IdleTimeout      time.Duration `json:"idle_timeout"`
	MaxHeaderBytes   int           `json:"max_header_bytes"`
	GracefulShutdown bool          `json:"graceful_shutdown"`
	ShutdownTimeout  time.Duration `json:"shutdown_timeout"`
	AccessLog        bool          `json:"access_log"`

	// Transport
	Stateless    bool `json:"stateless"`
	JSONResponse bool `json:"json_response"`
	SSEEnabled   bool `json:"sse_enabled"`

	// Caller IP allowlist
	IPAuthEnabled       bool     `json:"ip_auth_enabled"`
	AllowedIPs          []string `json:"allowed_ips"`
	IPAuthEnableLogging bool     `json:"ip_auth_enable_logging"`
	TrustedProxies      []string `json:"trusted_proxies"`
}

// ConfigAdapter converts the process configuration into SDKServerConfig.
type ConfigAdapter struct {
	config *types.Config
}

func NewConfigAdapter(config *types.Config) *ConfigAdapter {
	return &ConfigAdapter{config: config}
}

// ToSDKConfig validates and converts the configuration.
func (ca *ConfigAdapter) ToSDKConfig() (*SDKServerConfig, error) {
	if ca.config == nil {
		return nil, fmt.Errorf("configuration is nil")
	}
	c := ca.config

	sdkConfig := &SDKServerConfig{
		Host:                c.MCPServerHost,
		Port:                c.MCPServerPort,
		Path:                c.MCPServerPath,
		ReadTimeout:         c.MCPServerReadTimeout,
		WriteTimeout:        c.MCPServerWriteTimeout,
		IdleTimeout:         c.MCPServerIdleTimeout,
		MaxHeaderBytes:      c.MCPServerMaxHeaderBytes,
		GracefulShutdown:    c.MCPServerGracefulShutdown,
		ShutdownTimeout:     c.MCPServerShutdownTimeout,
		AccessLog:           c.MCPServerEnableAccessLogging,
		Stateless:           c.MCPStateless,
		JSONResponse:        c.MCPJSONResponse,
		SSEEnabled:          c.MCPSSEEnabled,
		IPAuthEnabled:       c.MCPIPAuthEnabled,
		AllowedIPs:          c.MCPAllowedIPs,
		IPAuthEnableLogging: c.MCPIPAuthEnableLogging,
		TrustedProxies:      c.MCPTrustedProxies,
	}
	if sdkConfig.Path == "" {
		sdkConfig.Path = "/mcp"
	}
	if sdkConfig.IPAuthEnabled && len(sdkConfig.AllowedIPs) == 0 {
		sdkConfig.AllowedIPs = LocalhostIPs
	}

	if err := sdkConfig.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return sdkConfig, nil
}

func (c *SDKServerConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	// Port 0 asks the kernel for a free port.
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got: %d", c.Port)
	}
	if c.Path == healthPath || !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("invalid MCP path %q", c.Path)
	}
	for name, v := range map[string]time.Duration{
		"read timeout":     c.ReadTimeout,
		"write timeout":    c.WriteTimeout,
		"idle timeout":     c.IdleTimeout,
		"shutdown timeout": c.ShutdownTimeout,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got: %v", name, v)
		}
	}
	if c.MaxHeaderBytes <= 0 || c.MaxHeaderBytes > 10<<20 {
		return fmt.Errorf("max header bytes must be between 1 and 10MB, got: %d", c.MaxHeaderBytes)
	}
	for _, entry := range c.AllowedIPs {
		if _, err := parseCIDROrIP(entry); err != nil {
			return err
		}
	}
	for _, entry := range c.TrustedProxies {
		if _, err := parseCIDROrIP(entry); err != nil {
			return fmt.Errorf("trusted proxy: %w", err)
		}
	}
	return nil
}

// Address returns host:port.
func (c *SDKServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
