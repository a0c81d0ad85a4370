package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	env "github.com/netflix/go-env"
	"go.uber.org/zap/zapcore"

	"github.com/Zentre-Ai/mcp-servers/internal/types"
)

// Type alias for Config
type Config = types.Config

// LoadDotEnv loads variables from the given files (".env" when none given)
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var config Config

	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	config.MCPAllowedIPs = ParseList(config.MCPAllowedIPsStr)
	config.MCPTrustedProxies = ParseList(config.MCPTrustedProxiesStr)

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ParseList splits a comma-separated value, dropping blank entries.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Validate checks ranges and normalizes values. It is rerun by commands after
// flag overrides are applied.
func Validate(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := validateServerConfig(config); err != nil {
		return err
	}
	if err := validateVendorConfig(config); err != nil {
		return err
	}

	config.LogFormat = strings.ToLower(strings.TrimSpace(config.LogFormat))
	if config.LogFormat != "json" && config.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", config.LogFormat)
	}
	if _, err := zapcore.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}

	return nil
}

func validateServerConfig(config *Config) error {
	if config.MCPServerHost == "" {
		return fmt.Errorf("MCP_SERVER_HOST cannot be empty")
	}
	if net.ParseIP(config.MCPServerHost) == nil && !isValidHostname(config.MCPServerHost) {
		return fmt.Errorf("MCP_SERVER_HOST must be a valid IP address or hostname: %s", config.MCPServerHost)
	}

	if config.MCPServerPort < 1 || config.MCPServerPort > 65535 {
		return fmt.Errorf("MCP_SERVER_PORT must be between 1 and 65535")
	}

	if !strings.HasPrefix(config.MCPServerPath, "/") {
		return fmt.Errorf("MCP_SERVER_PATH must start with /, got %q", config.MCPServerPath)
	}
	if config.MCPServerPath == "/health" {
		return fmt.Errorf("MCP_SERVER_PATH cannot be /health")
	}

	timeoutChecks := []struct {
		name     string
		value    time.Duration
		maxValue time.Duration
	}{
		{"MCP_SERVER_READ_TIMEOUT", config.MCPServerReadTimeout, 5 * time.Minute},
		{"MCP_SERVER_WRITE_TIMEOUT", config.MCPServerWriteTimeout, 10 * time.Minute},
		{"MCP_SERVER_IDLE_TIMEOUT", config.MCPServerIdleTimeout, 30 * time.Minute},
		{"MCP_SERVER_SHUTDOWN_TIMEOUT", config.MCPServerShutdownTimeout, 2 * time.Minute},
	}
	for _, check := range timeoutChecks {
		if check.value <= 0 {
			return fmt.Errorf("%s must be greater than 0", check.name)
		}
		if check.value > check.maxValue {
			return fmt.Errorf("%s cannot exceed %v, got %v", check.name, check.maxValue, check.value)
		}
	}

	if config.MCPServerMaxHeaderBytes <= 0 {
		return fmt.Errorf("MCP_SERVER_MAX_HEADER_BYTES must be greater than 0")
	}
	if config.MCPServerMaxHeaderBytes > 10<<20 { // 10MB limit
		return fmt.Errorf("MCP_SERVER_MAX_HEADER_BYTES cannot exceed 10MB")
	}

	if config.MCPIPAuthEnabled && len(config.MCPAllowedIPs) == 0 {
		return fmt.Errorf("MCP_ALLOWED_IPS cannot be empty when IP authentication is enabled")
	}
	for _, entry := range config.MCPAllowedIPs {
		if !isValidIPOrCIDR(entry) {
			return fmt.Errorf("MCP_ALLOWED_IPS contains an invalid entry: %s", entry)
		}
	}
	for _, entry := range config.MCPTrustedProxies {
		if !isValidIPOrCIDR(entry) {
			return fmt.Errorf("MCP_TRUSTED_PROXIES contains an invalid entry: %s", entry)
		}
	}

	return nil
}

func validateVendorConfig(config *Config) error {
	if config.VendorRequestTimeout <= 0 {
		return fmt.Errorf("VENDOR_REQUEST_TIMEOUT must be greater than 0")
	}
	if config.VendorRateLimit < 0 {
		return fmt.Errorf("VENDOR_RATE_LIMIT cannot be negative")
	}
	// A positive rate with no burst would block every call forever.
	if config.VendorRateLimit > 0 && config.VendorRateBurst < 1 {
		config.VendorRateBurst = 1
	}
	if strings.TrimSpace(config.VendorUserAgent) == "" {
		config.VendorUserAgent = "mcp-servers"
	}
	return nil
}

var hostnamePattern = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)(\.[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

func isValidHostname(host string) bool {
	return len(host) <= 253 && hostnamePattern.MatchString(host)
}

func isValidIPOrCIDR(entry string) bool {
	if strings.Contains(entry, "/") {
		_, _, err := net.ParseCIDR(entry)
		return err == nil
	}
	return net.ParseIP(entry) != nil
}
