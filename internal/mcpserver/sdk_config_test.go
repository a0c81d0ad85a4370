package mcpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSDKConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MCPServerPort = 9090
	cfg.MCPServerPath = ""
	cfg.MCPIPAuthEnabled = true

	sdk, err := NewConfigAdapter(cfg).ToSDKConfig()
	require.NoError(t, err)
	assert.Equal(t, "/mcp", sdk.Path)
	assert.Equal(t, "127.0.0.1:9090", sdk.Address())
	assert.Equal(t, LocalhostIPs, sdk.AllowedIPs)
	assert.True(t, sdk.Stateless)
}

func TestToSDKConfigValidation(t *testing.T) {
	_, err := NewConfigAdapter(nil).ToSDKConfig()
	assert.Error(t, err)

	tests := []struct {
		name   string
		mutate func(*SDKServerConfig)
	}{
		{"empty host", func(c *SDKServerConfig) { c.Host = "" }},
		{"port", func(c *SDKServerConfig) { c.Port = 70000 }},
		{"relative path", func(c *SDKServerConfig) { c.Path = "mcp" }},
		{"health path", func(c *SDKServerConfig) { c.Path = healthPath }},
		{"read timeout", func(c *SDKServerConfig) { c.ReadTimeout = 0 }},
		{"shutdown timeout", func(c *SDKServerConfig) { c.ShutdownTimeout = -time.Second }},
		{"header bytes", func(c *SDKServerConfig) { c.MaxHeaderBytes = 0 }},
		{"allowed ip", func(c *SDKServerConfig) { c.AllowedIPs = []string{"nope"} }},
		{"trusted proxy", func(c *SDKServerConfig) { c.TrustedProxies = []string{"nope"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sdk, err := NewConfigAdapter(testConfig()).ToSDKConfig()
			require.NoError(t, err)
			tt.mutate(sdk)
			assert.Error(t, sdk.validate())
		})
	}
}

func TestAddressIPv6(t *testing.T) {
	c := &SDKServerConfig{Host: "::1", Port: 8080}
	assert.Equal(t, "[::1]:8080", c.Address())
}
