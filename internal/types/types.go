package types

import "time"

// Config is the process configuration, resolved from the environment.
type Config struct {
	// MCP server
	MCPServerHost                string        `json:"mcp_server_host" env:"MCP_SERVER_HOST,default=localhost"`
	MCPServerPort                int           `json:"mcp_server_port" env:"MCP_SERVER_PORT,default=8080"`
	MCPServerPath                string        `json:"mcp_server_path" env:"MCP_SERVER_PATH,default=/mcp"`
	MCPServerReadTimeout         time.Duration `json:"mcp_server_read_timeout" env:"MCP_SERVER_READ_TIMEOUT,default=30s"`
	MCPServerWriteTimeout        time.Duration `json:"mcp_server_write_timeout" env:"MCP_SERVER_WRITE_TIMEOUT,default=120s"`
	MCPServerIdleTimeout         time.Duration `json:"mcp_server_idle_timeout" env:"MCP_SERVER_IDLE_TIMEOUT,default=120s"`
	MCPServerShutdownTimeout     time.Duration `json:"mcp_server_shutdown_timeout" env:"MCP_SERVER_SHUTDOWN_TIMEOUT,default=30s"`
	MCPServerMaxHeaderBytes      int           `json:"mcp_server_max_header_bytes" env:"MCP_SERVER_MAX_HEADER_BYTES,default=1048576"`
	MCPServerGracefulShutdown    bool          `json:"mcp_server_graceful_shutdown" env:"MCP_SERVER_GRACEFUL_SHUTDOWN,default=true"`
	MCPServerEnableAccessLogging bool          `json:"mcp_server_enable_access_logging" env:"MCP_SERVER_ENABLE_ACCESS_LOGGING,default=true"`
	MCPStateless                 bool          `json:"mcp_stateless" env:"MCP_STATELESS,default=true"`
	MCPJSONResponse              bool          `json:"mcp_json_response" env:"MCP_JSON_RESPONSE,default=false"`
	MCPSSEEnabled                bool          `json:"mcp_sse_enabled" env:"MCP_SSE_ENABLED,default=false"`

	// Caller IP allowlist, independent of vendor credentials
	MCPIPAuthEnabled       bool     `json:"mcp_ip_auth_enabled" env:"MCP_IP_AUTH_ENABLED,default=false"`
	MCPIPAuthEnableLogging bool     `json:"mcp_ip_auth_enable_logging" env:"MCP_IP_AUTH_ENABLE_LOGGING,default=false"`
	MCPAllowedIPsStr       string   `json:"-" env:"MCP_ALLOWED_IPS"`
	MCPAllowedIPs          []string `json:"mcp_allowed_ips"`

	// Peers whose X-Forwarded-For / X-Real-IP headers are believed
	MCPTrustedProxiesStr string   `json:"-" env:"MCP_TRUSTED_PROXIES"`
	MCPTrustedProxies    []string `json:"mcp_trusted_proxies"`

	// Outbound vendor calls
	VendorRequestTimeout time.Duration `json:"vendor_request_timeout" env:"VENDOR_REQUEST_TIMEOUT,default=30s"`
	VendorRateLimit      float64       `json:"vendor_rate_limit" env:"VENDOR_RATE_LIMIT,default=10"`
	VendorRateBurst      int           `json:"vendor_rate_burst" env:"VENDOR_RATE_BURST,default=20"`
	VendorUserAgent      string        `json:"vendor_user_agent" env:"VENDOR_USER_AGENT,default=mcp-servers"`

	// Logging
	LogLevel  string `json:"log_level" env:"LOG_LEVEL,default=info"`
	LogFormat string `json:"log_format" env:"LOG_FORMAT,default=console"`
	LogOutput string `json:"log_output" env:"LOG_OUTPUT,default=stderr"`

	// Invocation statistics
	StatsEnabled bool   `json:"stats_enabled" env:"STATS_ENABLED,default=true"`
	StatsDBPath  string `json:"stats_db_path" env:"STATS_DB_PATH"`

	// OpenTelemetry
	OTelEnabled              bool    `json:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string  `json:"otel_service_name" env:"OTEL_SERVICE_NAME,default=mcp-servers"`
	OTelExporterOTLPEndpoint string  `json:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string  `json:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string  `json:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelTracesSampler        string  `json:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64 `json:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1"`
}
