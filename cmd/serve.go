package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Zentre-Ai/mcp-servers/internal/config"
	"github.com/Zentre-Ai/mcp-servers/internal/integrations"
	"github.com/Zentre-Ai/mcp-servers/internal/logger"
	"github.com/Zentre-Ai/mcp-servers/internal/mcpserver"
	"github.com/Zentre-Ai/mcp-servers/internal/types"
)

var (
	serveTransport    string
	serveHost         string
	servePort         int
	servePath         string
	serveStateless    bool
	serveJSONResponse bool
	serveSSE          bool
	serveAllowedIPs   []string
	serveTrustedProxy []string
	serveEnableIPAuth bool
	serveAccessLog    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <integration>",
	Short: "Serve one integration as an MCP server",
	Long: `
Serve one integration's tools over MCP.

With --transport http (the default) every request must carry the integration's
credential headers; requests without them are answered with 401 before reaching
the MCP transport. Credentials are scoped to the request that carried them.

With --transport stdio the server speaks MCP on stdin/stdout and reads
credentials from the environment (for example GITHUB_TOKEN).

Run "mcp-servers list" to see integrations and the headers they expect.

Examples:
  mcp-servers serve github                          # HTTP on localhost:8080/mcp
  mcp-servers serve jira --host 0.0.0.0 --port 9000
  mcp-servers serve stripe --allowed-ips 10.0.0.0/8 --enable-ip-auth
  GITHUB_TOKEN=ghp_... mcp-servers serve github --transport stdio
`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveTransport, "transport", "t", "http", "Transport: http or stdio")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Server host address")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&servePath, "path", "/mcp", "MCP endpoint path")
	serveCmd.Flags().BoolVar(&serveStateless, "stateless", true, "Serve the streamable transport without sessions")
	serveCmd.Flags().BoolVar(&serveJSONResponse, "json-response", false, "Answer streamable POSTs with JSON instead of SSE streams")
	serveCmd.Flags().BoolVar(&serveSSE, "sse", false, "Also accept the legacy SSE transport")
	serveCmd.Flags().StringSliceVar(&serveAllowedIPs, "allowed-ips", nil, "Comma-separated list of allowed IP addresses/ranges")
	serveCmd.Flags().StringSliceVar(&serveTrustedProxy, "trusted-proxies", nil, "Proxy addresses/ranges whose X-Forwarded-For headers are trusted")
	serveCmd.Flags().BoolVar(&serveEnableIPAuth, "enable-ip-auth", false, "Enable IP-based access control")
	serveCmd.Flags().BoolVar(&serveAccessLog, "enable-access-log", true, "Enable HTTP access logging")
}

// applyServeFlags overrides cfg with flags the user set explicitly.
func applyServeFlags(cmd *cobra.Command, cfg *types.Config) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.MCPServerHost = serveHost
	}
	if flags.Changed("port") {
		cfg.MCPServerPort = servePort
	}
	if flags.Changed("path") {
		cfg.MCPServerPath = servePath
	}
	if flags.Changed("stateless") {
		cfg.MCPStateless = serveStateless
	}
	if flags.Changed("json-response") {
		cfg.MCPJSONResponse = serveJSONResponse
	}
	if flags.Changed("sse") {
		cfg.MCPSSEEnabled = serveSSE
	}
	if flags.Changed("allowed-ips") {
		cfg.MCPAllowedIPs = serveAllowedIPs
	}
	if flags.Changed("trusted-proxies") {
		cfg.MCPTrustedProxies = serveTrustedProxy
	}
	if flags.Changed("enable-ip-auth") {
		cfg.MCPIPAuthEnabled = serveEnableIPAuth
	}
	if flags.Changed("enable-access-log") {
		cfg.MCPServerEnableAccessLogging = serveAccessLog
	}
	return config.Validate(cfg)
}

func runServe(cmd *cobra.Command, args []string) error {
	transport := strings.ToLower(serveTransport)
	if transport != "http" && transport != "stdio" {
		return fmt.Errorf("invalid transport %q (allowed: http|stdio)", serveTransport)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyServeFlags(cmd, cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	integ, err := integrations.Lookup(args[0], restOptions(cfg))
	if err != nil {
		return err
	}

	stop, err := startRuntime(cfg, transport == "stdio")
	if err != nil {
		return err
	}
	defer stop()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if transport == "stdio" {
		return mcpserver.ServeStdio(ctx, integ, mcpserver.ServerOptions{})
	}
	return serveHTTP(ctx, cfg, integ)
}

func serveHTTP(ctx context.Context, cfg *types.Config, integ mcpserver.Integration) error {
	log := logger.Named("cmd").With("integration", integ.Name())

	server, err := mcpserver.NewServerWrapper(cfg, integ, mcpserver.ServerOptions{})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}
	log.Infow("accepting requests",
		"url", fmt.Sprintf("http://%s%s", server.Addr(), server.GetConfig().Path),
		"credential_headers", integ.Binder().Headers(),
	)

	<-ctx.Done()
	log.Infow("received shutdown signal, stopping server")
	if err := server.Stop(); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	return nil
}
