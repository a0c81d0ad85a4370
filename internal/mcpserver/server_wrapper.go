package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/logger"
	"github.com/Zentre-Ai/mcp-servers/internal/types"
)

const healthPath = "/health"

// ServerWrapper serves one integration over HTTP: the MCP endpoint behind the
// credential boundary, a health endpoint, the optional IP allowlist and
// access logging.
type ServerWrapper struct {
	integration Integration
	sdkServer   *mcp.Server
	sdkConfig   *SDKServerConfig
	ipAuth      *IPAuthMiddleware
	proxies     *clientIPResolver
	log         *zap.SugaredLogger

	mutex      sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
	wg         sync.WaitGroup
	isRunning  bool
	startedAt  time.Time
}

// NewServerWrapper validates config and builds the SDK server for integ.
func NewServerWrapper(config *types.Config, integ Integration, opts ServerOptions) (*ServerWrapper, error) {
	if integ == nil {
		return nil, fmt.Errorf("integration cannot be nil")
	}
	sdkConfig, err := NewConfigAdapter(config).ToSDKConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to convert configuration: %w", err)
	}

	sw := &ServerWrapper{
		integration: integ,
		sdkConfig:   sdkConfig,
		log:         logger.Named("mcpserver").With("integration", integ.Name()),
	}
	// Inbound HTTP callers always bring their own credentials.
	opts.StaticCredentials = false
	sw.sdkServer = NewSDKServer(integ, opts)

	sw.proxies, err = newClientIPResolver(sdkConfig.TrustedProxies)
	if err != nil {
		return nil, err
	}
	if sdkConfig.IPAuthEnabled {
		sw.ipAuth, err = NewIPAuthMiddleware(sdkConfig.AllowedIPs, sdkConfig.TrustedProxies, sdkConfig.IPAuthEnableLogging)
		if err != nil {
			return nil, fmt.Errorf("failed to create IP auth middleware: %w", err)
		}
	}
	return sw, nil
}

// Handler returns the complete HTTP handler chain.
func (sw *ServerWrapper) Handler() http.Handler {
	getServer := func(*http.Request) *mcp.Server { return sw.sdkServer }
	var sseBinder credctx.Binder
	if sw.sdkConfig.SSEEnabled {
		sseBinder = sw.integration.Binder()
	}
	dual := NewDualTransportHandler(getServer, &mcp.StreamableHTTPOptions{
		Stateless:    sw.sdkConfig.Stateless,
		JSONResponse: sw.sdkConfig.JSONResponse,
	}, sseBinder)

	mux := http.NewServeMux()
	mux.Handle(sw.sdkConfig.Path, credctx.NewBoundary(sw.integration.Binder(), dual))
	mux.HandleFunc(healthPath, sw.handleHealthCheck)

	var handler http.Handler = mux
	if sw.ipAuth != nil {
		handler = sw.ipAuth.Middleware(handler)
	}
	return requestMiddleware(sw.log, sw.sdkConfig.AccessLog, sw.proxies, handler)
}

// Start listens on the configured address and serves in the background.
func (sw *ServerWrapper) Start() error {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()

	if sw.isRunning {
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", sw.sdkConfig.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", sw.sdkConfig.Address(), err)
	}

	server := &http.Server{
		Handler:        sw.Handler(),
		ReadTimeout:    sw.sdkConfig.ReadTimeout,
		WriteTimeout:   sw.sdkConfig.WriteTimeout,
		IdleTimeout:    sw.sdkConfig.IdleTimeout,
		MaxHeaderBytes: sw.sdkConfig.MaxHeaderBytes,
	}
	sw.httpServer = server
	sw.listener = ln

	sw.wg.Add(1)
	go func() {
		defer sw.wg.Done()
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sw.log.Errorw("HTTP server error", "error", err)
		}
	}()

	sw.isRunning = true
	sw.startedAt = time.Now()
	sw.log.Infow("MCP server started",
		"address", ln.Addr().String(),
		"path", sw.sdkConfig.Path,
		"stateless", sw.sdkConfig.Stateless,
		"sse", sw.sdkConfig.SSEEnabled,
		"ip_auth", sw.sdkConfig.IPAuthEnabled,
	)
	return nil
}

// Addr is the bound listener address, or "" before Start.
func (sw *ServerWrapper) Addr() string {
	sw.mutex.RLock()
	defer sw.mutex.RUnlock()
	if sw.listener == nil {
		return ""
	}
	return sw.listener.Addr().String()
}

// Stop shuts the HTTP server down, gracefully when configured.
func (sw *ServerWrapper) Stop() error {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()

	if !sw.isRunning {
		return fmt.Errorf("server is not running")
	}

	var stopErr error
	if sw.sdkConfig.GracefulShutdown {
		ctx, cancel := context.WithTimeout(context.Background(), sw.sdkConfig.ShutdownTimeout)
		defer cancel()
		if err := sw.httpServer.Shutdown(ctx); err != nil {
			sw.log.Warnw("graceful shutdown failed, forcing close", "error", err)
			stopErr = sw.httpServer.Close()
		}
	} else {
		stopErr = sw.httpServer.Close()
	}
	sw.wg.Wait()

	sw.isRunning = false
	sw.listener = nil
	sw.log.Infow("MCP server stopped")
	return stopErr
}

// IsRunning reports whether Start has been called without Stop.
func (sw *ServerWrapper) IsRunning() bool {
	sw.mutex.RLock()
	defer sw.mutex.RUnlock()
	return sw.isRunning
}

func (sw *ServerWrapper) GetConfig() *SDKServerConfig {
	return sw.sdkConfig
}

func (sw *ServerWrapper) GetSDKServer() *mcp.Server {
	return sw.sdkServer
}

// ServeStdio runs integ over stdin/stdout until ctx is done or the client
// disconnects. Credentials come from the environment.
func ServeStdio(ctx context.Context, integ Integration, opts ServerOptions) error {
	opts.StaticCredentials = true
	server := NewSDKServer(integ, opts)
	logger.Named("mcpserver").Infow("serving over stdio", "integration", integ.Name())
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}

func (sw *ServerWrapper) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sw.mutex.RLock()
	uptime := ""
	if sw.isRunning {
		uptime = time.Since(sw.startedAt).Round(time.Second).String()
	}
	sw.mutex.RUnlock()

	health := map[string]any{
		"status":      "healthy",
		"integration": sw.integration.Name(),
		"version":     Version,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"headers":     sw.integration.Binder().Headers(),
	}
	if uptime != "" {
		health["uptime"] = uptime
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		sw.log.Warnw("failed to encode health response", "error", err)
	}
}
