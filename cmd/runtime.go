package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Zentre-Ai/mcp-servers/internal/config"
	"github.com/Zentre-Ai/mcp-servers/internal/logger"
	"github.com/Zentre-Ai/mcp-servers/internal/metrics"
	"github.com/Zentre-Ai/mcp-servers/internal/observability"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
	"github.com/Zentre-Ai/mcp-servers/internal/types"
)

// loadConfig reads dotenv files and then the environment.
func loadConfig() (*types.Config, error) {
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// startRuntime initializes logging, telemetry and the stats store. The
// returned func flushes and closes them.
func startRuntime(cfg *types.Config, stdio bool) (func(), error) {
	output := cfg.LogOutput
	if stdio && output == "stdout" {
		// stdout carries the protocol stream
		output = "stderr"
	}
	if err := logger.Initialize(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, OutputPath: output}); err != nil {
		return nil, err
	}
	log := logger.Named("cmd")

	shutdownOTel, err := observability.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	statsOpen := false
	if cfg.StatsEnabled {
		if err := metrics.Init(cfg.StatsDBPath); err != nil {
			log.Warnw("invocation stats disabled", "error", err)
		} else {
			statsOpen = true
			if _, err := metrics.InitOTelMetrics(nil); err != nil {
				log.Warnw("failed to export invocation stats", "error", err)
			}
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			log.Warnw("OpenTelemetry shutdown failed", "error", err)
		}
		if statsOpen {
			_ = metrics.Close()
		}
		_ = logger.Sync()
	}, nil
}

func restOptions(cfg *types.Config) restclient.Options {
	return restclient.Options{
		Timeout:   cfg.VendorRequestTimeout,
		RateLimit: cfg.VendorRateLimit,
		RateBurst: cfg.VendorRateBurst,
		UserAgent: cfg.VendorUserAgent,
	}
}
