// Package observability wires OpenTelemetry tracing and metrics export.
package observability

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Zentre-Ai/mcp-servers/internal/types"
)

const (
	protocolHTTP = "http/protobuf"
	protocolGRPC = "grpc"

	serviceNameKey = "service.name"
)

// Settings are the resolved OpenTelemetry options.
type Settings struct {
	Enabled        bool
	ServiceName    string
	Endpoint       string
	Protocol       string
	Resource       map[string]string
	Sampler        string
	SamplerArg     float64
	ExportInterval time.Duration
}

// SettingsFrom resolves Settings from the process configuration.
func SettingsFrom(cfg *types.Config) (*Settings, error) {
	if cfg == nil {
		return nil, fmt.Errorf("observability: nil configuration")
	}

	attrs, err := parseResourceAttributes(cfg.OTelResourceAttributes)
	if err != nil {
		return nil, fmt.Errorf("observability: OTEL_RESOURCE_ATTRIBUTES: %w", err)
	}

	s := &Settings{
		Enabled:     cfg.OTelEnabled,
		ServiceName: strings.TrimSpace(cfg.OTelServiceName),
		Endpoint:    strings.TrimSpace(cfg.OTelExporterOTLPEndpoint),
		Protocol:    strings.ToLower(strings.TrimSpace(cfg.OTelExporterOTLPProtocol)),
		Resource:    attrs,
		Sampler:     strings.ToLower(strings.TrimSpace(cfg.OTelTracesSampler)),
		SamplerArg:  cfg.OTelTracesSamplerArg,
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) normalize() error {
	if s.ServiceName == "" {
		s.ServiceName = "mcp-servers"
	}
	if s.Protocol == "" {
		s.Protocol = protocolHTTP
	}
	if s.Sampler == "" {
		s.Sampler = "always_on"
	}
	if s.ExportInterval <= 0 {
		s.ExportInterval = time.Minute
	}
	if s.Resource == nil {
		s.Resource = map[string]string{}
	}
	if _, ok := s.Resource[serviceNameKey]; !ok {
		s.Resource[serviceNameKey] = s.ServiceName
	}

	if !s.Enabled {
		return nil
	}

	if s.Endpoint == "" {
		return fmt.Errorf("observability: OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED=true")
	}
	switch s.Protocol {
	case protocolHTTP:
		u, err := url.Parse(s.Endpoint)
		if err != nil {
			return fmt.Errorf("observability: invalid OTLP endpoint: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("observability: http/protobuf endpoint needs an http(s) URL with a host, got %q", s.Endpoint)
		}
	case protocolGRPC:
		if _, _, err := grpcTarget(s.Endpoint); err != nil {
			return fmt.Errorf("observability: invalid OTLP gRPC endpoint: %w", err)
		}
	default:
		return fmt.Errorf("observability: unsupported OTLP protocol %q", s.Protocol)
	}

	if s.Sampler == "traceidratio" && (s.SamplerArg <= 0 || s.SamplerArg > 1) {
		return fmt.Errorf("observability: traceidratio sampler needs OTEL_TRACES_SAMPLER_ARG in (0, 1]")
	}
	return nil
}

// parseResourceAttributes reads "k1=v1,k2=v2".
func parseResourceAttributes(input string) (map[string]string, error) {
	attrs := map[string]string{}
	for _, pair := range strings.Split(input, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid resource attribute %q", pair)
		}
		attrs[key] = strings.TrimSpace(value)
	}
	return attrs, nil
}
