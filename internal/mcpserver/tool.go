package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Zentre-Ai/mcp-servers/internal/credctx"
	"github.com/Zentre-Ai/mcp-servers/internal/logger"
	"github.com/Zentre-Ai/mcp-servers/internal/metrics"
	"github.com/Zentre-Ai/mcp-servers/internal/restclient"
)

// ToolFunc implements one tool. creds belong to the request being served and
// must not be retained after the call returns. The returned value is
// rendered as JSON text; a string is returned verbatim.
type ToolFunc[C, In any] func(ctx context.Context, creds C, in In) (any, error)

// AddTool registers fn on the registrar's server. The input schema is
// inferred from In unless tool.InputSchema is set.
func AddTool[C, In any](r *Registrar, tool *mcp.Tool, fn ToolFunc[C, In]) {
	toolName := tool.Name
	attrs := []attribute.KeyValue{
		attribute.String("mcp.integration", r.integration),
		attribute.String("mcp.tool.name", toolName),
	}

	mcp.AddTool(r.server, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		ctx, span := tracer.Start(ctx, "mcpserver.tool."+toolName, trace.WithAttributes(attrs...))
		defer span.End()

		start := time.Now()
		errType := ""
		defer func() {
			r.metrics.record(ctx, attrs, time.Since(start), errType)
			metrics.RecordInvocation(r.integration, toolName, errType != "")
		}()

		creds, ok := credctx.Read[C](ctx)
		if !ok {
			errType = "no_credentials"
			span.SetStatus(codes.Error, errType)
			return ErrorResult(credctx.MissingMessage(r.binder)), nil, nil
		}

		out, err := fn(ctx, creds, in)
		if err != nil {
			errType = classifyError(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Named("mcpserver").Warnw("tool call failed",
				"integration", r.integration,
				"tool", toolName,
				"error_type", errType,
				"error", err,
			)
			return ErrorResult(err.Error()), nil, nil
		}

		result, err := TextResult(out)
		if err != nil {
			errType = "encode_failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, errType)
			return ErrorResult(err.Error()), nil, nil
		}
		return result, nil, nil
	})
}

// TextResult renders v as the text content of a successful result.
func TextResult(v any) (*mcp.CallToolResult, error) {
	var text string
	switch t := v.(type) {
	case string:
		text = t
	case nil:
		text = "{}"
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode tool result: %w", err)
		}
		text = string(data)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil
}

// ErrorResult is a tool-level failure visible to the caller.
func ErrorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "Error: " + msg}},
	}
}

func classifyError(err error) string {
	var apiErr *restclient.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf("vendor_%d", apiErr.StatusCode)
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "tool_call_failed"
	}
}
