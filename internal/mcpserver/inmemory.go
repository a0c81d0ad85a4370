package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// InMemorySession connects a client to a fresh server for integ without any
// network transport. Closing the client session ends the server session.
func InMemorySession(ctx context.Context, integ Integration, opts ServerOptions) (*mcp.ClientSession, error) {
	server := NewSDKServer(integ, opts)
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect server: %w", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "mcp-servers-inmemory", Version: Version}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		_ = serverSession.Close()
		return nil, fmt.Errorf("connect client: %w", err)
	}
	return clientSession, nil
}

// ListTools returns the tools integ registers.
func ListTools(ctx context.Context, integ Integration) ([]*mcp.Tool, error) {
	session, err := InMemorySession(ctx, integ, ServerOptions{})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return res.Tools, nil
}
