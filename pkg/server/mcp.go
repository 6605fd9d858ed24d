package server

import (
	"context"
	"encoding/json"

	"github.com/gtonic/defillama-mcp/pkg/tool"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCP registers every tool of the registry on an MCP server.
func NewMCP(name, version string, registry tool.Registry) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(name, version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
		mcpserver.WithRecovery(),
	)

	for _, t := range registry.Tools() {
		schema, _ := json.Marshal(t.Schema)

		s.AddTool(mcp.NewToolWithRawSchema(t.Name, t.Description, schema), toolHandler(registry, t.Name))
	}

	return s
}

// ServeStdio runs the MCP server over stdin/stdout until EOF.
func ServeStdio(name, version string, registry tool.Registry) error {
	return mcpserver.ServeStdio(NewMCP(name, version, registry))
}

func toolHandler(registry tool.Registry, name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := registry.Invoke(ctx, name, req.GetArguments())

		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(result)

		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}
