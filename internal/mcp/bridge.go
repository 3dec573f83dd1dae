// Package mcp exposes tool definitions over the Model Context Protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/api2mcp/internal/common"
	"github.com/bobmcallan/api2mcp/pkg/invoker"
	"github.com/bobmcallan/api2mcp/pkg/tool"
)

// NewServer creates the MCP server tools are registered on.
func NewServer(name, version string) *server.MCPServer {
	return server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)
}

// Register adds a data-driven tool to s for every definition and returns
// how many were added. A definition whose visible name is already taken is
// skipped with a warning, since mcp-go would replace the earlier tool.
func Register(s *server.MCPServer, inv *invoker.Invoker, defs []tool.Definition, logger *common.Logger) int {
	owners := make(map[string]string, len(defs))
	count := 0
	for _, def := range defs {
		if owner, taken := owners[def.Name]; taken {
			logger.Warn().
				Str("tool", def.Name).
				Str("identifier", def.Identifier).
				Str("registered_as", owner).
				Msg("skipping duplicate tool name")
			continue
		}
		owners[def.Name] = def.Identifier
		s.AddTool(tool.MCPTool(def), DefinitionHandler(inv, def))
		count++
	}
	return count
}

// DefinitionHandler calls the action behind def. It binds the arguments
// the same way generated code does, checks the caller's scope and sends
// the request through inv.
func DefinitionHandler(inv *invoker.Invoker, def tool.Definition) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		call, err := tool.Bind(def, req.GetArguments())
		if err != nil {
			return tool.Result("", err)
		}
		if err := inv.BeforeInvoke(ctx, def.Scope); err != nil {
			return tool.Result("", err)
		}

		opts := make([]invoker.CallOption, 0, len(call.Headers))
		for name, value := range call.Headers {
			opts = append(opts, invoker.WithHeader(name, value))
		}
		return tool.Result(inv.Send(ctx, def.Method, call.Route, call.Body, opts...))
	}
}
