package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/api2mcp/internal/config"
)

// VersionToolName is the name of the built-in version tool.
const VersionToolName = "api2mcp_version"

// versionInfo holds version fields for the running host.
type versionInfo struct {
	config.VersionInfo
	Tools int `json:"tools"`
}

// VersionTool returns the mcp.Tool definition for the version tool.
func VersionTool() mcp.Tool {
	return mcp.NewTool(VersionToolName,
		mcp.WithDescription("Get the api2mcp host version and the number of registered tools. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports the build information and tool count.
func VersionToolHandler(tools int) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := json.Marshal(versionInfo{VersionInfo: config.GetVersionInfo(), Tools: tools})
		if err != nil {
			return mcp.NewToolResultError("failed to marshal version info"), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}
