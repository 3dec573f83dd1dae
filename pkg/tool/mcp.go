package tool

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Unit is a callable tool: generated code implements it once per action.
type Unit interface {
	Definition() Definition
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Register adds u to s.
func Register(s *server.MCPServer, u Unit) {
	s.AddTool(MCPTool(u.Definition()), u.Handle)
}

// MCPTool converts a Definition into an mcp.Tool with the matching input
// schema.
func MCPTool(def Definition) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}
	for _, p := range def.Params {
		opts = append(opts, paramOption(p))
	}
	return mcp.NewTool(def.Name, opts...)
}

func paramOption(p Param) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcp.Description(p.Description))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}

	switch p.Kind {
	case KindNumber, KindInteger:
		if f, ok := numericDefault(p.Default); ok {
			opts = append(opts, mcp.DefaultNumber(f))
		}
		return mcp.WithNumber(p.Name, opts...)
	case KindBoolean:
		if b, ok := p.Default.(bool); ok {
			opts = append(opts, mcp.DefaultBool(b))
		}
		return mcp.WithBoolean(p.Name, opts...)
	case KindArray:
		opts = append([]mcp.PropertyOption{mcp.Items(map[string]any{})}, opts...)
		return mcp.WithArray(p.Name, opts...)
	case KindObject:
		return mcp.WithObject(p.Name, opts...)
	default:
		if s, ok := p.Default.(string); ok {
			opts = append(opts, mcp.DefaultString(s))
		}
		return mcp.WithString(p.Name, opts...)
	}
}

func numericDefault(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Result converts a tool call outcome into an MCP result. Failures become
// tool errors the agent can read; cancellation is returned as an error so
// the transport can abandon the request.
func Result(out string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}
