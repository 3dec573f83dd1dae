package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/api2mcp/internal/common"
	"github.com/bobmcallan/api2mcp/pkg/invoker"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	streamable     *mcpserver.StreamableHTTPServer
	logger         *common.Logger
	allowAnonymous bool
}

// NewHandler serves s over stateless streamable HTTP. When allowAnonymous
// is false, callers without an authenticated principal are refused.
func NewHandler(s *mcpserver.MCPServer, logger *common.Logger, allowAnonymous bool) *Handler {
	streamable := mcpserver.NewStreamableHTTPServer(s,
		mcpserver.WithStateLess(true),
		mcpserver.WithHTTPContextFunc(captureAuthorization),
	)
	return &Handler{
		streamable:     streamable,
		logger:         logger,
		allowAnonymous: allowAnonymous,
	}
}

// ServeHTTP enforces the anonymous policy and delegates to the mcp-go
// StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.allowAnonymous {
		if _, ok := invoker.PrincipalFrom(r.Context()); !ok {
			h.logger.Debug().Str("path", r.URL.Path).Msg("rejecting anonymous MCP request")
			w.Header().Set("WWW-Authenticate", `Bearer realm="api2mcp"`)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error":             "unauthorized",
				"error_description": "Authentication required to access MCP endpoint",
			})
			return
		}
	}

	h.streamable.ServeHTTP(w, r)
}

// captureAuthorization carries the inbound Authorization header and
// principal into the context tool handlers run with, so self-calls can
// forward them.
func captureAuthorization(ctx context.Context, r *http.Request) context.Context {
	if header := r.Header.Get("Authorization"); header != "" {
		ctx = invoker.WithAuthorization(ctx, header)
	}
	if p, ok := invoker.PrincipalFrom(r.Context()); ok {
		ctx = invoker.WithPrincipal(ctx, p)
	}
	return ctx
}
