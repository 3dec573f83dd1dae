package handlers

import (
	"net/http"

	"github.com/bobmcallan/api2mcp/internal/common"
	"github.com/bobmcallan/api2mcp/pkg/tool"
)

// toolSummary is the listing entry for one registered tool.
type toolSummary struct {
	Name        string      `json:"name"`
	Identifier  string      `json:"identifier"`
	Description string      `json:"description"`
	Method      string      `json:"method"`
	Route       string      `json:"route"`
	Scope       string      `json:"scope"`
	Params      []paramInfo `json:"params,omitempty"`
}

type paramInfo struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Binding  string `json:"binding"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
}

// ToolsHandler lists the tool definitions served on the MCP endpoint.
type ToolsHandler struct {
	logger *common.Logger
	defs   func() []tool.Definition
}

// NewToolsHandler creates a tools listing handler over defs.
func NewToolsHandler(logger *common.Logger, defs func() []tool.Definition) *ToolsHandler {
	return &ToolsHandler{logger: logger, defs: defs}
}

// ServeHTTP handles GET /api/tools.
func (h *ToolsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	var defs []tool.Definition
	if h.defs != nil {
		defs = h.defs()
	}

	out := make([]toolSummary, 0, len(defs))
	for _, d := range defs {
		s := toolSummary{
			Name:        d.Name,
			Identifier:  d.Identifier,
			Description: d.Description,
			Method:      d.Method,
			Route:       d.Route,
			Scope:       d.Scope.String(),
		}
		for _, p := range d.Params {
			s.Params = append(s.Params, paramInfo{
				Name:     p.Name,
				Kind:     string(p.Kind),
				Binding:  string(p.Binding),
				Required: p.Required,
				Default:  p.Default,
			})
		}
		out = append(out, s)
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"count": len(out),
		"tools": out,
	})
}
