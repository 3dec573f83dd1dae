package handlers

import (
	"net/http"

	"github.com/bobmcallan/api2mcp/internal/common"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *common.Logger
	tools  func() int
}

// NewHealthHandler creates a new health handler. tools reports the number
// of registered MCP tools and may be nil.
func NewHealthHandler(logger *common.Logger, tools func() int) *HealthHandler {
	return &HealthHandler{logger: logger, tools: tools}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	count := 0
	if h.tools != nil {
		count = h.tools()
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tools":  count,
	})
}
