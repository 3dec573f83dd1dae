// Package loopguard rejects self-calls into the MCP endpoint.
//
// Tools reach the API through the invoker, which marks every request with
// invoker.InternalCallHeader. A marked request for the MCP prefix would
// re-enter the tool layer, so it is refused with 400 before any other
// middleware runs.
package loopguard

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/api2mcp/pkg/invoker"
)

// DefaultPrefix is the path the MCP endpoint is mounted on.
const DefaultPrefix = "/mcp"

// Message is the response body for a rejected call.
const Message = "MCP endpoints cannot be called internally to prevent loops."

// Middleware returns a handler wrapper that refuses marked requests under
// prefix. An empty prefix means DefaultPrefix.
func Middleware(prefix string) func(http.Handler) http.Handler {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	prefix = "/" + strings.Trim(prefix, "/")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if marked(r) && HasPrefix(r.URL.Path, prefix) {
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(Message))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// marked reports whether the internal-call header is present, whatever its
// value, including empty.
func marked(r *http.Request) bool {
	_, ok := r.Header[http.CanonicalHeaderKey(invoker.InternalCallHeader)]
	return ok
}

// HasPrefix reports whether path is prefix or lies below it, comparing
// whole segments case-insensitively: "/MCP/tools" matches "/mcp" but
// "/mcpx" does not.
func HasPrefix(path, prefix string) bool {
	if len(path) < len(prefix) || !strings.EqualFold(path[:len(prefix)], prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
