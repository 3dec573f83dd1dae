package generator

import (
	"github.com/bobmcallan/api2mcp/internal/endpoint"
	"github.com/bobmcallan/api2mcp/pkg/tool"
)

// Classify resolves where a parameter's value is sent. The second result
// is false for parameters the host injects, which never reach a tool.
//
// An explicit source wins. Otherwise a structured parameter of a POST
// action is the body, a parameter feeding the converted route is a route
// value and anything else is a query value.
func Classify(method endpoint.Method, p endpoint.Parameter, route Route) (tool.Binding, bool) {
	if p.Injected() {
		return "", false
	}
	switch p.Source {
	case endpoint.SourceRoute:
		return tool.BindRoute, true
	case endpoint.SourceQuery:
		return tool.BindQuery, true
	case endpoint.SourceBody:
		return tool.BindBody, true
	case endpoint.SourceHeader:
		return tool.BindHeader, true
	}
	if method == endpoint.MethodPost && IsComplexType(p.Type) {
		return tool.BindBody, true
	}
	if route.References(p.Name) {
		return tool.BindRoute, true
	}
	return tool.BindQuery, true
}
