package generator

import (
	"strings"

	"github.com/bobmcallan/api2mcp/internal/diag"
	"github.com/bobmcallan/api2mcp/internal/endpoint"
	"github.com/bobmcallan/api2mcp/internal/genconfig"
)

// unsupportedReturns are results that cannot be carried as tool text.
var unsupportedReturns = []string{
	"Stream", "IO.Stream", "FileResult", "FileStreamResult", "FileContentResult",
	"PhysicalFileResult", "VirtualFileResult", "byte[]", "Byte[]", "[]byte",
}

// Select returns the actions that become tools, in input order, with a
// diagnostic for every action excluded for a reason other than policy.
func Select(descs []endpoint.Descriptor, cfg genconfig.Config) ([]endpoint.Descriptor, []diag.Diagnostic) {
	var (
		out   []endpoint.Descriptor
		diags []diag.Diagnostic
	)
	for _, d := range descs {
		if !cfg.MethodAllowed(d.Method) {
			diags = append(diags, diag.Method(d.Controller, d.Action, string(d.Method), cfg.MethodNames()))
			continue
		}
		if unsupportedReturn(d.ReturnType) {
			diags = append(diags, diag.ReturnType(d.Controller, d.Action, d.ReturnType))
			continue
		}
		if IsLoopRoute(d.Route) {
			diags = append(diags, diag.RouteSkipped(d.Controller, d.Action))
			continue
		}
		if ShouldInclude(d, cfg) {
			out = append(out, d)
		}
	}
	return out, diags
}

// ShouldInclude applies the selection precedence to one eligible action:
// loop guard, ignore markers, expose markers, then the configured mode.
func ShouldInclude(d endpoint.Descriptor, cfg genconfig.Config) bool {
	if IsLoopRoute(d.Route) {
		return false
	}
	if d.Ignore || d.ControllerIgnore {
		return false
	}
	if d.Expose || d.ControllerExpose {
		return true
	}

	listed := func(names []string) bool {
		for _, candidate := range selectionNames(d) {
			for _, n := range names {
				if n == candidate {
					return true
				}
			}
		}
		return false
	}

	switch cfg.Mode {
	case genconfig.SelectedOnly:
		return listed(cfg.Include)
	case genconfig.AllExceptExcluded:
		return !listed(cfg.Exclude)
	}
	return false
}

// selectionNames are the names an include or exclude entry can use for d.
func selectionNames(d endpoint.Descriptor) []string {
	base := endpoint.BaseName(d.Controller)
	return []string{
		d.Controller,
		base,
		d.Controller + "." + d.Action,
		base + "." + d.Action,
	}
}

// IsLoopRoute reports whether a route could reach the MCP endpoint. The
// match is a case-insensitive substring so anything resembling the
// endpoint is kept out of the tool surface.
func IsLoopRoute(route string) bool {
	r := "/" + strings.TrimLeft(strings.ToLower(route), "/")
	return strings.Contains(r, "/mcp")
}

func unsupportedReturn(t string) bool {
	t = strings.TrimSuffix(canonicalType(t), "?")
	if strings.HasPrefix(t, "IAsyncEnumerable<") || strings.HasPrefix(t, "Collections.Generic.IAsyncEnumerable<") {
		return true
	}
	t = strings.TrimPrefix(t, "Microsoft.AspNetCore.Mvc.")
	for _, u := range unsupportedReturns {
		if t == u {
			return true
		}
	}
	return false
}
