// Package generator turns endpoint descriptors into MCP tools.
//
// The work is a single pure pass: select the actions the policy admits,
// convert their routes, classify their parameters, name them and resolve
// identifier collisions. Plan stops there and returns tool definitions the
// runtime can register directly; Generate goes on to render Go source.
package generator

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/api2mcp/internal/diag"
	"github.com/bobmcallan/api2mcp/internal/endpoint"
	"github.com/bobmcallan/api2mcp/internal/genconfig"
	"github.com/bobmcallan/api2mcp/pkg/scope"
	"github.com/bobmcallan/api2mcp/pkg/tool"
)

// Param is a retained parameter and where it is sent.
type Param struct {
	endpoint.Parameter
	Binding tool.Binding
}

// Required reports whether a caller must supply the parameter.
func (p Param) Required() bool {
	return !p.Nullable && !p.HasDefault
}

// Tool is one selected action ready to be registered or emitted.
type Tool struct {
	Descriptor  endpoint.Descriptor
	Identifier  string
	Name        string
	Description string
	Scope       scope.Scope
	Route       Route
	Params      []Param
}

// Definition returns the data form of the tool.
func (t Tool) Definition() tool.Definition {
	def := tool.Definition{
		Identifier:  t.Identifier,
		Name:        t.Name,
		Description: t.Description,
		Method:      string(t.Descriptor.Method),
		Route:       t.Route.Template,
		Scope:       t.Scope,
	}
	for _, p := range t.Params {
		def.Params = append(def.Params, tool.Param{
			Name:     p.Name,
			Kind:     KindOf(p.Type),
			Binding:  p.Binding,
			Required: p.Required(),
			Default:  defaultValue(p.Type, p.Default),
		})
	}
	for _, v := range t.Route.Values {
		def.Routes = append(def.Routes, tool.RouteValue{
			Placeholder: v.Placeholder,
			Param:       v.Param,
			Property:    v.Property,
		})
	}
	return def
}

// Plan is the outcome of one generation pass before rendering.
type Plan struct {
	Tools       []Tool
	Diagnostics []diag.Diagnostic
}

// Definitions returns the definition of every planned tool.
func (p Plan) Definitions() []tool.Definition {
	out := make([]tool.Definition, len(p.Tools))
	for i, t := range p.Tools {
		out[i] = t.Definition()
	}
	return out
}

// Identifiers returns the final identifier of every planned tool.
func (p Plan) Identifiers() []string {
	out := make([]string, len(p.Tools))
	for i, t := range p.Tools {
		out[i] = t.Identifier
	}
	return out
}

// NewPlan selects and prepares tools for descs under cfg.
func NewPlan(descs []endpoint.Descriptor, cfg genconfig.Config) Plan {
	selected, diags := Select(descs, cfg)

	tools := make([]Tool, 0, len(selected))
	ids := make([]string, 0, len(selected))
	for _, d := range selected {
		tools = append(tools, prepare(d, cfg.Naming))
		ids = append(ids, typeIdent(d.ToolClassName()))
	}
	for i, id := range Dedupe(ids) {
		tools[i].Identifier = id
	}

	diags = append(diags, duplicateNames(tools)...)
	return Plan{Tools: tools, Diagnostics: diags}
}

func prepare(d endpoint.Descriptor, naming genconfig.Naming) Tool {
	route := ConvertRoute(d.Route, d.Parameters)
	t := Tool{
		Descriptor:  d,
		Name:        ToolName(d, naming),
		Description: Description(d),
		Scope:       RequiredScope(d),
		Route:       route,
	}
	for _, p := range d.Parameters {
		b, ok := Classify(d.Method, p, route)
		if !ok {
			continue
		}
		t.Params = append(t.Params, Param{Parameter: p, Binding: b})
	}
	return t
}

// ToolName returns the visible name of the tool for d. A custom name wins;
// otherwise the naming format is filled in.
func ToolName(d endpoint.Descriptor, naming genconfig.Naming) string {
	if d.ToolName != "" {
		return d.ToolName
	}
	format := naming.ToolNameFormat
	if format == "" {
		format = genconfig.DefaultToolNameFormat
	}
	controller := d.Controller
	if naming.RemoveControllerSuffix {
		controller = endpoint.BaseName(controller)
	}
	return strings.NewReplacer("{Controller}", controller, "{Action}", d.Action).Replace(format)
}

// Description returns the custom description, the summary, or the verb and
// route when neither is given.
func Description(d endpoint.Descriptor) string {
	switch {
	case d.Description != "":
		return d.Description
	case d.Summary != "":
		return d.Summary
	}
	return fmt.Sprintf("%s %s", d.Method, d.Route)
}

// RequiredScope returns the declared scope, or the one implied by the
// verb when none is declared: Read for GET, Delete for DELETE and Write
// otherwise.
func RequiredScope(d endpoint.Descriptor) scope.Scope {
	if d.RequiredScope != scope.None {
		return d.RequiredScope
	}
	switch d.Method {
	case endpoint.MethodGet:
		return scope.Read
	case endpoint.MethodDelete:
		return scope.Delete
	}
	return scope.Write
}
