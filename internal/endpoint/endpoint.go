// Package endpoint describes the HTTP actions tools are generated from.
//
// Descriptors are produced by an extractor (an inventory file or an
// OpenAPI document) and are immutable afterwards.
package endpoint

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/api2mcp/pkg/scope"
)

// Method is an HTTP verb an action can be bound to.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// Methods lists every supported verb.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

// ParseMethod reads a verb case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported HTTP method %q", s)
}

// Source is where a parameter's value is bound from.
type Source string

// SourceAuto is the zero value: the generator infers the binding.
const (
	SourceAuto     Source = ""
	SourceRoute    Source = "route"
	SourceQuery    Source = "query"
	SourceBody     Source = "body"
	SourceHeader   Source = "header"
	SourceServices Source = "services"
)

// ParseSource reads a binding source. Empty and "auto" mean SourceAuto.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case SourceAuto, "auto":
		return SourceAuto, nil
	case SourceRoute, SourceQuery, SourceBody, SourceHeader, SourceServices:
		return src, nil
	}
	return "", fmt.Errorf("unknown parameter source %q", s)
}

// Property is a field of a structured parameter type.
type Property struct {
	Name     string
	Type     string
	Nullable bool
}

// Parameter is one declared action parameter.
type Parameter struct {
	Name       string
	Type       string
	Nullable   bool
	HasDefault bool
	Default    any
	Source     Source
	Properties []Property
}

// Injected reports whether the parameter is supplied by the host rather
// than by the caller: service injection and cancellation tokens.
func (p Parameter) Injected() bool {
	if p.Source == SourceServices {
		return true
	}
	switch strings.TrimSuffix(p.Type, "?") {
	case "CancellationToken", "System.Threading.CancellationToken", "context.Context":
		return true
	}
	return false
}

// Descriptor is one action.
type Descriptor struct {
	Controller string
	Action     string
	Method     Method
	Route      string
	Parameters []Parameter
	ReturnType string

	Expose           bool
	Ignore           bool
	ControllerExpose bool
	ControllerIgnore bool

	Summary       string
	ToolName      string
	Description   string
	RequiredScope scope.Scope
}

// Subject names the action as "Controller.Action".
func (d Descriptor) Subject() string {
	return d.Controller + "." + d.Action
}

// ToolClassName is the identifier of the tool generated for d before
// duplicate resolution.
func (d Descriptor) ToolClassName() string {
	return d.Controller + "_" + d.Action + "Tool"
}

// BaseName strips a trailing "Controller" from a controller name.
func BaseName(controller string) string {
	return strings.TrimSuffix(controller, "Controller")
}

// BuildRoute joins a controller route prefix and an action template into
// an absolute route, replacing [controller] with the lowercased base name.
func BuildRoute(prefix, template, controller string) string {
	var parts []string
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, strings.ReplaceAll(p, "[controller]", strings.ToLower(BaseName(controller))))
	}
	if t := strings.Trim(template, "/"); t != "" {
		parts = append(parts, strings.ReplaceAll(t, "[controller]", strings.ToLower(BaseName(controller))))
	}
	return "/" + strings.Join(parts, "/")
}

var asyncWrappers = []string{
	"System.Threading.Tasks.Task",
	"System.Threading.Tasks.ValueTask",
	"Task",
	"ValueTask",
}

var resultWrappers = []string{
	"Microsoft.AspNetCore.Mvc.ActionResult",
	"ActionResult",
}

// UnwrapReturnType removes an asynchronous wrapper and then an action
// result wrapper from a declared return type. A bare Task is "void".
func UnwrapReturnType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return "void"
	}
	for _, w := range asyncWrappers {
		if t == w {
			return "void"
		}
		if inner, ok := unwrapGeneric(t, w); ok {
			t = inner
			break
		}
	}
	for _, w := range resultWrappers {
		if inner, ok := unwrapGeneric(t, w); ok {
			return inner
		}
	}
	return t
}

func unwrapGeneric(t, name string) (string, bool) {
	if !strings.HasPrefix(t, name+"<") || !strings.HasSuffix(t, ">") {
		return "", false
	}
	return strings.TrimSpace(t[len(name)+1 : len(t)-1]), true
}
