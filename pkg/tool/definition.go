// Package tool describes generated MCP tools and maps them onto mcp-go.
//
// A Definition is the data form of one tool: its visible name, the HTTP
// call it proxies and the arguments it accepts. Generated code returns one
// from each unit's Definition method, and the runtime host builds them from
// an endpoint inventory for dynamic registration.
package tool

import (
	"strings"

	"github.com/bobmcallan/api2mcp/pkg/scope"
)

// Binding says where an argument's value goes in the HTTP request.
type Binding string

const (
	BindRoute  Binding = "route"
	BindQuery  Binding = "query"
	BindBody   Binding = "body"
	BindHeader Binding = "header"
)

// Kind is the JSON schema type advertised for an argument.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Param is one caller-supplied argument.
type Param struct {
	Name        string  `json:"name"`
	Kind        Kind    `json:"kind"`
	Binding     Binding `json:"binding"`
	Required    bool    `json:"required,omitempty"`
	Description string  `json:"description,omitempty"`
	Default     any     `json:"default,omitempty"`
}

// RouteValue feeds one converted route placeholder. Property is set when
// the value is read from a field of a structured argument.
type RouteValue struct {
	Placeholder string `json:"placeholder"`
	Param       string `json:"param"`
	Property    string `json:"property,omitempty"`
}

// Definition is one tool.
type Definition struct {
	Identifier  string       `json:"identifier"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Method      string       `json:"method"`
	Route       string       `json:"route"`
	Scope       scope.Scope  `json:"scope"`
	Params      []Param      `json:"params,omitempty"`
	Routes      []RouteValue `json:"routes,omitempty"`
}

// Param returns the named argument.
func (d Definition) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ParamsBoundTo returns the arguments with the given binding, in order.
func (d Definition) ParamsBoundTo(b Binding) []Param {
	var out []Param
	for _, p := range d.Params {
		if p.Binding == b {
			out = append(out, p)
		}
	}
	return out
}

// HasBody reports whether the method carries a request body.
func HasBody(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}
