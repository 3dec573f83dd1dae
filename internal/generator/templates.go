package generator

import "text/template"

const header = "// Code generated by api2mcp-gen. DO NOT EDIT.\n"

var templates = template.Must(template.New("").Parse(`
{{- define "imports" -}}
{{- if . }}
import (
{{- range . }}
	{{ . }}
{{- end }}
)
{{ end -}}
{{- end -}}

{{- define "unit" -}}
` + header + `
package {{ .Package }}
{{ template "imports" .Imports }}
// {{ .Identifier }} proxies {{ .Method }} {{ .SourceRoute }} as the tool {{ printf "%q" .Name }}.
type {{ .Identifier }} struct {
	inv *invoker.Invoker
}

// New{{ .Identifier }} returns the tool bound to inv.
func New{{ .Identifier }}(inv *invoker.Invoker) *{{ .Identifier }} {
	return &{{ .Identifier }}{inv: inv}
}

// Definition describes the tool.
func (t *{{ .Identifier }}) Definition() tool.Definition {
	return tool.Definition{
		Identifier:  {{ printf "%q" .Identifier }},
		Name:        {{ printf "%q" .Name }},
		Description: {{ printf "%q" .Description }},
		Method:      {{ printf "%q" .Method }},
		Route:       {{ printf "%q" .Template }},
		Scope:       {{ .ScopeExpr }},
{{- if .Params }}
		Params: []tool.Param{
{{- range .Params }}
			{Name: {{ printf "%q" .Name }}, Kind: {{ .Kind }}, Binding: {{ .Binding }}{{ if .Required }}, Required: true{{ end }}{{ if .Default }}, Default: {{ .Default }}{{ end }}},
{{- end }}
		},
{{- end }}
{{- if .RouteValues }}
		Routes: []tool.RouteValue{
{{- range .RouteValues }}
			{Placeholder: {{ printf "%q" .Placeholder }}, Param: {{ printf "%q" .Param }}{{ if .Property }}, Property: {{ printf "%q" .Property }}{{ end }}},
{{- end }}
		},
{{- end }}
	}
}

// Call checks the caller's scope and performs the request.
func (t *{{ .Identifier }}) Call(ctx context.Context{{ range .Params }}, {{ .Ident }} {{ .GoType }}{{ end }}) (string, error) {
{{ .CallBody -}}
}

// Handle decodes the MCP arguments and calls Call.
func (t *{{ .Identifier }}) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
{{ .HandleBody -}}
}
{{ end -}}

{{- define "types" -}}
` + header + `
package {{ .Package }}
{{ template "imports" .Imports }}
{{- range .Structs }}
// {{ .Name }} is the wire shape of {{ .Source }}.
type {{ .Name }} struct {
{{- range .Fields }}
	{{ .Name }} {{ .Type }} ` + "`" + `json:"{{ .JSON }}{{ if .Omit }},omitempty{{ end }}"` + "`" + `
{{- end }}
}
{{ end -}}
{{- end -}}

{{- define "registry" -}}
` + header + `
package {{ .Package }}
{{ template "imports" .Imports }}
// ToolIdentifiers lists every generated tool in registration order.
var ToolIdentifiers = []string{
{{- range .Identifiers }}
	{{ printf "%q" . }},
{{- end }}
}

// Units returns every generated tool bound to inv.
func Units(inv *invoker.Invoker) []tool.Unit {
	return []tool.Unit{
{{- range .Identifiers }}
		New{{ . }}(inv),
{{- end }}
	}
}

// RegisterAll adds every generated tool to s.
func RegisterAll(s *server.MCPServer, inv *invoker.Invoker) {
	for _, u := range Units(inv) {
		tool.Register(s, u)
	}
}
{{ end -}}
`))
