// Package openapi extracts endpoint descriptors from an OpenAPI 3 document.
//
// Controllers come from the "x-mcp-controller" extension, the part of the
// operationId before the first underscore, or the first tag, in that
// order. The x-mcp-* extensions on an operation fill the descriptor's
// override fields; on a path item they apply to every operation under it
// as controller-level markers.
package openapi

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cast"
	"github.com/yosida95/uritemplate/v3"

	"github.com/bobmcallan/api2mcp/internal/endpoint"
	"github.com/bobmcallan/api2mcp/pkg/scope"
)

// Extension keys.
const (
	ExtController  = "x-mcp-controller"
	ExtExpose      = "x-mcp-expose"
	ExtIgnore      = "x-mcp-ignore"
	ExtScope       = "x-mcp-scope"
	ExtToolName    = "x-mcp-tool-name"
	ExtDescription = "x-mcp-description"
	ExtBodyName    = "x-mcp-body-name"
)

const defaultBodyName = "request"

// methodOrder fixes the order operations are visited within a path.
var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// Load reads an OpenAPI document from a file and extracts its descriptors.
func Load(path string) ([]endpoint.Descriptor, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document %s: %w", path, err)
	}
	return Extract(doc)
}

// Parse reads an OpenAPI document from memory.
func Parse(data []byte) ([]endpoint.Descriptor, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	return Extract(doc)
}

// Extract converts every operation in doc. Descriptors are grouped by
// controller in first-seen order, with paths visited in sorted order.
func Extract(doc *openapi3.T) ([]endpoint.Descriptor, error) {
	if doc == nil || doc.Paths == nil {
		return nil, nil
	}

	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var order []string
	grouped := make(map[string][]endpoint.Descriptor)
	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		vars, err := pathVariables(path)
		if err != nil {
			return nil, err
		}
		ops := item.Operations()
		for _, method := range methodOrder {
			op := ops[method]
			if op == nil {
				continue
			}
			d, err := describe(path, method, vars, item, op)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", method, path, err)
			}
			if _, seen := grouped[d.Controller]; !seen {
				order = append(order, d.Controller)
			}
			grouped[d.Controller] = append(grouped[d.Controller], d)
		}
	}

	var out []endpoint.Descriptor
	for _, c := range order {
		out = append(out, grouped[c]...)
	}
	return out, nil
}

// pathVariables lists the template variables of an OpenAPI path.
// pathVariables names the {...} segments of path. OpenAPI allows names
// that RFC 6570 rejects, such as {file-id}; those are read by scanning the
// braces directly.
func pathVariables(path string) (map[string]bool, error) {
	vars := make(map[string]bool)
	if tmpl, err := uritemplate.New(path); err == nil {
		for _, name := range tmpl.Varnames() {
			vars[name] = true
		}
		return vars, nil
	}
	rest := path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("invalid path template %q: unclosed '{'", path)
		}
		name := strings.TrimSpace(rest[open+1 : open+end])
		if name == "" || strings.ContainsRune(name, '{') {
			return nil, fmt.Errorf("invalid path template %q: malformed segment", path)
		}
		vars[name] = true
		rest = rest[open+end+1:]
	}
	return vars, nil
}

func describe(path, method string, vars map[string]bool, item *openapi3.PathItem, op *openapi3.Operation) (endpoint.Descriptor, error) {
	controller, action := names(path, method, op)

	required, err := scope.Parse(extString(op.Extensions, ExtScope))
	if err != nil {
		return endpoint.Descriptor{}, err
	}

	d := endpoint.Descriptor{
		Controller:       controller,
		Action:           action,
		Method:           endpoint.Method(method),
		Route:            "/" + strings.Trim(path, "/"),
		ReturnType:       returnType(op),
		Expose:           extBool(op.Extensions, ExtExpose),
		Ignore:           extBool(op.Extensions, ExtIgnore),
		ControllerExpose: extBool(item.Extensions, ExtExpose),
		ControllerIgnore: extBool(item.Extensions, ExtIgnore),
		Summary:          firstNonEmpty(op.Summary, op.Description),
		ToolName:         extString(op.Extensions, ExtToolName),
		Description:      extString(op.Extensions, ExtDescription),
		RequiredScope:    required,
	}

	params := append(openapi3.Parameters{}, item.Parameters...)
	params = append(params, op.Parameters...)
	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		p := ref.Value
		src := source(p.In)
		if src == endpoint.SourceRoute && !vars[p.Name] {
			continue
		}
		typeName, props := typeOf(p.Schema)
		param := endpoint.Parameter{
			Name:       p.Name,
			Type:       typeName,
			Nullable:   !p.Required,
			Source:     src,
			Properties: props,
		}
		if p.Schema != nil && p.Schema.Value != nil && p.Schema.Value.Default != nil {
			param.HasDefault = true
			param.Default = p.Schema.Value.Default
		}
		d.Parameters = append(d.Parameters, param)
	}

	if body := requestBody(op); body != nil {
		name := extString(op.Extensions, ExtBodyName)
		if name == "" {
			name = defaultBodyName
		}
		typeName, props := typeOf(body.Schema)
		d.Parameters = append(d.Parameters, endpoint.Parameter{
			Name:       name,
			Type:       typeName,
			Nullable:   !op.RequestBody.Value.Required,
			Source:     endpoint.SourceBody,
			Properties: props,
		})
	}

	return d, nil
}

// names derives the controller and action names for an operation.
func names(path, method string, op *openapi3.Operation) (string, string) {
	controller := extString(op.Extensions, ExtController)
	action := ""

	if id := op.OperationID; id != "" {
		if before, after, ok := strings.Cut(id, "_"); ok && before != "" && after != "" {
			if controller == "" {
				controller = before
			}
			action = identifier(after)
		} else {
			action = identifier(id)
		}
	}
	if controller == "" && len(op.Tags) > 0 {
		controller = op.Tags[0]
	}
	if controller == "" {
		controller = "Default"
	}
	if action == "" {
		action = identifier(strings.ToLower(method) + " " + path)
	}

	controller = identifier(controller)
	if !strings.HasSuffix(controller, "Controller") {
		controller += "Controller"
	}
	return controller, action
}

// identifier turns free text into PascalCase, dropping anything that is
// not a letter or digit.
func identifier(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func source(in string) endpoint.Source {
	switch in {
	case openapi3.ParameterInPath:
		return endpoint.SourceRoute
	case openapi3.ParameterInQuery:
		return endpoint.SourceQuery
	case openapi3.ParameterInHeader:
		return endpoint.SourceHeader
	}
	// Cookies are set by the client, not by tool arguments.
	return endpoint.SourceServices
}

func requestBody(op *openapi3.Operation) *openapi3.MediaType {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	if mt := content.Get("application/json"); mt != nil {
		return mt
	}
	for _, mt := range content {
		return mt
	}
	return nil
}

// returnType names the success response type. Binary content maps to
// "Stream" so the generator reports it as unsupported.
func returnType(op *openapi3.Operation) string {
	if op.Responses == nil {
		return "void"
	}
	for _, code := range []string{"200", "201", "202", "203", "206"} {
		resp := op.Responses.Value(code)
		if resp == nil || resp.Value == nil {
			continue
		}
		if len(resp.Value.Content) == 0 {
			return "void"
		}
		if mt := resp.Value.Content.Get("application/json"); mt != nil {
			name, _ := typeOf(mt.Schema)
			return name
		}
		if resp.Value.Content.Get("text/plain") != nil {
			return "string"
		}
		return "Stream"
	}
	return "void"
}

// typeOf maps a schema onto the descriptor type vocabulary.
func typeOf(ref *openapi3.SchemaRef) (string, []endpoint.Property) {
	if ref == nil || ref.Value == nil {
		return "object", nil
	}
	s := ref.Value
	switch {
	case s.Type.Is(openapi3.TypeString):
		switch s.Format {
		case "uuid":
			return "Guid", nil
		case "date-time":
			return "DateTime", nil
		case "date":
			return "DateOnly", nil
		case "time":
			return "TimeOnly", nil
		case "duration":
			return "TimeSpan", nil
		case "binary":
			return "Stream", nil
		}
		return "string", nil
	case s.Type.Is(openapi3.TypeInteger):
		if s.Format == "int64" {
			return "long", nil
		}
		return "int", nil
	case s.Type.Is(openapi3.TypeNumber):
		if s.Format == "float" {
			return "float", nil
		}
		return "double", nil
	case s.Type.Is(openapi3.TypeBoolean):
		return "bool", nil
	case s.Type.Is(openapi3.TypeArray):
		item, _ := typeOf(s.Items)
		return "List<" + item + ">", nil
	}

	name := "object"
	if ref.Ref != "" {
		name = ref.Ref[strings.LastIndex(ref.Ref, "/")+1:]
	}
	if len(s.Properties) == 0 {
		return name, nil
	}

	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}

	props := make([]endpoint.Property, 0, len(keys))
	for _, k := range keys {
		t, _ := typeOf(s.Properties[k])
		nullable := !required[k]
		if v := s.Properties[k]; v != nil && v.Value != nil && v.Value.Nullable {
			nullable = true
		}
		props = append(props, endpoint.Property{Name: k, Type: t, Nullable: nullable})
	}
	return name, props
}

func extString(ext map[string]any, key string) string {
	v, ok := ext[key]
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

func extBool(ext map[string]any, key string) bool {
	v, ok := ext[key]
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(v)
	return err == nil && b
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
