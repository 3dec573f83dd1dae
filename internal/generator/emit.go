package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strconv"
	"strings"

	"github.com/bobmcallan/api2mcp/internal/diag"
	"github.com/bobmcallan/api2mcp/internal/endpoint"
	"github.com/bobmcallan/api2mcp/internal/genconfig"
	"github.com/bobmcallan/api2mcp/pkg/scope"
	"github.com/bobmcallan/api2mcp/pkg/tool"
)

// DefaultRuntimeImport is the import path prefix of the runtime packages
// generated code depends on.
const DefaultRuntimeImport = "github.com/bobmcallan/api2mcp/pkg"

const (
	mcpImport    = "github.com/mark3labs/mcp-go/mcp"
	serverImport = "github.com/mark3labs/mcp-go/server"
	uuidImport   = "github.com/google/uuid"
)

// Options controls rendering.
type Options struct {
	// Package is the package clause of the generated files.
	Package string
	// RuntimeImport is the import path holding the invoker, tool and scope
	// packages.
	RuntimeImport string
}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = "tools"
	}
	if o.RuntimeImport == "" {
		o.RuntimeImport = DefaultRuntimeImport
	}
	o.RuntimeImport = strings.TrimSuffix(o.RuntimeImport, "/")
	return o
}

// File is one generated source file.
type File struct {
	Name    string
	Content []byte
}

// Result is the rendered output of one pass.
type Result struct {
	Units       []File
	Types       *File
	Registry    File
	Plan        Plan
	Diagnostics []diag.Diagnostic
}

// Files lists every generated file: the units, the shared types when there
// are any, and the registry.
func (r Result) Files() []File {
	out := append([]File(nil), r.Units...)
	if r.Types != nil {
		out = append(out, *r.Types)
	}
	return append(out, r.Registry)
}

// Generate plans tools for descs and renders one unit per tool, the struct
// types their parameters need and the registry. Errors only come from
// rendering; every input problem is a diagnostic.
func Generate(descs []endpoint.Descriptor, cfg genconfig.Config, opts Options) (Result, error) {
	opts = opts.withDefaults()
	plan := NewPlan(descs, cfg)
	types := newTypeMapper()

	res := Result{Plan: plan, Diagnostics: plan.Diagnostics}
	for _, t := range plan.Tools {
		f, err := emitUnit(t, types, opts)
		if err != nil {
			return Result{}, err
		}
		res.Units = append(res.Units, f)
	}

	if structs := types.definitions(); len(structs) > 0 {
		f, err := emitTypes(structs, opts)
		if err != nil {
			return Result{}, err
		}
		res.Types = &f
	}

	reg, err := emitRegistry(plan.Identifiers(), opts)
	if err != nil {
		return Result{}, err
	}
	res.Registry = reg
	return res, nil
}

// UnitFileName is the file a tool is rendered to.
func UnitFileName(identifier string) string {
	return strings.ToLower(identifier) + "_gen.go"
}

type paramView struct {
	Name     string
	Ident    string
	GoType   string
	Kind     string
	Binding  string
	Required bool
	Default  string
	binding  tool.Binding
	decode   string
	optional bool
}

type routeValueView struct {
	Placeholder string
	Param       string
	Property    string
}

type unitView struct {
	Package     string
	Imports     []string
	Identifier  string
	Name        string
	Description string
	Method      string
	SourceRoute string
	Template    string
	ScopeExpr   string
	Params      []paramView
	RouteValues []routeValueView
	CallBody    string
	HandleBody  string
}

func emitUnit(t Tool, types *typeMapper, opts Options) (File, error) {
	view := unitView{
		Package:     opts.Package,
		Identifier:  t.Identifier,
		Name:        t.Name,
		Description: t.Description,
		Method:      string(t.Descriptor.Method),
		SourceRoute: t.Descriptor.Route,
		Template:    t.Route.Template,
		ScopeExpr:   scopeExpr(t.Scope),
	}

	for _, p := range t.Params {
		view.Params = append(view.Params, newParamView(p, types))
	}
	for _, v := range t.Route.Values {
		view.RouteValues = append(view.RouteValues, routeValueView{
			Placeholder: v.Placeholder,
			Param:       v.Param,
			Property:    v.Property,
		})
	}

	var uses callUses
	view.CallBody = callBody(t, view.Params, &uses)
	view.HandleBody = handleBody(view.Params)
	view.Imports = unitImports(view.Params, uses, opts)

	src, err := render("unit", view)
	if err != nil {
		return File{}, fmt.Errorf("render %s: %w", t.Identifier, err)
	}
	return File{Name: UnitFileName(t.Identifier), Content: src}, nil
}

func newParamView(p Param, types *typeMapper) paramView {
	gt := types.resolve(p.Type, p.Properties)
	v := paramView{
		Name:     p.Name,
		Ident:    paramIdent(p.Name),
		GoType:   gt.expr,
		Kind:     kindExpr(gt.kind),
		Binding:  bindingExpr(p.Binding),
		Required: p.Required(),
		binding:  p.Binding,
	}

	lit, hasLit := "", false
	if p.HasDefault {
		lit, hasLit = defaultLiteral(gt, p.Default)
	}

	switch {
	case p.Required():
		v.decode = fmt.Sprintf("invoker.Arg(args, %q, %s)", p.Name, gt.decoder)
	case hasLit:
		v.Default = lit
		v.decode = fmt.Sprintf("invoker.ArgOr(args, %q, %s, %s)", p.Name, lit, gt.decoder)
	case gt.nilable:
		v.optional = true
		v.decode = fmt.Sprintf("invoker.ArgOr[%s](args, %q, nil, %s)", gt.expr, p.Name, gt.decoder)
	default:
		v.optional = true
		v.GoType = "*" + gt.expr
		v.decode = fmt.Sprintf("invoker.OptArg(args, %q, %s)", p.Name, gt.decoder)
	}
	return v
}

// callUses records the packages a rendered Call body refers to.
type callUses struct {
	json bool
	url  bool
}

// callBody renders the statements of Call: the scope check first, then
// the route, query, headers and body, then the request.
func callBody(t Tool, params []paramView, uses *callUses) string {
	var b strings.Builder
	line := func(format string, a ...any) {
		b.WriteString("\t")
		fmt.Fprintf(&b, format, a...)
		b.WriteString("\n")
	}

	byName := make(map[string]paramView, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}

	line("if err := t.inv.BeforeInvoke(ctx, %s); err != nil {", scopeExpr(t.Scope))
	line("\treturn \"\", err")
	line("}")

	for _, v := range t.Route.Values {
		p, ok := byName[v.Param]
		if !ok {
			continue
		}
		local := paramIdent(v.Placeholder)
		if v.Property == "" {
			line("%s := invoker.FormatPath(%s)", local, p.Ident)
			continue
		}
		field := p.Ident + "." + exportedName(v.Property)
		if p.optional {
			line("var %s string", local)
			line("if %s != nil {", p.Ident)
			line("\t%s = invoker.FormatPath(%s)", local, field)
			line("}")
			continue
		}
		line("%s := invoker.FormatPath(%s)", local, field)
	}
	line("route := %s", routeExpr(t.Route, byName))

	var query, headers, body []paramView
	for _, p := range params {
		switch p.binding {
		case tool.BindQuery:
			query = append(query, p)
		case tool.BindHeader:
			headers = append(headers, p)
		case tool.BindBody:
			body = append(body, p)
		}
	}

	if len(query) > 0 {
		uses.url = true
		line("q := url.Values{}")
		for _, p := range query {
			line("invoker.AddQuery(q, %q, %s)", p.Name, p.Ident)
		}
		line("if len(q) > 0 {")
		line("\troute += \"?\" + q.Encode()")
		line("}")
	}

	optsArg := ""
	if len(headers) > 0 {
		optsArg = ", opts..."
		line("var opts []invoker.CallOption")
		for _, p := range headers {
			line("if v := invoker.FormatValue(%s); v != \"\" {", p.Ident)
			line("\topts = append(opts, invoker.WithHeader(%q, v))", p.Name)
			line("}")
		}
	}

	method := methodName(t.Descriptor.Method)
	if !tool.HasBody(string(t.Descriptor.Method)) {
		line("return t.inv.%s(ctx, route%s)", method, optsArg)
		return b.String()
	}

	if len(body) > 0 {
		uses.json = true
	}
	switch {
	case len(body) == 0:
		line("return t.inv.%s(ctx, route, nil%s)", method, optsArg)
		return b.String()
	case len(body) == 1 && body[0].optional:
		p := body[0]
		line("var payload []byte")
		line("if %s != nil {", p.Ident)
		line("\tvar err error")
		line("\tif payload, err = json.Marshal(%s); err != nil {", p.Ident)
		line("\t\treturn \"\", err")
		line("\t}")
		line("}")
	case len(body) == 1:
		line("payload, err := json.Marshal(%s)", body[0].Ident)
		line("if err != nil {")
		line("\treturn \"\", err")
		line("}")
	default:
		line("payload, err := json.Marshal(map[string]any{")
		for _, p := range body {
			line("\t%q: %s,", p.Name, p.Ident)
		}
		line("})")
		line("if err != nil {")
		line("\treturn \"\", err")
		line("}")
	}
	line("return t.inv.%s(ctx, route, payload%s)", method, optsArg)
	return b.String()
}

func routeExpr(r Route, byName map[string]paramView) string {
	values := make(map[string]RouteValue, len(r.Values))
	for _, v := range r.Values {
		values[v.Placeholder] = v
	}

	var parts []string
	for _, part := range r.Parts {
		if part.Placeholder == "" {
			parts = append(parts, strconv.Quote(part.Literal))
			continue
		}
		if _, ok := byName[values[part.Placeholder].Param]; !ok {
			// The parameter was dropped, so nothing can fill the segment.
			parts = append(parts, strconv.Quote(""))
			continue
		}
		parts = append(parts, paramIdent(part.Placeholder))
	}
	if len(parts) == 0 {
		return strconv.Quote("")
	}
	return strings.Join(parts, " + ")
}

func handleBody(params []paramView) string {
	var b strings.Builder
	if len(params) == 0 {
		b.WriteString("\treturn tool.Result(t.Call(ctx))\n")
		return b.String()
	}

	b.WriteString("\targs := req.GetArguments()\n")
	idents := make([]string, 0, len(params))
	for _, p := range params {
		fmt.Fprintf(&b, "\t%s, err := %s\n", p.Ident, p.decode)
		b.WriteString("\tif err != nil {\n\t\treturn tool.Result(\"\", err)\n\t}\n")
		idents = append(idents, p.Ident)
	}
	fmt.Fprintf(&b, "\treturn tool.Result(t.Call(ctx, %s))\n", strings.Join(idents, ", "))
	return b.String()
}

func unitImports(params []paramView, uses callUses, opts Options) []string {
	std := []string{"context"}
	third := []string{
		mcpImport,
		opts.RuntimeImport + "/invoker",
		opts.RuntimeImport + "/scope",
		opts.RuntimeImport + "/tool",
	}

	var types strings.Builder
	for _, p := range params {
		types.WriteString(p.GoType + " ")
	}
	std, third = typeImports(types.String(), std, third)
	if uses.json && !contains(std, "encoding/json") {
		std = append(std, "encoding/json")
	}
	if uses.url {
		std = append(std, "net/url")
	}
	return importLines(std, third)
}

// typeImports adds the packages referenced by Go type expressions.
func typeImports(types string, std, third []string) ([]string, []string) {
	if strings.Contains(types, "json.RawMessage") {
		std = append(std, "encoding/json")
	}
	if strings.Contains(types, "time.") {
		std = append(std, "time")
	}
	if strings.Contains(types, "uuid.UUID") {
		third = append(third, uuidImport)
	}
	return std, third
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func importLines(std, third []string) []string {
	sort.Strings(std)
	sort.Strings(third)
	var out []string
	for _, s := range std {
		out = append(out, strconv.Quote(s))
	}
	if len(std) > 0 && len(third) > 0 {
		out = append(out, "")
	}
	for _, s := range third {
		out = append(out, strconv.Quote(s))
	}
	return out
}

type typesView struct {
	Package string
	Imports []string
	Structs []structDef
}

func emitTypes(structs []structDef, opts Options) (File, error) {
	var fieldTypes strings.Builder
	for _, s := range structs {
		for _, f := range s.Fields {
			fieldTypes.WriteString(f.Type + " ")
		}
	}
	std, third := typeImports(fieldTypes.String(), nil, nil)

	src, err := render("types", typesView{
		Package: opts.Package,
		Imports: importLines(std, third),
		Structs: structs,
	})
	if err != nil {
		return File{}, fmt.Errorf("render types: %w", err)
	}
	return File{Name: "types_gen.go", Content: src}, nil
}

type registryView struct {
	Package     string
	Imports     []string
	Identifiers []string
}

func emitRegistry(ids []string, opts Options) (File, error) {
	src, err := render("registry", registryView{
		Package: opts.Package,
		Imports: importLines(nil, []string{
			serverImport,
			opts.RuntimeImport + "/invoker",
			opts.RuntimeImport + "/tool",
		}),
		Identifiers: ids,
	})
	if err != nil {
		return File{}, fmt.Errorf("render registry: %w", err)
	}
	return File{Name: "registry_gen.go", Content: src}, nil
}

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w\n%s", err, buf.Bytes())
	}
	return src, nil
}

func methodName(m endpoint.Method) string {
	switch m {
	case endpoint.MethodPost:
		return "Post"
	case endpoint.MethodPut:
		return "Put"
	case endpoint.MethodPatch:
		return "Patch"
	case endpoint.MethodDelete:
		return "Delete"
	}
	return "Get"
}

func scopeExpr(s scope.Scope) string {
	switch s {
	case scope.None:
		return "scope.None"
	case scope.All:
		return "scope.All"
	}
	var parts []string
	for _, f := range []struct {
		flag scope.Scope
		name string
	}{{scope.Read, "Read"}, {scope.Write, "Write"}, {scope.Delete, "Delete"}} {
		if s&f.flag != 0 {
			parts = append(parts, "scope."+f.name)
		}
	}
	if rest := s &^ scope.All; rest != 0 {
		parts = append(parts, "scope.Scope("+strconv.Itoa(int(rest))+")")
	}
	return strings.Join(parts, " | ")
}

func kindExpr(k tool.Kind) string {
	switch k {
	case tool.KindNumber:
		return "tool.KindNumber"
	case tool.KindInteger:
		return "tool.KindInteger"
	case tool.KindBoolean:
		return "tool.KindBoolean"
	case tool.KindArray:
		return "tool.KindArray"
	case tool.KindObject:
		return "tool.KindObject"
	}
	return "tool.KindString"
}

func bindingExpr(b tool.Binding) string {
	switch b {
	case tool.BindRoute:
		return "tool.BindRoute"
	case tool.BindBody:
		return "tool.BindBody"
	case tool.BindHeader:
		return "tool.BindHeader"
	}
	return "tool.BindQuery"
}
