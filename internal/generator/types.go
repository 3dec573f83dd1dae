package generator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/cast"

	"github.com/bobmcallan/api2mcp/internal/endpoint"
	"github.com/bobmcallan/api2mcp/pkg/tool"
)

// scalar describes how a recognised scalar type is rendered in Go.
type scalar struct {
	goType  string
	decoder string
	kind    tool.Kind
	// value is false only for string.
	value bool
}

var scalarTypes = buildScalars([]struct {
	names []string
	s     scalar
}{
	{[]string{"string", "String"}, scalar{"string", "invoker.DecodeString", tool.KindString, false}},
	{[]string{"int", "Int32", "int32"}, scalar{"int32", "invoker.DecodeInt32", tool.KindInteger, true}},
	{[]string{"long", "Int64", "int64"}, scalar{"int64", "invoker.DecodeInt64", tool.KindInteger, true}},
	{[]string{"short", "Int16", "int16"}, scalar{"int16", "invoker.DecodeInt16", tool.KindInteger, true}},
	{[]string{"byte", "Byte", "uint8"}, scalar{"uint8", "invoker.DecodeUint8", tool.KindInteger, true}},
	{[]string{"sbyte", "SByte", "int8"}, scalar{"int8", "invoker.DecodeInt8", tool.KindInteger, true}},
	{[]string{"ushort", "UInt16", "uint16"}, scalar{"uint16", "invoker.DecodeUint16", tool.KindInteger, true}},
	{[]string{"uint", "UInt32", "uint32"}, scalar{"uint32", "invoker.DecodeUint32", tool.KindInteger, true}},
	{[]string{"ulong", "UInt64", "uint64"}, scalar{"uint64", "invoker.DecodeUint64", tool.KindInteger, true}},
	{[]string{"nint", "IntPtr"}, scalar{"int", "invoker.DecodeInt", tool.KindInteger, true}},
	{[]string{"nuint", "UIntPtr"}, scalar{"uint", "invoker.DecodeUint", tool.KindInteger, true}},
	{[]string{"Int128", "UInt128"}, scalar{"string", "invoker.DecodeString", tool.KindString, true}},
	{[]string{"double", "Double", "decimal", "Decimal", "float64"}, scalar{"float64", "invoker.DecodeFloat64", tool.KindNumber, true}},
	{[]string{"float", "Single", "Half", "float32"}, scalar{"float32", "invoker.DecodeFloat32", tool.KindNumber, true}},
	{[]string{"bool", "Boolean"}, scalar{"bool", "invoker.DecodeBool", tool.KindBoolean, true}},
	{[]string{"char", "Char", "DateOnly", "TimeOnly"}, scalar{"string", "invoker.DecodeString", tool.KindString, true}},
	{[]string{"Guid", "uuid.UUID"}, scalar{"uuid.UUID", "invoker.DecodeUUID", tool.KindString, true}},
	{[]string{"DateTime", "DateTimeOffset", "time.Time"}, scalar{"time.Time", "invoker.DecodeTime", tool.KindString, true}},
	{[]string{"TimeSpan", "time.Duration"}, scalar{"time.Duration", "invoker.DecodeDuration", tool.KindString, true}},
})

func buildScalars(entries []struct {
	names []string
	s     scalar
}) map[string]scalar {
	out := make(map[string]scalar)
	for _, e := range entries {
		for _, n := range e.names {
			out[n] = e.s
		}
	}
	return out
}

// canonicalType strips a nullable marker and a System. namespace.
func canonicalType(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, "?")
	return strings.TrimPrefix(name, "System.")
}

func lookupScalar(name string) (scalar, bool) {
	s, ok := scalarTypes[canonicalType(name)]
	return s, ok
}

// IsValueType reports whether name is a recognised scalar other than
// string.
func IsValueType(name string) bool {
	s, ok := lookupScalar(name)
	return ok && s.value
}

// IsComplexType reports whether name is anything but a recognised scalar.
// Collections are complex.
func IsComplexType(name string) bool {
	_, ok := lookupScalar(name)
	return !ok
}

var collectionPrefixes = []string{
	"List", "IList", "IEnumerable", "ICollection", "IReadOnlyList",
	"IReadOnlyCollection", "HashSet", "ISet",
}

// elementType returns the element type of a collection type name.
func elementType(name string) (string, bool) {
	name = canonicalType(name)
	name = strings.TrimPrefix(name, "Collections.Generic.")
	switch {
	case strings.HasPrefix(name, "[]"):
		return name[2:], true
	case strings.HasSuffix(name, "[]"):
		return name[:len(name)-2], true
	}
	for _, prefix := range collectionPrefixes {
		if strings.HasPrefix(name, prefix+"<") && strings.HasSuffix(name, ">") {
			return strings.TrimSpace(name[len(prefix)+1 : len(name)-1]), true
		}
	}
	return "", false
}

// KindOf returns the JSON schema type advertised for a parameter type.
func KindOf(name string) tool.Kind {
	if s, ok := lookupScalar(name); ok {
		return s.kind
	}
	if _, ok := elementType(name); ok {
		return tool.KindArray
	}
	return tool.KindObject
}

// goType is the Go rendering of a declared type.
type goType struct {
	expr    string
	decoder string
	kind    tool.Kind
	// nilable types represent absence without a pointer.
	nilable bool
}

type structField struct {
	Name string
	Type string
	JSON string
	Omit bool
}

type structDef struct {
	Name   string
	Source string
	Fields []structField
}

// typeMapper maps declared types to Go and collects the struct types that
// have to be emitted alongside the tools.
type typeMapper struct {
	structs map[string]*structDef
	order   []string
}

func newTypeMapper() *typeMapper {
	return &typeMapper{structs: make(map[string]*structDef)}
}

func (m *typeMapper) resolve(name string, props []endpoint.Property) goType {
	if s, ok := lookupScalar(name); ok {
		return goType{expr: s.goType, decoder: s.decoder, kind: s.kind}
	}
	if elem, ok := elementType(name); ok {
		e := m.resolve(elem, nil)
		expr := "[]" + e.expr
		return goType{
			expr:    expr,
			decoder: "invoker.DecodeInto[" + expr + "]()",
			kind:    tool.KindArray,
			nilable: true,
		}
	}
	if len(props) == 0 {
		return goType{expr: "json.RawMessage", decoder: "invoker.DecodeJSON", kind: tool.KindObject, nilable: true}
	}

	typeName := structName(name)
	if _, exists := m.structs[typeName]; !exists {
		def := &structDef{Name: typeName, Source: canonicalType(name)}
		m.structs[typeName] = def
		m.order = append(m.order, typeName)
		for _, p := range props {
			ft := m.resolve(p.Type, nil)
			expr := ft.expr
			if p.Nullable && !ft.nilable {
				expr = "*" + expr
			}
			def.Fields = append(def.Fields, structField{
				Name: exportedName(p.Name),
				Type: expr,
				JSON: p.Name,
				Omit: p.Nullable,
			})
		}
	}
	return goType{
		expr:    typeName,
		decoder: "invoker.DecodeInto[" + typeName + "]()",
		kind:    tool.KindObject,
	}
}

func (m *typeMapper) definitions() []structDef {
	out := make([]structDef, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, *m.structs[n])
	}
	return out
}

// structName derives a Go type name from a possibly namespaced, possibly
// generic type name: "MyNamespace.MyModel" becomes "MyModel" and
// "Page<Product>" becomes "PageProduct".
func structName(name string) string {
	name = canonicalType(name)
	base := name
	var args string
	if i := strings.IndexByte(name, '<'); i >= 0 {
		base, args = name[:i], name[i:]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[i+1:]
	}
	return exportedName(base + args)
}

// exportedName turns an arbitrary name into an exported Go identifier.
func exportedName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
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
	out := b.String()
	if out == "" || unicode.IsDigit([]rune(out)[0]) {
		out = "T" + out
	}
	return out
}

// typeIdent replaces characters that cannot appear in a Go identifier.
// Names that are already valid are returned unchanged.
func typeIdent(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('T')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// reserved holds names a parameter cannot take in generated code: Go
// keywords, the packages the units import and the locals they declare.
var reserved = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
	"nil": true, "true": true, "false": true, "iota": true,
	"context": true, "invoker": true, "tool": true, "scope": true, "mcp": true,
	"url": true, "json": true, "uuid": true, "time": true,
	"ctx": true, "t": true, "req": true, "args": true, "err": true, "route": true,
	"q": true, "payload": true, "opts": true, "v": true,
}

// paramIdent turns a parameter name into a local Go identifier.
func paramIdent(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('p')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "arg"
	}
	if reserved[out] {
		out += "Arg"
	}
	return out
}

// defaultLiteral renders a default value as a Go expression of type t.
func defaultLiteral(t goType, v any) (string, bool) {
	if v == nil {
		return "", false
	}
	switch t.expr {
	case "string":
		s, err := cast.ToStringE(v)
		if err != nil {
			return "", false
		}
		return strconv.Quote(s), true
	case "bool":
		b, err := cast.ToBoolE(v)
		if err != nil {
			return "", false
		}
		return strconv.FormatBool(b), true
	case "int", "int8", "int16", "int32", "int64":
		n, err := cast.ToInt64E(v)
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("%s(%d)", t.expr, n), true
	case "uint", "uint8", "uint16", "uint32", "uint64":
		n, err := cast.ToUint64E(v)
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("%s(%d)", t.expr, n), true
	case "float32", "float64":
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return "", false
		}
		return fmt.Sprintf("%s(%s)", t.expr, strconv.FormatFloat(f, 'g', -1, 64)), true
	}
	return "", false
}

// defaultValue converts a declared default into the value advertised in a
// tool definition.
func defaultValue(typeName string, v any) any {
	if v == nil {
		return nil
	}
	switch KindOf(typeName) {
	case tool.KindInteger, tool.KindNumber:
		if f, err := cast.ToFloat64E(v); err == nil {
			return f
		}
	case tool.KindBoolean:
		if b, err := cast.ToBoolE(v); err == nil {
			return b
		}
	case tool.KindString:
		if s, err := cast.ToStringE(v); err == nil {
			return s
		}
	}
	return nil
}
