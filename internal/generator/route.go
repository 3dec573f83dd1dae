package generator

import (
	"strings"

	"github.com/bobmcallan/api2mcp/internal/endpoint"
)

// RoutePart is a literal run of a converted template or one placeholder.
type RoutePart struct {
	Literal     string
	Placeholder string
}

// RouteValue says where a converted placeholder's value comes from: a
// parameter, or one property of a structured parameter.
type RouteValue struct {
	Placeholder string
	Param       string
	Property    string
	// Nullable is the nullability of the property; parameter nullability
	// is read from the parameter itself.
	Nullable bool
}

// Route is a converted route template.
type Route struct {
	Template string
	Parts    []RoutePart
	Values   []RouteValue
}

// References reports whether the parameter feeds any placeholder.
func (r Route) References(param string) bool {
	for _, v := range r.Values {
		if v.Param == param {
			return true
		}
	}
	return false
}

type routeToken struct {
	start, end int
	name       string
}

// routeTokens finds the {...} segments of a template. Braces nest, so
// constraints such as regex({{2}}) stay inside their segment; a doubled
// brace outside a segment is a literal.
func routeTokens(template string) []routeToken {
	var out []routeToken
	for i := 0; i < len(template); i++ {
		if template[i] != '{' {
			continue
		}
		if i+1 < len(template) && template[i+1] == '{' {
			i++
			continue
		}
		depth, j := 0, i
		for ; j < len(template); j++ {
			switch template[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if j >= len(template) {
			break
		}
		out = append(out, routeToken{start: i, end: j + 1, name: tokenName(template[i+1 : j])})
		i = j
	}
	return out
}

// tokenName strips catch-all stars, constraints, defaults and the
// optional marker from a segment body.
func tokenName(body string) string {
	body = strings.TrimLeft(strings.TrimSpace(body), "*")
	if i := strings.IndexAny(body, ":=?"); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}

// RouteContainsParameter reports whether template has a segment named
// exactly name.
func RouteContainsParameter(template, name string) bool {
	for _, tok := range routeTokens(template) {
		if tok.name == name {
			return true
		}
	}
	return false
}

// ConvertRoute rewrites every segment matched by a parameter to
// {route<name>}, dropping constraints and optional markers. A segment
// matched by no parameter but by a property of a structured parameter
// becomes {route<param>_<Property>}. Anything else is left as written.
func ConvertRoute(template string, params []endpoint.Parameter) Route {
	var (
		out  Route
		b    strings.Builder
		last int
		seen = make(map[string]bool)
	)
	literal := func(s string) {
		if s == "" {
			return
		}
		b.WriteString(s)
		if n := len(out.Parts); n > 0 && out.Parts[n-1].Placeholder == "" {
			out.Parts[n-1].Literal += s
			return
		}
		out.Parts = append(out.Parts, RoutePart{Literal: s})
	}

	for _, tok := range routeTokens(template) {
		literal(template[last:tok.start])
		last = tok.end

		value, ok := matchSegment(tok.name, params)
		if !ok {
			literal(template[tok.start:tok.end])
			continue
		}
		b.WriteString("{" + value.Placeholder + "}")
		out.Parts = append(out.Parts, RoutePart{Placeholder: value.Placeholder})
		if !seen[value.Placeholder] {
			seen[value.Placeholder] = true
			out.Values = append(out.Values, value)
		}
	}
	literal(template[last:])

	out.Template = b.String()
	return out
}

func matchSegment(name string, params []endpoint.Parameter) (RouteValue, bool) {
	for _, p := range params {
		if p.Injected() || p.Name != name {
			continue
		}
		if p.Source == endpoint.SourceAuto || p.Source == endpoint.SourceRoute {
			return RouteValue{Placeholder: "route" + p.Name, Param: p.Name}, true
		}
	}
	for _, p := range params {
		if p.Injected() {
			continue
		}
		for _, prop := range p.Properties {
			if strings.EqualFold(prop.Name, name) {
				return RouteValue{
					Placeholder: "route" + p.Name + "_" + prop.Name,
					Param:       p.Name,
					Property:    prop.Name,
					Nullable:    prop.Nullable,
				}, true
			}
		}
	}
	return RouteValue{}, false
}
