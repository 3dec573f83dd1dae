package tool

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/bobmcallan/api2mcp/pkg/invoker"
)

// Request is an HTTP call assembled from tool arguments.
type Request struct {
	Route   string
	Body    []byte
	Headers map[string]string
}

// Bind assembles the HTTP request for def from MCP call arguments. It is
// the dynamic counterpart of the code the generator emits: route values are
// path-escaped, query values only come from query-bound arguments and the
// query string is omitted when empty.
func Bind(def Definition, args map[string]any) (Request, error) {
	route := def.Route
	for _, rv := range def.Routes {
		v, ok := lookupArg(args, rv.Param)
		if ok && rv.Property != "" {
			v, ok = lookupProperty(v, rv.Property)
		}
		if !ok || v == nil {
			if p, found := def.Param(rv.Param); found && p.Required && rv.Property == "" {
				return Request{}, fmt.Errorf("missing required argument %q", rv.Param)
			}
			v = nil
		}
		route = strings.ReplaceAll(route, "{"+rv.Placeholder+"}", invoker.FormatPath(v))
	}

	q := url.Values{}
	for _, p := range def.ParamsBoundTo(BindQuery) {
		if v, ok := lookupArg(args, p.Name); ok && v != nil {
			invoker.AddQuery(q, p.Name, normalizeJSONArg(p, v))
		}
	}
	if len(q) > 0 {
		route += "?" + q.Encode()
	}

	req := Request{Route: route}

	var headers map[string]string
	for _, p := range def.ParamsBoundTo(BindHeader) {
		if v, ok := lookupArg(args, p.Name); ok && v != nil {
			if headers == nil {
				headers = make(map[string]string)
			}
			headers[p.Name] = invoker.FormatValue(v)
		}
	}
	req.Headers = headers

	if !HasBody(def.Method) {
		return req, nil
	}

	bodyParams := def.ParamsBoundTo(BindBody)
	switch len(bodyParams) {
	case 0:
		return req, nil
	case 1:
		p := bodyParams[0]
		v, ok := lookupArg(args, p.Name)
		if !ok || v == nil {
			if p.Required {
				return Request{}, fmt.Errorf("missing required argument %q", p.Name)
			}
			return req, nil
		}
		body, err := json.Marshal(normalizeJSONArg(p, v))
		if err != nil {
			return Request{}, fmt.Errorf("encode body argument %q: %w", p.Name, err)
		}
		req.Body = body
	default:
		payload := make(map[string]any, len(bodyParams))
		for _, p := range bodyParams {
			if v, ok := lookupArg(args, p.Name); ok && v != nil {
				payload[p.Name] = normalizeJSONArg(p, v)
			} else if p.Required {
				return Request{}, fmt.Errorf("missing required argument %q", p.Name)
			}
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return Request{}, fmt.Errorf("encode body: %w", err)
		}
		req.Body = body
	}
	return req, nil
}

func lookupArg(args map[string]any, name string) (any, bool) {
	if args == nil {
		return nil, false
	}
	v, ok := args[name]
	return v, ok
}

// lookupProperty reads a field from a structured argument. Field names
// match case-insensitively since JSON casing varies between callers.
func lookupProperty(v any, name string) (any, bool) {
	var obj map[string]any
	switch x := v.(type) {
	case map[string]any:
		obj = x
	case string:
		if err := json.Unmarshal([]byte(x), &obj); err != nil {
			return nil, false
		}
	default:
		return nil, false
	}
	if pv, ok := obj[name]; ok {
		return pv, true
	}
	for k, pv := range obj {
		if strings.EqualFold(k, name) {
			return pv, true
		}
	}
	return nil, false
}

// normalizeJSONArg passes structured arguments that arrive as JSON text
// through unchanged instead of encoding them a second time.
func normalizeJSONArg(p Param, v any) any {
	if p.Kind != KindObject && p.Kind != KindArray {
		return v
	}
	if s, ok := v.(string); ok && json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	return v
}
