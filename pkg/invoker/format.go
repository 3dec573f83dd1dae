package invoker

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

// FormatValue renders v in canonical string form for route segments,
// query values and headers. Nil and nil pointers render as "".
func FormatValue(v any) string {
	v = deref(v)
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return x.String()
	case fmt.Stringer:
		return x.String()
	case json.RawMessage:
		var s string
		if json.Unmarshal(x, &s) == nil {
			return s
		}
		return string(x)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

// FormatPath renders v for a route segment.
func FormatPath(v any) string {
	return url.PathEscape(FormatValue(v))
}

// AddQuery adds v under name. Nil values are skipped, slices add one value
// per element, and structured values add one entry per top-level field.
func AddQuery(q url.Values, name string, v any) {
	v = deref(v)
	if v == nil {
		return
	}

	switch x := v.(type) {
	case string, bool, time.Time, time.Duration, fmt.Stringer:
		q.Set(name, FormatValue(x))
		return
	case json.RawMessage:
		addQueryJSON(q, name, x)
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			q.Set(name, FormatValue(v))
			return
		}
		for idx := 0; idx < rv.Len(); idx++ {
			q.Add(name, FormatValue(rv.Index(idx).Interface()))
		}
	case reflect.Map, reflect.Struct:
		data, err := json.Marshal(v)
		if err != nil {
			q.Set(name, FormatValue(v))
			return
		}
		addQueryJSON(q, name, data)
	default:
		q.Set(name, FormatValue(v))
	}
}

func addQueryJSON(q url.Values, name string, data []byte) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		q.Set(name, string(data))
		return
	}
	switch x := decoded.(type) {
	case map[string]any:
		for k, fv := range x {
			AddQuery(q, k, fv)
		}
	case []any:
		for _, ev := range x {
			q.Add(name, FormatValue(ev))
		}
	default:
		AddQuery(q, name, x)
	}
}

func deref(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}
