package invoker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// Arg decodes a required argument.
func Arg[T any](args map[string]any, name string, decode func(any) (T, error)) (T, error) {
	var zero T
	v, ok := args[name]
	if !ok || v == nil {
		return zero, fmt.Errorf("missing required argument %q", name)
	}
	out, err := decode(v)
	if err != nil {
		return zero, fmt.Errorf("argument %q: %w", name, err)
	}
	return out, nil
}

// OptArg decodes an optional argument. Absent and null arguments yield nil.
func OptArg[T any](args map[string]any, name string, decode func(any) (T, error)) (*T, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	out, err := decode(v)
	if err != nil {
		return nil, fmt.Errorf("argument %q: %w", name, err)
	}
	return &out, nil
}

// ArgOr decodes an argument, returning def when it is absent or null.
func ArgOr[T any](args map[string]any, name string, def T, decode func(any) (T, error)) (T, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return def, nil
	}
	out, err := decode(v)
	if err != nil {
		return def, fmt.Errorf("argument %q: %w", name, err)
	}
	return out, nil
}

func DecodeString(v any) (string, error)   { return cast.ToStringE(v) }
func DecodeBool(v any) (bool, error)       { return cast.ToBoolE(v) }
func DecodeInt(v any) (int, error)         { return cast.ToIntE(v) }
func DecodeInt8(v any) (int8, error)       { return cast.ToInt8E(v) }
func DecodeInt16(v any) (int16, error)     { return cast.ToInt16E(v) }
func DecodeInt32(v any) (int32, error)     { return cast.ToInt32E(v) }
func DecodeInt64(v any) (int64, error)     { return cast.ToInt64E(v) }
func DecodeUint(v any) (uint, error)       { return cast.ToUintE(v) }
func DecodeUint8(v any) (uint8, error)     { return cast.ToUint8E(v) }
func DecodeUint16(v any) (uint16, error)   { return cast.ToUint16E(v) }
func DecodeUint32(v any) (uint32, error)   { return cast.ToUint32E(v) }
func DecodeUint64(v any) (uint64, error)   { return cast.ToUint64E(v) }
func DecodeFloat32(v any) (float32, error) { return cast.ToFloat32E(v) }
func DecodeFloat64(v any) (float64, error) { return cast.ToFloat64E(v) }

// DecodeUUID accepts the canonical string form.
func DecodeUUID(v any) (uuid.UUID, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(s)
}

// DecodeTime accepts RFC 3339 strings and the other layouts cast knows.
func DecodeTime(v any) (time.Time, error) {
	return cast.ToTimeE(v)
}

// DecodeDuration accepts Go duration strings ("1h30m") and numbers of
// nanoseconds.
func DecodeDuration(v any) (time.Duration, error) {
	return cast.ToDurationE(v)
}

// DecodeJSON re-encodes a structured argument. JSON text passed as a
// string is used as is.
func DecodeJSON(v any) (json.RawMessage, error) {
	if s, ok := v.(string); ok && json.Valid([]byte(s)) {
		return json.RawMessage(s), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// DecodeInto returns a decoder that fills a T from a structured argument.
func DecodeInto[T any]() func(any) (T, error) {
	return func(v any) (T, error) {
		var out T
		raw, err := DecodeJSON(v)
		if err != nil {
			return out, err
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, err
		}
		return out, nil
	}
}
