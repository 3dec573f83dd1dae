// Package scope defines the access scopes a tool can require.
package scope

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope is a bitflag set of permissions.
type Scope uint8

const (
	None   Scope = 0
	Read   Scope = 1
	Write  Scope = 2
	Delete Scope = 4
	All    Scope = Read | Write | Delete
)

var names = []struct {
	flag Scope
	name string
}{
	{Read, "Read"},
	{Write, "Write"},
	{Delete, "Delete"},
}

// Has reports whether s grants every flag in required.
func (s Scope) Has(required Scope) bool {
	return s&required == required
}

// String renders the scope the way it appears in authorization messages,
// e.g. "Read", "Read, Write" or "All".
func (s Scope) String() string {
	switch s {
	case None:
		return "None"
	case All:
		return "All"
	}
	var parts []string
	for _, n := range names {
		if s&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := s &^ All; rest != 0 {
		parts = append(parts, strconv.Itoa(int(rest)))
	}
	return strings.Join(parts, ", ")
}

// Parse reads a scope written as names ("read", "Read|Write", "read, delete",
// "all", "none") or as its numeric value.
func Parse(s string) (Scope, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, nil
	}
	if n, err := strconv.ParseUint(s, 10, 8); err == nil {
		if Scope(n)&^All != 0 {
			return None, fmt.Errorf("scope %d out of range", n)
		}
		return Scope(n), nil
	}

	var out Scope
	for _, tok := range split(s) {
		v, ok := lookup(tok)
		if !ok {
			return None, fmt.Errorf("unknown scope %q", tok)
		}
		out |= v
	}
	return out, nil
}

// FromClaim maps a raw claim value such as "read write" or "mcp:read
// mcp:delete" to a scope. Unknown words are ignored. It is the mapper used
// when scope checking is enabled without a custom one.
func FromClaim(value string) Scope {
	var out Scope
	for _, tok := range split(value) {
		if i := strings.LastIndexByte(tok, ':'); i >= 0 {
			tok = tok[i+1:]
		}
		if v, ok := lookup(tok); ok {
			out |= v
		}
	}
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scope) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '|' || r == '\t' || r == '\n'
	})
}

func lookup(tok string) (Scope, bool) {
	switch strings.ToLower(tok) {
	case "none":
		return None, true
	case "read":
		return Read, true
	case "write":
		return Write, true
	case "delete":
		return Delete, true
	case "all":
		return All, true
	}
	return None, false
}
