// Package genconfig loads the generator policy: which actions become tools
// and how they are named.
//
// Loading never fails. A missing file yields defaults and an MCP005
// diagnostic; an unreadable or malformed one yields defaults and MCP001.
// Schema violations are reported as MCP001; parsing continues unless a
// field has the wrong type, which also falls back to defaults.
package genconfig

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/api2mcp/internal/diag"
	"github.com/bobmcallan/api2mcp/internal/endpoint"
)

// DefaultToolNameFormat is the visible tool name template.
const DefaultToolNameFormat = "{Controller}_{Action}"

//go:embed schema.json
var schemaJSON string

// Mode selects how actions without an explicit marker are chosen.
type Mode int

const (
	// SelectedOnly includes only actions named in Include.
	SelectedOnly Mode = iota
	// AllExceptExcluded includes every action not named in Exclude.
	AllExceptExcluded
)

func (m Mode) String() string {
	if m == AllExceptExcluded {
		return "AllExceptExcluded"
	}
	return "SelectedOnly"
}

// ParseMode reads a mode case-insensitively.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "selectedonly":
		return SelectedOnly, true
	case "allexceptexcluded":
		return AllExceptExcluded, true
	}
	return SelectedOnly, false
}

// Naming controls visible tool names.
type Naming struct {
	ToolNameFormat         string
	RemoveControllerSuffix bool
}

// Config is the generator policy.
type Config struct {
	SchemaVersion int
	Mode          Mode
	Include       []string
	Exclude       []string
	Naming        Naming
	// Methods are the verbs eligible for selection.
	Methods []endpoint.Method
}

// Default returns the policy used when no file is given.
func Default() Config {
	return Config{
		SchemaVersion: 1,
		Mode:          SelectedOnly,
		Naming: Naming{
			ToolNameFormat:         DefaultToolNameFormat,
			RemoveControllerSuffix: true,
		},
		Methods: append([]endpoint.Method(nil), endpoint.Methods...),
	}
}

// MethodAllowed reports whether m is eligible for selection.
func (c Config) MethodAllowed(m endpoint.Method) bool {
	for _, allowed := range c.Methods {
		if allowed == m {
			return true
		}
	}
	return false
}

// MethodNames lists the eligible verbs as strings.
func (c Config) MethodNames() []string {
	out := make([]string, len(c.Methods))
	for i, m := range c.Methods {
		out[i] = string(m)
	}
	return out
}

type namingDTO struct {
	ToolNameFormat         *string `json:"toolNameFormat"`
	RemoveControllerSuffix *bool   `json:"removeControllerSuffix"`
}

type configDTO struct {
	SchemaVersion *int       `json:"schemaVersion"`
	Mode          *string    `json:"mode"`
	Include       []string   `json:"include"`
	Exclude       []string   `json:"exclude"`
	Methods       []string   `json:"methods"`
	Naming        *namingDTO `json:"naming"`
}

// Load reads the policy at path. The format follows the extension: .yaml
// and .yml are YAML, anything else is JSON with comments.
func Load(path string) (Config, []diag.Diagnostic) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), []diag.Diagnostic{diag.NoConfig(path)}
		}
		return Default(), []diag.Diagnostic{diag.ConfigParse(path, err)}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(path, data)
	}
	return Parse(path, data)
}

// Parse reads a JSON policy. Comments and trailing commas are allowed and
// keys match case-insensitively. name labels diagnostics.
func Parse(name string, data []byte) (Config, []diag.Diagnostic) {
	if strings.TrimSpace(string(data)) == "" {
		return Default(), nil
	}

	var raw any
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return Default(), []diag.Diagnostic{diag.ConfigParse(name, err)}
	}
	return fromRaw(name, raw)
}

// ParseYAML reads a YAML policy with the same fields as the JSON form.
func ParseYAML(name string, data []byte) (Config, []diag.Diagnostic) {
	if strings.TrimSpace(string(data)) == "" {
		return Default(), nil
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Default(), []diag.Diagnostic{diag.ConfigParse(name, err)}
	}
	return fromRaw(name, raw)
}

func fromRaw(name string, raw any) (Config, []diag.Diagnostic) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Default(), []diag.Diagnostic{diag.ConfigParse(name, fmt.Errorf("expected an object, got %T", raw))}
	}
	canonicalize(obj, topLevelKeys)
	if naming, ok := obj["naming"].(map[string]any); ok {
		canonicalize(naming, namingKeys)
	}

	normalized, err := json.Marshal(obj)
	if err != nil {
		return Default(), []diag.Diagnostic{diag.ConfigParse(name, err)}
	}

	diags := validate(name, normalized)

	// A field of the wrong type discards the whole document: keeping the
	// rest could widen the tool surface, e.g. a mode without its excludes.
	var dto configDTO
	if err := json.Unmarshal(normalized, &dto); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && len(diags) > 0 {
			return Default(), diags
		}
		return Default(), append(diags, diag.ConfigParse(name, err))
	}

	cfg, more := dto.config(name)
	return cfg, append(diags, more...)
}

func (dto configDTO) config(name string) (Config, []diag.Diagnostic) {
	cfg := Default()
	var diags []diag.Diagnostic

	if dto.SchemaVersion != nil {
		cfg.SchemaVersion = *dto.SchemaVersion
	}
	if dto.Mode != nil {
		mode, ok := ParseMode(*dto.Mode)
		if !ok {
			diags = append(diags, diag.ConfigParse(name, fmt.Errorf("unknown mode %q, using %s", *dto.Mode, SelectedOnly)))
		}
		cfg.Mode = mode
	}
	if dto.Include != nil {
		cfg.Include = dto.Include
	}
	if dto.Exclude != nil {
		cfg.Exclude = dto.Exclude
	}
	if dto.Naming != nil {
		if dto.Naming.ToolNameFormat != nil && *dto.Naming.ToolNameFormat != "" {
			cfg.Naming.ToolNameFormat = *dto.Naming.ToolNameFormat
		}
		if dto.Naming.RemoveControllerSuffix != nil {
			cfg.Naming.RemoveControllerSuffix = *dto.Naming.RemoveControllerSuffix
		}
	}
	if len(dto.Methods) > 0 {
		var methods []endpoint.Method
		for _, s := range dto.Methods {
			m, err := endpoint.ParseMethod(s)
			if err != nil {
				diags = append(diags, diag.ConfigParse(name, err))
				continue
			}
			methods = append(methods, m)
		}
		if len(methods) > 0 {
			cfg.Methods = methods
		}
	}
	return cfg, diags
}

var (
	topLevelKeys = []string{"schemaVersion", "mode", "include", "exclude", "methods", "naming"}
	namingKeys   = []string{"toolNameFormat", "removeControllerSuffix"}
)

// canonicalize renames keys that match a known key case-insensitively.
func canonicalize(obj map[string]any, known []string) {
	for key, v := range obj {
		for _, k := range known {
			if key != k && strings.EqualFold(key, k) {
				delete(obj, key)
				if _, exists := obj[k]; !exists {
					obj[k] = v
				}
				break
			}
		}
	}
}

var policySchema = gojsonschema.NewStringLoader(schemaJSON)

// validate reports every schema violation as MCP001.
func validate(name string, doc []byte) []diag.Diagnostic {
	result, err := gojsonschema.Validate(policySchema, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return []diag.Diagnostic{diag.ConfigParse(name, err)}
	}
	if result.Valid() {
		return nil
	}
	var diags []diag.Diagnostic
	for _, e := range result.Errors() {
		diags = append(diags, diag.ConfigParse(name, errors.New(e.String())))
	}
	return diags
}
