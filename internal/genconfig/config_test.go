package genconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/api2mcp/internal/diag"
	"github.com/bobmcallan/api2mcp/internal/endpoint"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.SchemaVersion)
	assert.Equal(t, SelectedOnly, cfg.Mode)
	assert.Empty(t, cfg.Include)
	assert.Equal(t, "{Controller}_{Action}", cfg.Naming.ToolNameFormat)
	assert.True(t, cfg.Naming.RemoveControllerSuffix)
	for _, m := range endpoint.Methods {
		assert.True(t, cfg.MethodAllowed(m), m)
	}
}

func TestParse_FullDocument(t *testing.T) {
	data := `{
		// generator policy
		"schemaVersion": 2,
		"mode": "allexceptexcluded",
		"exclude": ["Orders", "ProductsController.Delete"],
		"methods": ["get", "POST"],
		"naming": {
			"toolNameFormat": "{Action}_{Controller}",
			"removeControllerSuffix": false,
		},
	}`

	cfg, diags := Parse("api2mcp.json", []byte(data))
	assert.Empty(t, diags)
	assert.Equal(t, 2, cfg.SchemaVersion)
	assert.Equal(t, AllExceptExcluded, cfg.Mode)
	assert.Equal(t, []string{"Orders", "ProductsController.Delete"}, cfg.Exclude)
	assert.Equal(t, []endpoint.Method{endpoint.MethodGet, endpoint.MethodPost}, cfg.Methods)
	assert.Equal(t, "{Action}_{Controller}", cfg.Naming.ToolNameFormat)
	assert.False(t, cfg.Naming.RemoveControllerSuffix)
	assert.False(t, cfg.MethodAllowed(endpoint.MethodDelete))
}

func TestParse_CaseInsensitiveKeys(t *testing.T) {
	data := `{"Mode": "SELECTEDONLY", "INCLUDE": ["Products"], "Naming": {"ToolNameFormat": "{Controller}.{Action}"}}`

	cfg, diags := Parse("api2mcp.json", []byte(data))
	assert.Empty(t, diags)
	assert.Equal(t, SelectedOnly, cfg.Mode)
	assert.Equal(t, []string{"Products"}, cfg.Include)
	assert.Equal(t, "{Controller}.{Action}", cfg.Naming.ToolNameFormat)
	assert.True(t, cfg.Naming.RemoveControllerSuffix)
}

func TestParse_Fallbacks(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantDiags int
		check     func(t *testing.T, cfg Config)
	}{
		{
			name: "empty document",
			data: "   ",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name:      "malformed json",
			data:      `{"mode": `,
			wantDiags: 1,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name:      "not an object",
			data:      `["Products"]`,
			wantDiags: 1,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name:      "unknown mode",
			data:      `{"mode": "Everything", "include": ["Products"]}`,
			wantDiags: 1,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, SelectedOnly, cfg.Mode)
				assert.Equal(t, []string{"Products"}, cfg.Include)
			},
		},
		{
			name:      "wrong type falls back to defaults",
			data:      `{"mode": "AllExceptExcluded", "exclude": "AdminController"}`,
			wantDiags: 1,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name:      "wrong nested type falls back to defaults",
			data:      `{"mode": "AllExceptExcluded", "naming": {"removeControllerSuffix": "yes"}}`,
			wantDiags: 1,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, SelectedOnly, cfg.Mode)
				assert.Empty(t, cfg.Include)
			},
		},
		{
			name:      "unknown method",
			data:      `{"methods": ["GET", "TRACE"]}`,
			wantDiags: 1,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, []endpoint.Method{endpoint.MethodGet}, cfg.Methods)
			},
		},
		{
			name: "missing naming keeps defaults",
			data: `{"naming": {}}`,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, DefaultToolNameFormat, cfg.Naming.ToolNameFormat)
				assert.True(t, cfg.Naming.RemoveControllerSuffix)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, diags := Parse("api2mcp.json", []byte(tt.data))
			require.Len(t, diags, tt.wantDiags, "%v", diags)
			for _, d := range diags {
				assert.Equal(t, diag.ConfigParseError, d.ID)
				assert.Equal(t, diag.Warning, d.Severity)
			}
			tt.check(t, cfg)
		})
	}
}

func TestParseYAML(t *testing.T) {
	data := `
mode: AllExceptExcluded
exclude:
  - Orders
Naming:
  removeControllerSuffix: false
`
	cfg, diags := ParseYAML("api2mcp.yaml", []byte(data))
	assert.Empty(t, diags)
	assert.Equal(t, AllExceptExcluded, cfg.Mode)
	assert.Equal(t, []string{"Orders"}, cfg.Exclude)
	assert.False(t, cfg.Naming.RemoveControllerSuffix)
	assert.Equal(t, DefaultToolNameFormat, cfg.Naming.ToolNameFormat)

	_, diags = ParseYAML("api2mcp.yaml", []byte("mode: [unclosed"))
	require.Len(t, diags, 1)
	assert.Equal(t, diag.ConfigParseError, diags[0].ID)
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg, diags := Load(filepath.Join(t.TempDir(), "api2mcp.json"))
		assert.Equal(t, Default(), cfg)
		require.Len(t, diags, 1)
		assert.Equal(t, diag.NoConfigFile, diags[0].ID)
		assert.Equal(t, diag.Info, diags[0].Severity)
	})

	t.Run("jsonc file", func(t *testing.T) {
		path := writeFile(t, "api2mcp.jsonc", `{"include": ["Weather"], /* trailing */ }`)
		cfg, diags := Load(path)
		assert.Empty(t, diags)
		assert.Equal(t, []string{"Weather"}, cfg.Include)
	})

	t.Run("yaml file", func(t *testing.T) {
		path := writeFile(t, "api2mcp.yml", "include: [Weather]\n")
		cfg, diags := Load(path)
		assert.Empty(t, diags)
		assert.Equal(t, []string{"Weather"}, cfg.Include)
	})
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("AllExceptExcluded")
	assert.True(t, ok)
	assert.Equal(t, AllExceptExcluded, m)
	assert.Equal(t, "AllExceptExcluded", m.String())

	m, ok = ParseMode("nope")
	assert.False(t, ok)
	assert.Equal(t, SelectedOnly, m)
}
