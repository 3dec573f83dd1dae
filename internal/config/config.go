package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"

	"github.com/bobmcallan/api2mcp/internal/common"
)

// Config represents the runtime host configuration.
type Config struct {
	Environment string               `toml:"environment"`
	Server      ServerConfig         `toml:"server"`
	MCP         MCPConfig            `toml:"mcp"`
	Scope       ScopeConfig          `toml:"scope"`
	Auth        AuthConfig           `toml:"auth"`
	Metrics     MetricsConfig        `toml:"metrics"`
	Logging     common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// MCPConfig controls the MCP endpoint and the tools it serves.
type MCPConfig struct {
	// Path is where the MCP endpoint is mounted. Loop prevention guards it.
	Path string `toml:"path"`
	// Name is the server name reported to MCP clients.
	Name string `toml:"name"`
	// BaseURL overrides the self-call target.
	BaseURL string `toml:"base_url"`
	// TunnelEnv names the variable read for a tunnel URL in development.
	TunnelEnv      string `toml:"tunnel_env"`
	AllowAnonymous bool   `toml:"allow_anonymous"`
	// Inventory and OpenAPI name the endpoint source. With neither set the
	// bundled demo inventory is used.
	Inventory string `toml:"inventory"`
	OpenAPI   string `toml:"openapi"`
	// Policy is the generator policy file. Empty uses the demo policy when
	// serving the demo inventory, and the defaults otherwise.
	Policy string `toml:"policy"`
}

// ScopeConfig controls per-tool scope checks.
type ScopeConfig struct {
	Enabled bool   `toml:"enabled"`
	Claim   string `toml:"claim"`
}

// AuthConfig contains bearer token settings.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	Issuer    string `toml:"issuer"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// IsDevMode reports whether the host runs in development mode.
func (c *Config) IsDevMode() bool {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development":
		return true
	}
	return false
}

// Address returns host:port for the listener.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports settings the host cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if !strings.HasPrefix(c.MCP.Path, "/") {
		return fmt.Errorf("mcp.path %q must start with /", c.MCP.Path)
	}
	if c.MCP.Inventory != "" && c.MCP.OpenAPI != "" {
		return fmt.Errorf("mcp.inventory and mcp.openapi are mutually exclusive")
	}
	if c.Scope.Enabled && strings.TrimSpace(c.Scope.Claim) == "" {
		return fmt.Errorf("scope.claim must be set when scope checks are enabled")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path)
	}
	return nil
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies API2MCP_* environment variable overrides to
// config. Values that do not parse are ignored.
func applyEnvOverrides(config *Config) {
	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v := os.Getenv(name); v != "" {
			if b, err := cast.ToBoolE(v); err == nil {
				*dst = b
			}
		}
	}

	str("API2MCP_ENVIRONMENT", &config.Environment)
	str("API2MCP_SERVER_HOST", &config.Server.Host)
	if port := os.Getenv("API2MCP_SERVER_PORT"); port != "" {
		if p, err := cast.ToIntE(port); err == nil {
			config.Server.Port = p
		}
	}

	str("API2MCP_MCP_PATH", &config.MCP.Path)
	str("API2MCP_MCP_BASE_URL", &config.MCP.BaseURL)
	str("API2MCP_MCP_TUNNEL_ENV", &config.MCP.TunnelEnv)
	boolean("API2MCP_MCP_ALLOW_ANONYMOUS", &config.MCP.AllowAnonymous)
	str("API2MCP_MCP_INVENTORY", &config.MCP.Inventory)
	str("API2MCP_MCP_OPENAPI", &config.MCP.OpenAPI)
	str("API2MCP_MCP_POLICY", &config.MCP.Policy)

	boolean("API2MCP_SCOPE_ENABLED", &config.Scope.Enabled)
	str("API2MCP_SCOPE_CLAIM", &config.Scope.Claim)

	str("API2MCP_AUTH_JWT_SECRET", &config.Auth.JWTSecret)
	str("API2MCP_AUTH_ISSUER", &config.Auth.Issuer)

	boolean("API2MCP_METRICS_ENABLED", &config.Metrics.Enabled)

	str("API2MCP_LOG_LEVEL", &config.Logging.Level)
	if outputs := os.Getenv("API2MCP_LOG_OUTPUTS"); outputs != "" {
		config.Logging.Outputs = strings.FieldsFunc(outputs, func(r rune) bool { return r == ',' || r == ' ' })
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
func ApplyFlagOverrides(config *Config, port int, host, baseURL string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if baseURL != "" {
		config.MCP.BaseURL = baseURL
	}
}
