package config

import (
	"github.com/bobmcallan/api2mcp/internal/common"
	"github.com/bobmcallan/api2mcp/pkg/baseurl"
	"github.com/bobmcallan/api2mcp/pkg/invoker"
	"github.com/bobmcallan/api2mcp/pkg/loopguard"
)

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 5080,
			Host: "localhost",
		},
		MCP: MCPConfig{
			Path:           loopguard.DefaultPrefix,
			Name:           "api2mcp",
			TunnelEnv:      baseurl.DefaultTunnelEnv,
			AllowAnonymous: true,
		},
		Scope: ScopeConfig{
			Claim: invoker.DefaultClaimName,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: common.LoggingConfig{
			Level:   "info",
			Format:  "text",
			Outputs: []string{"console"},
		},
	}
}
