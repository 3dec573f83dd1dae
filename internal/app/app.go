package app

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/bobmcallan/api2mcp/internal/auth"
	"github.com/bobmcallan/api2mcp/internal/common"
	"github.com/bobmcallan/api2mcp/internal/config"
	"github.com/bobmcallan/api2mcp/internal/demo"
	"github.com/bobmcallan/api2mcp/internal/diag"
	"github.com/bobmcallan/api2mcp/internal/endpoint"
	"github.com/bobmcallan/api2mcp/internal/genconfig"
	"github.com/bobmcallan/api2mcp/internal/generator"
	"github.com/bobmcallan/api2mcp/internal/handlers"
	"github.com/bobmcallan/api2mcp/internal/mcp"
	"github.com/bobmcallan/api2mcp/internal/openapi"
	"github.com/bobmcallan/api2mcp/pkg/baseurl"
	"github.com/bobmcallan/api2mcp/pkg/invoker"
	"github.com/bobmcallan/api2mcp/pkg/scope"
	"github.com/bobmcallan/api2mcp/pkg/tool"
)

// metricsNamespace prefixes every exported collector.
const metricsNamespace = "api2mcp"

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	// Registry collects invoker metrics and the Go runtime collectors.
	Registry *prometheus.Registry
	// Listeners receives the addresses the HTTP server binds, for base URL
	// resolution.
	Listeners     *baseurl.Listeners
	Resolver      *baseurl.Resolver
	Invoker       *invoker.Invoker
	Authenticator *auth.Authenticator

	MCPServer *server.MCPServer
	// Tools are the definitions registered on MCPServer.
	Tools []tool.Definition
	// Demo is set when no inventory is configured and the bundled API is
	// served.
	Demo *demo.API

	// HTTP handlers
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
	ToolsHandler   *handlers.ToolsHandler
	MCPHandler     *mcp.Handler
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    logger,
		Registry:  prometheus.NewRegistry(),
		Listeners: &baseurl.Listeners{},
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE: tunnel base URL lookup enabled")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.Resolver = baseurl.New(baseurl.Options{
		Configured:  cfg.MCP.BaseURL,
		Environment: cfg.Environment,
		TunnelEnv:   cfg.MCP.TunnelEnv,
		Addresses:   a.Listeners,
	})

	opts := invoker.Options{
		Metrics: invoker.NewMetrics(metricsNamespace, a.Registry),
	}
	if cfg.Scope.Enabled {
		opts.Scope = invoker.ScopeOptions{ClaimName: cfg.Scope.Claim, Mapper: scope.FromClaim}
	}
	a.Invoker = invoker.New(a.Resolver, logger, opts)

	a.Authenticator = auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, logger)
	if !a.Authenticator.Enabled() && (cfg.Scope.Enabled || !cfg.MCP.AllowAnonymous) {
		logger.Warn().Msg("auth.jwt_secret is not set: no caller can authenticate, scoped tools will be refused")
	}

	defs, err := a.loadTools()
	if err != nil {
		return nil, err
	}

	a.MCPServer = mcp.NewServer(cfg.MCP.Name, config.GetVersion())
	registered := mcp.Register(a.MCPServer, a.Invoker, defs, logger)
	a.Tools = a.registeredDefinitions(defs)
	a.MCPServer.AddTool(mcp.VersionTool(), mcp.VersionToolHandler(registered))

	a.initHandlers()

	logger.Info().
		Int("tools", registered).
		Str("mcp_path", cfg.MCP.Path).
		Str("scope_checks", strconv.FormatBool(cfg.Scope.Enabled)).
		Msg("application initialization complete")

	return a, nil
}

// registeredDefinitions keeps the first definition of each tool name, the
// ones Register accepted.
func (a *App) registeredDefinitions(defs []tool.Definition) []tool.Definition {
	seen := make(map[string]bool, len(defs))
	out := make([]tool.Definition, 0, len(defs))
	for _, d := range defs {
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		out = append(out, d)
	}
	return out
}

// loadTools reads the configured endpoint source and policy and plans the
// tools to register. Policy problems are logged as diagnostics and never
// fail start-up; an unreadable endpoint source does.
func (a *App) loadTools() ([]tool.Definition, error) {
	cfg := a.Config.MCP

	var (
		descs  []endpoint.Descriptor
		source string
		err    error
	)
	switch {
	case cfg.OpenAPI != "":
		source = cfg.OpenAPI
		descs, err = openapi.Load(cfg.OpenAPI)
	case cfg.Inventory != "":
		source = cfg.Inventory
		descs, err = endpoint.LoadInventory(cfg.Inventory)
	default:
		source = "demo"
		descs, err = demo.Inventory()
		a.Demo = demo.New(a.Logger)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load endpoints: %w", err)
	}

	var (
		policy genconfig.Config
		diags  []diag.Diagnostic
	)
	switch {
	case cfg.Policy != "":
		policy, diags = genconfig.Load(cfg.Policy)
	case a.Demo != nil:
		policy, diags = demo.Policy()
	default:
		policy, diags = genconfig.Load(filepath.Join(filepath.Dir(source), "api2mcp.json"))
	}

	plan := generator.NewPlan(descs, policy)
	diag.Log(a.Logger, append(diags, plan.Diagnostics...))

	a.Logger.Info().
		Str("source", source).
		Int("endpoints", len(descs)).
		Int("selected", len(plan.Tools)).
		Str("mode", policy.Mode.String()).
		Msg("endpoint inventory loaded")

	return plan.Definitions(), nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, func() int { return len(a.Tools) })
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.ToolsHandler = handlers.NewToolsHandler(a.Logger, func() []tool.Definition { return a.Tools })
	a.MCPHandler = mcp.NewHandler(a.MCPServer, a.Logger, a.Config.MCP.AllowAnonymous)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	return nil
}
