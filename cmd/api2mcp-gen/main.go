// api2mcp-gen renders MCP tool wrappers for the actions of an HTTP API.
//
// It reads an endpoint inventory (YAML/JSON) or an OpenAPI 3 document,
// applies the selection policy from api2mcp.json and writes one Go file
// per selected action plus a registry. Diagnostics are logged and never
// fail the run; only I/O failures and an unreadable inventory do.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bobmcallan/api2mcp/internal/common"
	"github.com/bobmcallan/api2mcp/internal/config"
	"github.com/bobmcallan/api2mcp/internal/diag"
	"github.com/bobmcallan/api2mcp/internal/endpoint"
	"github.com/bobmcallan/api2mcp/internal/genconfig"
	"github.com/bobmcallan/api2mcp/internal/generator"
	"github.com/bobmcallan/api2mcp/internal/openapi"
)

// policyFileName is looked up next to the inventory when --config is not
// given.
const policyFileName = "api2mcp.json"

type options struct {
	inventory     string
	openapi       string
	config        string
	out           string
	pkg           string
	runtimeImport string
	dryRun        bool
	logLevel      string
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("api2mcp-gen", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.inventory, "inventory", "", "endpoint inventory file (YAML or JSON)")
	flagSet.StringVar(&opts.openapi, "openapi", "", "OpenAPI 3 document (YAML or JSON)")
	flagSet.StringVar(&opts.config, "config", "", "generator policy file (default: api2mcp.json next to the inventory)")
	flagSet.StringVarP(&opts.out, "out", "o", "mcptools", "output directory")
	flagSet.StringVar(&opts.pkg, "package", "", "package name of the generated files (default: output directory name)")
	flagSet.StringVar(&opts.runtimeImport, "runtime-import", generator.DefaultRuntimeImport, "import path prefix of the invoker, tool and scope packages")
	flagSet.BoolVar(&opts.dryRun, "dry-run", false, "list the files that would be written without writing them")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	showVersion := flagSet.Bool("version", false, "print version information")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "api2mcp-gen version %s\n", config.GetFullVersion())
		return nil
	}

	logger := common.NewLoggerWithOutput(opts.logLevel, stderr)
	return generate(opts, logger, stdout)
}

func generate(opts options, logger *common.Logger, stdout io.Writer) error {
	descs, source, err := loadEndpoints(opts)
	if err != nil {
		return err
	}

	policyPath := opts.config
	if policyPath == "" {
		policyPath = filepath.Join(filepath.Dir(source), policyFileName)
	}
	policy, policyDiags := genconfig.Load(policyPath)

	pkg := opts.pkg
	if pkg == "" {
		pkg = packageName(opts.out)
	}

	res, err := generator.Generate(descs, policy, generator.Options{
		Package:       pkg,
		RuntimeImport: opts.runtimeImport,
	})
	if err != nil {
		return fmt.Errorf("failed to render tools: %w", err)
	}

	diags := append(policyDiags, res.Diagnostics...)
	diag.Log(logger, diags)

	files := res.Files()
	if opts.dryRun {
		for _, f := range files {
			fmt.Fprintf(stdout, "%s (%d bytes)\n", filepath.Join(opts.out, f.Name), len(f.Content))
		}
	} else {
		if err := os.MkdirAll(opts.out, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", opts.out, err)
		}
		for _, f := range files {
			path := filepath.Join(opts.out, f.Name)
			if err := os.WriteFile(path, f.Content, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			logger.Debug().Str("file", path).Msg("generated")
		}
	}

	logger.Info().
		Str("source", source).
		Int("endpoints", len(descs)).
		Int("tools", len(res.Plan.Tools)).
		Int("files", len(files)).
		Int("diagnostics", len(diags)).
		Str("out", opts.out).
		Msg("generation complete")
	return nil
}

func loadEndpoints(opts options) ([]endpoint.Descriptor, string, error) {
	switch {
	case opts.inventory != "" && opts.openapi != "":
		return nil, "", fmt.Errorf("--inventory and --openapi are mutually exclusive")
	case opts.openapi != "":
		descs, err := openapi.Load(opts.openapi)
		return descs, opts.openapi, err
	case opts.inventory != "":
		descs, err := endpoint.LoadInventory(opts.inventory)
		return descs, opts.inventory, err
	}
	return nil, "", fmt.Errorf("one of --inventory or --openapi is required")
}

// packageName derives a package clause from the output directory.
func packageName(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	name := make([]rune, 0, len(filepath.Base(abs)))
	for _, r := range filepath.Base(abs) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9' && len(name) > 0, r == '_':
			name = append(name, r)
		case r >= 'A' && r <= 'Z':
			name = append(name, r+'a'-'A')
		}
	}
	if len(name) == 0 {
		return "tools"
	}
	return string(name)
}
