// Package diag holds the diagnostics reported while generating tools.
// None of them stop generation: configuration problems fall back to
// defaults and the other conditions only exclude the affected action.
package diag

import (
	"fmt"

	"github.com/bobmcallan/api2mcp/internal/common"
)

// Severity of a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "info"
}

// Diagnostic IDs.
const (
	ConfigParseError      = "MCP001"
	UnsupportedHTTPMethod = "MCP002"
	UnsupportedReturnType = "MCP003"
	MCPRouteSkipped       = "MCP004"
	NoConfigFile          = "MCP005"
	DuplicateToolName     = "MCP006"
)

// Diagnostic is one reported condition. Subject names the action or file
// it concerns.
type Diagnostic struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Subject  string   `json:"subject,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.ID, d.Severity, d.Message)
}

// ConfigParse reports a policy file that could not be read as intended.
func ConfigParse(path string, err error) Diagnostic {
	return Diagnostic{
		ID:       ConfigParseError,
		Severity: Warning,
		Subject:  path,
		Message:  fmt.Sprintf("Failed to parse %s: %v", path, err),
	}
}

// NoConfig reports a missing policy file.
func NoConfig(path string) Diagnostic {
	return Diagnostic{
		ID:       NoConfigFile,
		Severity: Info,
		Subject:  path,
		Message:  "No generator configuration found. Using default configuration (SelectedOnly mode with empty include list).",
	}
}

// Method reports an action excluded by the method policy.
func Method(controller, action, method string, allowed []string) Diagnostic {
	return Diagnostic{
		ID:       UnsupportedHTTPMethod,
		Severity: Info,
		Subject:  controller + "." + action,
		Message: fmt.Sprintf("Action '%s.%s' uses HTTP method '%s' which is not enabled. Enabled methods: %v.",
			controller, action, method, allowed),
	}
}

// ReturnType reports an action whose result cannot be carried as text.
func ReturnType(controller, action, typeName string) Diagnostic {
	return Diagnostic{
		ID:       UnsupportedReturnType,
		Severity: Info,
		Subject:  controller + "." + action,
		Message:  fmt.Sprintf("Action '%s.%s' has return type '%s' which is not supported. Skipping.", controller, action, typeName),
	}
}

// RouteSkipped reports an action excluded by the loop guard.
func RouteSkipped(controller, action string) Diagnostic {
	return Diagnostic{
		ID:       MCPRouteSkipped,
		Severity: Info,
		Subject:  controller + "." + action,
		Message:  fmt.Sprintf("Action '%s.%s' was skipped because its route contains '/mcp' (loop prevention).", controller, action),
	}
}

// DuplicateName reports two tools sharing a visible name.
func DuplicateName(name, first, second string) Diagnostic {
	return Diagnostic{
		ID:       DuplicateToolName,
		Severity: Warning,
		Subject:  second,
		Message:  fmt.Sprintf("Tool name '%s' of %s is already used by %s. Only the first is reachable.", name, second, first),
	}
}

// Log writes ds to logger, warnings at warn level and the rest at info.
func Log(logger *common.Logger, ds []Diagnostic) {
	for _, d := range ds {
		evt := logger.Info()
		if d.Severity == Warning {
			evt = logger.Warn()
		}
		evt.Str("id", d.ID).Str("subject", d.Subject).Msg(d.Message)
	}
}

// Count returns how many diagnostics have the given ID.
func Count(ds []Diagnostic, id string) int {
	n := 0
	for _, d := range ds {
		if d.ID == id {
			n++
		}
	}
	return n
}
