package endpoint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bobmcallan/api2mcp/pkg/scope"
)

// Inventory is the file form of a set of controllers. It is read as YAML,
// which also accepts JSON.
type Inventory struct {
	Controllers []Controller `yaml:"controllers" json:"controllers"`
}

// Controller groups actions under a shared route prefix.
type Controller struct {
	Name    string   `yaml:"name" json:"name"`
	Route   string   `yaml:"route,omitempty" json:"route,omitempty"`
	Expose  bool     `yaml:"expose,omitempty" json:"expose,omitempty"`
	Ignore  bool     `yaml:"ignore,omitempty" json:"ignore,omitempty"`
	Actions []Action `yaml:"actions" json:"actions"`
}

// Action is the file form of one action.
type Action struct {
	Name        string           `yaml:"name" json:"name"`
	Method      string           `yaml:"method" json:"method"`
	Route       string           `yaml:"route,omitempty" json:"route,omitempty"`
	Returns     string           `yaml:"returns,omitempty" json:"returns,omitempty"`
	Summary     string           `yaml:"summary,omitempty" json:"summary,omitempty"`
	ToolName    string           `yaml:"toolName,omitempty" json:"toolName,omitempty"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	Scope       string           `yaml:"scope,omitempty" json:"scope,omitempty"`
	Expose      bool             `yaml:"expose,omitempty" json:"expose,omitempty"`
	Ignore      bool             `yaml:"ignore,omitempty" json:"ignore,omitempty"`
	Parameters  []InventoryParam `yaml:"parameters,omitempty" json:"parameters,omitempty"`
}

// InventoryParam is the file form of one parameter. A present default
// implies HasDefault.
type InventoryParam struct {
	Name       string     `yaml:"name" json:"name"`
	Type       string     `yaml:"type" json:"type"`
	Nullable   bool       `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	HasDefault bool       `yaml:"hasDefault,omitempty" json:"hasDefault,omitempty"`
	Default    any        `yaml:"default,omitempty" json:"default,omitempty"`
	Source     string     `yaml:"source,omitempty" json:"source,omitempty"`
	Properties []Property `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// LoadInventory reads and flattens an inventory file.
func LoadInventory(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory %s: %w", path, err)
	}
	descs, err := ParseInventory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse inventory %s: %w", path, err)
	}
	return descs, nil
}

// ParseInventory decodes inventory YAML or JSON.
func ParseInventory(data []byte) ([]Descriptor, error) {
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	return inv.Descriptors()
}

// Descriptors flattens the inventory in declaration order: controllers
// first, then actions within each.
func (inv Inventory) Descriptors() ([]Descriptor, error) {
	var out []Descriptor
	for _, c := range inv.Controllers {
		if c.Name == "" {
			return nil, fmt.Errorf("controller without a name")
		}
		for _, a := range c.Actions {
			d, err := a.descriptor(c)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", c.Name, a.Name, err)
			}
			out = append(out, d)
		}
	}
	return out, nil
}

func (a Action) descriptor(c Controller) (Descriptor, error) {
	if a.Name == "" {
		return Descriptor{}, fmt.Errorf("action without a name")
	}
	method, err := ParseMethod(a.Method)
	if err != nil {
		return Descriptor{}, err
	}
	required, err := scope.Parse(a.Scope)
	if err != nil {
		return Descriptor{}, err
	}

	params := make([]Parameter, 0, len(a.Parameters))
	for _, p := range a.Parameters {
		src, err := ParseSource(p.Source)
		if err != nil {
			return Descriptor{}, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		params = append(params, Parameter{
			Name:       p.Name,
			Type:       p.Type,
			Nullable:   p.Nullable || len(p.Type) > 0 && p.Type[len(p.Type)-1] == '?',
			HasDefault: p.HasDefault || p.Default != nil,
			Default:    p.Default,
			Source:     src,
			Properties: p.Properties,
		})
	}

	return Descriptor{
		Controller:       c.Name,
		Action:           a.Name,
		Method:           method,
		Route:            BuildRoute(c.Route, a.Route, c.Name),
		Parameters:       params,
		ReturnType:       UnwrapReturnType(a.Returns),
		Expose:           a.Expose,
		Ignore:           a.Ignore,
		ControllerExpose: c.Expose,
		ControllerIgnore: c.Ignore,
		Summary:          a.Summary,
		ToolName:         a.ToolName,
		Description:      a.Description,
		RequiredScope:    required,
	}, nil
}
