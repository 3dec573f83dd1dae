package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestMCPTool_Schema(t *testing.T) {
	def := Definition{
		Name:        "Weather_GetForecast",
		Description: "Get the forecast for a city",
		Method:      "GET",
		Route:       "api/weather/{city}",
		Params: []Param{
			{Name: "city", Kind: KindString, Binding: BindRoute, Required: true, Description: "City name"},
			{Name: "days", Kind: KindInteger, Binding: BindQuery, Default: int32(5)},
			{Name: "metric", Kind: KindBoolean, Binding: BindQuery, Default: true},
			{Name: "tags", Kind: KindArray, Binding: BindQuery},
			{Name: "filter", Kind: KindObject, Binding: BindBody},
		},
	}

	tool := MCPTool(def)

	if tool.Name != "Weather_GetForecast" {
		t.Errorf("expected name 'Weather_GetForecast', got %q", tool.Name)
	}
	if tool.Description != "Get the forecast for a city" {
		t.Errorf("unexpected description %q", tool.Description)
	}

	wantTypes := map[string]string{
		"city":   "string",
		"days":   "number",
		"metric": "boolean",
		"tags":   "array",
		"filter": "object",
	}
	for name, want := range wantTypes {
		prop, ok := tool.InputSchema.Properties[name].(map[string]any)
		if !ok {
			t.Fatalf("expected property %q in schema", name)
		}
		if prop["type"] != want {
			t.Errorf("property %q: expected type %q, got %v", name, want, prop["type"])
		}
	}

	days := tool.InputSchema.Properties["days"].(map[string]any)
	if days["default"] != float64(5) {
		t.Errorf("expected default 5 for days, got %v", days["default"])
	}

	if len(tool.InputSchema.Required) != 1 || tool.InputSchema.Required[0] != "city" {
		t.Errorf("expected only 'city' to be required, got %v", tool.InputSchema.Required)
	}
}

func TestResult(t *testing.T) {
	res, err := Result(`{"ok":true}`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Error("expected success result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok || text.Text != `{"ok":true}` {
		t.Errorf("unexpected content %#v", res.Content[0])
	}

	res, err = Result("", errors.New("missing required argument \"id\""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Error("expected error result")
	}

	_, err = Result("", fmt.Errorf("call: %w", context.Canceled))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation to propagate, got %v", err)
	}
}
