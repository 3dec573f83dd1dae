package endpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/api2mcp/pkg/scope"
)

func TestBuildRoute(t *testing.T) {
	tests := []struct {
		prefix, template, controller, want string
	}{
		{"api/[controller]", "{id:guid}", "ProductsController", "/api/products/{id:guid}"},
		{"/api/[controller]/", "", "WeatherController", "/api/weather"},
		{"", "/health", "StatusController", "/health"},
		{"", "", "RootController", "/"},
		{"api/[controller]", "search", "Orders", "/api/orders/search"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildRoute(tt.prefix, tt.template, tt.controller))
	}
}

func TestUnwrapReturnType(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "void"},
		{"Task", "void"},
		{"System.Threading.Tasks.ValueTask", "void"},
		{"Task<ActionResult<Product>>", "Product"},
		{"ActionResult<IEnumerable<Product>>", "IEnumerable<Product>"},
		{"ValueTask<string>", "string"},
		{"IActionResult", "IActionResult"},
		{"Task<IActionResult>", "IActionResult"},
		{"Microsoft.AspNetCore.Mvc.ActionResult<WeatherForecast>", "WeatherForecast"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UnwrapReturnType(tt.in), tt.in)
	}
}

func TestParseMethodAndSource(t *testing.T) {
	m, err := ParseMethod("patch")
	require.NoError(t, err)
	assert.Equal(t, MethodPatch, m)

	_, err = ParseMethod("HEAD")
	assert.Error(t, err)

	src, err := ParseSource("")
	require.NoError(t, err)
	assert.Equal(t, SourceAuto, src)

	src, err = ParseSource(" Auto ")
	require.NoError(t, err)
	assert.Equal(t, SourceAuto, src)
	assert.Equal(t, Source(""), SourceAuto, "the zero value must mean inferred binding")

	src, err = ParseSource("FromBody")
	assert.Error(t, err)
	assert.Empty(t, src)
}

func TestParameterInjected(t *testing.T) {
	assert.True(t, Parameter{Name: "svc", Type: "ILogger", Source: SourceServices}.Injected())
	assert.True(t, Parameter{Name: "ct", Type: "System.Threading.CancellationToken"}.Injected())
	assert.True(t, Parameter{Name: "ctx", Type: "context.Context"}.Injected())
	assert.False(t, Parameter{Name: "id", Type: "Guid"}.Injected())
}

const sampleInventory = `
controllers:
  - name: ProductsController
    route: api/[controller]
    actions:
      - name: GetAll
        method: GET
        returns: Task<ActionResult<IEnumerable<Product>>>
        summary: List products
        scope: Read
        parameters:
          - name: category
            type: string
            nullable: true
            hasDefault: true
          - name: ct
            type: CancellationToken
      - name: Delete
        method: delete
        route: "{id:guid}"
        ignore: true
        scope: Delete
        parameters:
          - name: id
            type: Guid
  - name: WeatherController
    route: api/[controller]
    expose: true
    actions:
      - name: GetForecast
        method: GET
        route: "{city}"
        toolName: weather_for_city
        scope: "read"
        parameters:
          - name: city
            type: string
          - name: daysAhead
            type: int
            default: 1
`

func TestParseInventory(t *testing.T) {
	descs, err := ParseInventory([]byte(sampleInventory))
	require.NoError(t, err)
	require.Len(t, descs, 3)

	getAll := descs[0]
	assert.Equal(t, "ProductsController", getAll.Controller)
	assert.Equal(t, "GetAll", getAll.Action)
	assert.Equal(t, MethodGet, getAll.Method)
	assert.Equal(t, "/api/products", getAll.Route)
	assert.Equal(t, "IEnumerable<Product>", getAll.ReturnType)
	assert.Equal(t, scope.Read, getAll.RequiredScope)
	assert.Equal(t, "List products", getAll.Summary)
	require.Len(t, getAll.Parameters, 2)
	assert.True(t, getAll.Parameters[0].Nullable)
	assert.True(t, getAll.Parameters[0].HasDefault)
	assert.Nil(t, getAll.Parameters[0].Default)
	assert.True(t, getAll.Parameters[1].Injected())

	del := descs[1]
	assert.Equal(t, MethodDelete, del.Method)
	assert.Equal(t, "/api/products/{id:guid}", del.Route)
	assert.True(t, del.Ignore)
	assert.Equal(t, scope.Delete, del.RequiredScope)

	forecast := descs[2]
	assert.Equal(t, "/api/weather/{city}", forecast.Route)
	assert.True(t, forecast.ControllerExpose)
	assert.False(t, forecast.Expose)
	assert.Equal(t, "weather_for_city", forecast.ToolName)
	assert.Equal(t, "void", forecast.ReturnType)
	assert.True(t, forecast.Parameters[1].HasDefault)
	assert.Equal(t, 1, forecast.Parameters[1].Default)
}

func TestParseInventory_JSON(t *testing.T) {
	data := `{"controllers":[{"name":"OrdersController","route":"api/orders","actions":[
		{"name":"Get","method":"GET","route":"{id:int}","parameters":[{"name":"id","type":"int"}]}]}]}`

	descs, err := ParseInventory([]byte(data))
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "/api/orders/{id:int}", descs[0].Route)
	assert.Equal(t, "OrdersController_GetTool", descs[0].ToolClassName())
	assert.Equal(t, "OrdersController.Get", descs[0].Subject())
}

func TestParseInventory_Errors(t *testing.T) {
	tests := map[string]string{
		"bad method": `controllers: [{name: A, actions: [{name: B, method: HEAD}]}]`,
		"bad scope":  `controllers: [{name: A, actions: [{name: B, method: GET, scope: admin}]}]`,
		"bad source": `controllers: [{name: A, actions: [{name: B, method: GET, parameters: [{name: x, type: int, source: cookie}]}]}]`,
		"no name":    `controllers: [{actions: []}]`,
		"not yaml":   "controllers: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseInventory([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleInventory), 0o644))

	descs, err := LoadInventory(path)
	require.NoError(t, err)
	assert.Len(t, descs, 3)

	_, err = LoadInventory(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read inventory")
}
