package generator

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/api2mcp/internal/demo"
	"github.com/bobmcallan/api2mcp/internal/endpoint"
	"github.com/bobmcallan/api2mcp/pkg/scope"
)

// buildGenerated writes res into a package inside the module and builds it
// with the go tool, so the rendered code is type-checked against the real
// runtime packages.
func buildGenerated(t *testing.T, res Result) {
	t.Helper()
	if testing.Short() {
		t.Skip("builds generated code")
	}
	goTool, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go tool not available")
	}

	dir, err := os.MkdirTemp(".", "gencheck")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	for _, f := range res.Files() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f.Name), f.Content, 0o644))
	}

	cmd := exec.Command(goTool, "vet", "./"+filepath.Base(dir))
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "generated code does not build:\n%s", out)
}

func TestGeneratedCodeBuilds_Demo(t *testing.T) {
	descs, err := demo.Inventory()
	require.NoError(t, err)
	cfg, diags := demo.Policy()
	require.Empty(t, diags)

	res, err := Generate(descs, cfg, Options{Package: "gencheck"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Units)
	buildGenerated(t, res)
}

func TestGeneratedCodeBuilds_Shapes(t *testing.T) {
	search := action("ProductsController", "Search", endpoint.MethodGet, "/api/products/search")
	search.Parameters = []endpoint.Parameter{
		{Name: "name", Type: "string"},
		{Name: "limit", Type: "int", HasDefault: true, Default: 20},
		{Name: "since", Type: "DateTime?", Nullable: true},
	}

	remove := action("OrdersController", "RemoveItem", endpoint.MethodDelete, "/api/orders/{orderId}/items/{itemId}")
	remove.Parameters = []endpoint.Parameter{{Name: "orderId", Type: "int"}, {Name: "itemId", Type: "long"}}

	file := action("FilesController", "Get", endpoint.MethodGet, "/files/{file-id}")
	file.Parameters = []endpoint.Parameter{{Name: "file-id", Type: "string", Source: endpoint.SourceRoute}}

	notes := action("NotesController", "Append", endpoint.MethodPost, "/api/notes")
	notes.Parameters = []endpoint.Parameter{
		{Name: "title", Type: "string", Source: endpoint.SourceBody},
		{Name: "tags", Type: "List<string>", Nullable: true, Source: endpoint.SourceBody},
	}

	imp := action("NotesController", "Import", endpoint.MethodPost, "/api/notes/import")
	imp.Parameters = []endpoint.Parameter{{
		Name:       "options",
		Type:       "ImportOptions",
		Nullable:   true,
		Properties: []endpoint.Property{{Name: "overwrite", Type: "bool"}},
	}}

	save := action("MeasurementController", "SaveValues", endpoint.MethodPut, "/api/measurement/{measurementTypeId}")
	save.Parameters = []endpoint.Parameter{{
		Name:   "request",
		Type:   "MeasurementValuesRequest",
		Source: endpoint.SourceBody,
		Properties: []endpoint.Property{
			{Name: "MeasurementTypeId", Type: "System.Guid"},
			{Name: "Value", Type: "decimal"},
		},
	}}

	item := action("ItemController", "GetById", endpoint.MethodGet, "/api/items/{ItemId}")
	item.Parameters = []endpoint.Parameter{{
		Name:       "request",
		Type:       "ItemRequest",
		Nullable:   true,
		Source:     endpoint.SourceRoute,
		Properties: []endpoint.Property{{Name: "itemId", Type: "int"}},
	}}

	report := action("ReportsController", "Get", endpoint.MethodGet, "/api/reports/{year}")
	report.Parameters = []endpoint.Parameter{
		{Name: "year", Type: "int"},
		{Name: "X-Tenant", Type: "string", Nullable: true, Source: endpoint.SourceHeader},
		{Name: "cancellationToken", Type: "System.Threading.CancellationToken"},
	}

	patch := action("ProductsController", "Rename", endpoint.MethodPatch, "/api/products/{id:guid}")
	patch.Parameters = []endpoint.Parameter{
		{Name: "id", Type: "System.Guid"},
		{Name: "name", Type: "string", Source: endpoint.SourceQuery},
	}
	patch.RequiredScope = scope.All

	res, err := Generate([]endpoint.Descriptor{
		getByID(), search, remove, file, notes, imp, save, item, report, patch,
	}, allExcept(), Options{Package: "gencheck"})
	require.NoError(t, err)
	buildGenerated(t, res)
}
