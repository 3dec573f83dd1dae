package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/bobmcallan/api2mcp/internal/endpoint"
)

func TestRouteContainsParameter(t *testing.T) {
	tests := []struct {
		route string
		param string
		want  bool
	}{
		{"/api/products/{id}", "id", true},
		{"/api/products/{id}", "name", false},
		{"/api/products/{id:guid}", "id", true},
		{"/api/products/{id:int}", "id", true},
		{"/api/products/{id:long}", "id", true},
		{"/api/products/{id:alpha}", "id", true},
		{"/api/products/{id:datetime}", "id", true},
		{"/api/products/{id?}", "id", true},
		{"/api/products/{id:guid?}", "id", true},
		{"/api/{category}/products/{id:guid}", "category", true},
		{"/api/{category}/products/{id:guid}", "id", true},
		{"/api/products", "id", false},
		{"/api/{Id}", "Id", true},
		{"/api/{Id}", "id", false},
		{"/files/{*path}", "path", true},
		{"/api/{{id}}", "id", false},
	}
	for _, tt := range tests {
		if got := RouteContainsParameter(tt.route, tt.param); got != tt.want {
			t.Errorf("RouteContainsParameter(%q, %q) = %v, want %v", tt.route, tt.param, got, tt.want)
		}
	}
}

func TestConvertRoute(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   []endpoint.Parameter
		want     string
	}{
		{"simple", "/api/products/{id}", []endpoint.Parameter{{Name: "id", Type: "int"}}, "/api/products/{routeid}"},
		{"guid constraint", "/api/products/{id:guid}", []endpoint.Parameter{{Name: "id", Type: "System.Guid"}}, "/api/products/{routeid}"},
		{"int constraint", "/api/products/{id:int}", []endpoint.Parameter{{Name: "id", Type: "int"}}, "/api/products/{routeid}"},
		{"optional", "/api/products/{id?}", []endpoint.Parameter{{Name: "id", Type: "int?", Nullable: true}}, "/api/products/{routeid}"},
		{"optional with constraint", "/api/products/{id:guid?}", []endpoint.Parameter{{Name: "id", Type: "Guid?", Nullable: true}}, "/api/products/{routeid}"},
		{
			"multiple",
			"/api/{category}/products/{id:guid}",
			[]endpoint.Parameter{{Name: "category", Type: "string"}, {Name: "id", Type: "System.Guid"}},
			"/api/{routecategory}/products/{routeid}",
		},
		{"custom constraint", "/api/posts/{slug:regex(^[a-z-]+$)}", []endpoint.Parameter{{Name: "slug", Type: "string"}}, "/api/posts/{routeslug}"},
		{"nested braces", "/api/posts/{slug:regex(^[a-z]{{2}}$)}/tail", []endpoint.Parameter{{Name: "slug", Type: "string"}}, "/api/posts/{routeslug}/tail"},
		{"unmatched", "/api/{controller}/{id}", []endpoint.Parameter{{Name: "id", Type: "int"}}, "/api/{controller}/{routeid}"},
		{"unmatched keeps constraint", "/api/{version:int}/{id}", []endpoint.Parameter{{Name: "id", Type: "int"}}, "/api/{version:int}/{routeid}"},
		{"case sensitive", "/api/{Id}", []endpoint.Parameter{{Name: "id", Type: "int"}}, "/api/{Id}"},
		{"query source not matched", "/api/{id}", []endpoint.Parameter{{Name: "id", Type: "int", Source: endpoint.SourceQuery}}, "/api/{id}"},
		{"no placeholders", "/api/products", nil, "/api/products"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertRoute(tt.template, tt.params).Template)
		})
	}
}

func TestConvertRoute_Parts(t *testing.T) {
	r := ConvertRoute("/api/{category}/products/{id:guid}", []endpoint.Parameter{
		{Name: "category", Type: "string"},
		{Name: "id", Type: "Guid"},
	})

	assert.Equal(t, []RoutePart{
		{Literal: "/api/"},
		{Placeholder: "routecategory"},
		{Literal: "/products/"},
		{Placeholder: "routeid"},
	}, r.Parts)
	assert.Equal(t, []RouteValue{
		{Placeholder: "routecategory", Param: "category"},
		{Placeholder: "routeid", Param: "id"},
	}, r.Values)
	assert.True(t, r.References("id"))
	assert.False(t, r.References("other"))
}

func TestConvertRoute_Properties(t *testing.T) {
	measurement := endpoint.Parameter{
		Name:   "request",
		Type:   "MeasurementValuesRequest",
		Source: endpoint.SourceBody,
		Properties: []endpoint.Property{
			{Name: "MeasurementTypeId", Type: "System.Guid"},
			{Name: "Value", Type: "decimal"},
		},
	}

	t.Run("case insensitive property match", func(t *testing.T) {
		r := ConvertRoute("/api/measurement/{measurementTypeId}", []endpoint.Parameter{measurement})
		assert.Equal(t, "/api/measurement/{routerequest_MeasurementTypeId}", r.Template)
		require.Len(t, r.Values, 1)
		assert.Equal(t, RouteValue{
			Placeholder: "routerequest_MeasurementTypeId",
			Param:       "request",
			Property:    "MeasurementTypeId",
		}, r.Values[0])
	})

	t.Run("direct parameter wins", func(t *testing.T) {
		params := []endpoint.Parameter{
			{Name: "orderId", Type: "System.Guid", Source: endpoint.SourceRoute},
			{
				Name:   "request",
				Type:   "UpdateItemRequest",
				Source: endpoint.SourceBody,
				Properties: []endpoint.Property{
					{Name: "OrderId", Type: "Guid"},
					{Name: "ItemId", Type: "int"},
				},
			},
		}
		r := ConvertRoute("/api/orders/{orderId}/items/{itemId}", params)
		assert.Equal(t, "/api/orders/{routeorderId}/items/{routerequest_ItemId}", r.Template)
	})

	t.Run("nullable property", func(t *testing.T) {
		filter := endpoint.Parameter{
			Name:       "filter",
			Type:       "DataFilter",
			Source:     endpoint.SourceRoute,
			Properties: []endpoint.Property{{Name: "CategoryId", Type: "int?", Nullable: true}},
		}
		r := ConvertRoute("/api/data/{categoryId}", []endpoint.Parameter{filter})
		require.Len(t, r.Values, 1)
		assert.True(t, r.Values[0].Nullable)
	})

	t.Run("injected parameters never match", func(t *testing.T) {
		r := ConvertRoute("/api/{id}", []endpoint.Parameter{{Name: "id", Type: "IRepository", Source: endpoint.SourceServices}})
		assert.Equal(t, "/api/{id}", r.Template)
	})
}

func TestConvertRoute_StripsMarkers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[a-zA-Z][a-zA-Z0-9]{0,8}`).Draw(t, "name")
		constraint := rapid.SampledFrom([]string{"", ":guid", ":int", ":long", ":alpha", ":regex(^[a-z]{{2}}$)", ":min(1)"}).Draw(t, "constraint")
		optional := rapid.SampledFrom([]string{"", "?"}).Draw(t, "optional")
		prefix := rapid.SampledFrom([]string{"/api/items/", "/v1/", "/"}).Draw(t, "prefix")

		template := prefix + "{" + name + constraint + optional + "}"
		got := ConvertRoute(template, []endpoint.Parameter{{Name: name, Type: "string"}})

		if want := prefix + "{route" + name + "}"; got.Template != want {
			t.Fatalf("ConvertRoute(%q) = %q, want %q", template, got.Template, want)
		}
		if !RouteContainsParameter(template, name) {
			t.Fatalf("RouteContainsParameter(%q, %q) = false", template, name)
		}
	})
}
