// Package demo serves a small products and weather API together with the
// inventory and policy that expose it as MCP tools.
package demo

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"github.com/bobmcallan/api2mcp/internal/common"
	"github.com/bobmcallan/api2mcp/internal/diag"
	"github.com/bobmcallan/api2mcp/internal/endpoint"
	"github.com/bobmcallan/api2mcp/internal/genconfig"
)

//go:embed inventory.yaml
var inventoryYAML []byte

//go:embed api2mcp.json
var policyJSON []byte

// Inventory returns the endpoint descriptors of the demo API.
func Inventory() ([]endpoint.Descriptor, error) {
	return endpoint.ParseInventory(inventoryYAML)
}

// Policy returns the generator policy shipped with the demo API.
func Policy() (genconfig.Config, []diag.Diagnostic) {
	return genconfig.Parse("demo/api2mcp.json", policyJSON)
}

// API holds the demo controllers.
type API struct {
	Products *Products
	Weather  *Weather
}

// New creates the demo API with seeded products.
func New(logger *common.Logger) *API {
	return &API{
		Products: NewProducts(logger),
		Weather:  NewWeather(logger),
	}
}

// Register mounts the demo routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", a.Products.GetAll)
	mux.HandleFunc("GET /api/products/{id}", a.Products.GetByID)
	mux.HandleFunc("POST /api/products", a.Products.Create)
	mux.HandleFunc("DELETE /api/products/{id}", a.Products.Delete)

	mux.HandleFunc("GET /api/weather", a.Weather.GetAll)
	mux.HandleFunc("GET /api/weather/{city}", a.Weather.GetByCity)
	mux.HandleFunc("POST /api/weather", a.Weather.Create)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// problem writes an RFC 7807 style error body.
func problem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
