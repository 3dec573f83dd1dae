package demo

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bobmcallan/api2mcp/internal/common"
)

// Product is a catalogue entry.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description *string   `json:"description"`
	Category    string    `json:"category"`
}

// CreateProductRequest is the body of a product creation.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category"`
}

// Products is an in-memory product catalogue.
type Products struct {
	logger *common.Logger

	mu       sync.RWMutex
	products []Product
}

func strPtr(s string) *string { return &s }

// NewProducts creates a catalogue seeded with three products.
func NewProducts(logger *common.Logger) *Products {
	return &Products{
		logger: logger,
		products: []Product{
			{ID: uuid.New(), Name: "Laptop", Price: 999.99, Category: "Electronics", Description: strPtr("A powerful laptop")},
			{ID: uuid.New(), Name: "Headphones", Price: 149.99, Category: "Electronics", Description: strPtr("Wireless headphones")},
			{ID: uuid.New(), Name: "Coffee Mug", Price: 12.99, Category: "Kitchen", Description: strPtr("A nice coffee mug")},
		},
	}
}

// List returns the products, filtered by category when one is given.
// Categories match case-insensitively.
func (p *Products) List(category string) []Product {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Product, 0, len(p.products))
	for _, prod := range p.products {
		if category == "" || strings.EqualFold(prod.Category, category) {
			out = append(out, prod)
		}
	}
	return out
}

// Get returns the product with the given id.
func (p *Products) Get(id uuid.UUID) (Product, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, prod := range p.products {
		if prod.ID == id {
			return prod, true
		}
	}
	return Product{}, false
}

// Add stores a new product built from req.
func (p *Products) Add(req CreateProductRequest) Product {
	prod := Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
	}

	p.mu.Lock()
	p.products = append(p.products, prod)
	p.mu.Unlock()
	return prod
}

// Remove deletes the product with the given id.
func (p *Products) Remove(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, prod := range p.products {
		if prod.ID == id {
			p.products = append(p.products[:i], p.products[i+1:]...)
			return true
		}
	}
	return false
}

// GetAll handles GET /api/products.
func (p *Products) GetAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, p.List(r.URL.Query().Get("category")))
}

// GetByID handles GET /api/products/{id}. Ids that are not UUIDs do not
// match the route.
func (p *Products) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		problem(w, http.StatusNotFound, "product not found")
		return
	}
	prod, ok := p.Get(id)
	if !ok {
		problem(w, http.StatusNotFound, "product not found")
		return
	}
	writeJSON(w, http.StatusOK, prod)
}

// Create handles POST /api/products.
func (p *Products) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problem(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		problem(w, http.StatusBadRequest, "name is required")
		return
	}

	prod := p.Add(req)
	if p.logger != nil {
		p.logger.Info().Str("id", prod.ID.String()).Str("name", prod.Name).Msg("product created")
	}
	writeJSON(w, http.StatusOK, prod)
}

// Delete handles DELETE /api/products/{id}.
func (p *Products) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil || !p.Remove(id) {
		problem(w, http.StatusNotFound, "product not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
