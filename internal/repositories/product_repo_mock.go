package repositories

import (
	"fmt"
	"sync"
	"tienda/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "product", ID: id}
	}
	return &product, nil
}

// GetByIDsForUpdate returns the products matching the given IDs.
// Missing IDs are absent from the result. Isolation comes from the
// in-memory unit of work, which serializes whole transactions.
func (r *MockProductRepository) GetByIDsForUpdate(ids []string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[product.ID]
	if !ok {
		return &models.NotFoundError{Entity: "product", ID: product.ID}
	}
	r.products[product.ID] = *product
	return nil
}

// AdjustStock applies a relative stock change, rejecting any change
// that would drive stock below zero.
func (r *MockProductRepository) AdjustStock(id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return &models.NotFoundError{Entity: "product", ID: id}
	}
	if product.Stock+delta < 0 {
		return fmt.Errorf("stock adjustment of %d rejected for product %s", delta, id)
	}
	product.Stock += delta
	r.products[id] = product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return &models.NotFoundError{Entity: "product", ID: id}
	}
	delete(r.products, id)
	return nil
}

// snapshot copies the current product map for transaction rollback.
func (r *MockProductRepository) snapshot() map[string]models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copied := make(map[string]models.Product, len(r.products))
	for id, p := range r.products {
		copied[id] = p
	}
	return copied
}

// restore replaces the product map with a previously taken snapshot.
func (r *MockProductRepository) restore(snap map[string]models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = snap
}
