package repositories

import (
	"tienda/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// GetByIDsForUpdate and AdjustStock are the primitives the stock
// ledger builds on: the former locks the product rows for the
// duration of the enclosing transaction, the latter applies a relative
// stock change that must never drive stock below zero.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetByIDsForUpdate(ids []string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	AdjustStock(id string, delta int) error
	Delete(id string) error
}
