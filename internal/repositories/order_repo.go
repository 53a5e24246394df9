package repositories

import (
	"tienda/internal/models"
)

// OrderRepository defines the interface for order data access.
// Orders are loaded with their items; they are never deleted, only
// transitioned through their status lifecycle.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByCustomerID(customerID string) ([]models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
}
