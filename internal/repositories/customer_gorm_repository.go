package repositories

import (
	"errors"
	"fmt"
	"tienda/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCustomerRepository is a GORM implementation of CustomerRepository.
type GORMCustomerRepository struct {
	db *gorm.DB
}

// NewGORMCustomerRepository creates a new instance of GORMCustomerRepository.
func NewGORMCustomerRepository(db *gorm.DB) *GORMCustomerRepository {
	return &GORMCustomerRepository{
		db: db,
	}
}

// Create creates a new customer in the database. The unique index on
// email is the last line of defense against concurrent registrations
// with the same address: a violation surfaces as DuplicateEmailError,
// not as a generic persistence failure.
func (r *GORMCustomerRepository) Create(customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if err := r.db.Create(customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &models.DuplicateEmailError{Email: customer.Email}
		}
		return &models.PersistenceError{Op: "create customer", Err: err}
	}
	return nil
}

// GetByID retrieves a customer by their ID from the database.
func (r *GORMCustomerRepository) GetByID(id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Entity: "customer", ID: id}
		}
		return nil, fmt.Errorf("failed to get customer by ID %s: %w", id, err)
	}
	return &customer, nil
}

// GetByEmail retrieves a customer by their email from the database.
func (r *GORMCustomerRepository) GetByEmail(email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Entity: "customer", ID: email}
		}
		return nil, fmt.Errorf("failed to get customer by email %s: %w", email, err)
	}
	return &customer, nil
}
