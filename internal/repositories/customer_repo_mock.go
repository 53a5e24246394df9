package repositories

import (
	"sync"
	"tienda/internal/models"

	"github.com/google/uuid"
)

// MockCustomerRepository is an in-memory implementation of CustomerRepository.
type MockCustomerRepository struct {
	customers map[string]models.Customer
	mu        sync.RWMutex
}

// NewMockCustomerRepository creates a new instance of MockCustomerRepository.
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		customers: make(map[string]models.Customer),
	}
}

// Create adds a new customer, enforcing email uniqueness.
func (r *MockCustomerRepository) Create(customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.customers {
		if existing.Email == customer.Email {
			return &models.DuplicateEmailError{Email: customer.Email}
		}
	}
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	r.customers[customer.ID] = *customer
	return nil
}

// GetByID returns a customer by their ID.
func (r *MockCustomerRepository) GetByID(id string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.customers[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "customer", ID: id}
	}
	return &customer, nil
}

// GetByEmail returns a customer by their email.
func (r *MockCustomerRepository) GetByEmail(email string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, customer := range r.customers {
		if customer.Email == email {
			return &customer, nil
		}
	}
	return nil, &models.NotFoundError{Entity: "customer", ID: email}
}

// snapshot copies the current customer map for transaction rollback.
func (r *MockCustomerRepository) snapshot() map[string]models.Customer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	copied := make(map[string]models.Customer, len(r.customers))
	for id, c := range r.customers {
		copied[id] = c
	}
	return copied
}

// restore replaces the customer map with a previously taken snapshot.
func (r *MockCustomerRepository) restore(snap map[string]models.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = snap
}
