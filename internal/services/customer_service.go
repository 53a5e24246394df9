package services

import (
	"errors"
	"tienda/internal/models"
	"tienda/internal/repositories"
)

// CustomerWithOrders is a customer together with their order history.
type CustomerWithOrders struct {
	models.Customer
	Orders []models.Order `json:"orders"`
}

// CustomerService handles business logic related to customers.
type CustomerService struct {
	customerRepo repositories.CustomerRepository
	orderRepo    repositories.OrderRepository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(customerRepo repositories.CustomerRepository, orderRepo repositories.OrderRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

// CreateCustomer registers a new customer. Email uniqueness is a
// global invariant: a second customer with the same email is rejected
// with DuplicateEmailError.
func (s *CustomerService) CreateCustomer(customer *models.Customer) error {
	existing, err := s.customerRepo.GetByEmail(customer.Email)
	if err != nil {
		var notFound *models.NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	if existing != nil {
		return &models.DuplicateEmailError{Email: customer.Email}
	}

	return s.customerRepo.Create(customer)
}

// GetCustomerByID retrieves a customer by their ID.
func (s *CustomerService) GetCustomerByID(id string) (*models.Customer, error) {
	return s.customerRepo.GetByID(id)
}

// GetCustomerWithOrders retrieves a customer together with all their
// orders, items included.
func (s *CustomerService) GetCustomerWithOrders(id string) (*CustomerWithOrders, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.GetByCustomerID(id)
	if err != nil {
		return nil, err
	}
	return &CustomerWithOrders{
		Customer: *customer,
		Orders:   orders,
	}, nil
}

// GetCustomerOrders retrieves all orders of an existing customer.
func (s *CustomerService) GetCustomerOrders(id string) ([]models.Order, error) {
	if _, err := s.customerRepo.GetByID(id); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByCustomerID(id)
}
