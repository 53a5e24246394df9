package services

import (
	"context"
	"tienda/internal/models"
	"tienda/internal/repositories"
)

// ProductService handles business logic related to the product catalog.
type ProductService struct {
	repo       repositories.ProductRepository
	uowFactory repositories.UnitOfWorkFactory
	ledger     *StockLedger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, uowFactory repositories.UnitOfWorkFactory, ledger *StockLedger) *ProductService {
	return &ProductService{
		repo:       repo,
		uowFactory: uowFactory,
		ledger:     ledger,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	return s.repo.Update(product)
}

// RestockProduct increases a product's stock through the stock ledger,
// inside its own transaction.
func (s *ProductService) RestockProduct(ctx context.Context, id string, quantity int) (*models.Product, error) {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := s.ledger.Restock(uow.Products(), id, quantity); err != nil {
		return nil, err
	}
	product, err := uow.Products().GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}
