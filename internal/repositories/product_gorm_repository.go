package repositories

import (
	"errors"
	"fmt"
	"tienda/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.NotFoundError{Entity: "product", ID: id}
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetByIDsForUpdate retrieves the products matching the given IDs with
// row locks held until the enclosing transaction ends. Concurrent
// reservations of the same products serialize on these locks. SQLite
// has no FOR UPDATE; its transactions take a database-level write lock
// instead, so the clause is skipped there.
func (r *GORMProductRepository) GetByIDsForUpdate(ids []string) ([]models.Product, error) {
	tx := r.db
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var products []models.Product
	err := tx.Find(&products, "id IN ?", ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock products by IDs: %w", err)
	}
	return products, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return &models.PersistenceError{Op: "create product", Err: err}
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return &models.PersistenceError{Op: "update product", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound if no rows were
		// affected for an update, so we check RowsAffected.
		return &models.NotFoundError{Entity: "product", ID: product.ID}
	}
	return nil
}

// AdjustStock applies a relative stock change. The WHERE guard keeps
// stock from ever going negative even if a caller skipped the
// reservation check.
func (r *GORMProductRepository) AdjustStock(id string, delta int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return &models.PersistenceError{Op: "adjust stock", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("stock adjustment of %d rejected for product %s", delta, id)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return &models.PersistenceError{Op: "delete product", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}
