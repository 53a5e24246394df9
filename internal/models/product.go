package models

import "gorm.io/gorm"

// Product represents a product in the catalog. Price is the current
// catalog price; committed orders carry their own price snapshots.
type Product struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" gorm:"check:stock >= 0" validate:"gte=0"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// HasStock reports whether the requested quantity can be served.
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}
