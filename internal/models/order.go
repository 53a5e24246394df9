package models

import "time"

// OrderItem represents a single line within an order. UnitPrice is the
// price snapshot taken at order-creation time; later catalog price
// changes do not affect it.
type OrderItem struct {
	ID        string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Subtotal returns quantity x unit price for this line.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Order represents a customer order. Items are owned by the order;
// deleting an order removes its items.
type Order struct {
	ID          string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID  string      `json:"customer_id" gorm:"index;type:varchar(36)"`
	Items       []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status" gorm:"type:varchar(20)"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// RecalculateTotal sets TotalAmount to the sum of the item subtotals.
// Call it whenever Items change.
func (o *Order) RecalculateTotal() {
	var total float64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	o.TotalAmount = total
}
