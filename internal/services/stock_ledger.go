package services

import (
	"fmt"
	"sort"
	"strings"
	"tienda/internal/models"
	"tienda/internal/repositories"
)

// StockLedger performs all-or-nothing group reservations of product
// stock. It operates on a transaction-bound ProductRepository: a
// decrement only becomes durable when the enclosing unit of work
// commits, so a failed attempt needs no compensating release.
type StockLedger struct{}

// NewStockLedger creates a new StockLedger.
func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// Reserve checks that every requested product has sufficient stock and
// decrements all of them as one group. If any product is missing, any
// quantity is not positive, or any check fails, nothing is decremented
// and a typed error is returned. Products are locked and checked in
// sorted ID order, which keeps concurrent reservations deadlock-free
// and the reported failure deterministic.
//
// On success the locked products are returned keyed by ID, so the
// caller can snapshot prices inside the same transaction.
func (l *StockLedger) Reserve(products repositories.ProductRepository, requested map[string]int) (map[string]models.Product, error) {
	if len(requested) == 0 {
		return nil, models.ErrNoItems
	}

	ids := make([]string, 0, len(requested))
	for id, quantity := range requested {
		if quantity <= 0 {
			return nil, fmt.Errorf("requested quantity for product %s must be positive, got %d", id, quantity)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	locked, err := products.GetByIDsForUpdate(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.Product, len(locked))
	for _, p := range locked {
		byID[p.ID] = p
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &models.NotFoundError{Entity: "product", ID: strings.Join(missing, ", ")}
	}

	// Check every item before touching any stock.
	for _, id := range ids {
		product := byID[id]
		if !product.HasStock(requested[id]) {
			return nil, &models.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   requested[id],
			}
		}
	}

	for _, id := range ids {
		if err := products.AdjustStock(id, -requested[id]); err != nil {
			// The enclosing transaction rolls back, discarding any
			// decrements already applied in this group.
			return nil, err
		}
	}

	return byID, nil
}

// Restock increases a product's stock through the same ledger
// contract reservations use.
func (l *StockLedger) Restock(products repositories.ProductRepository, id string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("restock quantity for product %s must be positive, got %d", id, quantity)
	}
	locked, err := products.GetByIDsForUpdate([]string{id})
	if err != nil {
		return err
	}
	if len(locked) == 0 {
		return &models.NotFoundError{Entity: "product", ID: id}
	}
	return products.AdjustStock(id, quantity)
}
