package models

import (
	"errors"
	"fmt"
)

// ErrNoItems is returned when an order is requested with no line items.
var ErrNoItems = errors.New("order must contain at least one item")

// NotFoundError reports a missing entity of a given kind.
type NotFoundError struct {
	Entity string // "customer", "product", "order"
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Entity, e.ID)
}

// DuplicateEmailError reports a customer-creation attempt with an
// email that is already registered.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("customer with email %s already exists", e.Email)
}

// InsufficientStockError reports a reservation that cannot be served.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}

// InvalidTransitionError reports an order status change that is not in
// the transition table.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// PersistenceError wraps a storage failure that aborted an operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
