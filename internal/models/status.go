package models

import (
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// allowedTransitions is the full order lifecycle. Delivered and
// Cancelled are terminal: no outgoing transitions.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s OrderStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0 && s.IsValid()
}

// CanTransition reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts a request string into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid order status: %s", raw)
	}
	return status, nil
}

// TransitionTo moves the order to the requested status, failing with
// InvalidTransitionError if the transition is not in the table. On
// failure the order's status is left untouched.
func (o *Order) TransitionTo(next OrderStatus) error {
	if !o.Status.CanTransition(next) {
		return &InvalidTransitionError{From: o.Status, To: next}
	}
	o.Status = next
	return nil
}
