package services

import (
	"context"
	"encoding/json"
	"log"
	"time"
	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/google/uuid"
)

// EventPublisher publishes order events to a message broker. A nil
// publisher disables publication; events are best-effort and never
// fail the request that produced them.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderItemRequest is one requested (product, quantity) pair. Repeated
// product IDs are allowed; each entry becomes its own order line.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// OrderService handles business logic related to orders. Order
// creation and status updates each run inside one unit of work: stock
// movement and order writes become visible atomically at commit, and
// any failure rolls everything back.
type OrderService struct {
	uowFactory repositories.UnitOfWorkFactory
	orderRepo  repositories.OrderRepository
	ledger     *StockLedger
	mqClient   EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	uowFactory repositories.UnitOfWorkFactory,
	orderRepo repositories.OrderRepository,
	ledger *StockLedger,
	mqClient EventPublisher,
) *OrderService {
	return &OrderService{
		uowFactory: uowFactory,
		orderRepo:  orderRepo,
		ledger:     ledger,
		mqClient:   mqClient,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// CreateOrder atomically creates an order for a customer:
//
//  1. resolve the customer,
//  2. reserve stock for every requested product as one group
//     (quantities for a product requested on several lines are summed
//     for the reservation),
//  3. build the order in pending status with per-line unit price
//     snapshots and the total as the sum of subtotals,
//  4. persist the order and commit.
//
// Any failure rolls the transaction back: stock and order storage are
// left exactly as before the call.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string, items []OrderItemRequest) (*models.Order, error) {
	if len(items) == 0 {
		return nil, models.ErrNoItems
	}

	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if _, err := uow.Customers().GetByID(customerID); err != nil {
		return nil, err
	}

	// Sum quantities per product for the reservation; the original
	// lines are preserved below, one OrderItem each.
	requested := make(map[string]int, len(items))
	for _, item := range items {
		requested[item.ProductID] += item.Quantity
	}

	products, err := s.ledger.Reserve(uow.Products(), requested)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Status:     models.StatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	for _, item := range items {
		product := products[item.ProductID]
		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price, // snapshot, immune to later catalog changes
		})
	}
	order.RecalculateTotal()

	if err := uow.Orders().Create(order); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishEvent("order.created", map[string]interface{}{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"status":      order.Status,
		"total":       order.TotalAmount,
	})

	return order, nil
}

// UpdateOrderStatus moves an existing order through its lifecycle.
// Transitions outside the state machine's table fail with
// InvalidTransitionError and leave the stored status unchanged.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	uow, err := s.uowFactory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	order, err := uow.Orders().GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := order.TransitionTo(status); err != nil {
		return nil, err
	}

	if err := uow.Orders().UpdateStatus(id, status); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishEvent("order.status_updated", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	return order, nil
}

// publishEvent sends an order event after commit. Publication is
// best-effort: a broker failure is logged, never surfaced.
func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.mqClient.Publish("order", routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
