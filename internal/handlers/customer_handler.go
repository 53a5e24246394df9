package handlers

import (
	"log"
	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CustomerHandler handles HTTP requests for customers.
type CustomerHandler struct {
	service  *services.CustomerService
	validate *validator.Validate
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer routes with the Fiber app.
func (h *CustomerHandler) RegisterRoutes(router fiber.Router) {
	customerRoutes := router.Group("/customers")
	customerRoutes.Post("/", h.HandleCreateCustomer)
	customerRoutes.Get("/:id", h.HandleGetCustomerByID)
	customerRoutes.Get("/:id/orders", h.HandleGetCustomerOrders)
}

// HandleCreateCustomer registers a new customer.
func (h *CustomerHandler) HandleCreateCustomer(c *fiber.Ctx) error {
	var customer models.Customer
	if err := c.BodyParser(&customer); err != nil {
		log.Printf("Error parsing customer request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(customer); err != nil {
		return respondValidationError(c, err)
	}

	if err := h.service.CreateCustomer(&customer); err != nil {
		log.Printf("Error creating customer: %v", err)
		return respondError(c, "Could not create customer", err)
	}

	return c.Status(fiber.StatusCreated).JSON(customer)
}

// HandleGetCustomerByID retrieves a customer together with their orders.
func (h *CustomerHandler) HandleGetCustomerByID(c *fiber.Ctx) error {
	customerID := c.Params("id")
	customer, err := h.service.GetCustomerWithOrders(customerID)
	if err != nil {
		log.Printf("Error getting customer %s: %v", customerID, err)
		return respondError(c, "Could not retrieve customer", err)
	}
	return c.JSON(customer)
}

// HandleGetCustomerOrders retrieves all orders of a customer.
func (h *CustomerHandler) HandleGetCustomerOrders(c *fiber.Ctx) error {
	customerID := c.Params("id")
	orders, err := h.service.GetCustomerOrders(customerID)
	if err != nil {
		log.Printf("Error getting orders for customer %s: %v", customerID, err)
		return respondError(c, "Could not retrieve customer orders", err)
	}
	return c.JSON(orders)
}
