package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"tienda/internal/handlers"
	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testApp struct {
	app          *fiber.App
	productRepo  repositories.ProductRepository
	customerRepo repositories.CustomerRepository
	orderRepo    repositories.OrderRepository
}

// setupApp wires the full stack against an isolated in-memory SQLite
// database. Each test gets its own database name so state never leaks
// between tests.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	err = db.AutoMigrate(&models.Customer{}, &models.Product{}, &models.Order{}, &models.OrderItem{})
	assert.NoError(t, err)

	// Repositories
	customerRepo := repositories.NewGORMCustomerRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	uowFactory := repositories.NewGORMUnitOfWorkFactory(db)

	// Services
	ledger := services.NewStockLedger()
	customerService := services.NewCustomerService(customerRepo, orderRepo)
	productService := services.NewProductService(productRepo, uowFactory, ledger)
	orderService := services.NewOrderService(uowFactory, orderRepo, ledger, nil) // nil for RabbitMQ client

	// Handlers
	customerHandler := handlers.NewCustomerHandler(customerService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	customerHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)

	return &testApp{
		app:          app,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func (ta *testApp) request(t *testing.T, method, target string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ta.app.Test(req, -1) // -1 for no timeout
	assert.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	err := json.NewDecoder(resp.Body).Decode(&out)
	assert.NoError(t, err)
	return out
}

func (ta *testApp) seedCustomer(t *testing.T, name, email string) models.Customer {
	t.Helper()
	customer := models.Customer{Name: name, Email: email}
	assert.NoError(t, ta.customerRepo.Create(&customer))
	return customer
}

func (ta *testApp) seedProduct(t *testing.T, name string, price float64, stock int) models.Product {
	t.Helper()
	product := models.Product{Name: name, Price: price, Stock: stock}
	assert.NoError(t, ta.productRepo.Create(&product))
	return product
}

func TestCustomerEndpoints(t *testing.T) {
	ta := setupApp(t)

	// Create a customer
	resp := ta.request(t, http.MethodPost, "/api/v1/customers", map[string]string{
		"name":  "Alice",
		"email": "alice@example.com",
		"phone": "555-0100",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[models.Customer](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice@example.com", created.Email)

	// Duplicate email is rejected
	resp = ta.request(t, http.MethodPost, "/api/v1/customers", map[string]string{
		"name":  "Alice Again",
		"email": "alice@example.com",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Invalid body fails validation
	resp = ta.request(t, http.MethodPost, "/api/v1/customers", map[string]string{
		"name":  "B",
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Fetch the customer with (empty) order history
	resp = ta.request(t, http.MethodGet, "/api/v1/customers/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	withOrders := decodeBody[services.CustomerWithOrders](t, resp)
	assert.Equal(t, "Alice", withOrders.Name)
	assert.Empty(t, withOrders.Orders)

	// Unknown customer is a 404
	resp = ta.request(t, http.MethodGet, "/api/v1/customers/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCustomerEmailUniqueIndex(t *testing.T) {
	ta := setupApp(t)
	ta.seedCustomer(t, "Alice", "alice@example.com")

	// Writing straight through the repository skips the service's
	// existence check, the way the loser of two concurrent
	// registrations does. The unique index must still surface as a
	// duplicate-email error, not a generic persistence failure.
	err := ta.customerRepo.Create(&models.Customer{Name: "Impostor", Email: "alice@example.com"})
	var dupErr *models.DuplicateEmailError
	assert.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "alice@example.com", dupErr.Email)
}

func TestProductEndpoints(t *testing.T) {
	ta := setupApp(t)
	ta.seedProduct(t, "Test Laptop", 1000.00, 5)
	ta.seedProduct(t, "Test Monitor", 200.00, 10)

	// List products
	resp := ta.request(t, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	products := decodeBody[[]models.Product](t, resp)
	assert.Len(t, products, 2)

	// Create a product
	resp = ta.request(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        "Smartphone",
		"description": "Latest model smartphone",
		"price":       799.99,
		"stock":       50,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[models.Product](t, resp)
	assert.NotEmpty(t, created.ID)

	// Restock it
	resp = ta.request(t, http.MethodPost, "/api/v1/products/"+created.ID+"/restock", map[string]int{
		"quantity": 25,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	restocked := decodeBody[models.Product](t, resp)
	assert.Equal(t, 75, restocked.Stock)

	// Restock with a non-positive quantity is rejected
	resp = ta.request(t, http.MethodPost, "/api/v1/products/"+created.ID+"/restock", map[string]int{
		"quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateOrder(t *testing.T) {
	ta := setupApp(t)
	customer := ta.seedCustomer(t, "Alice", "alice@example.com")
	product := ta.seedProduct(t, "Widget", 5.00, 10)

	resp := ta.request(t, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_id": customer.ID,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 3},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeBody[models.Order](t, resp)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 15.00, order.TotalAmount)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 5.00, order.Items[0].UnitPrice)

	// Stock was decremented atomically with the order insert.
	stored, err := ta.productRepo.GetByID(product.ID)
	assert.NoError(t, err)
	assert.Equal(t, 7, stored.Stock)

	// The order shows up in the customer's history.
	resp = ta.request(t, http.MethodGet, "/api/v1/customers/"+customer.ID+"/orders", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	orders := decodeBody[[]models.Order](t, resp)
	assert.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	ta := setupApp(t)
	customer := ta.seedCustomer(t, "Alice", "alice@example.com")
	product := ta.seedProduct(t, "Widget", 5.00, 5)

	resp := ta.request(t, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_id": customer.ID,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 10},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[map[string]interface{}](t, resp)
	assert.Contains(t, body["error"], "insufficient stock")

	// Nothing changed: stock intact, no order persisted.
	stored, err := ta.productRepo.GetByID(product.ID)
	assert.NoError(t, err)
	assert.Equal(t, 5, stored.Stock)

	orders, err := ta.orderRepo.GetAll()
	assert.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrderUnknownCustomer(t *testing.T) {
	ta := setupApp(t)
	product := ta.seedProduct(t, "Widget", 5.00, 10)

	resp := ta.request(t, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_id": "cust-99",
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	stored, err := ta.productRepo.GetByID(product.ID)
	assert.NoError(t, err)
	assert.Equal(t, 10, stored.Stock)
}

func TestCreateOrderValidation(t *testing.T) {
	ta := setupApp(t)
	customer := ta.seedCustomer(t, "Alice", "alice@example.com")

	// No items
	resp := ta.request(t, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_id": customer.ID,
		"items":       []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Zero quantity
	resp = ta.request(t, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_id": customer.ID,
		"items": []map[string]interface{}{
			{"product_id": "prod-1", "quantity": 0},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdateOrderStatus(t *testing.T) {
	ta := setupApp(t)
	customer := ta.seedCustomer(t, "Alice", "alice@example.com")
	product := ta.seedProduct(t, "Widget", 5.00, 10)

	resp := ta.request(t, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_id": customer.ID,
		"items": []map[string]interface{}{
			{"product_id": product.ID, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeBody[models.Order](t, resp)

	// Pending -> Shipped skips Paid: rejected, stored status unchanged.
	resp = ta.request(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", map[string]string{
		"status": "shipped",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	stored, err := ta.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)

	// The legal lifecycle goes through in sequence.
	for _, status := range []string{"paid", "shipped", "delivered"} {
		resp = ta.request(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", map[string]string{
			"status": status,
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		updated := decodeBody[models.Order](t, resp)
		assert.Equal(t, models.OrderStatus(status), updated.Status)
	}

	// Delivered is terminal.
	for _, status := range []string{"pending", "paid", "shipped", "delivered", "cancelled"} {
		resp = ta.request(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", map[string]string{
			"status": status,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}

	// Unknown status strings are rejected before any lookup.
	resp = ta.request(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", map[string]string{
		"status": "processing",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unknown order is a 404.
	resp = ta.request(t, http.MethodPatch, "/api/v1/orders/order-99/status", map[string]string{
		"status": "paid",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
