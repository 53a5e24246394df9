package repositories

import (
	"context"
	"sync"
	"tienda/internal/models"
)

// MockUnitOfWorkFactory creates in-memory units of work over a shared
// set of mock repositories. Transactions are serialized with a single
// mutex, so a transaction sees no writes from another in-flight one;
// rollback restores the begin-time snapshot of every store.
type MockUnitOfWorkFactory struct {
	customers *MockCustomerRepository
	products  *MockProductRepository
	orders    *MockOrderRepository
	txMu      sync.Mutex
}

// NewMockUnitOfWorkFactory creates a new instance of MockUnitOfWorkFactory.
func NewMockUnitOfWorkFactory(
	customers *MockCustomerRepository,
	products *MockProductRepository,
	orders *MockOrderRepository,
) *MockUnitOfWorkFactory {
	return &MockUnitOfWorkFactory{
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

// Begin acquires the transaction mutex and snapshots every store.
// It blocks until any other in-flight transaction commits or rolls
// back, or until the context is cancelled.
func (f *MockUnitOfWorkFactory) Begin(ctx context.Context) (UnitOfWork, error) {
	acquired := make(chan struct{})
	go func() {
		f.txMu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-ctx.Done():
		// Release the mutex once the background goroutine gets it.
		go func() {
			<-acquired
			f.txMu.Unlock()
		}()
		return nil, &models.PersistenceError{Op: "begin transaction", Err: ctx.Err()}
	}

	return &mockUnitOfWork{
		ctx:          ctx,
		factory:      f,
		customerSnap: f.customers.snapshot(),
		productSnap:  f.products.snapshot(),
		orderSnap:    f.orders.snapshot(),
	}, nil
}

type mockUnitOfWork struct {
	ctx     context.Context
	factory *MockUnitOfWorkFactory

	customerSnap map[string]models.Customer
	productSnap  map[string]models.Product
	orderSnap    map[string]models.Order

	mu   sync.Mutex
	done bool
}

func (u *mockUnitOfWork) Customers() CustomerRepository { return u.factory.customers }
func (u *mockUnitOfWork) Products() ProductRepository   { return u.factory.products }
func (u *mockUnitOfWork) Orders() OrderRepository       { return u.factory.orders }

// Commit discards the snapshots and releases the transaction mutex.
// A context cancelled before Commit rolls the transaction back instead.
func (u *mockUnitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.done {
		return nil
	}
	if err := u.ctx.Err(); err != nil {
		u.restoreLocked()
		return &models.PersistenceError{Op: "commit transaction", Err: err}
	}
	u.done = true
	u.factory.txMu.Unlock()
	return nil
}

// Rollback restores the begin-time snapshots and releases the
// transaction mutex. Calling it after Commit, or more than once, is a
// no-op.
func (u *mockUnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.done {
		return nil
	}
	u.restoreLocked()
	return nil
}

func (u *mockUnitOfWork) restoreLocked() {
	u.factory.customers.restore(u.customerSnap)
	u.factory.products.restore(u.productSnap)
	u.factory.orders.restore(u.orderSnap)
	u.done = true
	u.factory.txMu.Unlock()
}
