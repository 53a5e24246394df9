package repositories

import (
	"context"
	"sync"
	"tienda/internal/models"

	"gorm.io/gorm"
)

// UnitOfWork is one atomic transaction scope. The repositories it
// exposes are bound to the open transaction; their writes become
// visible to other transactions only at Commit. Rollback is idempotent
// and safe to defer unconditionally: after a Commit it is a no-op.
type UnitOfWork interface {
	Customers() CustomerRepository
	Products() ProductRepository
	Orders() OrderRepository
	Commit() error
	Rollback() error
}

// UnitOfWorkFactory begins new transaction scopes.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// GORMUnitOfWorkFactory creates GORM-backed units of work.
type GORMUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGORMUnitOfWorkFactory creates a new instance of GORMUnitOfWorkFactory.
func NewGORMUnitOfWorkFactory(db *gorm.DB) *GORMUnitOfWorkFactory {
	return &GORMUnitOfWorkFactory{
		db: db,
	}
}

// Begin opens a database transaction and binds a fresh set of
// repositories to it. The context is attached to the transaction, so
// cancelling the caller before Commit fails the in-flight statements
// and the deferred Rollback discards every tentative write.
func (f *GORMUnitOfWorkFactory) Begin(ctx context.Context) (UnitOfWork, error) {
	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, &models.PersistenceError{Op: "begin transaction", Err: tx.Error}
	}
	return &gormUnitOfWork{
		tx:        tx,
		customers: NewGORMCustomerRepository(tx),
		products:  NewGORMProductRepository(tx),
		orders:    NewGORMOrderRepository(tx),
	}, nil
}

type gormUnitOfWork struct {
	tx        *gorm.DB
	customers CustomerRepository
	products  ProductRepository
	orders    OrderRepository

	mu   sync.Mutex
	done bool
}

func (u *gormUnitOfWork) Customers() CustomerRepository { return u.customers }
func (u *gormUnitOfWork) Products() ProductRepository   { return u.products }
func (u *gormUnitOfWork) Orders() OrderRepository       { return u.orders }

// Commit makes every write in the transaction durable. It is the point
// of no return: once it succeeds, Rollback does nothing.
func (u *gormUnitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.done {
		return nil
	}
	if err := u.tx.Commit().Error; err != nil {
		// The transaction is unusable after a failed commit; mark it
		// finished so the deferred Rollback does not run twice.
		u.tx.Rollback()
		u.done = true
		return &models.PersistenceError{Op: "commit transaction", Err: err}
	}
	u.done = true
	return nil
}

// Rollback discards every tentative write since Begin, including stock
// decrements. Calling it after Commit, or more than once, is a no-op.
func (u *gormUnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback().Error; err != nil {
		return &models.PersistenceError{Op: "rollback transaction", Err: err}
	}
	return nil
}
