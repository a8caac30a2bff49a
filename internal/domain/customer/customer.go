package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for customer operations.
var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrHasOrders is returned when deletion is blocked by existing orders.
	ErrHasOrders = errors.New("customer has orders and cannot be deleted")
)

// Customer represents a registered customer.
type Customer struct {
	ID        int64
	Name      string
	Phone     string
	Email     *string
	CreatedAt time.Time
}

// Update describes a partial update. Nil fields are left untouched.
type Update struct {
	Name  *string
	Phone *string
	Email *string
}

// Repository defines persistence operations for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
	Update(ctx context.Context, id int64, upd Update) (*Customer, error)
	Delete(ctx context.Context, id int64) error
}
