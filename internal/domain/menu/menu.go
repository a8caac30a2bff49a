package menu

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for menu operations.
var (
	// ErrNotFound is returned when a requested menu item does not exist.
	ErrNotFound = errors.New("menu item not found")
	// ErrInUse is returned when deletion is blocked because the item appears
	// in at least one order. Mark the item unavailable instead.
	ErrInUse = errors.New("menu item is referenced by orders; set is_available=false instead of deleting")
)

// Item represents a purchasable menu position.
type Item struct {
	ID          int64
	Name        string
	Category    string
	Price       decimal.Decimal
	IsAvailable bool
	CreatedAt   time.Time
}

// Update describes a partial update. Nil fields are left untouched.
type Update struct {
	Name        *string
	Category    *string
	Price       *decimal.Decimal
	IsAvailable *bool
}

// Repository defines persistence operations for the menu catalog.
type Repository interface {
	Create(ctx context.Context, it *Item) error
	Get(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context) ([]Item, error)
	ListAvailable(ctx context.Context) ([]Item, error)
	ListByCategory(ctx context.Context, category string) ([]Item, error)
	Update(ctx context.Context, id int64, upd Update) (*Item, error)
	Delete(ctx context.Context, id int64) error
}
