package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the fulfilment state of an order. It moves one way:
// CREATED -> PAID -> COMPLETED.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusPaid      Status = "PAID"
	StatusCompleted Status = "COMPLETED"
)

// PaymentStatus is the payment state of an order: PENDING -> PAID, once.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Sentinel errors for order operations.
var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrItemNotFound is returned when a requested order item does not exist.
	ErrItemNotFound = errors.New("order item not found")
	// ErrAlreadyPaid is returned when paying an order whose payment status
	// is already PAID.
	ErrAlreadyPaid = errors.New("order is already paid")
	// ErrAlreadyCompleted is returned when completing an already completed
	// order.
	ErrAlreadyCompleted = errors.New("order is already completed")
	// ErrItemUnavailable is returned when the referenced menu item is not
	// available for ordering.
	ErrItemUnavailable = errors.New("menu item is not available")
	// ErrInvalidQuantity is returned when an item quantity is below 1.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrNegativeTotal is returned when a seed total below zero is supplied.
	ErrNegativeTotal = errors.New("total amount must not be negative")
)

// Order is the aggregate root. TotalAmount is derived: it always equals the
// sum of the prices of the order's items, 0 when there are none.
type Order struct {
	ID            int64
	CustomerID    int64
	Status        Status
	PaymentStatus PaymentStatus
	TotalAmount   decimal.Decimal
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

// Item is a single order line. Price is snapshotted from the menu at
// creation time (unit price x quantity) and never changes afterwards.
type Item struct {
	ID             int64
	OrderID        int64
	MenuItemID     int64
	Quantity       int
	Price          decimal.Decimal
	Customizations *string
}

// Repository defines persistence operations for the order aggregate.
// AddItem, RemoveItem, and Delete are composite mutations: implementations
// must apply the item write and the parent total recomputation atomically,
// re-reading the current item set rather than trusting any in-memory sum.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	CountByCustomer(ctx context.Context, customerID int64) (int64, error)

	// MarkPaid sets payment_status=PAID and promotes status CREATED->PAID.
	// Returns ErrAlreadyPaid when payment_status is already PAID.
	MarkPaid(ctx context.Context, id int64) (*Order, error)
	// MarkCompleted sets status=COMPLETED and records completedAt.
	// Returns ErrAlreadyCompleted when status is already COMPLETED.
	MarkCompleted(ctx context.Context, id int64, completedAt time.Time) (*Order, error)
	// Delete removes the order and all its items, returning the number of
	// items that were cascaded.
	Delete(ctx context.Context, id int64) (int64, error)

	AddItem(ctx context.Context, it *Item) error
	RemoveItem(ctx context.Context, itemID int64) error
	GetItem(ctx context.Context, itemID int64) (*Item, error)
	ListItems(ctx context.Context, orderID int64) ([]Item, error)
	CountByMenuItem(ctx context.Context, menuItemID int64) (int64, error)
}
