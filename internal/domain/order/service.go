package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/coffeeshop-api/internal/domain/customer"
	"github.com/xenking/coffeeshop-api/internal/domain/menu"
)

// CustomerDirectory resolves customers for referential checks.
type CustomerDirectory interface {
	Get(ctx context.Context, id int64) (*customer.Customer, error)
}

// MenuCatalog resolves menu items for pricing and availability checks.
type MenuCatalog interface {
	Get(ctx context.Context, id int64) (*menu.Item, error)
}

// Service owns all mutations of the order aggregate: order lifecycle,
// line items, and the derived total.
type Service struct {
	orders    Repository
	customers CustomerDirectory
	catalog   MenuCatalog
	now       func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(orders Repository, customers CustomerDirectory, catalog MenuCatalog) *Service {
	return &Service{
		orders:    orders,
		customers: customers,
		catalog:   catalog,
		now:       time.Now,
	}
}

// Create opens a new order for a customer. The order starts in CREATED with
// payment PENDING. seedTotal is provisional: the first item mutation
// overwrites it with the recomputed sum.
func (s *Service) Create(ctx context.Context, customerID int64, seedTotal decimal.Decimal) (*Order, error) {
	if seedTotal.IsNegative() {
		return nil, ErrNegativeTotal
	}
	if _, err := s.customers.Get(ctx, customerID); err != nil {
		return nil, err
	}

	o := &Order{
		CustomerID:    customerID,
		Status:        StatusCreated,
		PaymentStatus: PaymentPending,
		TotalAmount:   seedTotal,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Get returns an order by id.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.orders.Get(ctx, id)
}

// List returns all orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// AddItemParams holds the input for adding a line to an order.
type AddItemParams struct {
	OrderID        int64
	MenuItemID     int64
	Quantity       int
	Customizations *string
}

// AddItem adds a menu item to an order. The line price is fixed here from
// the menu item's current unit price; later menu price changes do not touch
// it. The insert and the parent total recomputation are applied atomically
// by the repository.
func (s *Service) AddItem(ctx context.Context, p AddItemParams) (*Item, error) {
	if p.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.orders.Get(ctx, p.OrderID); err != nil {
		return nil, err
	}
	mi, err := s.catalog.Get(ctx, p.MenuItemID)
	if err != nil {
		return nil, err
	}
	if !mi.IsAvailable {
		return nil, ErrItemUnavailable
	}

	it := &Item{
		OrderID:        p.OrderID,
		MenuItemID:     p.MenuItemID,
		Quantity:       p.Quantity,
		Price:          mi.Price.Mul(decimal.NewFromInt(int64(p.Quantity))),
		Customizations: p.Customizations,
	}
	if err := s.orders.AddItem(ctx, it); err != nil {
		return nil, errors.Wrap(err, "add order item")
	}
	return it, nil
}

// RemoveItem deletes a line from its order and recomputes the order total,
// which drops to zero when the last item is removed.
func (s *Service) RemoveItem(ctx context.Context, itemID int64) error {
	if _, err := s.orders.GetItem(ctx, itemID); err != nil {
		return err
	}
	return s.orders.RemoveItem(ctx, itemID)
}

// Pay marks the order as paid. Paying twice is rejected. Paying a freshly
// created order also advances its status to PAID.
func (s *Service) Pay(ctx context.Context, id int64) (*Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.PaymentStatus == PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	return s.orders.MarkPaid(ctx, id)
}

// Complete marks the order as completed and records the completion time.
// Completing twice is rejected. Payment is not required first: unpaid
// orders may be completed and settled later.
func (s *Service) Complete(ctx context.Context, id int64) (*Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusCompleted {
		return nil, ErrAlreadyCompleted
	}
	return s.orders.MarkCompleted(ctx, id, s.now().UTC())
}

// Delete removes an order together with all its items and reports how many
// items were cascaded. This is the only cascading delete in the model.
func (s *Service) Delete(ctx context.Context, id int64) (int64, error) {
	if _, err := s.orders.Get(ctx, id); err != nil {
		return 0, err
	}
	return s.orders.Delete(ctx, id)
}
