package menu

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validation errors for menu item creation.
var (
	ErrMissingFields = errors.New("name and category are required")
	ErrNegativePrice = errors.New("price must not be negative")
)

// UsageCounter reports how many order items reference a menu item.
// Implemented by the order repository; used only for the delete guard.
type UsageCounter interface {
	CountByMenuItem(ctx context.Context, menuItemID int64) (int64, error)
}

// Service encapsulates menu catalog business logic.
type Service struct {
	items  Repository
	orders UsageCounter
}

// NewService creates a menu Service.
func NewService(items Repository, orders UsageCounter) *Service {
	return &Service{items: items, orders: orders}
}

// CreateParams holds the input for adding a menu item.
type CreateParams struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	IsAvailable bool
}

// Create adds a new item to the menu.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Item, error) {
	if p.Name == "" || p.Category == "" {
		return nil, ErrMissingFields
	}
	if p.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	it := &Item{
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		IsAvailable: p.IsAvailable,
	}
	if err := s.items.Create(ctx, it); err != nil {
		return nil, errors.Wrap(err, "create menu item")
	}
	return it, nil
}

// Get returns a menu item by id.
func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	return s.items.Get(ctx, id)
}

// List returns the whole menu, unavailable items included.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	return s.items.List(ctx)
}

// ListAvailable returns only items currently available for ordering.
func (s *Service) ListAvailable(ctx context.Context) ([]Item, error) {
	return s.items.ListAvailable(ctx)
}

// ListByCategory returns available items whose category matches exactly.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]Item, error) {
	return s.items.ListByCategory(ctx, category)
}

// Update applies the supplied fields to an existing item. Price updates do
// not affect order items already priced from the old value.
func (s *Service) Update(ctx context.Context, id int64, upd Update) (*Item, error) {
	if upd.Price != nil && upd.Price.IsNegative() {
		return nil, ErrNegativePrice
	}
	return s.items.Update(ctx, id, upd)
}

// Delete removes a menu item. Items referenced by any order cannot be
// deleted; they should be marked unavailable instead.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.items.Get(ctx, id); err != nil {
		return err
	}

	n, err := s.orders.CountByMenuItem(ctx, id)
	if err != nil {
		return errors.Wrap(err, "count menu item references")
	}
	if n > 0 {
		return ErrInUse
	}

	return s.items.Delete(ctx, id)
}
