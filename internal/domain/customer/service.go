package customer

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrMissingFields is returned when a create request omits required fields.
var ErrMissingFields = errors.New("name and phone are required")

// OrderCounter reports how many orders reference a customer. Implemented by
// the order repository; used only for the delete guard.
type OrderCounter interface {
	CountByCustomer(ctx context.Context, customerID int64) (int64, error)
}

// Service encapsulates customer business logic.
type Service struct {
	customers Repository
	orders    OrderCounter
}

// NewService creates a customer Service.
func NewService(customers Repository, orders OrderCounter) *Service {
	return &Service{customers: customers, orders: orders}
}

// Create registers a new customer. Name and phone are required.
func (s *Service) Create(ctx context.Context, name, phone string, email *string) (*Customer, error) {
	if name == "" || phone == "" {
		return nil, ErrMissingFields
	}

	c := &Customer{
		Name:  name,
		Phone: phone,
		Email: email,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create customer")
	}
	return c, nil
}

// Get returns a customer by id.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.customers.Get(ctx, id)
}

// List returns all customers.
func (s *Service) List(ctx context.Context) ([]Customer, error) {
	return s.customers.List(ctx)
}

// Update applies the supplied fields to an existing customer.
func (s *Service) Update(ctx context.Context, id int64, upd Update) (*Customer, error) {
	return s.customers.Update(ctx, id, upd)
}

// Delete removes a customer. A customer with at least one order cannot be
// deleted; the orders must be deleted first.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.customers.Get(ctx, id); err != nil {
		return err
	}

	n, err := s.orders.CountByCustomer(ctx, id)
	if err != nil {
		return errors.Wrap(err, "count customer orders")
	}
	if n > 0 {
		return ErrHasOrders
	}

	return s.customers.Delete(ctx, id)
}
