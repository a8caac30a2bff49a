// Package handler exposes the domain services over HTTP. Routes and
// response shapes follow the public API: entity collections under
// /customers, /menu, /orders, plus /order-items for line mutations.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/coffeeshop-api/internal/domain/customer"
	"github.com/xenking/coffeeshop-api/internal/domain/menu"
	"github.com/xenking/coffeeshop-api/internal/domain/order"
)

// CustomerService is the customer store surface the handler needs.
type CustomerService interface {
	Create(ctx context.Context, name, phone string, email *string) (*customer.Customer, error)
	Get(ctx context.Context, id int64) (*customer.Customer, error)
	List(ctx context.Context) ([]customer.Customer, error)
	Update(ctx context.Context, id int64, upd customer.Update) (*customer.Customer, error)
	Delete(ctx context.Context, id int64) error
}

// MenuService is the catalog surface the handler needs.
type MenuService interface {
	Create(ctx context.Context, p menu.CreateParams) (*menu.Item, error)
	Get(ctx context.Context, id int64) (*menu.Item, error)
	List(ctx context.Context) ([]menu.Item, error)
	ListAvailable(ctx context.Context) ([]menu.Item, error)
	ListByCategory(ctx context.Context, category string) ([]menu.Item, error)
	Update(ctx context.Context, id int64, upd menu.Update) (*menu.Item, error)
	Delete(ctx context.Context, id int64) error
}

// OrderService is the order aggregate surface the handler needs.
type OrderService interface {
	Create(ctx context.Context, customerID int64, seedTotal decimal.Decimal) (*order.Order, error)
	Get(ctx context.Context, id int64) (*order.Order, error)
	List(ctx context.Context) ([]order.Order, error)
	AddItem(ctx context.Context, p order.AddItemParams) (*order.Item, error)
	RemoveItem(ctx context.Context, itemID int64) error
	Pay(ctx context.Context, id int64) (*order.Order, error)
	Complete(ctx context.Context, id int64) (*order.Order, error)
	Delete(ctx context.Context, id int64) (int64, error)
	Details(ctx context.Context, orderID int64) (*order.Details, error)
	CustomerOrders(ctx context.Context, customerID int64) (*order.CustomerOrders, error)
}

// Handler wires the domain services into a chi router.
type Handler struct {
	customers CustomerService
	menu      MenuService
	orders    OrderService
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(customers CustomerService, menuSvc MenuService, orders OrderService) *Handler {
	return &Handler{
		customers: customers,
		menu:      menuSvc,
		orders:    orders,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.index)

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Get("/{id}", h.getCustomer)
		r.Patch("/{id}", h.updateCustomer)
		r.Delete("/{id}", h.deleteCustomer)
		r.Get("/{id}/orders", h.customerOrders)
	})

	r.Route("/menu", func(r chi.Router) {
		r.Get("/", h.listMenu)
		r.Post("/", h.createMenuItem)
		r.Get("/available", h.listAvailableMenu)
		r.Get("/item/{id}", h.getMenuItem)
		r.Get("/category/{category}", h.listMenuByCategory)
		r.Patch("/{id}", h.updateMenuItem)
		r.Delete("/{id}", h.deleteMenuItem)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Patch("/{id}/pay", h.payOrder)
		r.Patch("/{id}/complete", h.completeOrder)
		r.Delete("/{id}", h.deleteOrder)
		r.Get("/{id}/items", h.orderDetails)
	})

	r.Route("/order-items", func(r chi.Router) {
		r.Post("/", h.addOrderItem)
		r.Delete("/{id}", h.removeOrderItem)
	})

	return r
}
