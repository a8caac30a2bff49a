package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/coffeeshop-api/internal/domain/customer"
	"github.com/xenking/coffeeshop-api/internal/domain/menu"
	"github.com/xenking/coffeeshop-api/internal/domain/order"
)

// --- Mock implementations ---

// Stub services with function fields: each test wires only the calls it
// expects, anything else panics with a nil dereference and fails loudly.

type stubCustomerService struct {
	create func(ctx context.Context, name, phone string, email *string) (*customer.Customer, error)
	get    func(ctx context.Context, id int64) (*customer.Customer, error)
	list   func(ctx context.Context) ([]customer.Customer, error)
	update func(ctx context.Context, id int64, upd customer.Update) (*customer.Customer, error)
	delete func(ctx context.Context, id int64) error
}

func (s *stubCustomerService) Create(ctx context.Context, name, phone string, email *string) (*customer.Customer, error) {
	return s.create(ctx, name, phone, email)
}

func (s *stubCustomerService) Get(ctx context.Context, id int64) (*customer.Customer, error) {
	return s.get(ctx, id)
}

func (s *stubCustomerService) List(ctx context.Context) ([]customer.Customer, error) {
	return s.list(ctx)
}

func (s *stubCustomerService) Update(ctx context.Context, id int64, upd customer.Update) (*customer.Customer, error) {
	return s.update(ctx, id, upd)
}

func (s *stubCustomerService) Delete(ctx context.Context, id int64) error {
	return s.delete(ctx, id)
}

type stubMenuService struct {
	create         func(ctx context.Context, p menu.CreateParams) (*menu.Item, error)
	get            func(ctx context.Context, id int64) (*menu.Item, error)
	list           func(ctx context.Context) ([]menu.Item, error)
	listAvailable  func(ctx context.Context) ([]menu.Item, error)
	listByCategory func(ctx context.Context, category string) ([]menu.Item, error)
	update         func(ctx context.Context, id int64, upd menu.Update) (*menu.Item, error)
	delete         func(ctx context.Context, id int64) error
}

func (s *stubMenuService) Create(ctx context.Context, p menu.CreateParams) (*menu.Item, error) {
	return s.create(ctx, p)
}

func (s *stubMenuService) Get(ctx context.Context, id int64) (*menu.Item, error) {
	return s.get(ctx, id)
}

func (s *stubMenuService) List(ctx context.Context) ([]menu.Item, error) {
	return s.list(ctx)
}

func (s *stubMenuService) ListAvailable(ctx context.Context) ([]menu.Item, error) {
	return s.listAvailable(ctx)
}

func (s *stubMenuService) ListByCategory(ctx context.Context, category string) ([]menu.Item, error) {
	return s.listByCategory(ctx, category)
}

func (s *stubMenuService) Update(ctx context.Context, id int64, upd menu.Update) (*menu.Item, error) {
	return s.update(ctx, id, upd)
}

func (s *stubMenuService) Delete(ctx context.Context, id int64) error {
	return s.delete(ctx, id)
}

type stubOrderService struct {
	create         func(ctx context.Context, customerID int64, seedTotal decimal.Decimal) (*order.Order, error)
	get            func(ctx context.Context, id int64) (*order.Order, error)
	list           func(ctx context.Context) ([]order.Order, error)
	addItem        func(ctx context.Context, p order.AddItemParams) (*order.Item, error)
	removeItem     func(ctx context.Context, itemID int64) error
	pay            func(ctx context.Context, id int64) (*order.Order, error)
	complete       func(ctx context.Context, id int64) (*order.Order, error)
	delete         func(ctx context.Context, id int64) (int64, error)
	details        func(ctx context.Context, orderID int64) (*order.Details, error)
	customerOrders func(ctx context.Context, customerID int64) (*order.CustomerOrders, error)
}

func (s *stubOrderService) Create(ctx context.Context, customerID int64, seedTotal decimal.Decimal) (*order.Order, error) {
	return s.create(ctx, customerID, seedTotal)
}

func (s *stubOrderService) Get(ctx context.Context, id int64) (*order.Order, error) {
	return s.get(ctx, id)
}

func (s *stubOrderService) List(ctx context.Context) ([]order.Order, error) {
	return s.list(ctx)
}

func (s *stubOrderService) AddItem(ctx context.Context, p order.AddItemParams) (*order.Item, error) {
	return s.addItem(ctx, p)
}

func (s *stubOrderService) RemoveItem(ctx context.Context, itemID int64) error {
	return s.removeItem(ctx, itemID)
}

func (s *stubOrderService) Pay(ctx context.Context, id int64) (*order.Order, error) {
	return s.pay(ctx, id)
}

func (s *stubOrderService) Complete(ctx context.Context, id int64) (*order.Order, error) {
	return s.complete(ctx, id)
}

func (s *stubOrderService) Delete(ctx context.Context, id int64) (int64, error) {
	return s.delete(ctx, id)
}

func (s *stubOrderService) Details(ctx context.Context, orderID int64) (*order.Details, error) {
	return s.details(ctx, orderID)
}

func (s *stubOrderService) CustomerOrders(ctx context.Context, customerID int64) (*order.CustomerOrders, error) {
	return s.customerOrders(ctx, customerID)
}

// --- Helpers ---

func serve(t *testing.T, h *Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// --- Tests ---

func TestIndex(t *testing.T) {
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, &stubOrderService{})

	rec := serve(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeAs[map[string]any](t, rec)
	assert.Equal(t, "coffee shop API", body["message"])
}

func TestCreateCustomer(t *testing.T) {
	svc := &stubCustomerService{
		create: func(_ context.Context, name, phone string, email *string) (*customer.Customer, error) {
			return &customer.Customer{ID: 1, Name: name, Phone: phone, Email: email, CreatedAt: time.Now()}, nil
		},
	}
	h := NewHandler(svc, &stubMenuService{}, &stubOrderService{})

	rec := serve(t, h, http.MethodPost, "/customers", map[string]any{
		"name":  "Ivan Petrov",
		"phone": "+79991234567",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeAs[customerResponse](t, rec)
	assert.Equal(t, int64(1), body.ID)
	assert.Equal(t, "Ivan Petrov", body.Name)
	assert.Nil(t, body.Email)
}

func TestCreateCustomer_MissingFields(t *testing.T) {
	svc := &stubCustomerService{
		create: func(_ context.Context, _, _ string, _ *string) (*customer.Customer, error) {
			return nil, customer.ErrMissingFields
		},
	}
	h := NewHandler(svc, &stubMenuService{}, &stubOrderService{})

	rec := serve(t, h, http.MethodPost, "/customers", map[string]any{"name": "Ivan Petrov"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeAs[apiError](t, rec)
	assert.Equal(t, http.StatusUnprocessableEntity, body.Code)
}

func TestCreateCustomer_MalformedBody(t *testing.T) {
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, &stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetCustomer_NotFound(t *testing.T) {
	svc := &stubCustomerService{
		get: func(_ context.Context, _ int64) (*customer.Customer, error) {
			return nil, customer.ErrNotFound
		},
	}
	h := NewHandler(svc, &stubMenuService{}, &stubOrderService{})

	rec := serve(t, h, http.MethodGet, "/customers/42", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeAs[apiError](t, rec)
	assert.Equal(t, http.StatusNotFound, body.Code)
	assert.Equal(t, "customer not found", body.Message)
}

func TestGetCustomer_InvalidID(t *testing.T) {
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, &stubOrderService{})

	rec := serve(t, h, http.MethodGet, "/customers/abc", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateCustomer_PassesPartialFields(t *testing.T) {
	var gotUpd customer.Update
	svc := &stubCustomerService{
		update: func(_ context.Context, id int64, upd customer.Update) (*customer.Customer, error) {
			gotUpd = upd
			return &customer.Customer{ID: id, Name: "Ivan Petrov", Phone: *upd.Phone}, nil
		},
	}
	h := NewHandler(svc, &stubMenuService{}, &stubOrderService{})

	rec := serve(t, h, http.MethodPatch, "/customers/1", map[string]any{"phone": "+79990000000"})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Nil(t, gotUpd.Name)
	require.NotNil(t, gotUpd.Phone)
	assert.Equal(t, "+79990000000", *gotUpd.Phone)
}

func TestDeleteCustomer_WithOrders(t *testing.T) {
	svc := &stubCustomerService{
		delete: func(_ context.Context, _ int64) error {
			return customer.ErrHasOrders
		},
	}
	h := NewHandler(svc, &stubMenuService{}, &stubOrderService{})

	rec := serve(t, h, http.MethodDelete, "/customers/1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomerOrders(t *testing.T) {
	svc := &stubOrderService{
		customerOrders: func(_ context.Context, customerID int64) (*order.CustomerOrders, error) {
			return &order.CustomerOrders{
				CustomerID:   customerID,
				CustomerName: "Ivan Petrov",
				TotalOrders:  1,
				Orders: []order.Order{{
					ID:            7,
					CustomerID:    customerID,
					Status:        order.StatusPaid,
					PaymentStatus: order.PaymentPaid,
					TotalAmount:   decimal.NewFromInt(380),
				}},
			}, nil
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodGet, "/customers/1/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeAs[map[string]any](t, rec)
	assert.Equal(t, "Ivan Petrov", body["customer_name"])
	assert.Equal(t, float64(1), body["total_orders"])
}

func TestCreateMenuItem_DefaultsAvailable(t *testing.T) {
	var gotParams menu.CreateParams
	svc := &stubMenuService{
		create: func(_ context.Context, p menu.CreateParams) (*menu.Item, error) {
			gotParams = p
			return &menu.Item{ID: 1, Name: p.Name, Category: p.Category, Price: p.Price, IsAvailable: p.IsAvailable}, nil
		},
	}
	h := NewHandler(&stubCustomerService{}, svc, &stubOrderService{})

	rec := serve(t, h, http.MethodPost, "/menu", map[string]any{
		"name":     "Cappuccino",
		"category": "coffee",
		"price":    180,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, gotParams.IsAvailable)

	body := decodeAs[menuItemResponse](t, rec)
	assert.Equal(t, 180.0, body.Price)
}

func TestCreateMenuItem_NegativePrice(t *testing.T) {
	svc := &stubMenuService{
		create: func(_ context.Context, _ menu.CreateParams) (*menu.Item, error) {
			return nil, menu.ErrNegativePrice
		},
	}
	h := NewHandler(&stubCustomerService{}, svc, &stubOrderService{})

	rec := serve(t, h, http.MethodPost, "/menu", map[string]any{
		"name":     "Cappuccino",
		"category": "coffee",
		"price":    -5,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListMenuByCategory(t *testing.T) {
	var gotCategory string
	svc := &stubMenuService{
		listByCategory: func(_ context.Context, category string) ([]menu.Item, error) {
			gotCategory = category
			return []menu.Item{{ID: 1, Name: "Cappuccino", Category: category, Price: decimal.NewFromInt(180), IsAvailable: true}}, nil
		},
	}
	h := NewHandler(&stubCustomerService{}, svc, &stubOrderService{})

	rec := serve(t, h, http.MethodGet, "/menu/category/coffee", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "coffee", gotCategory)

	body := decodeAs[[]menuItemResponse](t, rec)
	require.Len(t, body, 1)
	assert.Equal(t, "Cappuccino", body[0].Name)
}

func TestDeleteMenuItem_InUse(t *testing.T) {
	svc := &stubMenuService{
		delete: func(_ context.Context, _ int64) error {
			return menu.ErrInUse
		},
	}
	h := NewHandler(&stubCustomerService{}, svc, &stubOrderService{})

	rec := serve(t, h, http.MethodDelete, "/menu/1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder(t *testing.T) {
	svc := &stubOrderService{
		create: func(_ context.Context, customerID int64, seedTotal decimal.Decimal) (*order.Order, error) {
			return &order.Order{
				ID:            1,
				CustomerID:    customerID,
				Status:        order.StatusCreated,
				PaymentStatus: order.PaymentPending,
				TotalAmount:   seedTotal,
			}, nil
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodPost, "/orders", map[string]any{"customer_id": 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeAs[orderResponse](t, rec)
	assert.Equal(t, "CREATED", body.Status)
	assert.Equal(t, "PENDING", body.PaymentStatus)
	assert.Zero(t, body.TotalAmount)
}

func TestCreateOrder_UnknownCustomer(t *testing.T) {
	svc := &stubOrderService{
		create: func(_ context.Context, _ int64, _ decimal.Decimal) (*order.Order, error) {
			return nil, customer.ErrNotFound
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodPost, "/orders", map[string]any{"customer_id": 42})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayOrder_Twice(t *testing.T) {
	svc := &stubOrderService{
		pay: func(_ context.Context, _ int64) (*order.Order, error) {
			return nil, order.ErrAlreadyPaid
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodPatch, "/orders/1/pay", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeAs[apiError](t, rec)
	assert.Equal(t, "order is already paid", body.Message)
}

func TestCompleteOrder(t *testing.T) {
	now := time.Now().UTC()
	svc := &stubOrderService{
		complete: func(_ context.Context, id int64) (*order.Order, error) {
			return &order.Order{
				ID:            id,
				CustomerID:    1,
				Status:        order.StatusCompleted,
				PaymentStatus: order.PaymentPending,
				CompletedAt:   &now,
			}, nil
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodPatch, "/orders/1/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeAs[orderResponse](t, rec)
	assert.Equal(t, "COMPLETED", body.Status)
	require.NotNil(t, body.CompletedAt)
}

func TestDeleteOrder_ReportsCascade(t *testing.T) {
	svc := &stubOrderService{
		delete: func(_ context.Context, _ int64) (int64, error) {
			return 3, nil
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodDelete, "/orders/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeAs[map[string]any](t, rec)
	assert.Equal(t, float64(3), body["items_deleted"])
}

func TestAddOrderItem_DefaultQuantity(t *testing.T) {
	var gotParams order.AddItemParams
	svc := &stubOrderService{
		addItem: func(_ context.Context, p order.AddItemParams) (*order.Item, error) {
			gotParams = p
			return &order.Item{ID: 1, OrderID: p.OrderID, MenuItemID: p.MenuItemID, Quantity: p.Quantity, Price: decimal.NewFromInt(190)}, nil
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodPost, "/order-items", map[string]any{
		"order_id":     1,
		"menu_item_id": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, gotParams.Quantity)

	body := decodeAs[orderItemResponse](t, rec)
	assert.Equal(t, 190.0, body.Price)
}

func TestAddOrderItem_Unavailable(t *testing.T) {
	svc := &stubOrderService{
		addItem: func(_ context.Context, _ order.AddItemParams) (*order.Item, error) {
			return nil, order.ErrItemUnavailable
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodPost, "/order-items", map[string]any{
		"order_id":     1,
		"menu_item_id": 10,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddOrderItem_InvalidQuantity(t *testing.T) {
	svc := &stubOrderService{
		addItem: func(_ context.Context, _ order.AddItemParams) (*order.Item, error) {
			return nil, order.ErrInvalidQuantity
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodPost, "/order-items", map[string]any{
		"order_id":     1,
		"menu_item_id": 10,
		"quantity":     0,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRemoveOrderItem_NotFound(t *testing.T) {
	svc := &stubOrderService{
		removeItem: func(_ context.Context, _ int64) error {
			return order.ErrItemNotFound
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodDelete, "/order-items/9", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderDetails(t *testing.T) {
	note := "extra shot"
	svc := &stubOrderService{
		details: func(_ context.Context, orderID int64) (*order.Details, error) {
			return &order.Details{
				OrderID:     orderID,
				TotalAmount: decimal.NewFromInt(380),
				Items: []order.DetailLine{{
					ItemID:         1,
					MenuItemName:   "Latte",
					Quantity:       2,
					PricePerUnit:   decimal.NewFromInt(190),
					TotalPrice:     decimal.NewFromInt(380),
					Customizations: &note,
				}},
			}, nil
		},
	}
	h := NewHandler(&stubCustomerService{}, &stubMenuService{}, svc)

	rec := serve(t, h, http.MethodGet, "/orders/1/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeAs[map[string]any](t, rec)
	assert.Equal(t, float64(380), body["total_amount"])

	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	line, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Latte", line["menu_item_name"])
	assert.Equal(t, float64(190), line["price_per_item"])
	assert.Equal(t, "extra shot", line["customizations"])
}
