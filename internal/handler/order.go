package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/coffeeshop-api/internal/domain/order"
)

type orderResponse struct {
	ID            int64      `json:"id"`
	CustomerID    int64      `json:"customer_id"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	TotalAmount   float64    `json:"total_amount"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalAmount:   o.TotalAmount.InexactFloat64(),
		CreatedAt:     o.CreatedAt,
		CompletedAt:   o.CompletedAt,
	}
}

type orderItemResponse struct {
	ID             int64   `json:"id"`
	OrderID        int64   `json:"order_id"`
	MenuItemID     int64   `json:"menu_item_id"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	Customizations *string `json:"customizations"`
}

type createOrderRequest struct {
	CustomerID  int64   `json:"customer_id"`
	TotalAmount float64 `json:"total_amount"`
}

type addOrderItemRequest struct {
	OrderID        int64   `json:"order_id"`
	MenuItemID     int64   `json:"menu_item_id"`
	Quantity       *int    `json:"quantity"`
	Customizations *string `json:"customizations"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.orders.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]orderResponse, len(list))
	for i := range list {
		out[i] = toOrderResponse(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.orders.Create(r.Context(), req.CustomerID, decimal.NewFromFloat(req.TotalAmount))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) payOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Pay(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) completeOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Complete(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	cascaded, err := h.orders.Delete(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "order deleted",
		"items_deleted": cascaded,
	})
}

func (h *Handler) addOrderItem(w http.ResponseWriter, r *http.Request) {
	var req addOrderItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Quantity defaults to 1 when omitted, matching the order form.
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	it, err := h.orders.AddItem(r.Context(), order.AddItemParams{
		OrderID:        req.OrderID,
		MenuItemID:     req.MenuItemID,
		Quantity:       quantity,
		Customizations: req.Customizations,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, orderItemResponse{
		ID:             it.ID,
		OrderID:        it.OrderID,
		MenuItemID:     it.MenuItemID,
		Quantity:       it.Quantity,
		Price:          it.Price.InexactFloat64(),
		Customizations: it.Customizations,
	})
}

func (h *Handler) removeOrderItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.orders.RemoveItem(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "order item removed",
	})
}

type orderDetailLine struct {
	ID             int64   `json:"id"`
	MenuItemName   string  `json:"menu_item_name"`
	Quantity       int     `json:"quantity"`
	PricePerItem   float64 `json:"price_per_item"`
	TotalPrice     float64 `json:"total_price"`
	Customizations *string `json:"customizations"`
}

func (h *Handler) orderDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	details, err := h.orders.Details(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	lines := make([]orderDetailLine, len(details.Items))
	for i, it := range details.Items {
		lines[i] = orderDetailLine{
			ID:             it.ItemID,
			MenuItemName:   it.MenuItemName,
			Quantity:       it.Quantity,
			PricePerItem:   it.PricePerUnit.InexactFloat64(),
			TotalPrice:     it.TotalPrice.InexactFloat64(),
			Customizations: it.Customizations,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":     details.OrderID,
		"total_amount": details.TotalAmount.InexactFloat64(),
		"items":        lines,
	})
}
