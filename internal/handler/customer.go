package handler

import (
	"net/http"
	"time"

	"github.com/xenking/coffeeshop-api/internal/domain/customer"
)

type customerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toCustomerResponse(c *customer.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
	}
}

type createCustomerRequest struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email"`
}

type updateCustomerRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "coffee shop API",
		"endpoints": map[string]string{
			"customers": "/customers",
			"menu":      "/menu",
			"orders":    "/orders",
		},
	})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.customers.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]customerResponse, len(list))
	for i := range list {
		out[i] = toCustomerResponse(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.customers.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.customers.Create(r.Context(), req.Name, req.Phone, req.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(c))
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.customers.Update(r.Context(), id, customer.Update{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.customers.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "customer deleted",
	})
}

func (h *Handler) customerOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	view, err := h.orders.CustomerOrders(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	orders := make([]orderResponse, len(view.Orders))
	for i := range view.Orders {
		orders[i] = toOrderResponse(&view.Orders[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"customer_id":   view.CustomerID,
		"customer_name": view.CustomerName,
		"total_orders":  view.TotalOrders,
		"orders":        orders,
	})
}
