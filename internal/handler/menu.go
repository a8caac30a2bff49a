package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/coffeeshop-api/internal/domain/menu"
)

type menuItemResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMenuItemResponse(it *menu.Item) menuItemResponse {
	return menuItemResponse{
		ID:          it.ID,
		Name:        it.Name,
		Category:    it.Category,
		Price:       it.Price.InexactFloat64(),
		IsAvailable: it.IsAvailable,
		CreatedAt:   it.CreatedAt,
	}
}

func toMenuItemResponses(items []menu.Item) []menuItemResponse {
	out := make([]menuItemResponse, len(items))
	for i := range items {
		out[i] = toMenuItemResponse(&items[i])
	}
	return out
}

type createMenuItemRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	IsAvailable *bool   `json:"is_available"`
}

type updateMenuItemRequest struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	IsAvailable *bool    `json:"is_available"`
}

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponses(items))
}

func (h *Handler) listAvailableMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.ListAvailable(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponses(items))
}

func (h *Handler) listMenuByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	items, err := h.menu.ListByCategory(r.Context(), category)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponses(items))
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	it, err := h.menu.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(it))
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	it, err := h.menu.Create(r.Context(), menu.CreateParams{
		Name:        req.Name,
		Category:    req.Category,
		Price:       decimal.NewFromFloat(req.Price),
		IsAvailable: available,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMenuItemResponse(it))
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateMenuItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	upd := menu.Update{
		Name:        req.Name,
		Category:    req.Category,
		IsAvailable: req.IsAvailable,
	}
	if req.Price != nil {
		price := decimal.NewFromFloat(*req.Price)
		upd.Price = &price
	}

	it, err := h.menu.Update(r.Context(), id, upd)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(it))
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.menu.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "menu item deleted",
	})
}
