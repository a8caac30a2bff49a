package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/coffeeshop-api/internal/domain/customer"
	"github.com/xenking/coffeeshop-api/internal/domain/menu"
	"github.com/xenking/coffeeshop-api/internal/domain/order"
)

// apiError is the error response body: {"code": 404, "message": "..."}.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiError{Code: status, Message: message})
}

// writeDomainError maps a domain error to its HTTP status: missing entities
// are 404, state-machine and referential-guard violations are 400,
// validation failures are 422, anything else is a storage-level 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, customer.ErrNotFound),
		errors.Is(err, menu.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, order.ErrAlreadyPaid),
		errors.Is(err, order.ErrAlreadyCompleted),
		errors.Is(err, order.ErrItemUnavailable),
		errors.Is(err, customer.ErrHasOrders),
		errors.Is(err, menu.ErrInUse):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrNegativeTotal),
		errors.Is(err, customer.ErrMissingFields),
		errors.Is(err, menu.ErrMissingFields),
		errors.Is(err, menu.ErrNegativePrice):
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody parses the JSON request body into v, reporting 422 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathID parses the {id} URL parameter, reporting 422 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid id")
		return 0, false
	}
	return id, true
}
