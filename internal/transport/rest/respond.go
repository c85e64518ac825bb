package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"modakarina-be/internal/cart"
	"modakarina-be/internal/logger"
	"modakarina-be/internal/order"
	"modakarina-be/internal/payment"
	"modakarina-be/internal/product"
	"modakarina-be/internal/user"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP status codes. Anything
// unrecognized is a 500 with a generic body so internals don't leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrProductUnavailable),
		errors.Is(err, order.ErrInvalidAddress),
		errors.Is(err, order.ErrNotPending),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock):
		return http.StatusBadRequest

	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, order.ErrUnauthorized):
		return http.StatusForbidden

	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, payment.ErrPaymentNotFound):
		return http.StatusNotFound

	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict

	case errors.Is(err, payment.ErrGatewayUnavailable):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
