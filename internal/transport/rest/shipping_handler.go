package rest

import (
	"net/http"

	"modakarina-be/internal/cart"
	"modakarina-be/internal/shipping"
	"modakarina-be/internal/utils"
)

type ShippingHandler struct {
	estimator shipping.Estimator
	carts     cart.Service
}

func NewShippingHandler(estimator shipping.Estimator, carts cart.Service) *ShippingHandler {
	return &ShippingHandler{estimator: estimator, carts: carts}
}

type quoteRequest struct {
	CEP string `json:"cep"`
}

// Quote estimates shipping for the authenticated user's current cart
// total, so free-shipping eligibility matches what checkout will see.
func (h *ShippingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil || req.CEP == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cep is required"})
		return
	}

	view, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	quote, err := h.estimator.Estimate(r.Context(), req.CEP, view.Total)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}
