package rest

import (
	"net/http"

	"modakarina-be/internal/order"
	"modakarina-be/internal/payment"
	"modakarina-be/internal/user"
	"modakarina-be/internal/utils"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type placeOrderRequest struct {
	Address       order.Address `json:"address"`
	PaymentMethod string        `json:"payment_method"`
}

type updateStatusRequest struct {
	Status order.Status `json:"status"`
}

type orderResponse struct {
	Order   *order.Order             `json:"order"`
	Payment *payment.PaymentResponse `json:"payment,omitempty"`
}

func isAdmin(r *http.Request) bool {
	return utils.GetUserRoleFromContext(r.Context()) == string(user.RoleAdmin)
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	o, payResp, err := h.orders.PlaceOrder(r.Context(), userID, req.Address, req.PaymentMethod)
	if err != nil {
		// A gateway outage still leaves a pending order behind; report
		// it so the client can retry payment instead of reordering.
		if o != nil {
			writeJSON(w, statusFor(err), map[string]any{
				"error": "payment could not be created, retry via POST /orders/{id}/payment",
				"order": o,
			})
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse{Order: o, Payment: payResp})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	orders, err := h.orders.GetOrders(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	orderID, ok := parseUintParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	o, err := h.orders.GetOrderDetail(r.Context(), userID, orderID, isAdmin(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	orderID, ok := parseUintParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	o, payResp, err := h.orders.RetryPayment(r.Context(), userID, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderResponse{Order: o, Payment: payResp})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseUintParam(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), orderID, req.Status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
}
