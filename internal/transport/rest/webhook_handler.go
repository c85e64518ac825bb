package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"modakarina-be/internal/logger"
	"modakarina-be/internal/order"

	"go.uber.org/zap"
)

// maxWebhookBody bounds notification payload size.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	orders order.Service
}

func NewWebhookHandler(orders order.Service) *WebhookHandler {
	return &WebhookHandler{orders: orders}
}

// MercadoPago always acknowledges with 200 so the provider stops
// redelivering; reconciliation failures are logged and the notification
// row keeps the error for replay.
func (h *WebhookHandler) MercadoPago(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	r.Body.Close()
	if err != nil {
		log.Error("failed to read webhook body", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		return
	}

	var n order.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		log.Warn("malformed webhook payload", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		return
	}
	n.Raw = body

	if err := h.orders.HandlePaymentNotification(r.Context(), n); err != nil {
		log.Error("webhook reconciliation failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
