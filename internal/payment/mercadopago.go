package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"modakarina-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const mercadoPagoBaseURL = "https://api.mercadopago.com"

type mercadoPagoGateway struct {
	accessToken     string
	notificationURL string
	httpClient      *http.Client
	baseURL         string
}

// NewMercadoPagoGateway builds the production gateway adapter.
// notificationURL is where Mercado Pago delivers payment webhooks.
func NewMercadoPagoGateway(accessToken, notificationURL string) Gateway {
	if accessToken == "" {
		logger.L().Warn("Mercado Pago access token is empty")
	}

	return &mercadoPagoGateway{
		accessToken:     accessToken,
		notificationURL: notificationURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: mercadoPagoBaseURL,
	}
}

type mpPaymentResponse struct {
	ID                 int64   `json:"id"`
	Status             string  `json:"status"`
	TransactionAmount  float64 `json:"transaction_amount"`
	ExternalReference  string  `json:"external_reference"`
	PointOfInteraction struct {
		TransactionData struct {
			TicketURL string `json:"ticket_url"`
			QRCode    string `json:"qr_code"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (g *mercadoPagoGateway) CreatePayment(ctx context.Context, params CreatePaymentParams) (*PaymentResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.Uint("order_id", params.OrderID),
		zap.Float64("amount", params.Amount),
		zap.String("method", params.Method),
	)

	method := params.Method
	if method == "" {
		method = "pix"
	}

	body := map[string]interface{}{
		"transaction_amount": params.Amount,
		"description":        fmt.Sprintf("Pedido Moda Karina Store #%d", params.OrderID),
		"payment_method_id":  method,
		"payer": map[string]interface{}{
			"email":      params.PayerEmail,
			"first_name": params.PayerName,
		},
		"external_reference": strconv.FormatUint(uint64(params.OrderID), 10),
		"notification_url":   g.notificationURL,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Error("failed to marshal payment request", zap.Error(err))
		return nil, err
	}

	log.Info("sending payment request to Mercado Pago")

	respBody, err := g.do(ctx, http.MethodPost, "/v1/payments", jsonBody, map[string]string{
		"X-Idempotency-Key": uuid.New().String(),
	})
	if err != nil {
		log.Error("Mercado Pago payment request failed", zap.Error(err))
		return nil, err
	}

	var res mpPaymentResponse
	if err := json.Unmarshal(respBody, &res); err != nil {
		log.Error("failed decoding Mercado Pago response", zap.Error(err))
		return nil, err
	}

	log.Info("Mercado Pago payment created",
		zap.Int64("payment_id", res.ID),
		zap.String("status", res.Status),
	)

	return &PaymentResponse{
		ExternalID: strconv.FormatInt(res.ID, 10),
		Status:     res.Status,
		Amount:     res.TransactionAmount,
		TicketURL:  res.PointOfInteraction.TransactionData.TicketURL,
		QRCode:     res.PointOfInteraction.TransactionData.QRCode,
	}, nil
}

func (g *mercadoPagoGateway) GetPayment(ctx context.Context, externalID string) (*PaymentInfo, error) {
	log := logger.FromCtx(ctx).With(zap.String("external_id", externalID))

	respBody, err := g.do(ctx, http.MethodGet, "/v1/payments/"+externalID, nil, nil)
	if err != nil {
		log.Error("Mercado Pago payment lookup failed", zap.Error(err))
		return nil, err
	}

	var res mpPaymentResponse
	if err := json.Unmarshal(respBody, &res); err != nil {
		log.Error("failed decoding Mercado Pago payment", zap.Error(err))
		return nil, err
	}

	return &PaymentInfo{
		ExternalID:        strconv.FormatInt(res.ID, 10),
		Status:            res.Status,
		Amount:            res.TransactionAmount,
		ExternalReference: res.ExternalReference,
	}, nil
}

// do performs one gateway call with bounded retries. Transport errors
// and 5xx responses retry with backoff and surface as
// ErrGatewayUnavailable; 4xx responses fail immediately.
func (g *mercadoPagoGateway) do(ctx context.Context, method, path string, body []byte, headers map[string]string) ([]byte, error) {
	const maxAttempts = 3

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+g.accessToken)
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("mercadopago status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("mercadopago error: %s", string(respBody))
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, lastErr)
}
