package payment

import "errors"

var (
	// ErrGatewayUnavailable marks transport failures and provider
	// 5xx responses; callers treat it as retryable.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	ErrPaymentNotFound = errors.New("payment not found")
)
