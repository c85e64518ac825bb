package payment

import "context"

// Gateway is the payment processor the order flow talks to.
//
// CreatePayment is not idempotent on the provider side; callers must
// check for an existing external id before requesting a new payment
// for the same order.
type Gateway interface {
	CreatePayment(ctx context.Context, params CreatePaymentParams) (*PaymentResponse, error)
	GetPayment(ctx context.Context, externalID string) (*PaymentInfo, error)
}
