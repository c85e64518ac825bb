package shipping

import "context"

// Quote is a shipping fee plus delivery lead time in days.
type Quote struct {
	Fee     float64 `json:"fee"`
	EtaDays int     `json:"eta_days"`
}

// Estimator quotes shipping for a destination postal code and an order
// subtotal. Implementations must resolve unknown or unreachable postal
// codes to a fallback quote instead of failing.
type Estimator interface {
	Estimate(ctx context.Context, cep string, subtotal float64) (Quote, error)
}
