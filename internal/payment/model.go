package payment

import "time"

// Provider-side payment statuses this system reacts to.
const (
	StatusApproved  = "approved"
	StatusCancelled = "cancelled"
	StatusRejected  = "rejected"
	StatusPending   = "pending"
)

type Payment struct {
	ID         uint
	OrderID    uint
	ExternalID string
	Amount     float64
	Status     string
	Method     string
	TicketURL  string
	QRCode     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreatePaymentParams struct {
	OrderID    uint
	Amount     float64
	PayerEmail string
	PayerName  string
	Method     string
}

// PaymentResponse is what the gateway returns on creation: the external
// id plus the artifact the buyer needs to complete payment.
type PaymentResponse struct {
	ExternalID string  `json:"external_id"`
	Status     string  `json:"status"`
	Amount     float64 `json:"amount"`
	TicketURL  string  `json:"ticket_url,omitempty"`
	QRCode     string  `json:"qr_code,omitempty"`
}

// PaymentInfo is the gateway's view of an existing payment, fetched
// during webhook reconciliation.
type PaymentInfo struct {
	ExternalID        string
	Status            string
	Amount            float64
	ExternalReference string
}
