package order

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// validTransitions are the admin-driven and webhook-driven moves the
// state machine accepts. delivered and cancelled are terminal.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped},
	StatusShipped: {StatusDelivered},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Address is the structured shipping destination, embedded in the
// order at placement time.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Item is a frozen copy of a product at the moment the order was
// placed; later catalog changes never touch it.
type Item struct {
	ID        uint    `json:"id"`
	OrderID   uint    `json:"order_id"`
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type Order struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Items         []Item    `json:"items"`
	Address       Address   `json:"address"`
	ShippingFee   float64   `json:"shipping_fee"`
	Total         float64   `json:"total"`
	Status        Status    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	PaymentID     string    `json:"payment_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NotificationID tolerates providers sending the event id as either a
// JSON number or a JSON string.
type NotificationID string

func (n *NotificationID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = NotificationID(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = NotificationID(num.String())
	return nil
}

// Notification is the webhook payload delivered by the payment
// provider. Only "payment"-type notifications carry a payment id worth
// reconciling.
type Notification struct {
	ID     NotificationID `json:"id"`
	Type   string         `json:"type"`
	Action string         `json:"action,omitempty"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`

	Raw json.RawMessage `json:"-"`
}
