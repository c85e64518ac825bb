package cart

import "time"

// Line is one (user, product) row in the cart.
type Line struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LineRow is a cart line joined with live product data.
type LineRow struct {
	ProductID  uint
	Name       string
	Price      float64
	PromoPrice *float64
	Promo      bool
	Stock      int
	Quantity   int
}

// ItemView is a cart line priced with the product's current effective
// price. Cart totals are always live, never snapshotted.
type ItemView struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	Stock     int     `json:"stock"`
	Promo     bool    `json:"promo"`
}

type View struct {
	Items []ItemView `json:"items"`
	Total float64    `json:"total"`
}
