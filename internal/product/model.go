package product

import "time"

type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	PromoPrice  *float64  `json:"promo_price,omitempty"`
	Promo       bool      `json:"promo"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EffectivePrice is the price a buyer pays right now: the promotional
// price when the promotion flag is set and a promo price exists,
// otherwise the list price.
func (p *Product) EffectivePrice() float64 {
	if p.Promo && p.PromoPrice != nil {
		return *p.PromoPrice
	}
	return p.Price
}

type CreateParams struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	PromoPrice  *float64 `json:"promo_price"`
	Promo       bool     `json:"promo"`
	Stock       int      `json:"stock"`
}

// UpdateParams uses pointers so absent fields are left untouched.
type UpdateParams struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	PromoPrice  *float64 `json:"promo_price"`
	Promo       *bool    `json:"promo"`
	Stock       *int     `json:"stock"`
}
