package cart

import "errors"

var (
	ErrInvalidQuantity   = errors.New("invalid cart quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrLineNotFound      = errors.New("cart item not found")
)
