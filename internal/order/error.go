package order

import "errors"

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidAddress     = errors.New("invalid shipping address")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNotPending         = errors.New("order is not pending")
)
