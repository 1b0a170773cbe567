package payment

import "errors"

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidMethod = errors.New("unknown payment method")
	ErrOrderNotFound = errors.New("repair order not found")
)
