package inventory

import "errors"

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("inventory item not found")
	ErrPartNumberTaken     = errors.New("part number already exists")
	ErrQuantityImmutable   = errors.New("quantity changes only through repair parts")
)
