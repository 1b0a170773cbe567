package repair

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("repair order not found")
	ErrItemNotFound       = errors.New("inventory item not found")
	ErrPartNotFound       = errors.New("repair part not found")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNotPending         = errors.New("only pending orders can be cancelled")
	ErrNotATechnician     = errors.New("user is not a technician")
	ErrTooManyFiles       = errors.New("too many files")
)
