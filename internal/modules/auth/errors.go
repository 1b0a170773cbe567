package auth

import "errors"

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("account is deactivated")
	ErrInvalidOTP         = errors.New("invalid or expired code")
	ErrInvalidRole        = errors.New("invalid role")
)
