package auth

import "repairdesk/internal/domain"

type SignupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
}

type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type PromoteRequest struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email" validate:"omitempty,email"`
	Role   string `json:"role" validate:"required"`
}

type VerifyOTPResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}
