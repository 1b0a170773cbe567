package domain

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleTechnician UserRole = "technician"
	RoleCustomer   UserRole = "customer"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email" validate:"required,email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone,omitempty"`
	Role         UserRole   `json:"role"`
	IsActive     bool       `json:"is_active"`
	IsVerified   bool       `json:"is_verified"`
	OTPHash      string     `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Customer is the billing/ownership identity behind a user acting as
// a customer. Created lazily on the first customer-scoped action, so a
// row may exist with no profile fields filled in.
type Customer struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}
