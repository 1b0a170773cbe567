package auth

import (
	"context"
	"time"

	"repairdesk/internal/domain"
)

// UserRepositoryInterface lists only the methods the auth service uses.
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetOTP(ctx context.Context, userID int64, otpHash string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, userID int64) error
	UpdateRole(ctx context.Context, userID int64, role domain.UserRole) error
}

// Mailer delivers one-time codes. Delivery transport (SMTP, external
// provider) lives behind this interface.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}
