package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"repairdesk/internal/domain"
)

const otpDigits = 6

type jwtService interface {
	GenerateToken(userID int64, role domain.UserRole) (string, error)
}

// Service contains the passwordless authentication logic: signup,
// OTP issue/verify, role promotion.
type Service struct {
	users  UserRepositoryInterface
	jwt    jwtService
	mailer Mailer
	otpTTL time.Duration
}

func NewService(users UserRepositoryInterface, jwt jwtService, mailer Mailer, otpTTL time.Duration) *Service {
	return &Service{
		users:  users,
		jwt:    jwt,
		mailer: mailer,
		otpTTL: otpTTL,
	}
}

// Signup registers a new unverified customer account and sends the
// first OTP.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	user := &domain.User{
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      domain.RoleCustomer,
		IsActive:  true,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The precheck races with concurrent signups; the unique
		// index has the final word.
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	if err := s.issueOTP(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestOTP issues a fresh code for an existing account.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.IsActive {
		return ErrUserInactive
	}

	return s.issueOTP(ctx, user)
}

// VerifyOTP checks the submitted code against the stored hash and,
// on success, clears it and returns the user with a bearer token.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (*VerifyOTPResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if user.OTPHash == "" || user.OTPExpiresAt == nil {
		return nil, ErrInvalidOTP
	}
	if time.Now().After(*user.OTPExpiresAt) {
		return nil, ErrInvalidOTP
	}
	if bcrypt.CompareHashAndPassword([]byte(user.OTPHash), []byte(otp)) != nil {
		return nil, ErrInvalidOTP
	}

	if err := s.users.ClearOTP(ctx, user.ID); err != nil {
		return nil, err
	}
	user.OTPHash = ""
	user.OTPExpiresAt = nil
	user.IsVerified = true

	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &VerifyOTPResponse{User: user, Token: token}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Promote changes a user's role. Target may be named by id or email.
func (s *Service) Promote(ctx context.Context, req PromoteRequest) (*domain.User, error) {
	role := domain.UserRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	var user *domain.User
	var err error
	switch {
	case req.UserID != 0:
		user, err = s.users.GetByID(ctx, req.UserID)
	case req.Email != "":
		user, err = s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	default:
		return nil, ErrUserNotFound
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

func (s *Service) issueOTP(ctx context.Context, user *domain.User) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.users.SetOTP(ctx, user.ID, string(hash), time.Now().Add(s.otpTTL)); err != nil {
		return err
	}

	return s.mailer.SendOTP(ctx, user.Email, code)
}

func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}
