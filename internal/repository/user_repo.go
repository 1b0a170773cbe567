package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"repairdesk/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	Email        string     `gorm:"column:email;uniqueIndex"`
	FirstName    string     `gorm:"column:first_name"`
	LastName     string     `gorm:"column:last_name"`
	Phone        *string    `gorm:"column:phone"`
	Role         string     `gorm:"column:role"`
	IsActive     bool       `gorm:"column:is_active"`
	IsVerified   bool       `gorm:"column:is_verified"`
	OTPHash      *string    `gorm:"column:otp_hash"`
	OTPExpiresAt *time.Time `gorm:"column:otp_expires_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var phone, otpHash string
	if m.Phone != nil {
		phone = *m.Phone
	}
	if m.OTPHash != nil {
		otpHash = *m.OTPHash
	}

	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Phone:        phone,
		Role:         domain.UserRole(m.Role),
		IsActive:     m.IsActive,
		IsVerified:   m.IsVerified,
		OTPHash:      otpHash,
		OTPExpiresAt: m.OTPExpiresAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	email := strings.TrimSpace(strings.ToLower(u.Email))

	var phone, otpHash *string
	if u.Phone != "" {
		v := u.Phone
		phone = &v
	}
	if u.OTPHash != "" {
		v := u.OTPHash
		otpHash = &v
	}

	return userModel{
		ID:           u.ID,
		Email:        email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        phone,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		IsVerified:   u.IsVerified,
		OTPHash:      otpHash,
		OTPExpiresAt: u.OTPExpiresAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}
	return count > 0, nil
}

// SetOTP stores a hashed one-time code and its expiry.
func (r *UserRepository) SetOTP(ctx context.Context, userID int64, otpHash string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{"otp_hash": otpHash, "otp_expires_at": expiresAt}).Error
}

// ClearOTP wipes the stored code after successful verification and
// marks the user verified.
func (r *UserRepository) ClearOTP(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{"otp_hash": nil, "otp_expires_at": nil, "is_verified": true}).Error
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID int64, role domain.UserRole) error {
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", userID).
		Update("role", string(role))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Deactivate is the admin "delete": the row is kept, is_active flips.
func (r *UserRepository) Deactivate(ctx context.Context, userID int64) error {
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", userID).
		Update("is_active", false)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
