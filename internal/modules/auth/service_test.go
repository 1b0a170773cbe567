package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"repairdesk/internal/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if u != nil {
		u.ID = 7 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SetOTP(ctx context.Context, userID int64, otpHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, otpHash, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) ClearOTP(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, userID int64, role domain.UserRole) error {
	args := m.Called(ctx, userID, role)
	return args.Error(0)
}

type MockJWT struct {
	mock.Mock
}

func (m *MockJWT) GenerateToken(userID int64, role domain.UserRole) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendOTP(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func hashOTP(t *testing.T, code string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	assert.NoError(t, err)
	return string(h)
}

func TestSignup_Success(t *testing.T) {
	users := new(MockUserRepository)
	mailer := new(MockMailer)

	users.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)
	users.On("SetOTP", mock.Anything, int64(7), mock.Anything, mock.Anything).Return(nil)
	mailer.On("SendOTP", mock.Anything, "new@example.com", mock.Anything).Return(nil)

	svc := NewService(users, new(MockJWT), mailer, 10*time.Minute)
	user, err := svc.Signup(context.Background(), SignupRequest{
		Email:     "  New@Example.com ",
		FirstName: "Mira",
		LastName:  "Osei",
	})

	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)

	// The stored hash must verify against the code that was mailed.
	code := mailer.Calls[0].Arguments.String(2)
	hash := users.Calls[2].Arguments.String(2)
	assert.Len(t, code, 6)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	users.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	svc := NewService(users, new(MockJWT), new(MockMailer), 10*time.Minute)
	_, err := svc.Signup(context.Background(), SignupRequest{Email: "taken@example.com", FirstName: "A", LastName: "B"})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestOTP_InactiveUser(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "gone@example.com").
		Return(&domain.User{ID: 7, Email: "gone@example.com", IsActive: false}, nil)

	svc := NewService(users, new(MockJWT), new(MockMailer), 10*time.Minute)
	err := svc.RequestOTP(context.Background(), "gone@example.com")

	assert.ErrorIs(t, err, ErrUserInactive)
	users.AssertNotCalled(t, "SetOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyOTP_Success(t *testing.T) {
	users := new(MockUserRepository)
	jwt := new(MockJWT)

	expires := time.Now().Add(5 * time.Minute)
	users.On("GetByEmail", mock.Anything, "mira@example.com").
		Return(&domain.User{
			ID:           7,
			Email:        "mira@example.com",
			Role:         domain.RoleCustomer,
			IsActive:     true,
			OTPHash:      hashOTP(t, "123456"),
			OTPExpiresAt: &expires,
		}, nil)
	users.On("ClearOTP", mock.Anything, int64(7)).Return(nil)
	jwt.On("GenerateToken", int64(7), domain.RoleCustomer).Return("token-abc", nil)

	svc := NewService(users, jwt, new(MockMailer), 10*time.Minute)
	resp, err := svc.VerifyOTP(context.Background(), "mira@example.com", "123456")

	assert.NoError(t, err)
	assert.Equal(t, "token-abc", resp.Token)
	assert.True(t, resp.User.IsVerified)
	assert.Empty(t, resp.User.OTPHash)
	users.AssertCalled(t, "ClearOTP", mock.Anything, int64(7))
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	users := new(MockUserRepository)

	expires := time.Now().Add(5 * time.Minute)
	users.On("GetByEmail", mock.Anything, "mira@example.com").
		Return(&domain.User{
			ID:           7,
			Email:        "mira@example.com",
			IsActive:     true,
			OTPHash:      hashOTP(t, "123456"),
			OTPExpiresAt: &expires,
		}, nil)

	svc := NewService(users, new(MockJWT), new(MockMailer), 10*time.Minute)
	_, err := svc.VerifyOTP(context.Background(), "mira@example.com", "654321")

	assert.ErrorIs(t, err, ErrInvalidOTP)
	users.AssertNotCalled(t, "ClearOTP", mock.Anything, mock.Anything)
}

func TestVerifyOTP_Expired(t *testing.T) {
	users := new(MockUserRepository)

	expires := time.Now().Add(-1 * time.Minute)
	users.On("GetByEmail", mock.Anything, "mira@example.com").
		Return(&domain.User{
			ID:           7,
			Email:        "mira@example.com",
			IsActive:     true,
			OTPHash:      hashOTP(t, "123456"),
			OTPExpiresAt: &expires,
		}, nil)

	svc := NewService(users, new(MockJWT), new(MockMailer), 10*time.Minute)
	_, err := svc.VerifyOTP(context.Background(), "mira@example.com", "123456")

	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTP_NoOutstandingCode(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "mira@example.com").
		Return(&domain.User{ID: 7, Email: "mira@example.com", IsActive: true}, nil)

	svc := NewService(users, new(MockJWT), new(MockMailer), 10*time.Minute)
	_, err := svc.VerifyOTP(context.Background(), "mira@example.com", "123456")

	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestPromote_ByEmail(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "tech@example.com").
		Return(&domain.User{ID: 9, Email: "tech@example.com", Role: domain.RoleCustomer}, nil)
	users.On("UpdateRole", mock.Anything, int64(9), domain.RoleTechnician).Return(nil)

	svc := NewService(users, new(MockJWT), new(MockMailer), 10*time.Minute)
	user, err := svc.Promote(context.Background(), PromoteRequest{Email: "tech@example.com", Role: "technician"})

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleTechnician, user.Role)
}

func TestPromote_InvalidRole(t *testing.T) {
	users := new(MockUserRepository)
	svc := NewService(users, new(MockJWT), new(MockMailer), 10*time.Minute)

	_, err := svc.Promote(context.Background(), PromoteRequest{UserID: 9, Role: "superuser"})

	assert.ErrorIs(t, err, ErrInvalidRole)
	users.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestMe_NotFound(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewService(users, new(MockJWT), new(MockMailer), 10*time.Minute)
	_, err := svc.Me(context.Background(), 404)

	assert.ErrorIs(t, err, ErrUserNotFound)
}
