package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"repairdesk/internal/domain"
	jwtsvc "repairdesk/internal/pkg/jwt"
)

type stubUserGetter struct {
	user *domain.User
	err  error
}

func (s *stubUserGetter) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.user, s.err
}

func activeUser(id int64, role domain.UserRole) *stubUserGetter {
	return &stubUserGetter{user: &domain.User{ID: id, Role: role, IsActive: true}}
}

func TestAuth_ValidToken(t *testing.T) {
	jwtService := jwtsvc.New("test-secret-123", 1*time.Hour)
	validToken, _ := jwtService.GenerateToken(42, domain.RoleCustomer)

	router := gin.New()
	router.Use(Auth(jwtService, activeUser(42, domain.RoleCustomer)))

	router.GET("/protected", func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		role, _ := c.Get("role")
		c.JSON(http.StatusOK, gin.H{
			"user_id": userID,
			"role":    role,
		})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+validToken)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), "customer")
}

func TestAuth_InvalidToken(t *testing.T) {
	jwtService := jwtsvc.New("wrong-secret", 1*time.Hour)

	router := gin.New()
	router.Use(Auth(jwtService, activeUser(42, domain.RoleCustomer)))

	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("This handler should not be reached")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid-jwt-here")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuth_NoToken(t *testing.T) {
	jwtService := jwtsvc.New("secret", 1*time.Hour)

	router := gin.New()
	router.Use(Auth(jwtService, activeUser(42, domain.RoleCustomer)))

	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("Should not reach here")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	// No Authorization header
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Missing Authorization header")
}

func TestAuth_WrongFormat(t *testing.T) {
	jwtService := jwtsvc.New("secret", 1*time.Hour)

	router := gin.New()
	router.Use(Auth(jwtService, activeUser(42, domain.RoleCustomer)))

	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("Should not reach here")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic dGVzdA==")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Authorization header")
}

// A token that is still cryptographically valid stops working the
// moment the account is deactivated.
func TestAuth_DeactivatedUser(t *testing.T) {
	jwtService := jwtsvc.New("secret", 1*time.Hour)
	token, _ := jwtService.GenerateToken(42, domain.RoleCustomer)

	users := &stubUserGetter{user: &domain.User{ID: 42, Role: domain.RoleCustomer, IsActive: false}}

	router := gin.New()
	router.Use(Auth(jwtService, users))

	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("Should not reach here")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Account is not active")
}

func TestRequireRole_StaffOnly(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", int64(42))
		c.Set("role", "customer")
	})
	router.Use(StaffOnly())

	router.GET("/staff", func(c *gin.Context) {
		t.Fatal("Should not reach here")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/staff", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_AdminPasses(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", int64(1))
		c.Set("role", "admin")
	})
	router.Use(StaffOnly())

	router.GET("/staff", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/staff", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
