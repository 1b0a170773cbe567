package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"repairdesk/internal/domain"
	jwtsvc "repairdesk/internal/pkg/jwt"
	"repairdesk/internal/pkg/response"
)

// UserGetter is the slice of the user repository the auth middleware
// needs to reject deactivated accounts.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Auth validates the bearer token and loads the caller's identity
// into the context. Tokens belonging to deactivated users are
// rejected even before expiry.
func Auth(jwt *jwtsvc.Service, users UserGetter) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			abortUnauthorized(c, "Missing Authorization header")
			return
		}

		if !strings.HasPrefix(h, "Bearer ") {
			abortUnauthorized(c, "Invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			abortUnauthorized(c, "Empty token")
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			abortUnauthorized(c, "Account is not active")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
	c.Abort()
}
