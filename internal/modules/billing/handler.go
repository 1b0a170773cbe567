package billing

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"repairdesk/internal/authz"
	"repairdesk/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/repairs/:id/invoice", h.Invoice)
}

// Invoice renders the order's invoice as a standalone HTML document.
func (h *Handler) Invoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid repair order ID")
		return
	}

	ident := authz.IdentityFromContext(c.GetInt64("user_id"), c.GetString("role"))

	inv, err := h.service.BuildInvoice(c.Request.Context(), ident, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, authz.ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
		case errors.Is(err, authz.ErrUnauthenticated):
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		default:
			response.Error(c, http.StatusInternalServerError, "INVOICE_FAILED", "Failed to build invoice")
		}
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := invoiceTmpl.Execute(c.Writer, inv); err != nil {
		_ = c.Error(err)
	}
}
