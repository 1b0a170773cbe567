package payment

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

// RegisterRoutes mounts payment endpoints. rg is authenticated;
// staff is the admin/technician subgroup.
func (h *Handler) RegisterRoutes(rg, staff *gin.RouterGroup) {
	rg.POST("/payments", h.Create)
	rg.GET("/payments/mine", h.ListMine)
	rg.GET("/payments/repair/:id", h.ListByRepair)

	staff.GET("/payments", h.List)
	staff.GET("/payments/technician", h.ListByTechnician)
}

func identity(c *gin.Context) authz.Identity {
	return authz.IdentityFromContext(c.GetInt64("user_id"), c.GetString("role"))
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	p, err := h.service.Create(c.Request.Context(), identity(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": p})
}

func (h *Handler) List(c *gin.Context) {
	limit, offset := pagination(c)
	payments, err := h.service.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list payments")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}

func (h *Handler) ListMine(c *gin.Context) {
	limit, offset := pagination(c)
	payments, err := h.service.ListMine(c.Request.Context(), identity(c), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}

// ListByTechnician returns payments on orders assigned to the
// calling technician.
func (h *Handler) ListByTechnician(c *gin.Context) {
	limit, offset := pagination(c)
	payments, err := h.service.ListByTechnician(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list payments")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}

func (h *Handler) ListByRepair(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid repair order ID")
		return
	}

	payments, err := h.service.ListByRepairOrder(c.Request.Context(), identity(c), orderID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payments": payments})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.Is(err, ErrOrderNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidMethod), errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
