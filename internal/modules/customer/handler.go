package customer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"repairdesk/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type UpdateCustomerRequest struct {
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// RegisterRoutes mounts customer management on the admin group.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/customers", h.List)
	admin.GET("/customers/:id", h.Get)
	admin.PUT("/customers/:id", h.Update)
	admin.DELETE("/users/:id", h.DeactivateUser)
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	customers, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list customers")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"customers": customers})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID")
		return
	}

	cust, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load customer")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"customer": cust})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID")
		return
	}

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	cust, err := h.service.Update(c.Request.Context(), id, req.Address, req.Notes)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update customer")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"customer": cust})
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.service.DeactivateUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to deactivate user")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deactivated"})
}
