package repair

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"repairdesk/internal/authz"
	"repairdesk/internal/pkg/response"
	"repairdesk/internal/pkg/upload"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the repair endpoints. rg is the
// authenticated group; staff and admin are pre-gated subgroups of it.
func (h *Handler) RegisterRoutes(rg, staff, admin *gin.RouterGroup) {
	rg.POST("/repairs", h.Create)
	rg.GET("/repairs/mine", h.ListMine)
	rg.GET("/repairs/:id", h.Get)
	rg.PUT("/repairs/:id/cancel", h.Cancel)

	rg.GET("/repairs/:id/parts", h.ListParts)
	rg.GET("/repairs/:id/attachments", h.ListAttachments)
	rg.POST("/repairs/:id/attachments", h.UploadAttachments)
	rg.DELETE("/repairs/:id/attachments/:attachmentId", h.DeleteAttachment)

	staff.GET("/repairs", h.List)
	staff.GET("/repairs/assigned", h.ListAssigned)
	staff.PUT("/repairs/:id", h.Update)
	staff.POST("/repairs/:id/parts", h.AddPart)
	staff.DELETE("/repairs/:id/parts/:repairPartId", h.RemovePart)

	admin.DELETE("/repairs/:id", h.Delete)
	admin.PUT("/repairs/:id/assign", h.Assign)
}

// multipartFiles pulls the uploaded images out of the form. Both
// "images" and "images[]" field names are accepted.
func multipartFiles(form *multipart.Form) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File["images"]
	if len(files) == 0 {
		files = form.File["images[]"]
	}
	return files
}

func identity(c *gin.Context) authz.Identity {
	return authz.IdentityFromContext(c.GetInt64("user_id"), c.GetString("role"))
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid repair order ID")
		return 0, false
	}
	return id, true
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
	var req CreateRepairRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	form, _ := c.MultipartForm()

	order, err := h.service.Create(c.Request.Context(), identity(c), req, multipartFiles(form))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"repair": order})
}

func (h *Handler) List(c *gin.Context) {
	limit, offset := pagination(c)
	orders, err := h.service.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list repairs")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"repairs": orders})
}

// ListAssigned returns the tickets assigned to the calling
// technician.
func (h *Handler) ListAssigned(c *gin.Context) {
	limit, offset := pagination(c)
	orders, err := h.service.ListAssigned(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list repairs")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"repairs": orders})
}

func (h *Handler) ListMine(c *gin.Context) {
	limit, offset := pagination(c)
	orders, err := h.service.ListMine(c.Request.Context(), identity(c), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"repairs": orders})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.service.Get(c.Request.Context(), identity(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"repair": order})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req UpdateRepairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"repair": order})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.service.Cancel(c.Request.Context(), identity(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"repair": order})
}

func (h *Handler) Assign(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req AssignTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	order, err := h.service.AssignTechnician(c.Request.Context(), id, req.TechnicianID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"repair": order})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) ListParts(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	parts, err := h.service.ListParts(c.Request.Context(), identity(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"parts": parts})
}

func (h *Handler) AddPart(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req AddPartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	part, err := h.service.AddPart(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"part": part})
}

func (h *Handler) RemovePart(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	partID, err := strconv.ParseInt(c.Param("repairPartId"), 10, 64)
	if err != nil || partID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid repair part ID")
		return
	}

	if err := h.service.RemovePart(c.Request.Context(), id, partID); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "removed"})
}

func (h *Handler) ListAttachments(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	atts, err := h.service.ListAttachments(c.Request.Context(), identity(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attachments": atts})
}

func (h *Handler) UploadAttachments(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "multipart form required")
		return
	}

	atts, err := h.service.UploadAttachments(c.Request.Context(), identity(c), id, multipartFiles(form))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"attachments": atts})
}

func (h *Handler) DeleteAttachment(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	attachmentID, err := strconv.ParseInt(c.Param("attachmentId"), 10, 64)
	if err != nil || attachmentID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid attachment ID")
		return
	}

	if err := h.service.DeleteAttachment(c.Request.Context(), identity(c), id, attachmentID); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", ErrNotFound.Error())
	case errors.Is(err, ErrItemNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", ErrItemNotFound.Error())
	case errors.Is(err, ErrPartNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", ErrPartNotFound.Error())
	case errors.Is(err, ErrAttachmentNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", ErrAttachmentNotFound.Error())
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		response.Error(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, ErrNotPending):
		response.Error(c, http.StatusBadRequest, "NOT_PENDING", err.Error())
	case errors.Is(err, ErrNotATechnician):
		response.Error(c, http.StatusBadRequest, "NOT_A_TECHNICIAN", err.Error())
	case errors.Is(err, ErrTooManyFiles):
		response.Error(c, http.StatusBadRequest, "TOO_MANY_FILES", err.Error())
	case errors.Is(err, upload.ErrEmptyFile),
		errors.Is(err, upload.ErrFileTooLarge),
		errors.Is(err, upload.ErrInvalidMimeType):
		response.Error(c, http.StatusBadRequest, "UPLOAD_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
