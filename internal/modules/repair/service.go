package repair

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"gorm.io/gorm"

	"repairdesk/internal/authz"
	"repairdesk/internal/domain"
	"repairdesk/internal/modules/notification"
	"repairdesk/internal/repository"
)

const (
	// MaxImagesAtCreate caps images accepted with a new ticket.
	MaxImagesAtCreate = 6
	// MaxFilesPerUpload caps files per attachment call. There is no
	// cap on an order's cumulative attachment count.
	MaxFilesPerUpload = 3
)

// Service is the repair-order lifecycle engine: creation, the status
// machine, technician assignment, part and attachment bookkeeping.
type Service struct {
	orders    OrderRepository
	users     UserReader
	customers CustomerReader
	policy    AccessPolicy
	notifs    NotificationSender
	files     FileStore
}

func NewService(
	orders OrderRepository,
	users UserReader,
	customers CustomerReader,
	policy AccessPolicy,
	notifs NotificationSender,
	files FileStore,
) *Service {
	return &Service{
		orders:    orders,
		users:     users,
		customers: customers,
		policy:    policy,
		notifs:    notifs,
		files:     files,
	}
}

// Create opens a repair ticket. CustomerID defaults to the caller's
// own (lazily created) customer; staff may create on behalf of any
// customer. Up to MaxImagesAtCreate device photos are stored with it.
func (s *Service) Create(ctx context.Context, ident authz.Identity, req CreateRepairRequest, images []*multipart.FileHeader) (*domain.RepairOrder, error) {
	if len(images) > MaxImagesAtCreate {
		return nil, ErrTooManyFiles
	}

	customerID := req.CustomerID
	if customerID == 0 {
		own, err := s.policy.CustomerFor(ctx, ident)
		if err != nil {
			return nil, err
		}
		customerID = own.ID
	} else {
		if err := s.policy.Authorize(ctx, ident, authz.Resource{Kind: "repair_order", OwnerCustomerID: customerID}); err != nil {
			return nil, err
		}
		if _, err := s.customers.GetByID(ctx, customerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrValidation
			}
			return nil, err
		}
	}

	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.RepairPriority(req.Priority)
		if !priority.Valid() {
			return nil, ErrValidation
		}
	}

	order := &domain.RepairOrder{
		CustomerID:       customerID,
		DeviceType:       req.DeviceType,
		Brand:            req.Brand,
		Model:            req.Model,
		SerialNumber:     req.SerialNumber,
		IssueDescription: req.IssueDescription,
		Status:           domain.RepairPending,
		Priority:         priority,
		EstimatedCost:    req.EstimatedCost,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	for _, fh := range images {
		if _, err := s.saveAttachment(ctx, order.ID, ident.UserID, fh); err != nil {
			// A rejected image must not leave a half-created ticket
			// behind: take the order and any earlier files with it.
			_ = s.orders.Delete(ctx, order.ID)
			_ = s.files.RemoveOrderDir(order.ID)
			return nil, err
		}
	}

	return s.orders.GetDetailed(ctx, order.ID)
}

func (s *Service) Get(ctx context.Context, ident authz.Identity, id int64) (*domain.RepairOrder, error) {
	order, err := s.orders.GetDetailed(ctx, id)
	if err != nil {
		return nil, mapOrderErr(err)
	}
	if err := s.authorizeOrder(ctx, ident, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]domain.RepairOrder, error) {
	return s.orders.ListAll(ctx, limit, offset)
}

// ListMine returns the caller's own tickets. The lazy customer
// resolution means a first-time caller gets an empty list, never an
// error.
func (s *Service) ListMine(ctx context.Context, ident authz.Identity, limit, offset int) ([]domain.RepairOrder, error) {
	own, err := s.policy.CustomerFor(ctx, ident)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByCustomer(ctx, own.ID, limit, offset)
}

// ListAssigned returns the tickets assigned to the calling technician.
func (s *Service) ListAssigned(ctx context.Context, technicianID int64, limit, offset int) ([]domain.RepairOrder, error) {
	return s.orders.ListByTechnician(ctx, technicianID, limit, offset)
}

// Update merges a partial field set onto the order. Status accepts
// any known value here with no transition validation; the only
// guarded transition in the system is the dedicated Cancel path.
// When the merge changes the status, the owning customer is notified.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRepairRequest) (*domain.RepairOrder, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, mapOrderErr(err)
	}

	updates := map[string]any{}
	if req.DeviceType != nil {
		updates["device_type"] = *req.DeviceType
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.SerialNumber != nil {
		updates["serial_number"] = *req.SerialNumber
	}
	if req.IssueDescription != nil {
		updates["issue_description"] = *req.IssueDescription
	}
	if req.DiagnosisNotes != nil {
		updates["diagnosis_notes"] = *req.DiagnosisNotes
	}
	if req.Status != nil {
		st := domain.RepairStatus(*req.Status)
		if !st.Valid() {
			return nil, ErrValidation
		}
		updates["status"] = string(st)
	}
	if req.Priority != nil {
		p := domain.RepairPriority(*req.Priority)
		if !p.Valid() {
			return nil, ErrValidation
		}
		updates["priority"] = string(p)
	}
	if req.EstimatedCost != nil {
		updates["estimated_cost"] = *req.EstimatedCost
	}
	if req.ActualCost != nil {
		updates["actual_cost"] = *req.ActualCost
	}
	if len(updates) == 0 {
		return order, nil
	}

	updated, err := s.orders.Update(ctx, id, updates)
	if err != nil {
		return nil, mapOrderErr(err)
	}

	if updated.Status != order.Status {
		s.notifyStatusChange(ctx, updated, order.Status, notification.KindStatusChanged,
			"Repair status updated",
			fmt.Sprintf("Your repair #%d is now %s", updated.ID, updated.Status))
	}

	return updated, nil
}

// Cancel is the one guarded transition: it succeeds only from
// pending.
func (s *Service) Cancel(ctx context.Context, ident authz.Identity, id int64) (*domain.RepairOrder, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, mapOrderErr(err)
	}
	if err := s.authorizeOrder(ctx, ident, order); err != nil {
		return nil, err
	}

	if order.Status != domain.RepairPending {
		return nil, ErrNotPending
	}

	updated, err := s.orders.Update(ctx, id, map[string]any{"status": string(domain.RepairCancelled)})
	if err != nil {
		return nil, mapOrderErr(err)
	}

	s.notifyStatusChange(ctx, updated, order.Status, notification.KindCancelled,
		"Repair cancelled",
		fmt.Sprintf("Your repair #%d has been cancelled", updated.ID))

	return updated, nil
}

// AssignTechnician sets the working technician. Admin-gated at the
// route; the target must exist and hold the technician role.
func (s *Service) AssignTechnician(ctx context.Context, orderID, technicianID int64) (*domain.RepairOrder, error) {
	tech, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotATechnician
		}
		return nil, err
	}
	if tech.Role != domain.RoleTechnician {
		return nil, ErrNotATechnician
	}

	updated, err := s.orders.Update(ctx, orderID, map[string]any{"technician_id": technicianID})
	if err != nil {
		return nil, mapOrderErr(err)
	}
	return updated, nil
}

// Delete removes an order, its parts and its attachments (rows and
// files). Payments stay behind as an audit trail.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return mapOrderErr(err)
	}
	return s.files.RemoveOrderDir(id)
}

// AddPart attaches stock to an order. The quantity check and the
// decrement run inside one repository transaction.
func (s *Service) AddPart(ctx context.Context, orderID int64, req AddPartRequest) (*domain.RepairPart, error) {
	if req.Quantity <= 0 {
		return nil, ErrValidation
	}
	if req.UnitPrice != nil && *req.UnitPrice < 0 {
		return nil, ErrValidation
	}

	part, err := s.orders.AddPart(ctx, orderID, req.InventoryID, req.Quantity, req.UnitPrice)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrItemNotFound):
			return nil, ErrItemNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, ErrInsufficientStock
		}
		return nil, err
	}
	return part, nil
}

func (s *Service) RemovePart(ctx context.Context, orderID, partID int64) error {
	if err := s.orders.RemovePart(ctx, orderID, partID); err != nil {
		if errors.Is(err, repository.ErrPartNotFound) {
			return ErrPartNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ListParts(ctx context.Context, ident authz.Identity, orderID int64) ([]domain.RepairPart, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderErr(err)
	}
	if err := s.authorizeOrder(ctx, ident, order); err != nil {
		return nil, err
	}
	return s.orders.ListParts(ctx, orderID)
}

// UploadAttachments stores up to MaxFilesPerUpload images against an
// existing order.
func (s *Service) UploadAttachments(ctx context.Context, ident authz.Identity, orderID int64, files []*multipart.FileHeader) ([]domain.RepairAttachment, error) {
	if len(files) == 0 {
		return nil, ErrValidation
	}
	if len(files) > MaxFilesPerUpload {
		return nil, ErrTooManyFiles
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderErr(err)
	}
	if err := s.authorizeOrder(ctx, ident, order); err != nil {
		return nil, err
	}

	out := make([]domain.RepairAttachment, 0, len(files))
	for _, fh := range files {
		a, err := s.saveAttachment(ctx, orderID, ident.UserID, fh)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func (s *Service) ListAttachments(ctx context.Context, ident authz.Identity, orderID int64) ([]domain.RepairAttachment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderErr(err)
	}
	if err := s.authorizeOrder(ctx, ident, order); err != nil {
		return nil, err
	}
	return s.orders.ListAttachments(ctx, orderID)
}

// DeleteAttachment removes both the file and its row.
func (s *Service) DeleteAttachment(ctx context.Context, ident authz.Identity, orderID, attachmentID int64) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return mapOrderErr(err)
	}
	if err := s.authorizeOrder(ctx, ident, order); err != nil {
		return err
	}

	a, err := s.orders.GetAttachment(ctx, orderID, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttachmentNotFound
		}
		return err
	}

	if err := s.orders.DeleteAttachment(ctx, orderID, attachmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttachmentNotFound
		}
		return err
	}
	return s.files.Remove(orderID, a.Filename)
}

func (s *Service) authorizeOrder(ctx context.Context, ident authz.Identity, order *domain.RepairOrder) error {
	return s.policy.Authorize(ctx, ident, authz.Resource{
		Kind:            "repair_order",
		OwnerCustomerID: order.CustomerID,
	})
}

func (s *Service) saveAttachment(ctx context.Context, orderID, uploaderID int64, fh *multipart.FileHeader) (*domain.RepairAttachment, error) {
	saved, err := s.files.SaveImage(orderID, fh)
	if err != nil {
		return nil, err
	}

	a := &domain.RepairAttachment{
		RepairOrderID: orderID,
		Filename:      saved.Filename,
		OriginalName:  saved.OriginalName,
		MimeType:      saved.MimeType,
		Size:          saved.Size,
		UploadedBy:    uploaderID,
	}
	if err := s.orders.AddAttachment(ctx, a); err != nil {
		_ = s.files.Remove(orderID, saved.Filename)
		return nil, err
	}
	return a, nil
}

// notifyStatusChange fires after the update has committed. Failures
// stay inside the dispatcher; a lost notification never fails the
// state change.
func (s *Service) notifyStatusChange(ctx context.Context, order *domain.RepairOrder, previous domain.RepairStatus, kind, title, message string) {
	if s.notifs == nil {
		return
	}

	owner, err := s.customers.GetByID(ctx, order.CustomerID)
	if err != nil {
		return
	}

	s.notifs.NotifyStatusChange(ctx, owner.UserID, notification.StatusChange{
		Kind:           kind,
		RepairID:       order.ID,
		PreviousStatus: previous,
		Status:         order.Status,
		Title:          title,
		Message:        message,
		CreatedAt:      time.Now(),
	})
}

func mapOrderErr(err error) error {
	if errors.Is(err, repository.ErrOrderNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
