package repair

import (
	"context"
	"mime/multipart"

	"repairdesk/internal/authz"
	"repairdesk/internal/domain"
	"repairdesk/internal/modules/notification"
	"repairdesk/internal/pkg/upload"
)

// OrderRepository defines the persistence surface the repair service
// uses.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.RepairOrder) error
	GetByID(ctx context.Context, id int64) (*domain.RepairOrder, error)
	GetDetailed(ctx context.Context, id int64) (*domain.RepairOrder, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.RepairOrder, error)
	ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.RepairOrder, error)
	ListByTechnician(ctx context.Context, technicianID int64, limit, offset int) ([]domain.RepairOrder, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*domain.RepairOrder, error)
	Delete(ctx context.Context, id int64) error

	AddPart(ctx context.Context, orderID, inventoryID int64, quantity int, unitPrice *float64) (*domain.RepairPart, error)
	RemovePart(ctx context.Context, orderID, partID int64) error
	ListParts(ctx context.Context, orderID int64) ([]domain.RepairPart, error)

	AddAttachment(ctx context.Context, a *domain.RepairAttachment) error
	ListAttachments(ctx context.Context, orderID int64) ([]domain.RepairAttachment, error)
	GetAttachment(ctx context.Context, orderID, attachmentID int64) (*domain.RepairAttachment, error)
	DeleteAttachment(ctx context.Context, orderID, attachmentID int64) error
}

// UserReader backs technician validation on assignment.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// CustomerReader resolves the owning customer so notifications can
// target the right user.
type CustomerReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}

// AccessPolicy is the authorization gate consulted before
// customer-owned resources are touched.
type AccessPolicy interface {
	CustomerFor(ctx context.Context, ident authz.Identity) (*domain.Customer, error)
	Authorize(ctx context.Context, ident authz.Identity, res authz.Resource) error
}

// NotificationSender pushes best-effort status events.
type NotificationSender interface {
	NotifyStatusChange(ctx context.Context, userID int64, n notification.StatusChange)
}

// FileStore writes and deletes device photos on disk.
type FileStore interface {
	SaveImage(orderID int64, fh *multipart.FileHeader) (*upload.SavedFile, error)
	Remove(orderID int64, filename string) error
	RemoveOrderDir(orderID int64) error
}
