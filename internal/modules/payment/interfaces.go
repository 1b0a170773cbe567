package payment

import (
	"context"

	"repairdesk/internal/authz"
	"repairdesk/internal/domain"
)

// Repository is the payment ledger surface.
type Repository interface {
	CreateForOrder(ctx context.Context, p *domain.Payment) error
	ListAll(ctx context.Context, limit, offset int) ([]domain.Payment, error)
	ListByRepairOrder(ctx context.Context, orderID int64) ([]domain.Payment, error)
	ListByCustomer(ctx context.Context, customerID int64, limit, offset int) ([]domain.Payment, error)
	ListByTechnician(ctx context.Context, technicianID int64, limit, offset int) ([]domain.Payment, error)
}

// OrderReader resolves ownership for customer-initiated payments.
type OrderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.RepairOrder, error)
}

type AccessPolicy interface {
	CustomerFor(ctx context.Context, ident authz.Identity) (*domain.Customer, error)
	Authorize(ctx context.Context, ident authz.Identity, res authz.Resource) error
}
