package payment

import (
	"context"
	"errors"
	"time"

	"repairdesk/internal/authz"
	"repairdesk/internal/domain"
	"repairdesk/internal/repository"
)

type Service struct {
	payments Repository
	orders   OrderReader
	policy   AccessPolicy
}

func NewService(payments Repository, orders OrderReader, policy AccessPolicy) *Service {
	return &Service{
		payments: payments,
		orders:   orders,
		policy:   policy,
	}
}

// Create records a payment against an order. Validation happens
// before any row is written; the order lookup and the insert run in
// one transaction inside the repository. The payment is marked
// completed immediately; amounts are recorded as asserted by the
// caller, there is no gateway capture step.
func (s *Service) Create(ctx context.Context, ident authz.Identity, req CreatePaymentRequest) (*domain.Payment, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	method := domain.PaymentMethod(req.Method)
	if !method.Valid() {
		return nil, ErrInvalidMethod
	}

	order, err := s.orders.GetByID(ctx, req.RepairOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if err := s.policy.Authorize(ctx, ident, authz.Resource{Kind: "repair_order", OwnerCustomerID: order.CustomerID}); err != nil {
		return nil, err
	}

	paidAt := time.Now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	p := &domain.Payment{
		RepairOrderID: req.RepairOrderID,
		Amount:        req.Amount,
		Method:        method,
		Status:        domain.PaymentCompleted,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
		PaidAt:        paidAt,
	}

	if err := s.payments.CreateForOrder(ctx, p); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]domain.Payment, error) {
	return s.payments.ListAll(ctx, limit, offset)
}

func (s *Service) ListMine(ctx context.Context, ident authz.Identity, limit, offset int) ([]domain.Payment, error) {
	own, err := s.policy.CustomerFor(ctx, ident)
	if err != nil {
		return nil, err
	}
	return s.payments.ListByCustomer(ctx, own.ID, limit, offset)
}

func (s *Service) ListByTechnician(ctx context.Context, technicianID int64, limit, offset int) ([]domain.Payment, error) {
	return s.payments.ListByTechnician(ctx, technicianID, limit, offset)
}

// ListByRepairOrder works even when the order is gone: payments are
// an audit trail that outlives order deletion. When the order still
// exists, customers only see their own.
func (s *Service) ListByRepairOrder(ctx context.Context, ident authz.Identity, orderID int64) ([]domain.Payment, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err == nil {
		if err := s.policy.Authorize(ctx, ident, authz.Resource{Kind: "repair_order", OwnerCustomerID: order.CustomerID}); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, err
	} else if ident.Role == domain.RoleCustomer {
		// Orphaned payments are staff-visible only.
		return nil, authz.ErrForbidden
	}

	return s.payments.ListByRepairOrder(ctx, orderID)
}
