package billing

import (
	"context"
	"errors"
	"time"

	"repairdesk/internal/authz"
	"repairdesk/internal/domain"
	"repairdesk/internal/repository"
)

var ErrNotFound = errors.New("repair order not found")

// OrderReader is the slice of the repair repository the calculator needs.
type OrderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.RepairOrder, error)
	ListParts(ctx context.Context, orderID int64) ([]domain.RepairPart, error)
}

type PaymentReader interface {
	ListByRepairOrder(ctx context.Context, orderID int64) ([]domain.Payment, error)
}

type CustomerReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type AccessPolicy interface {
	Authorize(ctx context.Context, ident authz.Identity, res authz.Resource) error
}

// Invoice is the computed billing snapshot for one order. Nothing
// here is persisted; every render recomputes from the current ledger
// state.
type Invoice struct {
	Order     *domain.RepairOrder
	Customer  *domain.Customer
	User      *domain.User
	Parts     []domain.RepairPart
	Payments  []domain.Payment

	RepairCost    float64
	PartsTotal    float64
	GrandTotal    float64
	PaymentsTotal float64
	// BalanceDue can go negative on overpayment; it is reported
	// as-is, not floored at zero.
	BalanceDue  float64
	GeneratedAt time.Time
}

type Service struct {
	orders    OrderReader
	payments  PaymentReader
	customers CustomerReader
	users     UserReader
	policy    AccessPolicy
}

func NewService(orders OrderReader, payments PaymentReader, customers CustomerReader, users UserReader, policy AccessPolicy) *Service {
	return &Service{
		orders:    orders,
		payments:  payments,
		customers: customers,
		users:     users,
		policy:    policy,
	}
}

// BuildInvoice derives the invoice for an order from its parts and
// payments.
func (s *Service) BuildInvoice(ctx context.Context, ident authz.Identity, orderID int64) (*Invoice, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.policy.Authorize(ctx, ident, authz.Resource{Kind: "repair_order", OwnerCustomerID: order.CustomerID}); err != nil {
		return nil, err
	}

	parts, err := s.orders.ListParts(ctx, orderID)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListByRepairOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		Order:       order,
		Parts:       parts,
		Payments:    payments,
		GeneratedAt: time.Now(),
	}

	if customer, err := s.customers.GetByID(ctx, order.CustomerID); err == nil {
		inv.Customer = customer
		if user, err := s.users.GetByID(ctx, customer.UserID); err == nil {
			inv.User = user
		}
	}

	inv.RepairCost = repairCost(order)
	inv.PartsTotal = partsTotal(parts)
	inv.GrandTotal = inv.RepairCost + inv.PartsTotal
	for _, p := range payments {
		inv.PaymentsTotal += p.Amount
	}
	inv.BalanceDue = inv.GrandTotal - inv.PaymentsTotal

	return inv, nil
}

// repairCost prefers the actual cost once set, then the estimate,
// then zero.
func repairCost(order *domain.RepairOrder) float64 {
	if order.ActualCost != nil {
		return *order.ActualCost
	}
	if order.EstimatedCost != nil {
		return *order.EstimatedCost
	}
	return 0
}

// partsTotal sums price snapshots. A part with no snapshot falls back
// to the linked item's current selling price.
func partsTotal(parts []domain.RepairPart) float64 {
	var total float64
	for _, p := range parts {
		price := p.UnitPrice
		if price == 0 && p.Item != nil {
			price = p.Item.SellingPrice
		}
		total += price * float64(p.Quantity)
	}
	return total
}
