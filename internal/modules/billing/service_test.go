package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"repairdesk/internal/authz"
	"repairdesk/internal/domain"
	"repairdesk/internal/repository"
)

type MockOrderReader struct {
	mock.Mock
}

func (m *MockOrderReader) GetByID(ctx context.Context, id int64) (*domain.RepairOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepairOrder), args.Error(1)
}

func (m *MockOrderReader) ListParts(ctx context.Context, orderID int64) ([]domain.RepairPart, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.RepairPart), args.Error(1)
}

type MockPaymentReader struct {
	mock.Mock
}

func (m *MockPaymentReader) ListByRepairOrder(ctx context.Context, orderID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

type MockCustomerReader struct {
	mock.Mock
}

func (m *MockCustomerReader) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockAccessPolicy struct {
	mock.Mock
}

func (m *MockAccessPolicy) Authorize(ctx context.Context, ident authz.Identity, res authz.Resource) error {
	args := m.Called(ctx, ident, res)
	return args.Error(0)
}

func staffIdent() authz.Identity {
	return authz.Identity{UserID: 1, Role: domain.RoleAdmin}
}

func newBillingService(order *domain.RepairOrder, parts []domain.RepairPart, payments []domain.Payment) *Service {
	orders := new(MockOrderReader)
	pays := new(MockPaymentReader)
	customers := new(MockCustomerReader)
	users := new(MockUserReader)
	policy := new(MockAccessPolicy)

	orders.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	orders.On("ListParts", mock.Anything, order.ID).Return(parts, nil)
	pays.On("ListByRepairOrder", mock.Anything, order.ID).Return(payments, nil)
	customers.On("GetByID", mock.Anything, order.CustomerID).
		Return(&domain.Customer{ID: order.CustomerID, UserID: 7}, nil)
	users.On("GetByID", mock.Anything, int64(7)).
		Return(&domain.User{ID: 7, Email: "mira@example.com", FirstName: "Mira"}, nil)
	policy.On("Authorize", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	return NewService(orders, pays, customers, users, policy)
}

func TestBuildInvoice_Totals(t *testing.T) {
	actual := 500.0
	order := &domain.RepairOrder{ID: 5, CustomerID: 3, Status: domain.RepairCompleted, ActualCost: &actual}
	parts := []domain.RepairPart{
		{ID: 1, RepairOrderID: 5, InventoryID: 11, Quantity: 2, UnitPrice: 100},
	}
	payments := []domain.Payment{
		{ID: 1, RepairOrderID: 5, Amount: 600, Method: domain.PaymentCard, Status: domain.PaymentCompleted, PaidAt: time.Now()},
	}

	svc := newBillingService(order, parts, payments)
	inv, err := svc.BuildInvoice(context.Background(), staffIdent(), 5)

	assert.NoError(t, err)
	assert.Equal(t, 500.0, inv.RepairCost)
	assert.Equal(t, 200.0, inv.PartsTotal)
	assert.Equal(t, 700.0, inv.GrandTotal)
	assert.Equal(t, 600.0, inv.PaymentsTotal)
	assert.Equal(t, 100.0, inv.BalanceDue)
	assert.Equal(t, "Mira", inv.User.FirstName)
}

func TestBuildInvoice_EstimateWhenNoActual(t *testing.T) {
	est := 120.0
	order := &domain.RepairOrder{ID: 5, CustomerID: 3, Status: domain.RepairInProgress, EstimatedCost: &est}

	svc := newBillingService(order, []domain.RepairPart{}, []domain.Payment{})
	inv, err := svc.BuildInvoice(context.Background(), staffIdent(), 5)

	assert.NoError(t, err)
	assert.Equal(t, 120.0, inv.RepairCost)
	assert.Equal(t, 120.0, inv.GrandTotal)
	assert.Equal(t, 120.0, inv.BalanceDue)
}

// Overpayment is reported as a negative balance, never clamped.
func TestBuildInvoice_NegativeBalance(t *testing.T) {
	actual := 100.0
	order := &domain.RepairOrder{ID: 5, CustomerID: 3, ActualCost: &actual}
	payments := []domain.Payment{
		{ID: 1, RepairOrderID: 5, Amount: 150, Method: domain.PaymentCash, Status: domain.PaymentCompleted},
	}

	svc := newBillingService(order, []domain.RepairPart{}, payments)
	inv, err := svc.BuildInvoice(context.Background(), staffIdent(), 5)

	assert.NoError(t, err)
	assert.Equal(t, -50.0, inv.BalanceDue)
}

func TestBuildInvoice_PartFallsBackToSellingPrice(t *testing.T) {
	order := &domain.RepairOrder{ID: 5, CustomerID: 3}
	parts := []domain.RepairPart{
		{ID: 1, RepairOrderID: 5, InventoryID: 11, Quantity: 3, UnitPrice: 0,
			Item: &domain.InventoryItem{ID: 11, SellingPrice: 18}},
	}

	svc := newBillingService(order, parts, []domain.Payment{})
	inv, err := svc.BuildInvoice(context.Background(), staffIdent(), 5)

	assert.NoError(t, err)
	assert.Equal(t, 54.0, inv.PartsTotal)
}

func TestBuildInvoice_OrderNotFound(t *testing.T) {
	orders := new(MockOrderReader)
	orders.On("GetByID", mock.Anything, int64(404)).Return(nil, repository.ErrOrderNotFound)

	svc := NewService(orders, new(MockPaymentReader), new(MockCustomerReader), new(MockUserReader), new(MockAccessPolicy))
	_, err := svc.BuildInvoice(context.Background(), staffIdent(), 404)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildInvoice_CustomerForbidden(t *testing.T) {
	orders := new(MockOrderReader)
	orders.On("GetByID", mock.Anything, int64(5)).
		Return(&domain.RepairOrder{ID: 5, CustomerID: 3}, nil)
	policy := new(MockAccessPolicy)
	policy.On("Authorize", mock.Anything, mock.Anything, mock.Anything).Return(authz.ErrForbidden)

	svc := NewService(orders, new(MockPaymentReader), new(MockCustomerReader), new(MockUserReader), policy)
	_, err := svc.BuildInvoice(context.Background(), authz.Identity{UserID: 9, Role: domain.RoleCustomer}, 5)

	assert.ErrorIs(t, err, authz.ErrForbidden)
}
