package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairdesk/internal/database"
	"repairdesk/internal/domain"
	"repairdesk/internal/repository"
)

func newTestDB(t *testing.T) (*repository.RepairRepository, *repository.InventoryRepository, *repository.PaymentRepository) {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return repository.NewRepairRepository(db),
		repository.NewInventoryRepository(db),
		repository.NewPaymentRepository(db)
}

func seedOrderAndItem(t *testing.T, repairs *repository.RepairRepository, inventory *repository.InventoryRepository, stock int) (*domain.RepairOrder, *domain.InventoryItem) {
	t.Helper()
	ctx := context.Background()

	order := &domain.RepairOrder{
		CustomerID:       1,
		DeviceType:       "smartphone",
		Brand:            "Apple",
		Model:            "iPhone 13",
		IssueDescription: "Cracked screen",
		Status:           domain.RepairPending,
		Priority:         domain.PriorityMedium,
	}
	require.NoError(t, repairs.Create(ctx, order))

	item := &domain.InventoryItem{
		PartNumber:   "SCR-IP13-OEM",
		Name:         "iPhone 13 display assembly",
		Quantity:     stock,
		UnitCost:     74.50,
		SellingPrice: 129.00,
		IsActive:     true,
	}
	require.NoError(t, inventory.Create(ctx, item))

	return order, item
}

func TestAddPart_DecrementsStockAndSnapshotsPrice(t *testing.T) {
	repairs, inventory, _ := newTestDB(t)
	ctx := context.Background()

	order, item := seedOrderAndItem(t, repairs, inventory, 10)

	part, err := repairs.AddPart(ctx, order.ID, item.ID, 3, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, part.Quantity)
	assert.Equal(t, 129.00, part.UnitPrice)

	got, err := inventory.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)
}

func TestAddPart_ExplicitPriceOverridesSnapshot(t *testing.T) {
	repairs, inventory, _ := newTestDB(t)
	ctx := context.Background()

	order, item := seedOrderAndItem(t, repairs, inventory, 10)

	price := 99.0
	part, err := repairs.AddPart(ctx, order.ID, item.ID, 1, &price)
	require.NoError(t, err)
	assert.Equal(t, 99.0, part.UnitPrice)
}

func TestAddPart_InsufficientStock(t *testing.T) {
	repairs, inventory, _ := newTestDB(t)
	ctx := context.Background()

	order, item := seedOrderAndItem(t, repairs, inventory, 2)

	_, err := repairs.AddPart(ctx, order.ID, item.ID, 3, nil)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)

	// The failed transaction must leave stock untouched.
	got, err := inventory.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
}

func TestAddPart_UnknownOrderAndItem(t *testing.T) {
	repairs, inventory, _ := newTestDB(t)
	ctx := context.Background()

	order, item := seedOrderAndItem(t, repairs, inventory, 5)

	_, err := repairs.AddPart(ctx, order.ID+100, item.ID, 1, nil)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)

	_, err = repairs.AddPart(ctx, order.ID, item.ID+100, 1, nil)
	assert.ErrorIs(t, err, repository.ErrItemNotFound)
}

func TestRemovePart_RestoresStock(t *testing.T) {
	repairs, inventory, _ := newTestDB(t)
	ctx := context.Background()

	order, item := seedOrderAndItem(t, repairs, inventory, 10)

	part, err := repairs.AddPart(ctx, order.ID, item.ID, 4, nil)
	require.NoError(t, err)

	require.NoError(t, repairs.RemovePart(ctx, order.ID, part.ID))

	got, err := inventory.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)

	parts, err := repairs.ListParts(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestRemovePart_ScopedToOrder(t *testing.T) {
	repairs, inventory, _ := newTestDB(t)
	ctx := context.Background()

	order, item := seedOrderAndItem(t, repairs, inventory, 10)

	part, err := repairs.AddPart(ctx, order.ID, item.ID, 1, nil)
	require.NoError(t, err)

	err = repairs.RemovePart(ctx, order.ID+1, part.ID)
	assert.ErrorIs(t, err, repository.ErrPartNotFound)
}

func TestDelete_KeepsPaymentsQueryable(t *testing.T) {
	repairs, inventory, payments := newTestDB(t)
	ctx := context.Background()

	order, item := seedOrderAndItem(t, repairs, inventory, 10)
	_, err := repairs.AddPart(ctx, order.ID, item.ID, 1, nil)
	require.NoError(t, err)

	require.NoError(t, payments.CreateForOrder(ctx, &domain.Payment{
		RepairOrderID: order.ID,
		Amount:        50,
		Method:        domain.PaymentCash,
		Status:        domain.PaymentCompleted,
		PaidAt:        time.Now(),
	}))

	require.NoError(t, repairs.Delete(ctx, order.ID))

	_, err = repairs.GetByID(ctx, order.ID)
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)

	// Parts went with the order; the ledger did not.
	got, err := payments.ListByRepairOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 50.0, got[0].Amount)
}

func TestCreatePayment_RequiresLiveOrder(t *testing.T) {
	_, _, payments := newTestDB(t)
	ctx := context.Background()

	err := payments.CreateForOrder(ctx, &domain.Payment{
		RepairOrderID: 999,
		Amount:        50,
		Method:        domain.PaymentCash,
		Status:        domain.PaymentCompleted,
		PaidAt:        time.Now(),
	})
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestGetDetailed_PreloadsPartsAndAttachments(t *testing.T) {
	repairs, inventory, _ := newTestDB(t)
	ctx := context.Background()

	order, item := seedOrderAndItem(t, repairs, inventory, 10)
	_, err := repairs.AddPart(ctx, order.ID, item.ID, 2, nil)
	require.NoError(t, err)

	require.NoError(t, repairs.AddAttachment(ctx, &domain.RepairAttachment{
		RepairOrderID: order.ID,
		Filename:      "abc.jpg",
		OriginalName:  "front.jpg",
		MimeType:      "image/jpeg",
		Size:          1024,
		UploadedBy:    1,
	}))

	got, err := repairs.GetDetailed(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Parts, 1)
	assert.Len(t, got.Attachments, 1)
	require.NotNil(t, got.Parts[0].Item)
	assert.Equal(t, item.PartNumber, got.Parts[0].Item.PartNumber)
}
