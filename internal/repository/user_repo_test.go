package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"repairdesk/internal/database"
	"repairdesk/internal/domain"
	"repairdesk/internal/repository"
)

func newUserDB(t *testing.T) (*repository.UserRepository, *repository.CustomerRepository, *repository.InventoryRepository) {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return repository.NewUserRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewInventoryRepository(db)
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	users, _, _ := newUserDB(t)
	ctx := context.Background()

	u := &domain.User{
		Email:     "mira@example.com",
		FirstName: "Mira",
		LastName:  "Osei",
		Role:      domain.RoleCustomer,
		IsActive:  true,
	}
	require.NoError(t, users.Create(ctx, u))
	require.NotZero(t, u.ID)

	got, err := users.GetByEmail(ctx, "mira@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, domain.RoleCustomer, got.Role)

	exists, err := users.ExistsByEmail(ctx, "MIRA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = users.ExistsByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_OTPRoundTrip(t *testing.T) {
	users, _, _ := newUserDB(t)
	ctx := context.Background()

	u := &domain.User{Email: "mira@example.com", Role: domain.RoleCustomer, IsActive: true}
	require.NoError(t, users.Create(ctx, u))

	expires := time.Now().Add(10 * time.Minute)
	require.NoError(t, users.SetOTP(ctx, u.ID, "hashed-code", expires))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashed-code", got.OTPHash)
	require.NotNil(t, got.OTPExpiresAt)
	assert.False(t, got.IsVerified)

	require.NoError(t, users.ClearOTP(ctx, u.ID))

	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.OTPHash)
	assert.Nil(t, got.OTPExpiresAt)
	assert.True(t, got.IsVerified)
}

func TestUserRepository_Deactivate(t *testing.T) {
	users, _, _ := newUserDB(t)
	ctx := context.Background()

	u := &domain.User{Email: "mira@example.com", Role: domain.RoleCustomer, IsActive: true}
	require.NoError(t, users.Create(ctx, u))

	require.NoError(t, users.Deactivate(ctx, u.ID))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	err = users.Deactivate(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	users, _, _ := newUserDB(t)
	ctx := context.Background()

	u := &domain.User{Email: "tech@example.com", Role: domain.RoleCustomer, IsActive: true}
	require.NoError(t, users.Create(ctx, u))

	require.NoError(t, users.UpdateRole(ctx, u.ID, domain.RoleTechnician))

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTechnician, got.Role)
}

// Two first-time calls must converge on one row; the upsert on the
// user_id unique index is what makes the lazy create race-safe.
func TestCustomerRepository_FindOrCreateIdempotent(t *testing.T) {
	users, customers, _ := newUserDB(t)
	ctx := context.Background()

	u := &domain.User{Email: "mira@example.com", Role: domain.RoleCustomer, IsActive: true}
	require.NoError(t, users.Create(ctx, u))

	first, err := customers.FindOrCreateByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := customers.FindOrCreateByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := customers.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCustomerRepository_Update(t *testing.T) {
	_, customers, _ := newUserDB(t)
	ctx := context.Background()

	c, err := customers.FindOrCreateByUserID(ctx, 1)
	require.NoError(t, err)

	c.Address = "12 Solder Lane"
	c.Notes = "prefers evening pickup"
	require.NoError(t, customers.Update(ctx, c))

	got, err := customers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "12 Solder Lane", got.Address)
	assert.Equal(t, "prefers evening pickup", got.Notes)
}

func TestInventoryRepository_UpdateIgnoresQuantity(t *testing.T) {
	_, _, inventory := newUserDB(t)
	ctx := context.Background()

	item := &domain.InventoryItem{
		PartNumber:   "BAT-S21-4000",
		Name:         "Galaxy S21 battery",
		Quantity:     25,
		SellingPrice: 39,
		IsActive:     true,
	}
	require.NoError(t, inventory.Create(ctx, item))

	updated, err := inventory.Update(ctx, item.ID, map[string]any{
		"selling_price": 45.0,
		"quantity":      1000, // must be stripped
	})
	require.NoError(t, err)

	assert.Equal(t, 45.0, updated.SellingPrice)
	assert.Equal(t, 25, updated.Quantity)
}

func TestInventoryRepository_DuplicatePartNumber(t *testing.T) {
	_, _, inventory := newUserDB(t)
	ctx := context.Background()

	item := &domain.InventoryItem{PartNumber: "SCR-IP13-OEM", Name: "Display", Quantity: 1, IsActive: true}
	require.NoError(t, inventory.Create(ctx, item))

	dup := &domain.InventoryItem{PartNumber: "SCR-IP13-OEM", Name: "Display again", Quantity: 1, IsActive: true}
	assert.Error(t, inventory.Create(ctx, dup))
}
