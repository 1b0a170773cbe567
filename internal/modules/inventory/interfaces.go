package inventory

import (
	"context"

	"repairdesk/internal/domain"
)

// Repository lists only the methods the inventory service uses.
type Repository interface {
	Create(ctx context.Context, it *domain.InventoryItem) error
	GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error)
	List(ctx context.Context, limit, offset int) ([]domain.InventoryItem, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*domain.InventoryItem, error)
	Delete(ctx context.Context, id int64) error
}
