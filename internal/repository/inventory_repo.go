package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"repairdesk/internal/domain"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

type inventoryModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	PartNumber   string    `gorm:"column:part_number;uniqueIndex"`
	Name         string    `gorm:"column:name"`
	Description  *string   `gorm:"column:description"`
	Quantity     int       `gorm:"column:quantity"`
	UnitCost     float64   `gorm:"column:unit_cost"`
	SellingPrice float64   `gorm:"column:selling_price"`
	IsActive     bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (inventoryModel) TableName() string { return "inventory_items" }

func toDomainInventory(m inventoryModel) *domain.InventoryItem {
	var description string
	if m.Description != nil {
		description = *m.Description
	}

	return &domain.InventoryItem{
		ID:           m.ID,
		PartNumber:   m.PartNumber,
		Name:         m.Name,
		Description:  description,
		Quantity:     m.Quantity,
		UnitCost:     m.UnitCost,
		SellingPrice: m.SellingPrice,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toInventoryModel(it *domain.InventoryItem) inventoryModel {
	var description *string
	if it.Description != "" {
		v := it.Description
		description = &v
	}

	return inventoryModel{
		ID:           it.ID,
		PartNumber:   it.PartNumber,
		Name:         it.Name,
		Description:  description,
		Quantity:     it.Quantity,
		UnitCost:     it.UnitCost,
		SellingPrice: it.SellingPrice,
		IsActive:     it.IsActive,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}

func (r *InventoryRepository) Create(ctx context.Context, it *domain.InventoryItem) error {
	m := toInventoryModel(it)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*it = *toDomainInventory(m)
	return nil
}

func (r *InventoryRepository) GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	var m inventoryModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainInventory(m), nil
}

func (r *InventoryRepository) List(ctx context.Context, limit, offset int) ([]domain.InventoryItem, error) {
	var rows []inventoryModel
	tx := r.db.WithContext(ctx).
		Order("part_number").
		Limit(limit).
		Offset(offset).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.InventoryItem, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainInventory(m))
	}
	return out, nil
}

// Update merges the supplied field set onto the row. Quantity is
// deliberately absent: stock only changes through the part
// attach/detach transactions in RepairRepository.
func (r *InventoryRepository) Update(ctx context.Context, id int64, updates map[string]any) (*domain.InventoryItem, error) {
	delete(updates, "quantity")

	tx := r.db.WithContext(ctx).Model(&inventoryModel{}).
		Where("id = ?", id).
		Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *InventoryRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&inventoryModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
