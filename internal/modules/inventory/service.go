package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"repairdesk/internal/domain"
)

type Service struct {
	items Repository
}

func NewService(items Repository) *Service {
	return &Service{items: items}
}

func (s *Service) Create(ctx context.Context, req CreateItemRequest) (*domain.InventoryItem, error) {
	partNumber := strings.TrimSpace(req.PartNumber)
	if partNumber == "" || strings.TrimSpace(req.Name) == "" {
		return nil, ErrValidation
	}
	if req.Quantity < 0 || req.UnitCost < 0 || req.SellingPrice < 0 {
		return nil, ErrValidation
	}

	it := &domain.InventoryItem{
		PartNumber:   partNumber,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		SellingPrice: req.SellingPrice,
		IsActive:     true,
	}

	if err := s.items.Create(ctx, it); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil, ErrPartNumberTaken
		}
		return nil, err
	}
	return it, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.InventoryItem, error) {
	return s.items.List(ctx, limit, offset)
}

// Update applies a partial field set. Quantity is not accepted here:
// stock moves only through the part attach/detach transactions.
func (s *Service) Update(ctx context.Context, id int64, req UpdateItemRequest) (*domain.InventoryItem, error) {
	updates := map[string]any{}
	if req.PartNumber != nil {
		v := strings.TrimSpace(*req.PartNumber)
		if v == "" {
			return nil, ErrValidation
		}
		updates["part_number"] = v
	}
	if req.Name != nil {
		v := strings.TrimSpace(*req.Name)
		if v == "" {
			return nil, ErrValidation
		}
		updates["name"] = v
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.UnitCost != nil {
		if *req.UnitCost < 0 {
			return nil, ErrValidation
		}
		updates["unit_cost"] = *req.UnitCost
	}
	if req.SellingPrice != nil {
		if *req.SellingPrice < 0 {
			return nil, ErrValidation
		}
		updates["selling_price"] = *req.SellingPrice
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return s.GetByID(ctx, id)
	}

	it, err := s.items.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil, ErrPartNumberTaken
		}
		return nil, err
	}
	return it, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.items.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
