package domain

import "time"

type InventoryItem struct {
	ID           int64     `json:"id"`
	PartNumber   string    `json:"part_number" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Description  string    `json:"description,omitempty"`
	Quantity     int       `json:"quantity"`
	UnitCost     float64   `json:"unit_cost"`
	SellingPrice float64   `json:"selling_price"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
