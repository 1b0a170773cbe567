package inventory

type CreateItemRequest struct {
	PartNumber   string  `json:"part_number" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Quantity     int     `json:"quantity" binding:"min=0"`
	UnitCost     float64 `json:"unit_cost" binding:"min=0"`
	SellingPrice float64 `json:"selling_price" binding:"min=0"`
}

type UpdateItemRequest struct {
	PartNumber   *string  `json:"part_number"`
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	UnitCost     *float64 `json:"unit_cost"`
	SellingPrice *float64 `json:"selling_price"`
	IsActive     *bool    `json:"is_active"`
}
